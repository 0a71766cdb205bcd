package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/repository"
	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// AdminHandler exposes admin account management endpoints.
type AdminHandler struct {
	admins *service.AdminService
	audit  *repository.AuditRepository
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admins *service.AdminService, audit *repository.AuditRepository) *AdminHandler {
	return &AdminHandler{admins: admins, audit: audit}
}

// Create godoc
// @Summary Create admin account
// @Tags Admins
// @Accept json
// @Produce json
// @Param payload body dto.CreateAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Router /admin/admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	admin, err := h.admins.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// List godoc
// @Summary List admin accounts
// @Tags Admins
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// Update godoc
// @Summary Update admin account
// @Tags Admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body dto.UpdateAdminRequest true "Admin payload"
// @Success 200 {object} response.Envelope
// @Router /admin/admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	var req dto.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	admin, err := h.admins.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// Delete godoc
// @Summary Delete admin account
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 204
// @Router /admin/admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.admins.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Admin roster summary
// @Tags Admins
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/admins/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admins.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Logs godoc
// @Summary Recent admin activity
// @Tags Admins
// @Produce json
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /admin/logs [get]
func (h *AdminHandler) Logs(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
