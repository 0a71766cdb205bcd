package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// RegistrationHandler exposes the public registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// Register godoc
// @Summary Register a student
// @Description Accepts the admission form and returns the generated student ID
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body dto.RegisterStudentRequest true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	res, err := h.registrations.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Status godoc
// @Summary Check registration status
// @Tags Registration
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{student_id}/status [get]
func (h *RegistrationHandler) Status(c *gin.Context) {
	res, err := h.registrations.Status(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Slip godoc
// @Summary Download admission slip
// @Tags Registration
// @Produce application/pdf
// @Param student_id path string true "Student ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /students/{student_id}/slip [get]
func (h *RegistrationHandler) Slip(c *gin.Context) {
	content, filename, err := h.registrations.Slip(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", content)
}

// PrintSlip godoc
// @Summary Publish admission slip to the drive
// @Description Returns a shareable link; the slip is generated once and reused on later calls
// @Tags Registration
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{student_id}/print-document [post]
func (h *RegistrationHandler) PrintSlip(c *gin.Context) {
	res, err := h.registrations.PrintSlip(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
