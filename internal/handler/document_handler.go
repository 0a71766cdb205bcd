package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// DocumentHandler exposes document upload and verification endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload godoc
// @Summary Upload admission documents
// @Description Accepts multipart form fields and stores each file in the student's drive folder
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /students/{student_id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form"))
		return
	}

	res, err := h.documents.Upload(c.Request.Context(), c.Param("student_id"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary List a student's uploaded documents
// @Tags Documents
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{student_id}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	res, err := h.documents.List(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// DriveStatus godoc
// @Summary Check drive connectivity
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/google-drive/test [get]
func (h *DocumentHandler) DriveStatus(c *gin.Context) {
	if err := h.documents.DriveStatus(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"drive": "ok"}, nil)
}

// Folder godoc
// @Summary List a student's drive folder
// @Tags Documents
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/google-drive/folders/{student_id} [get]
func (h *DocumentHandler) Folder(c *gin.Context) {
	files, err := h.documents.Folder(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Verify godoc
// @Summary Record document verification checks
// @Tags Documents
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param payload body dto.VerifyDocumentsRequest true "Verification checklist"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/students/{student_id}/verify [post]
func (h *DocumentHandler) Verify(c *gin.Context) {
	var req dto.VerifyDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	res, err := h.documents.Verify(c.Request.Context(), claimsFromContext(c), c.Param("student_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
