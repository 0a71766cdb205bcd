package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// PhotoHandler exposes the student photo upload endpoint.
type PhotoHandler struct {
	photos *service.PhotoService
}

// NewPhotoHandler constructs PhotoHandler.
func NewPhotoHandler(photos *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// Upload godoc
// @Summary Upload a student photo
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param student_id path string true "Student ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/students/{student_id}/photo [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "photo file is required"))
		return
	}

	res, err := h.photos.Upload(c.Request.Context(), claimsFromContext(c), c.Param("student_id"), header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
