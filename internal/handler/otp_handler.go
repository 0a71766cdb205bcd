package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// OTPHandler exposes phone verification endpoints.
type OTPHandler struct {
	otp *service.OTPService
}

// NewOTPHandler constructs OTPHandler.
func NewOTPHandler(otp *service.OTPService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

// Send godoc
// @Summary Send a verification code
// @Tags OTP
// @Accept json
// @Produce json
// @Param payload body dto.SendOTPRequest true "Phone number"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /otp/send [post]
func (h *OTPHandler) Send(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.otp.Send(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "verification code sent"}, nil)
}

// Verify godoc
// @Summary Verify a code
// @Description Confirms the code; pass student_id to flag the student's phone as verified
// @Tags OTP
// @Accept json
// @Produce json
// @Param payload body dto.VerifyOTPRequest true "Phone and code"
// @Param student_id query string false "Student ID to mark verified"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /otp/verify [post]
func (h *OTPHandler) Verify(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.otp.Verify(c.Request.Context(), req, c.Query("student_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"verified": true}, nil)
}
