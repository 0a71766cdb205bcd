package dto

import "github.com/jucampus/registrar-api/internal/models"

// CreateAdminRequest provisions a new back-office account.
type CreateAdminRequest struct {
	Email      string           `json:"email" validate:"required,email"`
	Password   string           `json:"password" validate:"required,min=8"`
	FullName   string           `json:"fullName" validate:"required,min=2,max=100"`
	Role       models.AdminRole `json:"role" validate:"required"`
	Department string           `json:"department" validate:"omitempty,max=60"`
}

// UpdateAdminRequest patches mutable admin fields. Nil means leave as is.
type UpdateAdminRequest struct {
	FullName   *string           `json:"fullName" validate:"omitempty,min=2,max=100"`
	Role       *models.AdminRole `json:"role"`
	Department *string           `json:"department" validate:"omitempty,max=60"`
	Active     *bool             `json:"active"`
	Password   *string           `json:"password" validate:"omitempty,min=8"`
}

// AdminStats summarises the admin roster for the dashboard.
type AdminStats struct {
	Total  int            `json:"total"`
	Active int            `json:"active"`
	ByRole map[string]int `json:"byRole"`
}

// InitAdminRequest seeds the first super admin on a fresh install.
type InitAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AttendanceRequest marks a student present or absent.
type AttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent"`
}

// SendOTPRequest asks for a verification code.
type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=15"`
}

// VerifyOTPRequest confirms a verification code.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=15"`
	Code  string `json:"code" validate:"required,min=4,max=8"`
}
