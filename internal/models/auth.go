package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an admin.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
	IP         string `json:"-"`
	UserAgent  string `json:"-"`
}

// LoginResponse returns the issued token and admin info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	Admin       AdminInfo `json:"admin"`
	IssuedAt    time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// AdminInfo describes the authenticated admin in responses.
type AdminInfo struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       AdminRole `json:"role"`
	Department string    `json:"department,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	AdminID    string    `json:"admin_id"`
	Role       AdminRole `json:"role"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department,omitempty"`
	jwt.RegisteredClaims
}
