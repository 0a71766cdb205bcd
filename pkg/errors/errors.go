package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrStudentNotFound     = New("STUDENT_NOT_FOUND", http.StatusNotFound, "student not found")
	ErrDuplicateEmail      = New("DUPLICATE_EMAIL", http.StatusConflict, "a student with this email already exists")
	ErrTemplateMissing     = New("TEMPLATE_MISSING", http.StatusInternalServerError, "id card template not found")
	ErrPhotoFetchFailed    = New("PHOTO_FETCH_FAILED", http.StatusBadGateway, "failed to download student photo")
	ErrUploadFailed        = New("UPLOAD_FAILED", http.StatusBadGateway, "failed to upload file to storage")
	ErrFileTooLarge        = New("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
	ErrUnsupportedFileType = New("UNSUPPORTED_FILE_TYPE", http.StatusBadRequest, "file type is not allowed")
	ErrOTPExpired          = New("OTP_EXPIRED", http.StatusBadRequest, "otp has expired or was never issued")
	ErrOTPMismatch         = New("OTP_MISMATCH", http.StatusBadRequest, "otp does not match")
	ErrSMSDeliveryFailed   = New("SMS_DELIVERY_FAILED", http.StatusBadGateway, "failed to deliver sms")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
