package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/repository"
	"github.com/jucampus/registrar-api/internal/sms"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

type otpStore interface {
	Store(ctx context.Context, phone, code string) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

type otpStudentUpdater interface {
	UpdateFields(ctx context.Context, studentID string, fields bson.M) error
}

// OTPService sends and verifies phone verification codes. Codes live in
// Redis under a TTL, so stale codes disappear on their own.
type OTPService struct {
	store     otpStore
	sender    sms.Sender
	students  otpStudentUpdater
	length    int
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOTPService constructs an OTPService. students may be nil when the
// caller does not tie verification to a record.
func NewOTPService(store otpStore, sender sms.Sender, students otpStudentUpdater, length int, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &OTPService{store: store, sender: sender, students: students, length: length, metrics: metrics, validator: validate, logger: logger}
}

// Send issues a fresh code to the phone number. A resend replaces the
// previous code.
func (s *OTPService) Send(ctx context.Context, req dto.SendOTPRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid phone payload")
	}

	code := NewOTPCode(s.length)
	if err := s.store.Store(ctx, req.Phone, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store otp")
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in a few minutes.", code)
	if err := s.sender.Send(req.Phone, body); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSMSDeliveryFailed.Code, appErrors.ErrSMSDeliveryFailed.Status, "failed to deliver otp")
	}

	s.metrics.RecordOTPSent()
	s.logger.Info("otp sent", zap.String("phone", req.Phone))
	return nil
}

// Verify checks the submitted code. On success the code is consumed and,
// when a student id is supplied, the record's phone flag flips.
func (s *OTPService) Verify(ctx context.Context, req dto.VerifyOTPRequest, studentID string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp payload")
	}

	stored, err := s.store.Get(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return appErrors.ErrOTPExpired
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read otp")
	}

	if stored != req.Code {
		return appErrors.ErrOTPMismatch
	}

	if err := s.store.Delete(ctx, req.Phone); err != nil {
		s.logger.Warn("failed to consume otp", zap.Error(err))
	}

	if studentID != "" && s.students != nil {
		if err := s.students.UpdateFields(ctx, studentID, bson.M{"phoneVerified": true}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark phone verified")
		}
	}
	return nil
}
