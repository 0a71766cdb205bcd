package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/models"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/storage"
)

type cardGenerator interface {
	Generate(ctx context.Context, student *models.Student) (*models.GeneratedCard, error)
}

// CardService drives ID card generation for verified registrations.
type CardService struct {
	students  studentRepository
	generator cardGenerator
	signer    *storage.SignedURLSigner
	audit     auditWriter
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewCardService constructs a CardService. signer may be nil; signed
// download links are then unavailable.
func NewCardService(students studentRepository, generator cardGenerator, signer *storage.SignedURLSigner, audit auditWriter, metrics *MetricsService, logger *zap.Logger) *CardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardService{students: students, generator: generator, signer: signer, audit: audit, metrics: metrics, logger: logger}
}

// Generate renders and publishes a student's ID card, then records the
// artifact locations on the student.
func (s *CardService) Generate(ctx context.Context, actor *models.JWTClaims, studentID string) (*models.GeneratedCard, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	if actor != nil && actor.Role == models.RoleDepartmentAdmin &&
		models.NormalizeDepartment(actor.Department) != models.NormalizeDepartment(student.Department) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "records outside your department")
	}

	if s.generator == nil {
		return nil, appErrors.ErrTemplateMissing
	}

	start := time.Now()
	card, err := s.generator.Generate(ctx, student)
	s.metrics.RecordCardGeneration(err == nil, time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "card generation failed")
	}

	if err := s.students.UpdateFields(ctx, studentID, bson.M{"idCard": card}); err != nil {
		s.logger.Warn("could not persist card metadata", zap.String("student_id", studentID), zap.Error(err))
	}

	s.record(ctx, actor, studentID)
	return card, nil
}

// Download returns the locally rendered card file for a student.
func (s *CardService) Download(ctx context.Context, studentID string, preferPDF bool) ([]byte, string, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", appErrors.ErrStudentNotFound
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student.IDCard == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no card generated yet")
	}

	path := student.IDCard.LocalPPTX
	if preferPDF && student.IDCard.LocalPDF != "" {
		path = student.IDCard.LocalPDF
	}
	if path == "" {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "card file missing")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read card file")
	}
	return data, filepath.Base(path), nil
}

// SignedURL returns a time-limited download link for a student's card,
// usable without admin credentials.
func (s *CardService) SignedURL(ctx context.Context, actor *models.JWTClaims, studentID string, preferPDF bool) (string, time.Time, error) {
	if s.signer == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrInternal, "signed links are not configured")
	}

	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", time.Time{}, appErrors.ErrStudentNotFound
		}
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	if actor != nil && actor.Role == models.RoleDepartmentAdmin &&
		models.NormalizeDepartment(actor.Department) != models.NormalizeDepartment(student.Department) {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrForbidden, "records outside your department")
	}

	if student.IDCard == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "no card generated yet")
	}
	path := student.IDCard.LocalPPTX
	if preferPDF && student.IDCard.LocalPDF != "" {
		path = student.IDCard.LocalPDF
	}
	if path == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "card file missing")
	}

	token, expiresAt, err := s.signer.Generate(studentID, path)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return fmt.Sprintf("/api/cards/download?token=%s", url.QueryEscape(token)), expiresAt, nil
}

// DownloadByToken serves a card referenced by a signed token.
func (s *CardService) DownloadByToken(token string) ([]byte, string, error) {
	if s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrInternal, "signed links are not configured")
	}

	_, path, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "card file missing")
	}
	return data, filepath.Base(path), nil
}

func (s *CardService) record(ctx context.Context, actor *models.JWTClaims, studentID string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     models.AuditActionCardGenerate,
		Resource:   "student",
		ResourceID: studentID,
		CreatedAt:  time.Now().UTC(),
	}
	if actor != nil {
		entry.AdminID = actor.AdminID
		entry.AdminEmail = actor.Email
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}
