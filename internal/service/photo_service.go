package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/photos"
	"github.com/jucampus/registrar-api/pkg/config"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

// PhotoService stores student photographs and advances the record status.
type PhotoService struct {
	students studentRepository
	uploader photos.Uploader
	limits   config.UploadsConfig
	audit    auditWriter
	logger   *zap.Logger
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(students studentRepository, uploader photos.Uploader, limits config.UploadsConfig, audit auditWriter, logger *zap.Logger) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{students: students, uploader: uploader, limits: limits, audit: audit, logger: logger}
}

var photoExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {},
}

// Upload pushes a photo to storage and moves pending records forward.
func (s *PhotoService) Upload(ctx context.Context, actor *models.JWTClaims, studentID string, header *multipart.FileHeader) (*dto.UploadPhotoResponse, error) {
	if s.uploader == nil {
		return nil, appErrors.Clone(appErrors.ErrUploadFailed, "photo storage is not configured")
	}

	if s.limits.MaxFileSizeBytes > 0 && header.Size > s.limits.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge,
			fmt.Sprintf("photo exceeds the %d MB limit", s.limits.MaxFileSizeBytes/(1024*1024)))
	}
	if _, ok := photoExtensions[strings.ToLower(filepath.Ext(header.Filename))]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFileType, "photo must be png or jpeg")
	}

	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to read photo")
	}
	defer file.Close() //nolint:errcheck

	url, err := s.uploader.Upload(ctx, studentID, file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to store photo")
	}

	status := student.Status
	if status == models.StatusPending {
		status = models.StatusPhotoUploaded
	}

	if err := s.students.UpdateFields(ctx, studentID, bson.M{
		"photoUrl": url,
		"status":   status,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record photo")
	}

	s.record(ctx, actor, studentID)

	return &dto.UploadPhotoResponse{
		StudentID: studentID,
		PhotoURL:  url,
		Status:    string(status),
	}, nil
}

func (s *PhotoService) record(ctx context.Context, actor *models.JWTClaims, studentID string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     models.AuditActionPhotoUpload,
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
