package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/idcard"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/repository"
	"github.com/jucampus/registrar-api/pkg/config"
	"github.com/jucampus/registrar-api/pkg/drive"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/export"
)

type registrationStudentRepository interface {
	Insert(ctx context.Context, student *models.Student) error
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	UpdateFields(ctx context.Context, studentID string, fields bson.M) error
}

// RegistrationService handles public registration and admission slips.
type RegistrationService struct {
	students  registrationStudentRepository
	slips     *export.SlipExporter
	uploads   drive.Client
	rootID    string
	limits    config.UploadsConfig
	audit     auditWriter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService. uploads may be
// nil; inline documents and the admission slip then stay out of the remote
// drive.
func NewRegistrationService(
	students registrationStudentRepository,
	slips *export.SlipExporter,
	uploads drive.Client,
	rootID string,
	limits config.UploadsConfig,
	audit auditWriter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RegistrationService{
		students:  students,
		slips:     slips,
		uploads:   uploads,
		rootID:    rootID,
		limits:    limits,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Register creates a student record. Inline base64 documents, when present,
// are pushed to the drive; each upload failure is reported per field without
// rolling back the registration.
func (s *RegistrationService) Register(ctx context.Context, req dto.RegisterStudentRequest) (*dto.RegisterStudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	now := time.Now().UTC()
	student := req.ToStudent()
	student.StudentID = NewStudentID()
	student.ApplicationNumber = NewApplicationNumber(now)
	if student.JUApplication == "" {
		student.JUApplication = NewTempApplicationNumber()
	}
	student.Status = models.StatusPending
	student.Attendance = "absent"
	student.Verification = models.DefaultVerification()
	student.RegisteredAt = now
	student.UpdatedAt = now

	if err := s.students.Insert(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.duplicateError(ctx, req.Email)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}
	s.metrics.RecordRegistration()

	res := &dto.RegisterStudentResponse{
		StudentID:         student.StudentID,
		ApplicationNumber: student.ApplicationNumber,
		Status:            string(student.Status),
	}

	if len(req.Documents) > 0 {
		uploaded, failed := s.storeInlineDocuments(ctx, student, req.Documents)
		res.DocumentsUploaded = uploaded
		res.DocumentsFailed = failed
	}

	s.recordRegistration(ctx, student)
	return res, nil
}

// duplicateError distinguishes which unique index fired. Both the email and
// the student-id columns carry one; only the email case is the caller's
// fault in a way they can act on.
func (s *RegistrationService) duplicateError(ctx context.Context, email string) error {
	if existing, err := s.students.FindByEmail(ctx, email); err == nil && existing != nil {
		return appErrors.ErrDuplicateEmail
	}
	return appErrors.Clone(appErrors.ErrConflict, "a record with these details already exists, please retry")
}

// storeInlineDocuments decodes and uploads base64 payloads submitted with the
// registration form.
func (s *RegistrationService) storeInlineDocuments(ctx context.Context, student *models.Student, docs map[string]dto.InlineDocument) (map[string]string, map[string]string) {
	uploaded := make(map[string]string)
	failed := make(map[string]string)

	if s.uploads == nil {
		for field := range docs {
			failed[field] = "document storage is not configured"
		}
		return uploaded, failed
	}

	folder, err := s.uploads.EnsureFolder(ctx, s.rootID, s.folderName(student))
	if err != nil {
		s.logger.Warn("could not prepare drive folder",
			zap.String("student_id", student.StudentID), zap.Error(err))
		for field := range docs {
			failed[field] = "failed to prepare drive folder"
		}
		return uploaded, failed
	}

	documents := make(map[string]models.UploadedDocument)
	for field, doc := range docs {
		label, known := dto.DocumentFieldLabels[field]
		if !known {
			failed[field] = "unknown document field"
			continue
		}

		data, err := decodeInlineData(doc.Data)
		if err != nil {
			failed[field] = "file data is not valid base64"
			continue
		}
		if err := s.validateInline(doc.FileName, int64(len(data))); err != nil {
			failed[field] = appErrors.FromError(err).Message
			continue
		}

		ext := strings.ToLower(filepath.Ext(doc.FileName))
		driveName := label + ext
		file, err := s.uploads.Upsert(ctx, folder.ID, driveName, mimeForExt(ext), bytes.NewReader(data))
		if err != nil {
			s.logger.Warn("inline document upload failed",
				zap.String("student_id", student.StudentID), zap.String("field", field), zap.Error(err))
			failed[field] = fmt.Sprintf("failed to upload %s", label)
			continue
		}

		documents[field] = models.UploadedDocument{
			Label:        label,
			DriveID:      file.ID,
			WebLink:      file.WebLink,
			DownloadLink: file.DownloadLink,
			FileName:     driveName,
			OriginalName: doc.FileName,
			Size:         file.Size,
			UploadedAt:   time.Now().UTC(),
		}
		uploaded[field] = file.WebLink
		s.metrics.RecordDocumentUpload()
	}

	fields := bson.M{"driveFolderId": folder.ID}
	if len(documents) > 0 {
		fields["documents"] = documents
	}
	if err := s.students.UpdateFields(ctx, student.StudentID, fields); err != nil {
		s.logger.Warn("could not record inline uploads", zap.Error(err))
	}
	return uploaded, failed
}

func decodeInlineData(raw string) ([]byte, error) {
	// Tolerate data-URL prefixes like "data:application/pdf;base64,".
	if idx := strings.Index(raw, ","); idx >= 0 && strings.Contains(raw[:idx], "base64") {
		raw = raw[idx+1:]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
}

func (s *RegistrationService) validateInline(filename string, size int64) error {
	if s.limits.MaxFileSizeBytes > 0 && size > s.limits.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrFileTooLarge,
			fmt.Sprintf("%s exceeds the %d MB limit", filename, s.limits.MaxFileSizeBytes/(1024*1024)))
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range s.limits.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrUnsupportedFileType,
		fmt.Sprintf("%s has an unsupported extension", filename))
}

func (s *RegistrationService) folderName(student *models.Student) string {
	app := student.JUApplication
	if app == "" {
		app = student.ApplicationNumber
	}
	return fmt.Sprintf("JU_%s_%s", app, idcard.SanitizeName(student.Name))
}

// Status reports where a registration sits.
func (s *RegistrationService) Status(ctx context.Context, studentID string) (*dto.StatusResponse, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	return &dto.StatusResponse{
		StudentID:     student.StudentID,
		Name:          student.Name,
		Department:    student.Department,
		Status:        student.Status,
		PhoneVerified: student.PhoneVerified,
		Verification:  student.Verification,
		PhotoURL:      student.PhotoURL,
	}, nil
}

// Slip renders the admission slip PDF for a verified student.
func (s *RegistrationService) Slip(ctx context.Context, studentID string) ([]byte, string, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", appErrors.ErrStudentNotFound
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student.Status != models.StatusVerified {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "admission slip is available once all documents are verified")
	}

	pdf, err := s.renderSlip(student)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render slip")
	}
	return pdf, slipFileName(student.StudentID), nil
}

// PrintSlip publishes the admission slip to the student's drive folder and
// returns a shareable link. A slip generated earlier is returned as-is so
// repeated prints keep the same file.
func (s *RegistrationService) PrintSlip(ctx context.Context, studentID string) (*dto.PrintSlipResponse, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student.Status != models.StatusVerified {
		return nil, appErrors.Clone(appErrors.ErrValidation, "admission slip is available once all documents are verified")
	}

	if student.Slip != nil && student.Slip.DriveID != "" {
		return &dto.PrintSlipResponse{
			StudentID:   student.StudentID,
			DocumentURL: student.Slip.WebLink,
			FileID:      student.Slip.DriveID,
			GeneratedAt: student.Slip.GeneratedAt.Format(time.RFC3339),
			Action:      "open_existing",
		}, nil
	}

	if s.uploads == nil {
		return nil, appErrors.Clone(appErrors.ErrUploadFailed, "document storage is not configured")
	}

	pdf, err := s.renderSlip(student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render slip")
	}

	folder, err := s.uploads.EnsureFolder(ctx, s.rootID, s.folderName(student))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to prepare drive folder")
	}
	file, err := s.uploads.Upsert(ctx, folder.ID, slipFileName(student.StudentID), "application/pdf", bytes.NewReader(pdf))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to publish slip")
	}
	if err := s.uploads.AllowPublicRead(ctx, file.ID); err != nil {
		s.logger.Warn("could not share admission slip", zap.String("file_id", file.ID), zap.Error(err))
	}

	generatedAt := time.Now().UTC()
	slip := &models.AdmissionSlip{
		DriveID:     file.ID,
		WebLink:     file.WebLink,
		GeneratedAt: generatedAt,
	}
	if err := s.students.UpdateFields(ctx, student.StudentID, bson.M{
		"admissionSlip": slip,
		"driveFolderId": folder.ID,
	}); err != nil {
		s.logger.Warn("could not persist slip metadata", zap.Error(err))
	}

	return &dto.PrintSlipResponse{
		StudentID:   student.StudentID,
		DocumentURL: file.WebLink,
		FileID:      file.ID,
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Action:      "open_new",
	}, nil
}

func slipFileName(studentID string) string {
	return fmt.Sprintf("Admission_Slip_%s.pdf", studentID)
}

func (s *RegistrationService) renderSlip(student *models.Student) ([]byte, error) {
	collected := make(map[string]bool, len(student.Verification))
	for key, entry := range student.Verification {
		collected[key] = entry.Verified
	}
	return s.slips.Render(export.SlipData{
		StudentID:         student.StudentID,
		ApplicationNumber: student.ApplicationNumber,
		Name:              student.Name,
		FatherName:        student.Parents.FatherName,
		Department:        student.Department,
		Course:            student.Course,
		Program:           student.Program,
		Email:             student.Email,
		Mobile:            student.Mobile,
		RegistrationDate:  student.RegisteredAt,
		Collected:         collected,
	})
}

func (s *RegistrationService) recordRegistration(ctx context.Context, student *models.Student) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     models.AuditActionStudentRegister,
		Resource:   "student",
		ResourceID: student.StudentID,
		Detail:     student.Department,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}
