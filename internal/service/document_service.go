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
	"github.com/jucampus/registrar-api/internal/idcard"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/pkg/config"
	"github.com/jucampus/registrar-api/pkg/drive"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

// cardIssuer kicks off ID card generation once verification completes.
type cardIssuer interface {
	Generate(ctx context.Context, actor *models.JWTClaims, studentID string) (*models.GeneratedCard, error)
}

// DocumentService pushes uploaded documents into the student's drive
// folder and manages the verification checklist.
type DocumentService struct {
	students studentRepository
	uploads  drive.Client
	rootID   string
	limits   config.UploadsConfig
	cards    cardIssuer
	audit    auditWriter
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewDocumentService constructs a DocumentService. cards may be nil; ticking
// the final checkbox then skips card generation.
func NewDocumentService(students studentRepository, uploads drive.Client, rootID string, limits config.UploadsConfig, cards cardIssuer, audit auditWriter, metrics *MetricsService, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		students: students,
		uploads:  uploads,
		rootID:   rootID,
		limits:   limits,
		cards:    cards,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *DocumentService) allowedExt(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, allowed := range s.limits.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// ValidateFile enforces the upload size and extension limits.
func (s *DocumentService) ValidateFile(header *multipart.FileHeader) error {
	if s.limits.MaxFileSizeBytes > 0 && header.Size > s.limits.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrFileTooLarge,
			fmt.Sprintf("%s exceeds the %d MB limit", header.Filename, s.limits.MaxFileSizeBytes/(1024*1024)))
	}
	if !s.allowedExt(filepath.Ext(header.Filename)) {
		return appErrors.Clone(appErrors.ErrUnsupportedFileType,
			fmt.Sprintf("%s has an unsupported extension", header.Filename))
	}
	return nil
}

// Upload stores every recognised form file in the student's drive folder.
// Unknown field names are reported back as skipped rather than failing the
// whole batch.
func (s *DocumentService) Upload(ctx context.Context, studentID string, form *multipart.Form) (*dto.UploadDocumentsResponse, error) {
	if s.uploads == nil {
		return nil, appErrors.Clone(appErrors.ErrUploadFailed, "document storage is not configured")
	}

	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	app := student.JUApplication
	if app == "" {
		app = student.ApplicationNumber
	}
	folderName := fmt.Sprintf("JU_%s_%s", app, idcard.SanitizeName(student.Name))
	folder, err := s.uploads.EnsureFolder(ctx, s.rootID, folderName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to prepare drive folder")
	}

	res := &dto.UploadDocumentsResponse{
		StudentID: studentID,
		FolderID:  folder.ID,
		Uploaded:  make(map[string]string),
	}

	documents := student.Documents
	if documents == nil {
		documents = make(map[string]models.UploadedDocument)
	}

	for field, headers := range form.File {
		label, known := dto.DocumentFieldLabels[field]
		if !known || len(headers) == 0 {
			res.Skipped = append(res.Skipped, field)
			continue
		}
		header := headers[0]

		// One bad file must not sink its siblings; record and move on.
		if err := s.ValidateFile(header); err != nil {
			res.Failed = appendFailure(res.Failed, field, err)
			continue
		}

		file, err := header.Open()
		if err != nil {
			res.Failed = appendFailure(res.Failed, field, fmt.Errorf("failed to read %s", header.Filename))
			continue
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		driveName := label + ext
		uploaded, err := s.uploads.Upsert(ctx, folder.ID, driveName, mimeForExt(ext), file)
		file.Close() //nolint:errcheck
		if err != nil {
			s.logger.Warn("document upload failed",
				zap.String("student_id", studentID), zap.String("field", field), zap.Error(err))
			res.Failed = appendFailure(res.Failed, field, fmt.Errorf("failed to upload %s", label))
			continue
		}

		documents[field] = models.UploadedDocument{
			Label:        label,
			DriveID:      uploaded.ID,
			WebLink:      uploaded.WebLink,
			DownloadLink: uploaded.DownloadLink,
			FileName:     driveName,
			OriginalName: header.Filename,
			Size:         uploaded.Size,
			UploadedAt:   time.Now().UTC(),
		}
		res.Uploaded[field] = uploaded.WebLink
		s.metrics.RecordDocumentUpload()
	}

	if err := s.students.UpdateFields(ctx, studentID, bson.M{
		"documents":     documents,
		"driveFolderId": folder.ID,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record uploads")
	}

	return res, nil
}

func appendFailure(failed map[string]string, field string, err error) map[string]string {
	if failed == nil {
		failed = make(map[string]string)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		failed[field] = appErr.Message
	} else {
		failed[field] = err.Error()
	}
	return failed
}

// List returns the uploaded documents and verification state for a student.
func (s *DocumentService) List(ctx context.Context, studentID string) (*dto.DocumentsResponse, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	return &dto.DocumentsResponse{
		StudentID:    student.StudentID,
		Documents:    student.Documents,
		Verification: student.Verification,
		Status:       string(student.Status),
	}, nil
}

// DriveStatus reports whether the remote drive is reachable by listing the
// configured root folder.
func (s *DocumentService) DriveStatus(ctx context.Context) error {
	if s.uploads == nil {
		return appErrors.Clone(appErrors.ErrUploadFailed, "drive is not configured")
	}
	if _, err := s.uploads.List(ctx, s.rootID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "drive is unreachable")
	}
	return nil
}

// Folder lists the files sitting in a student's drive folder.
func (s *DocumentService) Folder(ctx context.Context, studentID string) ([]*drive.File, error) {
	if s.uploads == nil {
		return nil, appErrors.Clone(appErrors.ErrUploadFailed, "drive is not configured")
	}

	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	if student.DriveFolderID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no drive folder for this student yet")
	}

	files, err := s.uploads.List(ctx, student.DriveFolderID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to list drive folder")
	}
	return files, nil
}

// Verify toggles verification checks. Unknown check names are rejected.
// When every required check passes the record moves to verified.
func (s *DocumentService) Verify(ctx context.Context, actor *models.JWTClaims, studentID string, req dto.VerifyDocumentsRequest) (*dto.VerifyDocumentsResponse, error) {
	if len(req.Checks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no checks supplied")
	}

	known := make(map[string]struct{}, len(models.RequiredVerificationKeys))
	for _, key := range models.RequiredVerificationKeys {
		known[key] = struct{}{}
	}
	for key := range req.Checks {
		if _, ok := known[key]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown check %q", key))
		}
	}

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

	verification := student.Verification
	if verification == nil {
		verification = models.DefaultVerification()
	}
	now := time.Now().UTC()
	verifier := ""
	if actor != nil {
		verifier = actor.Email
		if verifier == "" {
			verifier = actor.AdminID
		}
	}
	for key, checked := range req.Checks {
		if checked {
			stamp := now
			verification[key] = models.VerificationEntry{Verified: true, VerifiedAt: &stamp, VerifiedBy: verifier}
		} else {
			verification[key] = models.VerificationEntry{}
		}
	}

	status := student.Status
	allDone := true
	for _, key := range models.RequiredVerificationKeys {
		if !verification[key].Verified {
			allDone = false
			break
		}
	}
	if allDone {
		status = models.StatusVerified
	} else if status == models.StatusVerified {
		// Unchecking a box drops the record back a step.
		status = models.StatusPhotoUploaded
		if student.PhotoURL == "" {
			status = models.StatusPending
		}
	}

	if err := s.students.UpdateFields(ctx, studentID, bson.M{
		"verification": verification,
		"status":       status,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save verification")
	}

	s.recordVerify(ctx, actor, studentID)

	res := &dto.VerifyDocumentsResponse{
		StudentID:     studentID,
		Verification:  verification,
		FullyVerified: allDone,
		Status:        string(status),
	}
	if allDone {
		res.IDCardGeneration = s.issueCard(ctx, actor, studentID)
	}
	return res, nil
}

// issueCard runs card generation after the final checkbox is ticked. A
// generation failure never rolls back the verification itself.
func (s *DocumentService) issueCard(ctx context.Context, actor *models.JWTClaims, studentID string) *dto.CardGenerationResult {
	if s.cards == nil {
		return &dto.CardGenerationResult{Attempted: false, Reason: "card generation is not configured"}
	}
	card, err := s.cards.Generate(ctx, actor, studentID)
	if err != nil {
		s.logger.Warn("card generation after verification failed",
			zap.String("student_id", studentID), zap.Error(err))
		return &dto.CardGenerationResult{
			Attempted: true,
			Error:     appErrors.FromError(err).Message,
		}
	}
	res := &dto.CardGenerationResult{
		Attempted: true,
		Success:   true,
		Message:   "ID card generated",
	}
	if card != nil && card.PDFLink != "" {
		res.Message = "ID card generated and published"
	}
	return res
}

func (s *DocumentService) recordVerify(ctx context.Context, actor *models.JWTClaims, studentID string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     models.AuditActionDocumentVerify,
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

func mimeForExt(ext string) string {
	switch strings.TrimPrefix(ext, ".") {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
