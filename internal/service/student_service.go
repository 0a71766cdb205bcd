package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/repository"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/export"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context, department string) ([]models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	UpdateFields(ctx context.Context, studentID string, fields bson.M) error
	DepartmentStats(ctx context.Context) ([]repository.DepartmentCount, error)
	Departments(ctx context.Context) ([]string, error)
}

// StudentService serves the admin-facing views over registrations.
type StudentService struct {
	repo   studentRepository
	csv    *export.CSVExporter
	audit  auditWriter
	logger *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, csv *export.CSVExporter, audit auditWriter, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, csv: csv, audit: audit, logger: logger}
}

// scopeFilter confines department admins to their own department.
func scopeFilter(actor *models.JWTClaims, filter models.StudentFilter) (models.StudentFilter, error) {
	if actor == nil {
		return filter, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleDepartmentAdmin {
		if filter.Department != "" &&
			models.NormalizeDepartment(filter.Department) != models.NormalizeDepartment(actor.Department) {
			return filter, appErrors.Clone(appErrors.ErrForbidden, "records outside your department")
		}
		filter.Department = actor.Department
	}
	return filter, nil
}

// List returns students visible to the actor.
func (s *StudentService) List(ctx context.Context, actor *models.JWTClaims, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	filter, err := scopeFilter(actor, filter)
	if err != nil {
		return nil, nil, err
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return students, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// PendingVerification lists records still waiting on document checks,
// which covers both pending and photo_uploaded statuses.
func (s *StudentService) PendingVerification(ctx context.Context, actor *models.JWTClaims, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	filter.Status = ""
	filter.ExcludeVerified = true
	return s.List(ctx, actor, filter)
}

// Get returns one student, enforcing department scoping.
func (s *StudentService) Get(ctx context.Context, actor *models.JWTClaims, studentID string) (*models.Student, error) {
	student, err := s.repo.FindByStudentID(ctx, studentID)
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
	return student, nil
}

// MarkAttendance flips a student's attendance flag.
func (s *StudentService) MarkAttendance(ctx context.Context, actor *models.JWTClaims, studentID, status string) error {
	if status != "present" && status != "absent" {
		return appErrors.Clone(appErrors.ErrValidation, "attendance must be present or absent")
	}

	if _, err := s.Get(ctx, actor, studentID); err != nil {
		return err
	}

	if err := s.repo.UpdateFields(ctx, studentID, bson.M{"attendance": status}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}

	s.record(ctx, actor, models.AuditActionAttendanceMark, studentID, status)
	return nil
}

// IDs returns the ids of every student visible to the actor, optionally
// confined to one department.
func (s *StudentService) IDs(ctx context.Context, actor *models.JWTClaims, department string) ([]string, error) {
	filter, err := scopeFilter(actor, models.StudentFilter{Department: department})
	if err != nil {
		return nil, err
	}

	students, err := s.repo.ListAll(ctx, filter.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	ids := make([]string, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.StudentID)
	}
	return ids, nil
}

// Departments lists the distinct departments present in the data.
func (s *StudentService) Departments(ctx context.Context) ([]string, error) {
	departments, err := s.repo.Departments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// DepartmentStats aggregates registration counts per department.
func (s *StudentService) DepartmentStats(ctx context.Context) ([]dto.DepartmentStat, error) {
	rows, err := s.repo.DepartmentStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate departments")
	}

	stats := make([]dto.DepartmentStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, dto.DepartmentStat{
			Department: row.Department,
			Total:      row.Total,
			Pending:    row.Pending,
			Verified:   row.Verified,
		})
	}
	return stats, nil
}

// ExportCSV renders the roster visible to the actor as CSV bytes.
func (s *StudentService) ExportCSV(ctx context.Context, actor *models.JWTClaims) ([]byte, string, error) {
	dataset, err := s.rosterDataset(ctx, actor)
	if err != nil {
		return nil, "", err
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}

	filename := fmt.Sprintf("students_%s.csv", time.Now().UTC().Format("20060102_150405"))
	return payload, filename, nil
}

// ExportPDF renders the roster visible to the actor as a tabular PDF.
func (s *StudentService) ExportPDF(ctx context.Context, actor *models.JWTClaims) ([]byte, string, error) {
	dataset, err := s.rosterDataset(ctx, actor)
	if err != nil {
		return nil, "", err
	}

	payload, err := export.NewPDFExporter().Render(dataset, "Student Roster")
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}

	filename := fmt.Sprintf("students_%s.pdf", time.Now().UTC().Format("20060102_150405"))
	return payload, filename, nil
}

func (s *StudentService) rosterDataset(ctx context.Context, actor *models.JWTClaims) (export.Dataset, error) {
	filter, err := scopeFilter(actor, models.StudentFilter{})
	if err != nil {
		return export.Dataset{}, err
	}

	students, err := s.repo.ListAll(ctx, filter.Department)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export students")
	}

	dataset := export.Dataset{
		Headers: []string{"Student ID", "Application Number", "Name", "Email", "Mobile", "Department", "Course", "Status", "Phone Verified", "Attendance", "Registered At"},
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID":         st.StudentID,
			"Application Number": st.ApplicationNumber,
			"Name":               st.Name,
			"Email":              st.Email,
			"Mobile":             st.Mobile,
			"Department":         st.Department,
			"Course":             st.Course,
			"Status":             string(st.Status),
			"Phone Verified":     fmt.Sprintf("%t", st.PhoneVerified),
			"Attendance":         st.Attendance,
			"Registered At":      st.RegisteredAt.Format(time.RFC3339),
		})
	}
	return dataset, nil
}

func (s *StudentService) record(ctx context.Context, actor *models.JWTClaims, action, resourceID, detail string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "student",
		ResourceID: resourceID,
		Detail:     detail,
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
