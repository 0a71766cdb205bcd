package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/repository"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

type adminRepository interface {
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Insert(ctx context.Context, admin *models.Admin) error
	List(ctx context.Context) ([]models.Admin, error)
	UpdateFields(ctx context.Context, id string, fields bson.M) error
	Delete(ctx context.Context, id string) error
}

// AdminService manages back-office accounts. Access control lives in the
// route middleware; every operation here assumes a super admin caller.
type AdminService struct {
	repo      adminRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Create provisions a new admin account.
func (s *AdminService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if req.Role == models.RoleDepartmentAdmin && req.Department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department admins need a department")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	now := time.Now().UTC()
	admin := &models.Admin{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Department:   req.Department,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an admin with this email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.recordAction(ctx, actor, models.AuditActionAdminCreate, admin.ID.Hex(), admin.Email)
	return admin, nil
}

// List returns every admin account.
func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// Stats summarises the admin roster by role and activity.
func (s *AdminService) Stats(ctx context.Context) (*dto.AdminStats, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}

	stats := &dto.AdminStats{Total: len(admins), ByRole: map[string]int{}}
	for _, admin := range admins {
		stats.ByRole[string(admin.Role)]++
		if admin.Active {
			stats.Active++
		}
	}
	return stats, nil
}

// Update patches mutable fields on an admin account.
func (s *AdminService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	fields := bson.M{}
	if req.FullName != nil {
		fields["fullName"] = *req.FullName
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		fields["role"] = *req.Role
	}
	if req.Department != nil {
		fields["department"] = *req.Department
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		fields["passwordHash"] = string(hash)
	}
	if len(fields) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update admin")
	}

	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	s.recordAction(ctx, actor, models.AuditActionAdminUpdate, id, admin.Email)
	return admin, nil
}

// Delete removes an admin account. Self-deletion is rejected so the last
// super admin cannot lock everyone out.
func (s *AdminService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if actor != nil && actor.AdminID == id {
		return appErrors.Clone(appErrors.ErrValidation, "cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete admin")
	}

	s.recordAction(ctx, actor, models.AuditActionAdminDelete, id, "")
	return nil
}

func (s *AdminService) recordAction(ctx context.Context, actor *models.JWTClaims, action, resourceID, detail string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "admin",
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
