package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/jucampus/registrar-api/internal/models"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

type mockAdminRepo struct {
	adminByEmail     *models.Admin
	adminByID        *models.Admin
	findByEmailErr   error
	findByIDErr      error
	inserted         []*models.Admin
	updatedFields    bson.M
	count            int64
	countErr         error
	lastLoginUpdated bool
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.adminByEmail, nil
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.adminByID != nil {
		return m.adminByID, nil
	}
	return m.adminByEmail, nil
}

func (m *mockAdminRepo) Insert(ctx context.Context, admin *models.Admin) error {
	m.inserted = append(m.inserted, admin)
	return nil
}

func (m *mockAdminRepo) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	m.updatedFields = fields
	return nil
}

func (m *mockAdminRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAdminRepo) Count(ctx context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

type mockAudit struct {
	entries []*models.AuditLog
}

func (m *mockAudit) Insert(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func testAdmin(t *testing.T, password string, role models.AdminRole) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Admin{
		ID:           primitive.NewObjectID(),
		Email:        "admin@college.edu",
		PasswordHash: string(hash),
		FullName:     "Registrar Admin",
		Role:         role,
		Department:   "computer science",
		Active:       true,
	}
}

func newTestAuthService(repo *mockAdminRepo, audit *mockAudit) *AuthService {
	// Avoid wrapping a typed-nil *mockAudit in the auditWriter interface,
	// which would defeat the service's nil check.
	var aw auditWriter
	if audit != nil {
		aw = audit
	}
	return NewAuthService(repo, aw, nil, nil, AuthConfig{
		Secret:         "test-secret",
		Expiry:         time.Hour,
		RememberExpiry: 30 * 24 * time.Hour,
		Issuer:         "registrar-api",
	})
}

func TestAuthLoginSuccess(t *testing.T) {
	repo := &mockAdminRepo{adminByEmail: testAdmin(t, "password123", models.RoleSuperAdmin)}
	audit := &mockAudit{}
	svc := newTestAuthService(repo, audit)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@college.edu", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, models.RoleSuperAdmin, res.Admin.Role)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.adminByEmail.ID.Hex(), claims.AdminID)
	assert.Equal(t, "computer science", claims.Department)
}

func TestAuthLoginRememberMeStretchesExpiry(t *testing.T) {
	repo := &mockAdminRepo{adminByEmail: testAdmin(t, "password123", models.RoleDepartmentAdmin)}
	svc := newTestAuthService(repo, nil)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:      "admin@college.edu",
		Password:   "password123",
		RememberMe: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64((30 * 24 * time.Hour).Seconds()), res.ExpiresIn)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := &mockAdminRepo{adminByEmail: testAdmin(t, "password123", models.RoleSuperAdmin)}
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@college.edu", Password: "nope12345"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	repo := &mockAdminRepo{findByEmailErr: mongo.ErrNoDocuments}
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@college.edu", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	admin := testAdmin(t, "password123", models.RoleSuperAdmin)
	admin.Active = false
	svc := newTestAuthService(&mockAdminRepo{adminByEmail: admin}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@college.edu", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthChangePasswordRejectsWrongOld(t *testing.T) {
	admin := testAdmin(t, "password123", models.RoleSuperAdmin)
	repo := &mockAdminRepo{adminByID: admin}
	svc := newTestAuthService(repo, nil)

	err := svc.ChangePassword(context.Background(), admin.ID.Hex(), models.ChangePasswordRequest{
		OldPassword: "wrongwrong",
		NewPassword: "freshpassword",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updatedFields)
}

func TestAuthChangePasswordStoresNewHash(t *testing.T) {
	admin := testAdmin(t, "password123", models.RoleSuperAdmin)
	repo := &mockAdminRepo{adminByID: admin}
	audit := &mockAudit{}
	svc := newTestAuthService(repo, audit)

	err := svc.ChangePassword(context.Background(), admin.ID.Hex(), models.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "freshpassword",
	})
	require.NoError(t, err)
	hash, ok := repo.updatedFields["passwordHash"].(string)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("freshpassword")))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionPasswordChange, audit.entries[0].Action)
}

func TestBootstrapSuperAdminSeedsOnce(t *testing.T) {
	repo := &mockAdminRepo{count: 0}
	svc := newTestAuthService(repo, nil)

	created, err := svc.BootstrapSuperAdmin(context.Background(), "root@college.edu", "rootpassword")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, models.RoleSuperAdmin, repo.inserted[0].Role)

	repo.count = 1
	created, err = svc.BootstrapSuperAdmin(context.Background(), "root@college.edu", "rootpassword")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.inserted, 1)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	repo := &mockAdminRepo{adminByEmail: testAdmin(t, "password123", models.RoleSuperAdmin)}
	svc := newTestAuthService(repo, nil)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@college.edu", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	require.Error(t, err)

	other := NewAuthService(repo, nil, nil, nil, AuthConfig{Secret: "different", Expiry: time.Hour})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
}
