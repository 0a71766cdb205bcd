package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/repository"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

type mockAdminStore struct {
	admins    []models.Admin
	insertErr error
	deleted   []string
	updated   map[string]bson.M
}

func (m *mockAdminStore) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	for i := range m.admins {
		if m.admins[i].ID.Hex() == id {
			return &m.admins[i], nil
		}
	}
	return nil, nil
}

func (m *mockAdminStore) Insert(ctx context.Context, admin *models.Admin) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	admin.ID = primitive.NewObjectID()
	m.admins = append(m.admins, *admin)
	return nil
}

func (m *mockAdminStore) List(ctx context.Context) ([]models.Admin, error) {
	return m.admins, nil
}

func (m *mockAdminStore) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	if m.updated == nil {
		m.updated = map[string]bson.M{}
	}
	m.updated[id] = fields
	return nil
}

func (m *mockAdminStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func seedAdmins() []models.Admin {
	return []models.Admin{
		{ID: primitive.NewObjectID(), Email: "root@college.edu", Role: models.RoleSuperAdmin, Active: true},
		{ID: primitive.NewObjectID(), Email: "cs@college.edu", Role: models.RoleDepartmentAdmin, Department: "computer science", Active: true},
		{ID: primitive.NewObjectID(), Email: "mech@college.edu", Role: models.RoleDepartmentAdmin, Department: "mechanical", Active: false},
		{ID: primitive.NewObjectID(), Email: "photo@college.edu", Role: models.RolePhotoAdmin, Active: true},
	}
}

func TestAdminStatsAggregatesByRole(t *testing.T) {
	store := &mockAdminStore{admins: seedAdmins()}
	svc := NewAdminService(store, nil, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Active)
	assert.Equal(t, 1, stats.ByRole[string(models.RoleSuperAdmin)])
	assert.Equal(t, 2, stats.ByRole[string(models.RoleDepartmentAdmin)])
	assert.Equal(t, 1, stats.ByRole[string(models.RolePhotoAdmin)])
}

func TestAdminCreateDuplicateEmail(t *testing.T) {
	store := &mockAdminStore{insertErr: repository.ErrDuplicateKey}
	svc := NewAdminService(store, nil, nil, nil)

	_, err := svc.Create(context.Background(), superClaims(), dto.CreateAdminRequest{
		Email:    "root@college.edu",
		Password: "secret-pass",
		FullName: "Second Root",
		Role:     models.RoleSuperAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAdminCreateDepartmentAdminNeedsDepartment(t *testing.T) {
	store := &mockAdminStore{}
	svc := NewAdminService(store, nil, nil, nil)

	_, err := svc.Create(context.Background(), superClaims(), dto.CreateAdminRequest{
		Email:    "cs@college.edu",
		Password: "secret-pass",
		FullName: "CS Admin",
		Role:     models.RoleDepartmentAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.admins)
}
