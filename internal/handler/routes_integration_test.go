package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jucampus/registrar-api/internal/middleware"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/repository"
	"github.com/jucampus/registrar-api/internal/service"
	"github.com/jucampus/registrar-api/pkg/config"
	"github.com/jucampus/registrar-api/pkg/export"
)

type fakeStudentStore struct {
	students []models.Student
}

func (f *fakeStudentStore) Insert(ctx context.Context, student *models.Student) error {
	f.students = append(f.students, *student)
	return nil
}

func (f *fakeStudentStore) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	for i := range f.students {
		if f.students[i].StudentID == studentID {
			return &f.students[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStudentStore) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	for i := range f.students {
		if f.students[i].Email == email {
			return &f.students[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeStudentStore) UpdateFields(ctx context.Context, studentID string, fields bson.M) error {
	return nil
}

func (f *fakeStudentStore) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, st := range f.students {
		if filter.Department != "" &&
			models.NormalizeDepartment(st.Department) != models.NormalizeDepartment(filter.Department) {
			continue
		}
		if filter.HasPhoto != nil && *filter.HasPhoto != (st.PhotoURL != "") {
			continue
		}
		out = append(out, st)
	}
	return out, len(out), nil
}

func (f *fakeStudentStore) ListAll(ctx context.Context, department string) ([]models.Student, error) {
	list, _, err := f.List(ctx, models.StudentFilter{Department: department})
	return list, err
}

func (f *fakeStudentStore) DepartmentStats(ctx context.Context) ([]repository.DepartmentCount, error) {
	return nil, nil
}

func (f *fakeStudentStore) Departments(ctx context.Context) ([]string, error) {
	return nil, nil
}

func buildTestRouter(store *fakeStudentStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	registrationSvc := service.NewRegistrationService(store, export.NewSlipExporter("Test College"), nil, "", config.UploadsConfig{}, nil, nil, nil, nil)
	studentSvc := service.NewStudentService(store, export.NewCSVExporter(), nil, nil)

	registrationHandler := NewRegistrationHandler(registrationSvc)
	studentHandler := NewStudentHandler(studentSvc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		if role == "" {
			c.Next()
			return
		}
		c.Set(middleware.ContextAdminKey, &models.JWTClaims{
			AdminID:    "test-admin",
			Email:      "admin@test.edu",
			Role:       models.AdminRole(role),
			Department: c.GetHeader("X-Test-Department"),
		})
		c.Next()
	})

	router.POST("/students/register", registrationHandler.Register)
	router.GET("/students/:student_id/status", registrationHandler.Status)
	router.GET("/students/:student_id/slip", registrationHandler.Slip)

	staff := router.Group("/admin", middleware.RBAC(models.RoleDepartmentAdmin, models.RolePhotoAdmin))
	staff.GET("/students", studentHandler.List)

	verifiers := router.Group("/admin", middleware.RBAC(models.RoleDepartmentAdmin))
	verifiers.POST("/students/:student_id/attendance", studentHandler.MarkAttendance)

	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestPublicRegistrationRoutes(t *testing.T) {
	store := &fakeStudentStore{}
	router := buildTestRouter(store)

	t.Run("register success", func(t *testing.T) {
		body := `{"name":"Anita Rao","email":"anita@example.com","mobile":"9876543210","department":"Computer Science"}`
		req, _ := http.NewRequest(http.MethodPost, "/students/register", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"student_id"`)
		require.Len(t, store.students, 1)
	})

	t.Run("register invalid payload", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/students/register", bytes.NewBufferString(`{"name":"X"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("status for registered student", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/students/"+store.students[0].StudentID+"/status", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"pending"`)
	})

	t.Run("status unknown student", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/students/STU00000000/status", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("slip refused before verification", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/students/"+store.students[0].StudentID+"/slip", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("slip renders pdf once verified", func(t *testing.T) {
		store.students[0].Status = models.StatusVerified
		req, _ := http.NewRequest(http.MethodGet, "/students/"+store.students[0].StudentID+"/slip", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")))
	})
}

func TestAdminRouteAccess(t *testing.T) {
	store := &fakeStudentStore{students: []models.Student{
		{StudentID: "STU11111111", Name: "Anita Rao", Department: "Computer Science", Status: models.StatusPending},
		{StudentID: "STU22222222", Name: "Meera Nair", Department: "Mechanical", Status: models.StatusPending, PhotoURL: "https://photos.example/m.jpg"},
	}}
	router := buildTestRouter(store)

	t.Run("list unauthorized without claims", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/students", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("list scoped to department admin", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/students", nil)
		req.Header.Set("X-Test-Role", string(models.RoleDepartmentAdmin))
		req.Header.Set("X-Test-Department", "Mechanical")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "Meera Nair")
		require.NotContains(t, resp.Body.String(), "Anita Rao")
	})

	t.Run("super admin sees everything", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/students", nil)
		req.Header.Set("X-Test-Role", string(models.RoleSuperAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "Anita Rao")
		require.Contains(t, resp.Body.String(), "Meera Nair")
	})

	t.Run("filter by photo presence", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/students?has_photo=true", nil)
		req.Header.Set("X-Test-Role", string(models.RoleSuperAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "Meera Nair")
		require.NotContains(t, resp.Body.String(), "Anita Rao")
	})

	t.Run("photo admin cannot mark attendance", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/students/STU11111111/attendance", bytes.NewBufferString(`{"status":"present"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RolePhotoAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("department admin marks attendance", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/admin/students/STU11111111/attendance", bytes.NewBufferString(`{"status":"present"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleDepartmentAdmin))
		req.Header.Set("X-Test-Department", "Computer Science")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNoContent, resp.Code)
	})
}
