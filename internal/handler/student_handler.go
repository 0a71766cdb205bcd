package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/response"
)

// StudentHandler exposes admin-facing student endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

func studentFilterFromQuery(c *gin.Context) models.StudentFilter {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Department = c.Query("department")
	filter.Status = models.StudentStatus(c.Query("status"))
	if raw := c.Query("has_photo"); raw != "" {
		if hasPhoto, err := strconv.ParseBool(raw); err == nil {
			filter.HasPhoto = &hasPhoto
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, email or ID"
// @Param department query string false "Filter by department"
// @Param status query string false "Filter by status"
// @Param has_photo query bool false "Only students with (or without) a photo"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.students.List(c.Request.Context(), claimsFromContext(c), studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// PendingVerification godoc
// @Summary List students awaiting document verification
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students/pending [get]
func (h *StudentHandler) PendingVerification(c *gin.Context) {
	students, pagination, err := h.students.PendingVerification(c.Request.Context(), claimsFromContext(c), studentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{student_id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), claimsFromContext(c), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// MarkAttendance godoc
// @Summary Mark student attendance
// @Tags Students
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param payload body dto.AttendanceRequest true "Attendance payload"
// @Success 204
// @Router /admin/students/{student_id}/attendance [post]
func (h *StudentHandler) MarkAttendance(c *gin.Context) {
	var req dto.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.students.MarkAttendance(c.Request.Context(), claimsFromContext(c), c.Param("student_id"), req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Departments godoc
// @Summary List known departments
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/departments [get]
func (h *StudentHandler) Departments(c *gin.Context) {
	departments, err := h.students.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// DepartmentStats godoc
// @Summary Registration counts per department
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/departments/stats [get]
func (h *StudentHandler) DepartmentStats(c *gin.Context) {
	stats, err := h.students.DepartmentStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export students as CSV or PDF
// @Tags Students
// @Param format query string false "csv or pdf"
// @Produce text/csv
// @Success 200 {file} binary
// @Router /admin/students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	var (
		content     []byte
		filename    string
		err         error
		contentType = "text/csv"
	)
	if c.Query("format") == "pdf" {
		content, filename, err = h.students.ExportPDF(c.Request.Context(), claimsFromContext(c))
		contentType = "application/pdf"
	} else {
		content, filename, err = h.students.ExportCSV(c.Request.Context(), claimsFromContext(c))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}
