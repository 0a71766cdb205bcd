package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jucampus/registrar-api/internal/service"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/jobs"
	"github.com/jucampus/registrar-api/pkg/response"
)

// CardHandler exposes ID card generation and download endpoints.
type CardHandler struct {
	cards    *service.CardService
	students *service.StudentService
	queue    *jobs.Queue
}

// NewCardHandler constructs CardHandler. queue may be nil; bulk
// generation is then unavailable.
func NewCardHandler(cards *service.CardService, students *service.StudentService, queue *jobs.Queue) *CardHandler {
	return &CardHandler{cards: cards, students: students, queue: queue}
}

// Generate godoc
// @Summary Generate an ID card
// @Description Renders the card from the template and publishes it to the drive
// @Tags Cards
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{student_id}/card [post]
func (h *CardHandler) Generate(c *gin.Context) {
	card, err := h.cards.Generate(c.Request.Context(), claimsFromContext(c), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card, nil)
}

// BulkGenerate godoc
// @Summary Queue card generation for many students
// @Description Enqueues a card job per student, optionally scoped to a department
// @Tags Cards
// @Accept json
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /admin/students/cards/bulk [post]
func (h *CardHandler) BulkGenerate(c *gin.Context) {
	if h.queue == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "card generation is not configured"))
		return
	}

	var payload struct {
		Department string `json:"department"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	ids, err := h.students.IDs(c.Request.Context(), claimsFromContext(c), payload.Department)
	if err != nil {
		response.Error(c, err)
		return
	}

	queued := 0
	for _, id := range ids {
		job := jobs.Job{ID: uuid.NewString(), Type: "id_card", Payload: id}
		if err := h.queue.Enqueue(job); err != nil {
			break
		}
		queued++
	}

	response.JSON(c, http.StatusAccepted, gin.H{"queued": queued, "total": len(ids)}, nil)
}

// Download godoc
// @Summary Download a generated card
// @Tags Cards
// @Produce application/octet-stream
// @Param student_id path string true "Student ID"
// @Param format query string false "pptx or pdf"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{student_id}/card [get]
func (h *CardHandler) Download(c *gin.Context) {
	preferPDF := c.DefaultQuery("format", "pdf") == "pdf"
	content, filename, err := h.cards.Download(c.Request.Context(), c.Param("student_id"), preferPDF)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeCard(c, content, filename)
}

// SignedLink godoc
// @Summary Issue a shareable download link
// @Description Returns a time-limited URL usable without credentials
// @Tags Cards
// @Produce json
// @Param student_id path string true "Student ID"
// @Param format query string false "pptx or pdf"
// @Success 200 {object} response.Envelope
// @Router /admin/students/{student_id}/card/link [get]
func (h *CardHandler) SignedLink(c *gin.Context) {
	preferPDF := c.DefaultQuery("format", "pdf") == "pdf"
	link, expiresAt, err := h.cards.SignedURL(c.Request.Context(), claimsFromContext(c), c.Param("student_id"), preferPDF)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": link, "expires_at": expiresAt}, nil)
}

// PublicDownload godoc
// @Summary Download a card via signed token
// @Tags Cards
// @Produce application/octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /cards/download [get]
func (h *CardHandler) PublicDownload(c *gin.Context) {
	content, filename, err := h.cards.DownloadByToken(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeCard(c, content, filename)
}

func writeCard(c *gin.Context, content []byte, filename string) {
	contentType := "application/pdf"
	if strings.HasSuffix(filename, ".pptx") {
		contentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}
