package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jucampus/registrar-api/internal/models"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
	"github.com/jucampus/registrar-api/pkg/storage"
)

type stubGenerator struct {
	card *models.GeneratedCard
	err  error
}

func (g *stubGenerator) Generate(ctx context.Context, student *models.Student) (*models.GeneratedCard, error) {
	return g.card, g.err
}

func TestCardGenerateWithoutTemplate(t *testing.T) {
	svc := NewCardService(&mockStudentRepo{students: seedStudents()}, nil, nil, nil, nil, nil)

	_, err := svc.Generate(context.Background(), superClaims(), "STU11111111")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTemplateMissing.Code, appErrors.FromError(err).Code)
}

func TestCardGeneratePersistsArtifacts(t *testing.T) {
	repo := &mockStudentRepo{students: seedStudents()}
	card := &models.GeneratedCard{PDFDriveID: "drv1", LocalPDF: "/tmp/out.pdf", GeneratedAt: time.Now()}
	svc := NewCardService(repo, &stubGenerator{card: card}, nil, nil, nil, nil)

	got, err := svc.Generate(context.Background(), superClaims(), "STU11111111")
	require.NoError(t, err)
	assert.Equal(t, card, got)
	require.Contains(t, repo.updates, "STU11111111")
	assert.Equal(t, card, repo.updates["STU11111111"]["idCard"])
}

func TestCardGenerateCountsOutcomes(t *testing.T) {
	metrics := NewMetricsService()
	repo := &mockStudentRepo{students: seedStudents()}
	svc := NewCardService(repo, &stubGenerator{card: &models.GeneratedCard{}}, nil, nil, metrics, nil)

	_, err := svc.Generate(context.Background(), superClaims(), "STU11111111")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), metrics.Snapshot().CardsGeneratedTotal)

	failing := NewCardService(repo, &stubGenerator{err: errors.New("soffice crashed")}, nil, nil, metrics, nil)
	_, err = failing.Generate(context.Background(), superClaims(), "STU11111111")
	require.Error(t, err)
	assert.Equal(t, uint64(1), metrics.Snapshot().CardGenerationFailures)
}

func TestCardGenerateForeignDepartmentForbidden(t *testing.T) {
	svc := NewCardService(&mockStudentRepo{students: seedStudents()}, &stubGenerator{}, nil, nil, nil, nil)

	_, err := svc.Generate(context.Background(), deptClaims("Mechanical"), "STU11111111")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCardGenerateUnknownStudent(t *testing.T) {
	svc := NewCardService(&mockStudentRepo{}, &stubGenerator{}, nil, nil, nil, nil)

	_, err := svc.Generate(context.Background(), superClaims(), "STU00000000")
	assert.Equal(t, appErrors.ErrStudentNotFound.Code, appErrors.FromError(err).Code)
}

func TestCardGenerateNilActorAllowed(t *testing.T) {
	repo := &mockStudentRepo{students: seedStudents()}
	svc := NewCardService(repo, &stubGenerator{card: &models.GeneratedCard{}}, nil, nil, nil, nil)

	_, err := svc.Generate(context.Background(), nil, "STU33333333")
	assert.NoError(t, err)
}

func TestCardGenerateGeneratorFailure(t *testing.T) {
	svc := NewCardService(&mockStudentRepo{students: seedStudents()}, &stubGenerator{err: errors.New("soffice crashed")}, nil, nil, nil, nil)

	_, err := svc.Generate(context.Background(), superClaims(), "STU11111111")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestCardSignedURLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "STU11111111_card.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 card"), 0o600))

	students := seedStudents()
	students[0].IDCard = &models.GeneratedCard{LocalPDF: pdfPath, GeneratedAt: time.Now()}

	signer := storage.NewSignedURLSigner("test_secret", time.Minute)
	svc := NewCardService(&mockStudentRepo{students: students}, nil, signer, nil, nil, nil)

	link, expiresAt, err := svc.SignedURL(context.Background(), superClaims(), "STU11111111", true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "/api/cards/download?token="))
	assert.True(t, expiresAt.After(time.Now()))

	token := strings.TrimPrefix(link, "/api/cards/download?token=")
	content, filename, err := svc.DownloadByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "STU11111111_card.pdf", filename)
	assert.Equal(t, "%PDF-1.4 card", string(content))
}

func TestCardSignedURLWithoutCard(t *testing.T) {
	signer := storage.NewSignedURLSigner("test_secret", time.Minute)
	svc := NewCardService(&mockStudentRepo{students: seedStudents()}, nil, signer, nil, nil, nil)

	_, _, err := svc.SignedURL(context.Background(), superClaims(), "STU11111111", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCardDownloadByTokenTampered(t *testing.T) {
	signer := storage.NewSignedURLSigner("test_secret", time.Minute)
	svc := NewCardService(&mockStudentRepo{}, nil, signer, nil, nil, nil)

	_, _, err := svc.DownloadByToken("not-a-real-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
