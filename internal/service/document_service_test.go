package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/pkg/config"
	"github.com/jucampus/registrar-api/pkg/drive"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

func testUploadLimits() config.UploadsConfig {
	return config.UploadsConfig{
		MaxFileSizeBytes:  5 * 1024 * 1024,
		AllowedExtensions: []string{"pdf", "png", "jpg", "jpeg"},
	}
}

func multipartForm(t *testing.T, files map[string]string) *multipart.Form {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, filename := range files {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("dummy content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form
}

// flakyDrive fails Upsert for selected file names.
type flakyDrive struct {
	*memoryDrive
	failNames map[string]bool
}

func (d *flakyDrive) Upsert(ctx context.Context, folderID, name, mimeType string, content io.Reader) (*drive.File, error) {
	if d.failNames[name] {
		return nil, fmt.Errorf("remote write failed")
	}
	return d.memoryDrive.Upsert(ctx, folderID, name, mimeType, content)
}

// fakeCardIssuer records generation requests.
type fakeCardIssuer struct {
	calls []string
	card  *models.GeneratedCard
	err   error
}

func (f *fakeCardIssuer) Generate(ctx context.Context, actor *models.JWTClaims, studentID string) (*models.GeneratedCard, error) {
	f.calls = append(f.calls, studentID)
	return f.card, f.err
}

func allChecked() map[string]bool {
	checks := make(map[string]bool, len(models.RequiredVerificationKeys))
	for _, key := range models.RequiredVerificationKeys {
		checks[key] = true
	}
	return checks
}

func verifiedMap() map[string]models.VerificationEntry {
	verification := models.DefaultVerification()
	for _, key := range models.RequiredVerificationKeys {
		verification[key] = models.VerificationEntry{Verified: true}
	}
	return verification
}

func TestDocumentUploadStoresRecognisedFields(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:         "STU11111111",
		Name:              "Anita Rao",
		JUApplication:     "24JU100",
		ApplicationNumber: "APP20240101ABCDEF",
		Department:        "Computer Science",
	}}}
	uploads := newMemoryDrive()
	svc := NewDocumentService(repo, uploads, "root", testUploadLimits(), nil, nil, nil, nil)

	form := multipartForm(t, map[string]string{
		"aadhaarUpload":    "aadhaar.pdf",
		"mysteryUpload":    "mystery.pdf",
		"photographUpload": "photo.jpg",
	})

	res, err := svc.Upload(context.Background(), "STU11111111", form)
	require.NoError(t, err)
	assert.Len(t, res.Uploaded, 2)
	assert.Empty(t, res.Failed)
	assert.Contains(t, res.Skipped, "mysteryUpload")

	folder, ok := uploads.folders["JU_24JU100_Anita_Rao"]
	require.True(t, ok)
	files, err := uploads.List(context.Background(), folder.ID)
	require.NoError(t, err)
	names := make(map[string]string, len(files))
	for _, f := range files {
		names[f.Name] = f.MimeType
	}
	assert.Equal(t, "application/pdf", names["Aadhaar_Card.pdf"])
	assert.Equal(t, "image/jpeg", names["Passport_Photograph.jpg"])

	update := repo.updates["STU11111111"]
	require.NotNil(t, update)
	docs, ok := update["documents"].(map[string]models.UploadedDocument)
	require.True(t, ok)
	assert.Equal(t, "Aadhaar_Card", docs["aadhaarUpload"].Label)
	assert.Equal(t, "aadhaar.pdf", docs["aadhaarUpload"].OriginalName)
	assert.Equal(t, folder.ID, update["driveFolderId"])
}

func TestDocumentUploadFailureDoesNotBlockSiblings(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:     "STU11111111",
		Name:          "Anita Rao",
		JUApplication: "24JU100",
	}}}
	uploads := &flakyDrive{
		memoryDrive: newMemoryDrive(),
		failNames:   map[string]bool{"Aadhaar_Card.pdf": true},
	}
	svc := NewDocumentService(repo, uploads, "root", testUploadLimits(), nil, nil, nil, nil)

	form := multipartForm(t, map[string]string{
		"aadhaarUpload":        "aadhaar.pdf",
		"tenthMarksheetUpload": "tenth.pdf",
	})

	res, err := svc.Upload(context.Background(), "STU11111111", form)
	require.NoError(t, err)
	assert.Contains(t, res.Uploaded, "tenthMarksheetUpload")
	require.Contains(t, res.Failed, "aadhaarUpload")
	assert.NotEmpty(t, res.Failed["aadhaarUpload"])

	// The surviving sibling is still persisted.
	docs, ok := repo.updates["STU11111111"]["documents"].(map[string]models.UploadedDocument)
	require.True(t, ok)
	assert.Contains(t, docs, "tenthMarksheetUpload")
	assert.NotContains(t, docs, "aadhaarUpload")
}

func TestDocumentUploadBadExtensionReportedPerField(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{StudentID: "STU11111111", Name: "Anita Rao", JUApplication: "24JU100"}}}
	svc := NewDocumentService(repo, newMemoryDrive(), "root", testUploadLimits(), nil, nil, nil, nil)

	form := multipartForm(t, map[string]string{
		"aadhaarUpload":        "aadhaar.exe",
		"tenthMarksheetUpload": "tenth.pdf",
	})
	res, err := svc.Upload(context.Background(), "STU11111111", form)
	require.NoError(t, err)
	assert.Contains(t, res.Failed, "aadhaarUpload")
	assert.Contains(t, res.Uploaded, "tenthMarksheetUpload")
}

func TestDocumentUploadUnknownStudent(t *testing.T) {
	svc := NewDocumentService(&mockStudentRepo{}, newMemoryDrive(), "root", testUploadLimits(), nil, nil, nil, nil)

	form := multipartForm(t, map[string]string{"aadhaarUpload": "aadhaar.pdf"})
	_, err := svc.Upload(context.Background(), "STUFFFFFFFF", form)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStudentNotFound.Code, appErrors.FromError(err).Code)
}

func TestDocumentUploadWithoutStorage(t *testing.T) {
	svc := NewDocumentService(&mockStudentRepo{}, nil, "", testUploadLimits(), nil, nil, nil, nil)

	form := multipartForm(t, map[string]string{"aadhaarUpload": "aadhaar.pdf"})
	_, err := svc.Upload(context.Background(), "STU11111111", form)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUploadFailed.Code, appErrors.FromError(err).Code)
}

func TestVerifyAllChecksMovesToVerified(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:    "STU11111111",
		Department:   "Computer Science",
		Status:       models.StatusPhotoUploaded,
		PhotoURL:     "https://photos.example/p.jpg",
		Verification: models.DefaultVerification(),
	}}}
	audit := &mockAudit{}
	svc := NewDocumentService(repo, nil, "", testUploadLimits(), nil, audit, nil, nil)

	res, err := svc.Verify(context.Background(), superClaims(), "STU11111111", dto.VerifyDocumentsRequest{Checks: allChecked()})
	require.NoError(t, err)
	assert.True(t, res.FullyVerified)
	assert.Equal(t, string(models.StatusVerified), res.Status)
	assert.Equal(t, models.StatusVerified, repo.updates["STU11111111"]["status"])
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionDocumentVerify, audit.entries[0].Action)
}

func TestVerifyStampsTimeAndActor(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:    "STU11111111",
		Department:   "Computer Science",
		Verification: models.DefaultVerification(),
	}}}
	svc := NewDocumentService(repo, nil, "", testUploadLimits(), nil, nil, nil, nil)

	key := models.RequiredVerificationKeys[0]
	res, err := svc.Verify(context.Background(), deptClaims("Computer Science"), "STU11111111", dto.VerifyDocumentsRequest{
		Checks: map[string]bool{key: true},
	})
	require.NoError(t, err)

	entry := res.Verification[key]
	assert.True(t, entry.Verified)
	require.NotNil(t, entry.VerifiedAt)
	assert.Equal(t, "dept@college.edu", entry.VerifiedBy)

	// Unchecked entries carry no stamp.
	other := res.Verification[models.RequiredVerificationKeys[1]]
	assert.False(t, other.Verified)
	assert.Nil(t, other.VerifiedAt)
	assert.Empty(t, other.VerifiedBy)
}

func TestVerifyCompletionTriggersCardGeneration(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:    "STU11111111",
		Department:   "Computer Science",
		Status:       models.StatusPhotoUploaded,
		PhotoURL:     "https://photos.example/p.jpg",
		Verification: models.DefaultVerification(),
	}}}
	issuer := &fakeCardIssuer{card: &models.GeneratedCard{PDFLink: "https://drive.example/card.pdf"}}
	svc := NewDocumentService(repo, nil, "", testUploadLimits(), issuer, nil, nil, nil)

	res, err := svc.Verify(context.Background(), superClaims(), "STU11111111", dto.VerifyDocumentsRequest{Checks: allChecked()})
	require.NoError(t, err)
	assert.Equal(t, []string{"STU11111111"}, issuer.calls)
	require.NotNil(t, res.IDCardGeneration)
	assert.True(t, res.IDCardGeneration.Attempted)
	assert.True(t, res.IDCardGeneration.Success)
}

func TestVerifyCardFailureDoesNotRollBackVerification(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:    "STU11111111",
		Department:   "Computer Science",
		Verification: models.DefaultVerification(),
	}}}
	issuer := &fakeCardIssuer{err: appErrors.ErrTemplateMissing}
	svc := NewDocumentService(repo, nil, "", testUploadLimits(), issuer, nil, nil, nil)

	res, err := svc.Verify(context.Background(), superClaims(), "STU11111111", dto.VerifyDocumentsRequest{Checks: allChecked()})
	require.NoError(t, err)
	assert.True(t, res.FullyVerified)
	assert.Equal(t, models.StatusVerified, repo.updates["STU11111111"]["status"])
	require.NotNil(t, res.IDCardGeneration)
	assert.True(t, res.IDCardGeneration.Attempted)
	assert.False(t, res.IDCardGeneration.Success)
	assert.NotEmpty(t, res.IDCardGeneration.Error)
}

func TestVerifyWithoutCardIssuerReportsReason(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:    "STU11111111",
		Department:   "Computer Science",
		Verification: models.DefaultVerification(),
	}}}
	svc := NewDocumentService(repo, nil, "", testUploadLimits(), nil, nil, nil, nil)

	res, err := svc.Verify(context.Background(), superClaims(), "STU11111111", dto.VerifyDocumentsRequest{Checks: allChecked()})
	require.NoError(t, err)
	require.NotNil(t, res.IDCardGeneration)
	assert.False(t, res.IDCardGeneration.Attempted)
	assert.NotEmpty(t, res.IDCardGeneration.Reason)
}

func TestVerifyUncheckRegressesStatus(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:    "STU11111111",
		Department:   "Computer Science",
		Status:       models.StatusVerified,
		PhotoURL:     "https://photos.example/p.jpg",
		Verification: verifiedMap(),
	}}}
	svc := NewDocumentService(repo, nil, "", testUploadLimits(), nil, nil, nil, nil)

	res, err := svc.Verify(context.Background(), superClaims(), "STU11111111", dto.VerifyDocumentsRequest{
		Checks: map[string]bool{models.RequiredVerificationKeys[0]: false},
	})
	require.NoError(t, err)
	assert.False(t, res.FullyVerified)
	assert.Equal(t, string(models.StatusPhotoUploaded), res.Status)
	assert.Nil(t, res.IDCardGeneration)
}

func TestVerifyRejectsUnknownCheck(t *testing.T) {
	svc := NewDocumentService(&mockStudentRepo{}, nil, "", testUploadLimits(), nil, nil, nil, nil)

	_, err := svc.Verify(context.Background(), superClaims(), "STU11111111", dto.VerifyDocumentsRequest{
		Checks: map[string]bool{"library_card": true},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVerifyOutsideDepartmentForbidden(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		StudentID:    "STU11111111",
		Department:   "Computer Science",
		Verification: models.DefaultVerification(),
	}}}
	svc := NewDocumentService(repo, nil, "", testUploadLimits(), nil, nil, nil, nil)

	_, err := svc.Verify(context.Background(), deptClaims("Mechanical"), "STU11111111", dto.VerifyDocumentsRequest{
		Checks: map[string]bool{models.RequiredVerificationKeys[0]: true},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
