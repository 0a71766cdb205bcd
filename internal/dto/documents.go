package dto

import "github.com/jucampus/registrar-api/internal/models"

// DocumentFieldLabels maps upload form field names to the labels used when
// the files land in the drive folder.
var DocumentFieldLabels = map[string]string{
	"aadhaarUpload":             "Aadhaar_Card",
	"tenthMarksheetUpload":      "10th_Marksheet",
	"twelfthMarksheetUpload":    "12th_Marksheet",
	"transferCertificateUpload": "Transfer_Certificate",
	"conductCertificateUpload":  "Conduct_Certificate",
	"casteCertificateUpload":    "Caste_Certificate",
	"incomeCertificateUpload":   "Income_Certificate",
	"photographUpload":          "Passport_Photograph",
}

// UploadDocumentsResponse summarises which files made it to the drive. Failed
// carries per-field error text so one broken file never hides the rest.
type UploadDocumentsResponse struct {
	StudentID string            `json:"student_id"`
	FolderID  string            `json:"folderId"`
	Uploaded  map[string]string `json:"uploaded"`
	Failed    map[string]string `json:"failed,omitempty"`
	Skipped   []string          `json:"skipped,omitempty"`
}

// DocumentsResponse lists what a student has uploaded and how far the
// verification checklist has progressed.
type DocumentsResponse struct {
	StudentID    string                              `json:"student_id"`
	Documents    map[string]models.UploadedDocument  `json:"documents"`
	Verification map[string]models.VerificationEntry `json:"verification"`
	Status       string                              `json:"status"`
}

// VerifyDocumentsRequest toggles verification checkboxes on a record.
type VerifyDocumentsRequest struct {
	Checks map[string]bool `json:"checks" validate:"required"`
}

// CardGenerationResult reports whether ticking the final checkbox kicked off
// ID card generation, and how that attempt went.
type CardGenerationResult struct {
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// VerifyDocumentsResponse returns the verification state after the update.
type VerifyDocumentsResponse struct {
	StudentID        string                              `json:"student_id"`
	Verification     map[string]models.VerificationEntry `json:"verification"`
	FullyVerified    bool                                `json:"fullyVerified"`
	Status           string                              `json:"status"`
	IDCardGeneration *CardGenerationResult               `json:"idCardGeneration,omitempty"`
}

// UploadPhotoResponse confirms a photo upload.
type UploadPhotoResponse struct {
	StudentID string `json:"student_id"`
	PhotoURL  string `json:"photoUrl"`
	Status    string `json:"status"`
}
