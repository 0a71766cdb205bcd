package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentStatus tracks where a record sits in the registration flow.
type StudentStatus string

const (
	StatusPending       StudentStatus = "pending"
	StatusPhotoUploaded StudentStatus = "photo_uploaded"
	StatusVerified      StudentStatus = "verified"
)

// ParentInfo holds the family details collected at registration.
type ParentInfo struct {
	FatherName       string `bson:"fatherName,omitempty" json:"fatherName,omitempty"`
	FatherOccupation string `bson:"fatherOccupation,omitempty" json:"fatherOccupation,omitempty"`
	FatherIncome     string `bson:"fatherIncome,omitempty" json:"fatherIncome,omitempty"`
	FatherMobile     string `bson:"fatherMobile,omitempty" json:"fatherMobile,omitempty"`
	MotherName       string `bson:"motherName,omitempty" json:"motherName,omitempty"`
	MotherOccupation string `bson:"motherOccupation,omitempty" json:"motherOccupation,omitempty"`
	MotherMobile     string `bson:"motherMobile,omitempty" json:"motherMobile,omitempty"`
	GuardianName     string `bson:"guardianName,omitempty" json:"guardianName,omitempty"`
	ParentEmail      string `bson:"parentEmail,omitempty" json:"parentEmail,omitempty"`
	EmergencyContact string `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
}

// AcademicRecord captures prior schooling marks.
type AcademicRecord struct {
	TenthBoard        string `bson:"tenthBoard,omitempty" json:"tenthBoard,omitempty"`
	TenthSchool       string `bson:"tenthSchool,omitempty" json:"tenthSchool,omitempty"`
	TenthYear         string `bson:"tenthYear,omitempty" json:"tenthYear,omitempty"`
	TenthPercentage   string `bson:"tenthPercentage,omitempty" json:"tenthPercentage,omitempty"`
	TwelfthBoard      string `bson:"twelfthBoard,omitempty" json:"twelfthBoard,omitempty"`
	TwelfthCollege    string `bson:"twelfthCollege,omitempty" json:"twelfthCollege,omitempty"`
	TwelfthYear       string `bson:"twelfthYear,omitempty" json:"twelfthYear,omitempty"`
	TwelfthPercentage string `bson:"twelfthPercentage,omitempty" json:"twelfthPercentage,omitempty"`
	PCMPercentage     string `bson:"pcmPercentage,omitempty" json:"pcmPercentage,omitempty"`
}

// UploadedDocument records a document pushed to the remote drive.
type UploadedDocument struct {
	Label        string    `bson:"label" json:"label"`
	DriveID      string    `bson:"driveId" json:"driveId"`
	WebLink      string    `bson:"webLink" json:"webLink"`
	DownloadLink string    `bson:"downloadLink,omitempty" json:"downloadLink,omitempty"`
	FileName     string    `bson:"fileName" json:"fileName"`
	OriginalName string    `bson:"originalName,omitempty" json:"originalName,omitempty"`
	Size         int64     `bson:"size,omitempty" json:"size,omitempty"`
	UploadedAt   time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// VerificationEntry records one document check with who ticked it and when.
type VerificationEntry struct {
	Verified   bool       `bson:"verified" json:"verified"`
	VerifiedAt *time.Time `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	VerifiedBy string     `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
}

// AdmissionSlip records the generated admission slip artifact on the drive.
type AdmissionSlip struct {
	DriveID     string    `bson:"driveId" json:"driveId"`
	WebLink     string    `bson:"webLink" json:"webLink"`
	GeneratedAt time.Time `bson:"generatedAt" json:"generatedAt"`
}

// GeneratedCard records the latest ID card artifacts for a student.
type GeneratedCard struct {
	PPTXDriveID string    `bson:"pptxDriveId,omitempty" json:"pptxDriveId,omitempty"`
	PDFDriveID  string    `bson:"pdfDriveId,omitempty" json:"pdfDriveId,omitempty"`
	PPTXLink    string    `bson:"pptxLink,omitempty" json:"pptxLink,omitempty"`
	PDFLink     string    `bson:"pdfLink,omitempty" json:"pdfLink,omitempty"`
	LocalPPTX   string    `bson:"localPptx,omitempty" json:"-"`
	LocalPDF    string    `bson:"localPdf,omitempty" json:"-"`
	GeneratedAt time.Time `bson:"generatedAt" json:"generatedAt"`
}

// Student is the single registration record. Department is a plain field so
// one collection serves every department; queries filter on it.
type Student struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StudentID         string             `bson:"student_id" json:"student_id"`
	ApplicationNumber string             `bson:"applicationNumber" json:"applicationNumber"`
	JUApplication     string             `bson:"juApplication,omitempty" json:"juApplication,omitempty"`

	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	Mobile      string `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth string `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	BloodGroup  string `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	IDNumber    string `bson:"idNumber,omitempty" json:"idNumber,omitempty"`

	Department    string `bson:"department" json:"department"`
	Course        string `bson:"course,omitempty" json:"course,omitempty"`
	Program       string `bson:"program,omitempty" json:"program,omitempty"`
	AdmissionYear int    `bson:"admissionYear,omitempty" json:"admissionYear,omitempty"`

	Address string `bson:"address,omitempty" json:"address,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`

	Parents   ParentInfo     `bson:"parents,omitempty" json:"parents,omitempty"`
	Academics AcademicRecord `bson:"academics,omitempty" json:"academics,omitempty"`

	PhotoURL      string                       `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Documents     map[string]UploadedDocument  `bson:"documents,omitempty" json:"documents,omitempty"`
	Verification  map[string]VerificationEntry `bson:"verification,omitempty" json:"verification,omitempty"`
	DriveFolderID string                       `bson:"driveFolderId,omitempty" json:"-"`
	Slip          *AdmissionSlip               `bson:"admissionSlip,omitempty" json:"admissionSlip,omitempty"`

	Status        StudentStatus  `bson:"status" json:"status"`
	PhoneVerified bool           `bson:"phoneVerified" json:"phoneVerified"`
	Attendance    string         `bson:"attendance" json:"attendance"`
	IDCard        *GeneratedCard `bson:"idCard,omitempty" json:"idCard,omitempty"`

	RegisteredAt time.Time `bson:"registeredAt" json:"registeredAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AddressBlock joins the address lines the way they appear on the card:
// street, city, then "state - pincode", skipping empty lines.
func (s *Student) AddressBlock() string {
	lines := make([]string, 0, 3)
	if strings.TrimSpace(s.Address) != "" {
		lines = append(lines, strings.TrimSpace(s.Address))
	}
	if strings.TrimSpace(s.City) != "" {
		lines = append(lines, strings.TrimSpace(s.City))
	}
	state := strings.TrimSpace(s.State)
	pincode := strings.TrimSpace(s.Pincode)
	switch {
	case state != "" && pincode != "":
		lines = append(lines, state+" - "+pincode)
	case state != "":
		lines = append(lines, state)
	case pincode != "":
		lines = append(lines, pincode)
	}
	return strings.Join(lines, "\n")
}

// RequiredVerificationKeys are the document checks every record carries.
var RequiredVerificationKeys = []string{
	"10th_marksheet",
	"12th_marksheet",
	"transfer_certificate",
	"character_certificate",
	"aadhar_card",
	"passport_photos",
}

// DefaultVerification returns a fresh all-unchecked verification map.
func DefaultVerification() map[string]VerificationEntry {
	m := make(map[string]VerificationEntry, len(RequiredVerificationKeys))
	for _, key := range RequiredVerificationKeys {
		m[key] = VerificationEntry{}
	}
	return m
}

// FullyVerified reports whether every required check is ticked.
func (s *Student) FullyVerified() bool {
	for _, key := range RequiredVerificationKeys {
		if !s.Verification[key].Verified {
			return false
		}
	}
	return true
}

// StudentFilter captures listing criteria for the admin views.
type StudentFilter struct {
	Department      string
	Status          StudentStatus
	ExcludeVerified bool
	HasPhoto        *bool
	Search          string
	Page            int
	PageSize        int
}

// NormalizeDepartment folds department names for comparison: lowercase with
// underscores and spaces removed, so "Computer Science" matches
// "computer_science".
func NormalizeDepartment(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}
