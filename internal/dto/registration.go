package dto

import "github.com/jucampus/registrar-api/internal/models"

// RegisterStudentRequest is the public registration payload. Field names
// mirror the web form.
type RegisterStudentRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Mobile        string `json:"mobile" validate:"omitempty,min=10,max=15"`
	Phone         string `json:"phone" validate:"omitempty,max=15"`
	DateOfBirth   string `json:"dateOfBirth" validate:"omitempty"`
	BloodGroup    string `json:"bloodGroup" validate:"omitempty,max=5"`
	IDNumber      string `json:"idNumber" validate:"omitempty,max=30"`
	JUApplication string `json:"juApplication" validate:"omitempty,max=40"`

	Department    string `json:"department" validate:"required"`
	Course        string `json:"course" validate:"omitempty,max=100"`
	Program       string `json:"program" validate:"omitempty,max=100"`
	AdmissionYear int    `json:"admissionYear" validate:"omitempty,gte=2000,lte=2100"`

	Address string `json:"address" validate:"omitempty,max=200"`
	City    string `json:"city" validate:"omitempty,max=60"`
	State   string `json:"state" validate:"omitempty,max=60"`
	Pincode string `json:"pincode" validate:"omitempty,max=10"`

	FatherName       string `json:"fatherName" validate:"omitempty,max=100"`
	FatherOccupation string `json:"fatherOccupation" validate:"omitempty,max=100"`
	FatherIncome     string `json:"fatherIncome" validate:"omitempty,max=30"`
	FatherMobile     string `json:"fatherMobile" validate:"omitempty,max=15"`
	MotherName       string `json:"motherName" validate:"omitempty,max=100"`
	MotherOccupation string `json:"motherOccupation" validate:"omitempty,max=100"`
	MotherMobile     string `json:"motherMobile" validate:"omitempty,max=15"`
	GuardianName     string `json:"guardianName" validate:"omitempty,max=100"`
	ParentEmail      string `json:"parentEmail" validate:"omitempty,email"`
	EmergencyContact string `json:"emergencyContact" validate:"omitempty,max=15"`

	TenthBoard        string `json:"tenthBoard" validate:"omitempty,max=60"`
	TenthSchool       string `json:"tenthSchool" validate:"omitempty,max=120"`
	TenthYear         string `json:"tenthYear" validate:"omitempty,max=4"`
	TenthPercentage   string `json:"tenthPercentage" validate:"omitempty,max=6"`
	TwelfthBoard      string `json:"twelfthBoard" validate:"omitempty,max=60"`
	TwelfthCollege    string `json:"twelfthCollege" validate:"omitempty,max=120"`
	TwelfthYear       string `json:"twelfthYear" validate:"omitempty,max=4"`
	TwelfthPercentage string `json:"twelfthPercentage" validate:"omitempty,max=6"`
	PCMPercentage     string `json:"pcmPercentage" validate:"omitempty,max=6"`

	// Documents carries optional inline uploads keyed by form field name.
	Documents map[string]InlineDocument `json:"documents" validate:"omitempty,dive"`
}

// InlineDocument is a base64-encoded file submitted with the registration
// payload instead of a separate multipart request.
type InlineDocument struct {
	FileName string `json:"filename" validate:"required,max=200"`
	Data     string `json:"file_data" validate:"required"`
}

// ToStudent maps the request onto a fresh student record.
func (r *RegisterStudentRequest) ToStudent() *models.Student {
	return &models.Student{
		Name:          r.Name,
		Email:         r.Email,
		Mobile:        r.Mobile,
		Phone:         r.Phone,
		DateOfBirth:   r.DateOfBirth,
		BloodGroup:    r.BloodGroup,
		IDNumber:      r.IDNumber,
		JUApplication: r.JUApplication,
		Department:    r.Department,
		Course:        r.Course,
		Program:       r.Program,
		AdmissionYear: r.AdmissionYear,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		Pincode:       r.Pincode,
		Parents: models.ParentInfo{
			FatherName:       r.FatherName,
			FatherOccupation: r.FatherOccupation,
			FatherIncome:     r.FatherIncome,
			FatherMobile:     r.FatherMobile,
			MotherName:       r.MotherName,
			MotherOccupation: r.MotherOccupation,
			MotherMobile:     r.MotherMobile,
			GuardianName:     r.GuardianName,
			ParentEmail:      r.ParentEmail,
			EmergencyContact: r.EmergencyContact,
		},
		Academics: models.AcademicRecord{
			TenthBoard:        r.TenthBoard,
			TenthSchool:       r.TenthSchool,
			TenthYear:         r.TenthYear,
			TenthPercentage:   r.TenthPercentage,
			TwelfthBoard:      r.TwelfthBoard,
			TwelfthCollege:    r.TwelfthCollege,
			TwelfthYear:       r.TwelfthYear,
			TwelfthPercentage: r.TwelfthPercentage,
			PCMPercentage:     r.PCMPercentage,
		},
	}
}

// RegisterStudentResponse acknowledges a successful registration.
type RegisterStudentResponse struct {
	StudentID         string            `json:"student_id"`
	ApplicationNumber string            `json:"applicationNumber"`
	Status            string            `json:"status"`
	SlipURL           string            `json:"slipUrl,omitempty"`
	DocumentsUploaded map[string]string `json:"documentsUploaded,omitempty"`
	DocumentsFailed   map[string]string `json:"documentsFailed,omitempty"`
}

// StatusResponse reports where a registration sits.
type StatusResponse struct {
	StudentID     string                              `json:"student_id"`
	Name          string                              `json:"name"`
	Department    string                              `json:"department"`
	Status        models.StudentStatus                `json:"status"`
	PhoneVerified bool                                `json:"phoneVerified"`
	Verification  map[string]models.VerificationEntry `json:"verification"`
	PhotoURL      string                              `json:"photoUrl,omitempty"`
}

// PrintSlipResponse returns the shareable admission slip link. Action is
// "open_existing" when the slip was generated earlier and "open_new" when
// this request produced it.
type PrintSlipResponse struct {
	StudentID   string `json:"student_id"`
	DocumentURL string `json:"documentUrl"`
	FileID      string `json:"fileId"`
	GeneratedAt string `json:"generatedAt"`
	Action      string `json:"action"`
}

// DepartmentStat is one row of the department dashboard.
type DepartmentStat struct {
	Department string `json:"department"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Verified   int    `json:"verified"`
}
