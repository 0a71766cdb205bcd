package idcard

import (
	"fmt"
	"time"

	"github.com/jucampus/registrar-api/internal/models"
)

// TokenMap is the placeholder-to-value substitution set for one card.
type TokenMap map[string]string

// BuildTokenMap resolves every text placeholder the card template knows
// from the student record. now supplies the issue date.
func BuildTokenMap(student *models.Student, now time.Time) TokenMap {
	issue := now.Format("2006-01-02")
	regDate := student.RegisteredAt
	if regDate.IsZero() {
		regDate = now
	}

	return TokenMap{
		"{{NAME}}":               student.Name,
		"{{ID_NUMBER}}":          student.IDNumber,
		"{{DEPARTMENT}}":         student.Department,
		"{{COURSE}}":             student.Course,
		"{{PROGRAM}}":            student.Program,
		"{{ADDRESS}}":            student.AddressBlock(),
		"{{MOBILE}}":             student.Mobile,
		"{{PHONE}}":              student.Phone,
		"{{EMAIL}}":              student.Email,
		"{{EMERGENCY_CONTACT}}":  student.Parents.EmergencyContact,
		"{{PARENT_EMAIL}}":       student.Parents.ParentEmail,
		"{{BLOOD_GROUP}}":        student.BloodGroup,
		"{{DATE_OF_BIRTH}}":      student.DateOfBirth,
		"{{DOB}}":                student.DateOfBirth,
		"{{FATHER_NAME}}":        student.Parents.FatherName,
		"{{FATHER_OCCUPATION}}":  student.Parents.FatherOccupation,
		"{{FATHER_INCOME}}":      student.Parents.FatherIncome,
		"{{FATHER_MOBILE}}":      student.Parents.FatherMobile,
		"{{MOTHER_NAME}}":        student.Parents.MotherName,
		"{{MOTHER_OCCUPATION}}":  student.Parents.MotherOccupation,
		"{{MOTHER_MOBILE}}":      student.Parents.MotherMobile,
		"{{GUARDIAN_NAME}}":      student.Parents.GuardianName,
		"{{TENTH_BOARD}}":        student.Academics.TenthBoard,
		"{{TENTH_SCHOOL}}":       student.Academics.TenthSchool,
		"{{TENTH_YEAR}}":         student.Academics.TenthYear,
		"{{TENTH_PERCENTAGE}}":   student.Academics.TenthPercentage,
		"{{TWELFTH_BOARD}}":      student.Academics.TwelfthBoard,
		"{{TWELFTH_COLLEGE}}":    student.Academics.TwelfthCollege,
		"{{TWELFTH_YEAR}}":       student.Academics.TwelfthYear,
		"{{TWELFTH_PERCENTAGE}}": student.Academics.TwelfthPercentage,
		"{{PCM_PERCENTAGE}}":     student.Academics.PCMPercentage,
		"{{ISSUE_DATE}}":         issue,
		"{{EXPIRY_DATE}}":        ExpiryDate(student.AdmissionYear, now),
		"{{REGISTRATION_DATE}}":  regDate.Format("2006-01-02"),
		"{{BARCODE}}":            student.StudentID,
		"{{QR_CODE}}":            student.StudentID,
	}
}

// ExpiryDate returns Dec 31 of the fourth year after admission. Records
// without an admission year fall back to two years from now.
func ExpiryDate(admissionYear int, now time.Time) string {
	if admissionYear > 0 {
		return fmt.Sprintf("%d-12-31", admissionYear+4)
	}
	return fmt.Sprintf("%d-12-31", now.Year()+2)
}
