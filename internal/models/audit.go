package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionAdminCreate     = "ADMIN_CREATE"
	AuditActionAdminUpdate     = "ADMIN_UPDATE"
	AuditActionAdminDelete     = "ADMIN_DELETE"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionPhotoUpload     = "PHOTO_UPLOAD"
	AuditActionDocumentVerify  = "DOCUMENT_VERIFY"
	AuditActionCardGenerate    = "ID_CARD_GENERATE"
	AuditActionAttendanceMark  = "ATTENDANCE_MARK"
	AuditActionStudentRegister = "STUDENT_REGISTER"
)

// AuditLog represents an entry in the admin_logs collection.
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AdminID    string             `bson:"adminId,omitempty" json:"admin_id,omitempty"`
	AdminEmail string             `bson:"adminEmail,omitempty" json:"admin_email,omitempty"`
	Action     string             `bson:"action" json:"action"`
	Resource   string             `bson:"resource" json:"resource"`
	ResourceID string             `bson:"resourceId,omitempty" json:"resource_id,omitempty"`
	Detail     string             `bson:"detail,omitempty" json:"detail,omitempty"`
	IPAddress  string             `bson:"ipAddress" json:"ip_address"`
	UserAgent  string             `bson:"userAgent" json:"user_agent"`
	CreatedAt  time.Time          `bson:"createdAt" json:"created_at"`
}
