package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminRole represents the available roles for the RBAC system.
type AdminRole string

const (
	RoleSuperAdmin      AdminRole = "super_admin"
	RoleDepartmentAdmin AdminRole = "department_admin"
	RolePhotoAdmin      AdminRole = "photo_admin"
)

// Valid reports whether the role is one the system knows.
func (r AdminRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleDepartmentAdmin, RolePhotoAdmin:
		return true
	}
	return false
}

// Admin represents a back-office user stored in the admins collection.
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Role         AdminRole          `bson:"role" json:"role"`
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CanAccessDepartment reports whether the admin may see records from the
// given department. Super admins and photo admins see everything.
func (a *Admin) CanAccessDepartment(department string) bool {
	if a.Role == RoleSuperAdmin || a.Role == RolePhotoAdmin {
		return true
	}
	return NormalizeDepartment(a.Department) == NormalizeDepartment(department)
}
