package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole determines which endpoints a user may call.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleSchoolAdmin UserRole = "schoolAdmin"
	RoleTrustee     UserRole = "trustee"
)

// User represents a user in the system
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FirstName string   `gorm:"type:varchar(50)" json:"first_name"`
	LastName  string   `gorm:"type:varchar(50)" json:"last_name"`
	Email     string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Password  string   `gorm:"type:varchar(255)" json:"-"`
	Role      UserRole `gorm:"type:varchar(20);default:'trustee'" json:"role"`
	SchoolID  *uint    `gorm:"index" json:"school_id,omitempty"`
	PhoneNo   string   `gorm:"type:varchar(20)" json:"phone_no"`
	IsActive  bool     `gorm:"default:true" json:"is_active"`
}
