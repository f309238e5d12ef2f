package models

import (
	"time"

	"gorm.io/gorm"
)

// School is an institution trustees raise collection requests against.
type School struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string `gorm:"type:varchar(100);uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Relationships
	Orders []Order `gorm:"foreignKey:SchoolID" json:"orders,omitempty"`
}
