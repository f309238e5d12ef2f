package models

import (
	"time"
)

// Student identifies the payer a collection request is raised for.
// The fields are embedded in Order so the identity travels with the
// order record itself.
type Student struct {
	Name      string `gorm:"column:student_name;type:varchar(255)" json:"name"`
	StudentID string `gorm:"column:student_id;type:varchar(100)" json:"id"`
	Email     string `gorm:"column:student_email;type:varchar(255)" json:"email"`
}

// Order is the durable identity record of one payment collection
// request. CustomOrderID is the externally facing identifier the
// gateway echoes back in webhook notifications; it is unique and never
// changes once assigned. Orders are never deleted, only referenced.
type Order struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SchoolID      uint    `gorm:"index" json:"school_id"`
	TrusteeID     uint    `gorm:"index" json:"trustee_id"`
	Student       Student `gorm:"embedded" json:"student"`
	GatewayName   string  `gorm:"type:varchar(50)" json:"gateway_name"`
	CustomOrderID string  `gorm:"type:varchar(100);uniqueIndex" json:"custom_order_id"`
	OrderAmount   float64 `gorm:"type:decimal(15,2)" json:"order_amount"`
}
