package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog is the append-only audit record of one inbound gateway
// notification. The row is written before the payload is interpreted
// and updated exactly once with the outcome, so a crash mid-handling
// still leaves a reconstructible trail. There is deliberately no
// foreign key to Order: a malformed payload may never resolve to one,
// and correlation happens by CustomOrderID at processing time.
type WebhookLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Payload        datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	DeclaredStatus int            `json:"declared_status"`
	Processed      bool           `gorm:"default:false" json:"processed"`
	Error          *string        `gorm:"type:varchar(500)" json:"error,omitempty"`
}
