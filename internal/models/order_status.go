package models

import (
	"time"
)

// PaymentStatus is the settlement state a gateway may declare for an
// order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// OrderStatus is the single mutable settlement record of an order — the
// source of truth for "where is this payment now". Exactly one row
// exists per order (created pending alongside it); only the reconcile
// service mutates it afterwards, and every mutation is attributable to
// a WebhookLog row.
type OrderStatus struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderID           uint          `gorm:"uniqueIndex" json:"order_id"`
	OrderAmount       float64       `gorm:"type:decimal(15,2)" json:"order_amount"`
	TransactionAmount float64       `gorm:"type:decimal(15,2);default:0" json:"transaction_amount"`
	PaymentMode       string        `gorm:"type:varchar(100)" json:"payment_mode"`
	PaymentDetails    string        `gorm:"type:varchar(255)" json:"payment_details"`
	BankReference     string        `gorm:"type:varchar(100)" json:"bank_reference"`
	PaymentMessage    string        `gorm:"type:varchar(255)" json:"payment_message"`
	Status            PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ErrorMessage      string        `gorm:"type:varchar(255)" json:"error_message"`
	PaymentTime       *time.Time    `json:"payment_time"`

	// Relationships
	Order Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}
