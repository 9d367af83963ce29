package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the state of a mobile money collection
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Terminal reports whether the status is a final state that can no longer change.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// PaymentTransaction is the durable record of one collection attempt against
// the gateway. TransactionID is the gateway's UUID for the transaction and
// Reference is the merchant-side idempotency key sent with the request.
type PaymentTransaction struct {
	Base
	OrderID           *uuid.UUID    `gorm:"type:uuid;index" json:"order_id,omitempty"`
	TransactionID     string        `gorm:"type:varchar(100);uniqueIndex" json:"transaction_id"`
	Reference         string        `gorm:"type:varchar(100);not null;uniqueIndex" json:"reference"`
	PhoneNumber       string        `gorm:"type:varchar(20);not null" json:"phone_number"`
	Provider          string        `gorm:"type:varchar(20)" json:"provider"`
	Amount            int64         `gorm:"not null" json:"amount"`
	Currency          string        `gorm:"type:varchar(3);not null;default:'UGX'" json:"currency"`
	Description       string        `gorm:"type:varchar(255)" json:"description"`
	Status            PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ProviderReference string        `gorm:"type:varchar(100)" json:"provider_reference,omitempty"`
	CallbackURL       string        `gorm:"type:varchar(255)" json:"-"`
}

// PaymentWebhookEvent is an append-only audit record of every webhook
// delivery received from the gateway, stored before reconciliation runs.
type PaymentWebhookEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	TransactionID string    `gorm:"type:varchar(100);index" json:"transaction_id"`
	Reference     string    `gorm:"type:varchar(100);index" json:"reference"`
	Status        string    `gorm:"type:varchar(20)" json:"status"`
	RawData       JSON      `gorm:"type:jsonb" json:"raw_data"`
}
