package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment records a charge attempt against an order. At most one payment row
// exists per idempotency key; a failed attempt reuses the row on retry.
type Payment struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID        string          `json:"order_id" gorm:"index;type:varchar(36)"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Method         string          `json:"method" gorm:"type:varchar(50)"`
	Status         PaymentStatus   `json:"status" gorm:"type:varchar(20)"`
	IdempotencyKey string          `json:"idempotency_key" gorm:"uniqueIndex;type:varchar(64)"`
	TransactionID  string          `json:"transaction_id" gorm:"type:varchar(36)"` // New id per processing attempt
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
