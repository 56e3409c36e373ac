package repositories

import (
	"orderflow/internal/models"
)

// PaymentRepository defines the interface for payment data access.
// GetByIdempotencyKey returns (nil, nil) when no payment exists for the key.
type PaymentRepository interface {
	GetByID(id string) (*models.Payment, error)
	GetByIdempotencyKey(key string) (*models.Payment, error)
	Save(payment *models.Payment) error
}
