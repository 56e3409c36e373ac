package repositories

import (
	"fmt"

	"orderflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{
		db: db,
	}
}

// GetByID retrieves a single payment by its ID.
func (r *GORMPaymentRepository) GetByID(id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment with ID %s: %w", id, models.ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("failed to get payment by ID %s: %w", id, err)
	}
	return &payment, nil
}

// GetByIdempotencyKey retrieves the payment for an idempotency key, or
// (nil, nil) when none exists.
func (r *GORMPaymentRepository) GetByIdempotencyKey(key string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, "idempotency_key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by idempotency key: %w", err)
	}
	return &payment, nil
}

// Save writes a payment record, creating it if necessary.
func (r *GORMPaymentRepository) Save(payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if err := r.db.Save(payment).Error; err != nil {
		return fmt.Errorf("failed to save payment %s: %w", payment.ID, err)
	}
	return nil
}
