package repositories

import (
	"fmt"
	"sync"
	"time"

	"orderflow/internal/models"

	"github.com/google/uuid"
)

// MockPaymentRepository is an in-memory implementation of PaymentRepository.
type MockPaymentRepository struct {
	payments map[string]models.Payment
	mu       sync.RWMutex
}

// NewMockPaymentRepository creates a new instance of MockPaymentRepository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]models.Payment),
	}
}

// GetByID returns a payment by its ID.
func (r *MockPaymentRepository) GetByID(id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment with ID %s: %w", id, models.ErrPaymentNotFound)
	}
	return &payment, nil
}

// GetByIdempotencyKey returns the payment for an idempotency key, or
// (nil, nil) when none exists.
func (r *MockPaymentRepository) GetByIdempotencyKey(key string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, payment := range r.payments {
		if payment.IdempotencyKey == key {
			p := payment
			return &p, nil
		}
	}
	return nil, nil
}

// Save writes a payment record, creating it if necessary.
func (r *MockPaymentRepository) Save(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
		payment.CreatedAt = time.Now()
	}
	payment.UpdatedAt = time.Now()
	r.payments[payment.ID] = *payment
	return nil
}

// Count reports the number of stored payment rows. Intended for tests.
func (r *MockPaymentRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}
