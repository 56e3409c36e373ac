package repositories

import (
	"orderflow/internal/models"
)

// OrderRepository defines the interface for order data access.
// GetByIdempotencyKey returns (nil, nil) when no order exists for the key;
// it is the existence probe the creation flow uses, so absence is not an
// error there.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetAllByUser(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByIdempotencyKey(key string) (*models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	// Deletion of orders is intentionally absent: cancellation is a status.
}
