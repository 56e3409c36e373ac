package repositories

import (
	"fmt"
	"sync"

	"orderflow/internal/models"
)

// MockInventoryRepository is an in-memory implementation of InventoryRepository.
type MockInventoryRepository struct {
	inventories map[string]models.Inventory
	mu          sync.RWMutex
}

// NewMockInventoryRepository creates a new instance of MockInventoryRepository.
func NewMockInventoryRepository() *MockInventoryRepository {
	return &MockInventoryRepository{
		inventories: make(map[string]models.Inventory),
	}
}

// GetByProductID returns the inventory record for a product.
func (r *MockInventoryRepository) GetByProductID(productID string) (*models.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inventory, ok := r.inventories[productID]
	if !ok {
		return nil, fmt.Errorf("inventory for product %s: %w", productID, models.ErrProductNotFound)
	}
	return &inventory, nil
}

// Save writes an inventory record, creating it if necessary.
func (r *MockInventoryRepository) Save(inventory *models.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inventories[inventory.ProductID] = *inventory
	return nil
}
