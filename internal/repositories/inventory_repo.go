package repositories

import (
	"orderflow/internal/models"
)

// InventoryRepository defines the interface for inventory data access.
// There is at most one inventory record per product.
type InventoryRepository interface {
	GetByProductID(productID string) (*models.Inventory, error)
	Save(inventory *models.Inventory) error
}
