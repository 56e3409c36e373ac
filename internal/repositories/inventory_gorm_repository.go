package repositories

import (
	"fmt"

	"orderflow/internal/models"

	"gorm.io/gorm"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
type GORMInventoryRepository struct {
	db *gorm.DB
}

// NewGORMInventoryRepository creates a new instance of GORMInventoryRepository.
func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{
		db: db,
	}
}

// GetByProductID retrieves the inventory record for a product.
func (r *GORMInventoryRepository) GetByProductID(productID string) (*models.Inventory, error) {
	var inventory models.Inventory
	if err := r.db.First(&inventory, "product_id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("inventory for product %s: %w", productID, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get inventory for product %s: %w", productID, err)
	}
	return &inventory, nil
}

// Save writes an inventory record, creating it if necessary.
func (r *GORMInventoryRepository) Save(inventory *models.Inventory) error {
	if err := r.db.Save(inventory).Error; err != nil {
		return fmt.Errorf("failed to save inventory for product %s: %w", inventory.ProductID, err)
	}
	return nil
}
