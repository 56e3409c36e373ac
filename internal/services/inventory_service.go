package services

import (
	"fmt"

	"orderflow/internal/models"
	"orderflow/internal/repositories"
	"orderflow/pkg/keylock"
)

// InventoryService handles stock levels and reservations. Every mutation of
// a product's inventory row runs under a per-product lock, so concurrent
// orders for the same product cannot interleave their read-modify-write
// steps and oversell stock.
type InventoryService struct {
	repo  repositories.InventoryRepository
	locks *keylock.Manager
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(repo repositories.InventoryRepository, locks *keylock.Manager) *InventoryService {
	return &InventoryService{
		repo:  repo,
		locks: locks,
	}
}

func productLockKey(productID string) string {
	return "inventory:" + productID
}

// Get retrieves the inventory record for a product.
func (s *InventoryService) Get(productID string) (*models.Inventory, error) {
	return s.repo.GetByProductID(productID)
}

// SetStock sets the total owned stock for a product, creating the inventory
// record if it does not exist yet. Stock cannot be set below the quantity
// already reserved for pending orders.
func (s *InventoryService) SetStock(productID string, quantity int) (*models.Inventory, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("stock quantity must not be negative, got %d", quantity)
	}

	var result *models.Inventory
	err := s.locks.WithLock(productLockKey(productID), func() error {
		inventory, err := s.repo.GetByProductID(productID)
		if err != nil {
			inventory = &models.Inventory{ProductID: productID}
		}
		if quantity < inventory.ReservedQuantity {
			return fmt.Errorf("cannot set stock for product %s to %d: %d units are reserved",
				productID, quantity, inventory.ReservedQuantity)
		}
		inventory.Quantity = quantity
		if err := s.repo.Save(inventory); err != nil {
			return err
		}
		result = inventory
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reserve places a hold on amount units of a product's stock.
func (s *InventoryService) Reserve(productID string, amount int) error {
	return s.mutate(productID, func(inv models.Inventory) (models.Inventory, error) {
		return inv.Reserve(amount)
	})
}

// Release returns amount units of a hold to the available pool.
func (s *InventoryService) Release(productID string, amount int) error {
	return s.mutate(productID, func(inv models.Inventory) (models.Inventory, error) {
		return inv.ReleaseReservation(amount), nil
	})
}

// Fulfill permanently consumes amount units of previously reserved stock.
func (s *InventoryService) Fulfill(productID string, amount int) error {
	return s.mutate(productID, func(inv models.Inventory) (models.Inventory, error) {
		return inv.Fulfill(amount)
	})
}

// Restore puts amount previously fulfilled units back into reserved stock,
// unwinding a partial fulfillment.
func (s *InventoryService) Restore(productID string, amount int) error {
	return s.mutate(productID, func(inv models.Inventory) (models.Inventory, error) {
		return inv.RestoreFulfillment(amount), nil
	})
}

// mutate applies a state transition to a product's inventory under its lock
// and persists the result. The stored state is untouched when the transition
// fails.
func (s *InventoryService) mutate(productID string, transition func(models.Inventory) (models.Inventory, error)) error {
	return s.locks.WithLock(productLockKey(productID), func() error {
		inventory, err := s.repo.GetByProductID(productID)
		if err != nil {
			return err
		}
		next, err := transition(*inventory)
		if err != nil {
			return err
		}
		return s.repo.Save(&next)
	})
}
