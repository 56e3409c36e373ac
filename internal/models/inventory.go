package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Inventory tracks stock for a single product. Quantity is the total owned
// stock; ReservedQuantity is stock promised to pending orders. The invariant
// 0 <= ReservedQuantity <= Quantity holds after every transition.
type Inventory struct {
	ProductID        string `json:"product_id" gorm:"primaryKey;type:varchar(36)"`
	Quantity         int    `json:"quantity" validate:"gte=0"`
	ReservedQuantity int    `json:"reserved_quantity" validate:"gte=0"`
	gorm.Model       `json:"-"`
}

// Available returns the stock not yet promised to any order.
func (i Inventory) Available() int {
	return i.Quantity - i.ReservedQuantity
}

// Reserve places a hold on amount units. The state is unchanged on failure.
func (i Inventory) Reserve(amount int) (Inventory, error) {
	if i.Available() < amount {
		return i, fmt.Errorf("product %s: requested %d, available %d: %w",
			i.ProductID, amount, i.Available(), ErrInsufficientInventory)
	}
	i.ReservedQuantity += amount
	return i, nil
}

// ReleaseReservation returns amount units of a hold to the available pool.
// Releasing more than is reserved is tolerated; the reservation floors at 0.
func (i Inventory) ReleaseReservation(amount int) Inventory {
	i.ReservedQuantity -= amount
	if i.ReservedQuantity < 0 {
		i.ReservedQuantity = 0
	}
	return i
}

// RestoreFulfillment is the inverse of Fulfill: it returns amount consumed
// units to the stock pool with their reservation reinstated. Used to unwind
// a partially fulfilled delivery.
func (i Inventory) RestoreFulfillment(amount int) Inventory {
	i.Quantity += amount
	i.ReservedQuantity += amount
	return i
}

// Fulfill permanently consumes amount units of previously reserved stock.
func (i Inventory) Fulfill(amount int) (Inventory, error) {
	if i.ReservedQuantity < amount {
		return i, fmt.Errorf("product %s: fulfilling %d, reserved %d: %w",
			i.ProductID, amount, i.ReservedQuantity, ErrInsufficientReservedInventory)
	}
	i.Quantity -= amount
	i.ReservedQuantity -= amount
	return i, nil
}
