package models_test

import (
	"testing"

	"orderflow/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestInventory_Reserve(t *testing.T) {
	inv := models.Inventory{ProductID: "p1", Quantity: 10, ReservedQuantity: 3}

	// Successful reservation increments the hold
	next, err := inv.Reserve(5)
	assert.NoError(t, err)
	assert.Equal(t, 8, next.ReservedQuantity)
	assert.Equal(t, 10, next.Quantity)
	assert.Equal(t, 2, next.Available())

	// Reserving more than available fails and leaves state unchanged
	next, err = next.Reserve(3)
	assert.ErrorIs(t, err, models.ErrInsufficientInventory)
	assert.Equal(t, 8, next.ReservedQuantity)

	// Reserving exactly the remaining availability succeeds
	next, err = next.Reserve(2)
	assert.NoError(t, err)
	assert.Equal(t, 10, next.ReservedQuantity)
	assert.Equal(t, 0, next.Available())
}

func TestInventory_ReleaseReservation(t *testing.T) {
	inv := models.Inventory{ProductID: "p1", Quantity: 10, ReservedQuantity: 4}

	// Reserve then release restores the prior hold
	next, err := inv.Reserve(3)
	assert.NoError(t, err)
	next = next.ReleaseReservation(3)
	assert.Equal(t, inv.ReservedQuantity, next.ReservedQuantity)

	// Excess release floors at zero rather than going negative
	next = next.ReleaseReservation(100)
	assert.Equal(t, 0, next.ReservedQuantity)
	assert.Equal(t, 10, next.Quantity)
}

func TestInventory_Fulfill(t *testing.T) {
	inv := models.Inventory{ProductID: "p1", Quantity: 10, ReservedQuantity: 4}

	// Fulfillment consumes both total and reserved stock
	next, err := inv.Fulfill(4)
	assert.NoError(t, err)
	assert.Equal(t, 6, next.Quantity)
	assert.Equal(t, 0, next.ReservedQuantity)

	// Fulfilling more than is reserved fails and leaves state unchanged
	next, err = next.Fulfill(1)
	assert.ErrorIs(t, err, models.ErrInsufficientReservedInventory)
	assert.Equal(t, 6, next.Quantity)
	assert.Equal(t, 0, next.ReservedQuantity)
}

func TestInventory_InvariantHoldsAcrossTransitions(t *testing.T) {
	inv := models.Inventory{ProductID: "p1", Quantity: 20}

	check := func(i models.Inventory) {
		assert.GreaterOrEqual(t, i.ReservedQuantity, 0)
		assert.LessOrEqual(t, i.ReservedQuantity, i.Quantity)
		assert.GreaterOrEqual(t, i.Available(), 0)
	}

	steps := []func(models.Inventory) (models.Inventory, error){
		func(i models.Inventory) (models.Inventory, error) { return i.Reserve(12) },
		func(i models.Inventory) (models.Inventory, error) { return i.ReleaseReservation(5), nil },
		func(i models.Inventory) (models.Inventory, error) { return i.Fulfill(4) },
		func(i models.Inventory) (models.Inventory, error) { return i.Reserve(13) },
		func(i models.Inventory) (models.Inventory, error) { return i.Fulfill(20) },
		func(i models.Inventory) (models.Inventory, error) { return i.ReleaseReservation(16), nil },
		func(i models.Inventory) (models.Inventory, error) { return i.Reserve(3) },
	}
	for _, step := range steps {
		next, err := step(inv)
		if err == nil {
			inv = next
		}
		check(inv)
	}
}

func TestInventory_RestoreFulfillment(t *testing.T) {
	inv := models.Inventory{ProductID: "p1", Quantity: 10, ReservedQuantity: 4}

	consumed, err := inv.Fulfill(4)
	assert.NoError(t, err)

	// Restoring undoes the fulfillment exactly
	restored := consumed.RestoreFulfillment(4)
	assert.Equal(t, inv.Quantity, restored.Quantity)
	assert.Equal(t, inv.ReservedQuantity, restored.ReservedQuantity)
}
