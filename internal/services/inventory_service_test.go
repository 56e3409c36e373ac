package services_test

import (
	"sync"
	"testing"

	"orderflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryService_SetStock(t *testing.T) {
	f := newFixture()

	// Creates the record when none exists
	inv, err := f.inventory.SetStock("prod-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Quantity)

	// Cannot drop below the reserved quantity
	require.NoError(t, f.inventory.Reserve("prod-1", 4))
	_, err = f.inventory.SetStock("prod-1", 3)
	assert.Error(t, err)

	// Shrinking down to the reserved quantity is allowed
	inv, err = f.inventory.SetStock("prod-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Available())

	_, err = f.inventory.SetStock("prod-1", -1)
	assert.Error(t, err)
}

func TestInventoryService_ReserveUnknownProduct(t *testing.T) {
	f := newFixture()

	err := f.inventory.Reserve("missing", 1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestInventoryService_ConcurrentReservesNeverOversell(t *testing.T) {
	f := newFixture()
	_, err := f.inventory.SetStock("prod-1", 10)
	require.NoError(t, err)

	// 50 goroutines each try to reserve one unit of a 10-unit stock.
	// Exactly 10 may win; the hold must never exceed the stock.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.inventory.Reserve("prod-1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	inv := f.inventoryOf("prod-1")
	assert.Equal(t, 10, inv.ReservedQuantity)
	assert.LessOrEqual(t, inv.ReservedQuantity, inv.Quantity)
}

func TestInventoryService_ReserveReleaseFulfillRoundTrip(t *testing.T) {
	f := newFixture()
	_, err := f.inventory.SetStock("prod-1", 10)
	require.NoError(t, err)

	require.NoError(t, f.inventory.Reserve("prod-1", 6))
	require.NoError(t, f.inventory.Release("prod-1", 2))
	require.NoError(t, f.inventory.Fulfill("prod-1", 4))

	inv := f.inventoryOf("prod-1")
	assert.Equal(t, 6, inv.Quantity)
	assert.Equal(t, 0, inv.ReservedQuantity)

	// Fulfilling without a hold fails
	err = f.inventory.Fulfill("prod-1", 1)
	assert.ErrorIs(t, err, models.ErrInsufficientReservedInventory)
}
