package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"inventory-live-view/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestPrice_FallbackChain(t *testing.T) {
	testCases := []struct {
		name     string
		record   models.InventoryRecord
		expected float64
	}{
		{
			name:     "Unit price wins over cost",
			record:   models.InventoryRecord{UnitPrice: floatPtr(9.5), Cost: floatPtr(4)},
			expected: 9.5,
		},
		{
			name:     "Cost used when unit price absent",
			record:   models.InventoryRecord{Cost: floatPtr(4)},
			expected: 4,
		},
		{
			name:     "Zero when both absent",
			record:   models.InventoryRecord{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Price(tc.record))
		})
	}
}

func TestVelocity_ClampsToZero(t *testing.T) {
	assert.Equal(t, 0.0, Velocity(models.InventoryRecord{}))
	assert.Equal(t, 0.0, Velocity(models.InventoryRecord{SalesVelocity: -2}))
	assert.Equal(t, 0.0, Velocity(models.InventoryRecord{SalesVelocity: math.NaN()}))
	assert.Equal(t, 1.5, Velocity(models.InventoryRecord{SalesVelocity: 1.5}))
}

func TestDaysUntilStockout(t *testing.T) {
	// No stock means already stocked out, regardless of velocity.
	assert.Equal(t, 0.0, DaysUntilStockout(models.InventoryRecord{CurrentStock: 0, SalesVelocity: 3}))

	// Stock but no velocity never stocks out.
	assert.True(t, math.IsInf(DaysUntilStockout(models.InventoryRecord{CurrentStock: 10}), 1))

	// Otherwise stock divided by velocity.
	assert.Equal(t, 20.0, DaysUntilStockout(models.InventoryRecord{CurrentStock: 10, SalesVelocity: 0.5}))
}

func TestStatusLevel_UsesPrecomputedLevelVerbatim(t *testing.T) {
	// A server-computed level is never recomputed, even when local fields
	// would disagree.
	record := models.InventoryRecord{
		CurrentStock:     0,
		StockStatusLevel: models.StockStatusAdequate,
	}

	assert.Equal(t, models.StockStatusAdequate, StatusLevel(record))
}

func TestStatusLevel_Derivation(t *testing.T) {
	testCases := []struct {
		name     string
		record   models.InventoryRecord
		expected models.StockStatusLevel
	}{
		{
			name:     "No stock is critical",
			record:   models.InventoryRecord{CurrentStock: 0},
			expected: models.StockStatusCritical,
		},
		{
			name:     "At reorder point is low",
			record:   models.InventoryRecord{CurrentStock: 5, ReorderPoint: intPtr(5)},
			expected: models.StockStatusLow,
		},
		{
			name:     "Falls back to minimum stock when reorder point absent",
			record:   models.InventoryRecord{CurrentStock: 3, MinimumStock: 4},
			expected: models.StockStatusLow,
		},
		{
			name:     "Above maximum stock is overstocked",
			record:   models.InventoryRecord{CurrentStock: 100, MaximumStock: intPtr(50)},
			expected: models.StockStatusOverstocked,
		},
		{
			name:     "Healthy stock is adequate",
			record:   models.InventoryRecord{CurrentStock: 20, ReorderPoint: intPtr(5)},
			expected: models.StockStatusAdequate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusLevel(tc.record))
		})
	}
}

func TestReorderNeeded(t *testing.T) {
	assert.True(t, ReorderNeeded(models.InventoryRecord{ReorderRecommended: true}))
	assert.True(t, ReorderNeeded(models.InventoryRecord{CurrentStock: 4, ReorderPoint: intPtr(5)}))
	assert.False(t, ReorderNeeded(models.InventoryRecord{CurrentStock: 6, ReorderPoint: intPtr(5)}))
	assert.False(t, ReorderNeeded(models.InventoryRecord{CurrentStock: 0}))
}
