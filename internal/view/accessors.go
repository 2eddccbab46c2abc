// Package view implements the query pipeline over the working collection:
// canonical field accessors, the filter predicate evaluator, the
// comparator/sort engine, and the pagination slicer.
package view

import (
	"math"

	"inventory-live-view/internal/models"
)

// The accessors below are the single source of truth for field fallbacks.
// Filtering, sorting, and alert derivation must all read record fields
// through them so that absent values resolve identically everywhere.

// Price returns the effective monetary value of a record: unit price if
// present, otherwise cost, otherwise 0.
func Price(r models.InventoryRecord) float64 {
	if r.UnitPrice != nil {
		return *r.UnitPrice
	}
	if r.Cost != nil {
		return *r.Cost
	}
	return 0
}

// CostValue returns the record cost, defaulting to 0 when absent.
func CostValue(r models.InventoryRecord) float64 {
	if r.Cost != nil {
		return *r.Cost
	}
	return 0
}

// Velocity returns the sales velocity in units/day, clamped to be >= 0.
func Velocity(r models.InventoryRecord) float64 {
	if r.SalesVelocity > 0 && !math.IsNaN(r.SalesVelocity) {
		return r.SalesVelocity
	}
	return 0
}

// DaysUntilStockout projects the days of remaining stock at the current
// sales velocity. A record with no stock is already stocked out (0 days);
// a record with stock but no velocity never stocks out (+Inf).
func DaysUntilStockout(r models.InventoryRecord) float64 {
	if r.CurrentStock <= 0 {
		return 0
	}
	v := Velocity(r)
	if v == 0 {
		return math.Inf(1)
	}
	return float64(r.CurrentStock) / v
}

// StatusLevel returns the stock status classification. The server-computed
// level is used verbatim when present so the view never drifts from it;
// the level is only derived locally when the record carries none.
func StatusLevel(r models.InventoryRecord) models.StockStatusLevel {
	if r.StockStatusLevel != "" {
		return r.StockStatusLevel
	}
	if r.CurrentStock <= 0 {
		return models.StockStatusCritical
	}
	if r.CurrentStock <= reorderThreshold(r) {
		return models.StockStatusLow
	}
	if r.MaximumStock != nil && r.CurrentStock > *r.MaximumStock {
		return models.StockStatusOverstocked
	}
	return models.StockStatusAdequate
}

// ReorderNeeded reports whether the record should be reordered: either the
// server recommended it or stock has fallen to the reorder point.
func ReorderNeeded(r models.InventoryRecord) bool {
	if r.ReorderRecommended {
		return true
	}
	return r.ReorderPoint != nil && r.CurrentStock <= *r.ReorderPoint
}

// reorderThreshold picks the reorder point when set, falling back to the
// minimum stock level.
func reorderThreshold(r models.InventoryRecord) int {
	if r.ReorderPoint != nil {
		return *r.ReorderPoint
	}
	return r.MinimumStock
}
