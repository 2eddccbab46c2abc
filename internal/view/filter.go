package view

import (
	"log/slog"
	"math"
	"strings"

	"inventory-live-view/internal/models"
)

// Filter returns the records matching every active dimension of cfg. It is a
// pure map-filter over the input: output order follows input order and no
// additional ordering is imposed. A record that cannot be evaluated is
// excluded rather than aborting the whole pass.
func Filter(records []models.InventoryRecord, cfg models.FilterConfig) []models.InventoryRecord {
	out := make([]models.InventoryRecord, 0, len(records))
	for i := range records {
		if matchesSafe(records[i], cfg) {
			out = append(out, records[i])
		}
	}
	return out
}

// matchesSafe evaluates Matches and converts a panic on an unexpected record
// shape into a failed match, so one malformed record never blanks the view.
func matchesSafe(r models.InventoryRecord, cfg models.FilterConfig) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("Filter evaluation failed, excluding record",
				"record_id", r.ID,
				"panic", rec)
			ok = false
		}
	}()
	return Matches(r, cfg)
}

// Matches reports whether the record passes every active dimension of cfg.
// Dimensions combine with AND semantics; a dimension left at its "all" or
// empty sentinel imposes no constraint.
func Matches(r models.InventoryRecord, cfg models.FilterConfig) bool {
	if r.Hidden && !cfg.IncludeHidden {
		return false
	}
	if !matchesSearch(r, cfg.Search) {
		return false
	}
	if !matchesStatus(r, cfg.Status) {
		return false
	}
	if !containsFold(r.Vendor, cfg.Vendor) {
		return false
	}
	if !containsFold(r.Location, cfg.Location) {
		return false
	}
	if !cfg.Price.Contains(Price(r)) {
		return false
	}
	if !cfg.Cost.Contains(CostValue(r)) {
		return false
	}
	if !cfg.Stock.Contains(r.CurrentStock) {
		return false
	}
	if !matchesVelocity(r, cfg.Velocity) {
		return false
	}
	if !matchesStockDays(r, cfg.StockDays) {
		return false
	}
	if cfg.ReorderNeeded && !ReorderNeeded(r) {
		return false
	}
	if cfg.HasValue && Price(r) <= 0 {
		return false
	}
	if !matchesSourceType(r, cfg.SourceType, cfg.ManufacturedVendors) {
		return false
	}
	return true
}

// matchesSearch is a case-insensitive substring match against sku, display
// name, and vendor. An empty or whitespace-only term matches everything.
func matchesSearch(r models.InventoryRecord, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(r.SKU), term) ||
		strings.Contains(strings.ToLower(r.DisplayName), term) ||
		strings.Contains(strings.ToLower(r.Vendor), term)
}

func matchesStatus(r models.InventoryRecord, status models.StatusFilter) bool {
	switch status {
	case "", models.StatusAll:
		return true
	case models.StatusOutOfStock:
		return r.CurrentStock == 0
	case models.StatusInStock:
		return r.CurrentStock > 0
	case models.StatusCritical:
		return StatusLevel(r) == models.StockStatusCritical
	case models.StatusLow:
		return StatusLevel(r) == models.StockStatusLow
	case models.StatusAdequate:
		return StatusLevel(r) == models.StockStatusAdequate
	case models.StatusOverstocked:
		return StatusLevel(r) == models.StockStatusOverstocked
	default:
		// Unknown categories constrain nothing rather than hiding data.
		return true
	}
}

// matchesVelocity buckets are closed on their upper bound: fast > 1,
// medium in (0.1, 1], slow in (0, 0.1], dead exactly 0.
func matchesVelocity(r models.InventoryRecord, bucket models.VelocityBucket) bool {
	v := Velocity(r)
	switch bucket {
	case "", models.VelocityAll:
		return true
	case models.VelocityFast:
		return v > 1
	case models.VelocityMedium:
		return v > 0.1 && v <= 1
	case models.VelocitySlow:
		return v > 0 && v <= 0.1
	case models.VelocityDead:
		return v == 0
	default:
		return true
	}
}

// matchesStockDays buckets are half-open (lower, upper]. A record that never
// stocks out (+Inf days) matches only the unbounded over-90/over-180 buckets;
// a record with 0 days (no stock) matches none of them.
func matchesStockDays(r models.InventoryRecord, bucket models.StockDaysBucket) bool {
	d := DaysUntilStockout(r)
	switch bucket {
	case "", models.StockDaysAll:
		return true
	case models.StockDaysUnder30:
		return d > 0 && d <= 30
	case models.StockDays30To60:
		return d > 30 && d <= 60
	case models.StockDays60To90:
		return d > 60 && d <= 90
	case models.StockDaysOver90:
		return d > 90 || math.IsInf(d, 1)
	case models.StockDaysOver180:
		return d > 180 || math.IsInf(d, 1)
	default:
		return true
	}
}

// matchesSourceType tests vendor membership in the configured manufacturing
// vendor set. A record with no vendor matches neither source type.
func matchesSourceType(r models.InventoryRecord, source models.SourceType, manufactured []string) bool {
	switch source {
	case "", models.SourceAll:
		return true
	case models.SourceManufactured:
		return r.Vendor != "" && vendorInSet(r.Vendor, manufactured)
	case models.SourcePurchased:
		return r.Vendor != "" && !vendorInSet(r.Vendor, manufactured)
	default:
		return true
	}
}

func vendorInSet(vendor string, set []string) bool {
	for _, v := range set {
		if strings.EqualFold(strings.TrimSpace(v), vendor) {
			return true
		}
	}
	return false
}

// containsFold is a case-insensitive substring containment check; an empty
// configured value imposes no constraint.
func containsFold(value, configured string) bool {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(configured))
}
