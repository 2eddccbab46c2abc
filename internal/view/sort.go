package view

import (
	"sort"
	"strings"

	"inventory-live-view/internal/models"
)

// statusRank orders stock status levels from most to least urgent for
// sorting purposes.
var statusRank = map[models.StockStatusLevel]int{
	models.StockStatusCritical:    0,
	models.StockStatusLow:         1,
	models.StockStatusAdequate:    2,
	models.StockStatusOverstocked: 3,
}

// comparator returns the three-way ordering of two records under a single
// field in ascending direction: negative when a sorts before b.
type comparator func(a, b models.InventoryRecord) int

// Sort orders records in place according to cfg using a stable sort: records
// equal under the active field keep their relative input order. There is no
// secondary sort key. Descending is the exact negation of ascending, so
// absent values sort after present values ascending and before them
// descending, and flipping direction over a tie-free input reverses the
// order exactly.
func Sort(records []models.InventoryRecord, cfg models.SortConfig) {
	cmp := comparatorFor(cfg.Field)
	if cmp == nil {
		return
	}
	desc := cfg.Direction == models.SortDesc
	sort.SliceStable(records, func(i, j int) bool {
		c := cmp(records[i], records[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func comparatorFor(field models.SortField) comparator {
	switch field {
	case models.SortByName:
		return func(a, b models.InventoryRecord) int {
			return compareStrings(a.DisplayName, b.DisplayName)
		}
	case models.SortBySKU:
		return func(a, b models.InventoryRecord) int {
			return compareStrings(a.SKU, b.SKU)
		}
	case models.SortByStock:
		return func(a, b models.InventoryRecord) int {
			return compareInts(a.CurrentStock, b.CurrentStock)
		}
	case models.SortByPrice:
		return func(a, b models.InventoryRecord) int {
			return compareFloats(Price(a), Price(b))
		}
	case models.SortByCost:
		return func(a, b models.InventoryRecord) int {
			return compareFloats(CostValue(a), CostValue(b))
		}
	case models.SortByVelocity:
		return func(a, b models.InventoryRecord) int {
			return compareFloats(Velocity(a), Velocity(b))
		}
	case models.SortByStockDays:
		return func(a, b models.InventoryRecord) int {
			return compareFloats(DaysUntilStockout(a), DaysUntilStockout(b))
		}
	case models.SortByVendor:
		return func(a, b models.InventoryRecord) int {
			return compareStrings(a.Vendor, b.Vendor)
		}
	case models.SortByLocation:
		return func(a, b models.InventoryRecord) int {
			return compareStrings(a.Location, b.Location)
		}
	case models.SortByStatus:
		return func(a, b models.InventoryRecord) int {
			return compareInts(statusRank[StatusLevel(a)], statusRank[StatusLevel(b)])
		}
	case models.SortByReorder:
		return func(a, b models.InventoryRecord) int {
			return compareBools(ReorderNeeded(a), ReorderNeeded(b))
		}
	case models.SortByLastUpdated:
		return func(a, b models.InventoryRecord) int {
			switch c, done := orderAbsent(a.LastUpdated.IsZero(), b.LastUpdated.IsZero()); {
			case done:
				return c
			case a.LastUpdated.Before(b.LastUpdated):
				return -1
			case a.LastUpdated.After(b.LastUpdated):
				return 1
			default:
				return 0
			}
		}
	default:
		return nil
	}
}

// orderAbsent handles absent-value placement: an absent value sorts after
// every present value in ascending order. done is false when both values are
// present and the field comparison should proceed.
func orderAbsent(aAbsent, bAbsent bool) (c int, done bool) {
	switch {
	case aAbsent && bAbsent:
		return 0, true
	case aAbsent:
		return 1, true
	case bAbsent:
		return -1, true
	default:
		return 0, false
	}
}

// compareStrings orders case-insensitively, treating an empty string as an
// absent value.
func compareStrings(a, b string) int {
	if c, done := orderAbsent(a == "", b == ""); done {
		return c
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareBools orders false before true.
func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}
