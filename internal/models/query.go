package models

// StatusFilter selects records by stock status category.
type StatusFilter string

const (
	StatusAll         StatusFilter = "all"
	StatusOutOfStock  StatusFilter = "out-of-stock"
	StatusInStock     StatusFilter = "in-stock"
	StatusCritical    StatusFilter = "critical"
	StatusLow         StatusFilter = "low"
	StatusAdequate    StatusFilter = "adequate"
	StatusOverstocked StatusFilter = "overstocked"
)

// VelocityBucket selects records by sales velocity (units/day).
type VelocityBucket string

const (
	VelocityAll    VelocityBucket = "all"
	VelocityFast   VelocityBucket = "fast"   // > 1/day
	VelocityMedium VelocityBucket = "medium" // (0.1, 1]
	VelocitySlow   VelocityBucket = "slow"   // (0, 0.1]
	VelocityDead   VelocityBucket = "dead"   // 0
)

// StockDaysBucket selects records by projected days until stockout.
type StockDaysBucket string

const (
	StockDaysAll      StockDaysBucket = "all"
	StockDaysUnder30  StockDaysBucket = "under-30" // (0, 30]
	StockDays30To60   StockDaysBucket = "30-60"    // (30, 60]
	StockDays60To90   StockDaysBucket = "60-90"    // (60, 90]
	StockDaysOver90   StockDaysBucket = "over-90"  // (90, +inf)
	StockDaysOver180  StockDaysBucket = "over-180" // (180, +inf)
)

// SourceType selects records by how they are sourced.
type SourceType string

const (
	SourceAll          SourceType = "all"
	SourceManufactured SourceType = "manufactured"
	SourcePurchased    SourceType = "purchased"
)

// FloatRange is an inclusive [Min, Max] constraint. A nil bound is unbounded.
type FloatRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Inverted reports whether both bounds are set and Min exceeds Max.
func (r FloatRange) Inverted() bool {
	return r.Min != nil && r.Max != nil && *r.Min > *r.Max
}

// Normalized returns the range with inverted bounds swapped back into order.
func (r FloatRange) Normalized() FloatRange {
	if r.Inverted() {
		return FloatRange{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether v falls inside the (normalized) range.
func (r FloatRange) Contains(v float64) bool {
	n := r.Normalized()
	if n.Min != nil && v < *n.Min {
		return false
	}
	if n.Max != nil && v > *n.Max {
		return false
	}
	return true
}

// IntRange is an inclusive [Min, Max] constraint over integers.
type IntRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Inverted reports whether both bounds are set and Min exceeds Max.
func (r IntRange) Inverted() bool {
	return r.Min != nil && r.Max != nil && *r.Min > *r.Max
}

// Normalized returns the range with inverted bounds swapped back into order.
func (r IntRange) Normalized() IntRange {
	if r.Inverted() {
		return IntRange{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether v falls inside the (normalized) range.
func (r IntRange) Contains(v int) bool {
	n := r.Normalized()
	if n.Min != nil && v < *n.Min {
		return false
	}
	if n.Max != nil && v > *n.Max {
		return false
	}
	return true
}

// FilterConfig is a value object holding one constraint per filter dimension.
// The zero value (or the explicit "all" sentinels) matches every record that
// is not hidden. Configs are replaced wholesale on each change, never edited
// in place.
type FilterConfig struct {
	Search              string          `json:"search,omitempty"`
	Status              StatusFilter    `json:"status,omitempty"`
	Vendor              string          `json:"vendor,omitempty"`
	Location            string          `json:"location,omitempty"`
	Price               FloatRange      `json:"price,omitempty"`
	Cost                FloatRange      `json:"cost,omitempty"`
	Stock               IntRange        `json:"stock,omitempty"`
	Velocity            VelocityBucket  `json:"velocity,omitempty"`
	StockDays           StockDaysBucket `json:"stockDays,omitempty"`
	ReorderNeeded       bool            `json:"reorderNeeded,omitempty"`
	HasValue            bool            `json:"hasValue,omitempty"`
	IncludeHidden       bool            `json:"includeHidden,omitempty"`
	SourceType          SourceType      `json:"sourceType,omitempty"`
	ManufacturedVendors []string        `json:"manufacturedVendors,omitempty"`
}

// SortField identifies the single active sort dimension.
type SortField string

const (
	SortByName        SortField = "name"
	SortBySKU         SortField = "sku"
	SortByStock       SortField = "currentStock"
	SortByPrice       SortField = "price"
	SortByCost        SortField = "cost"
	SortByVelocity    SortField = "salesVelocity"
	SortByStockDays   SortField = "daysUntilStockout"
	SortByVendor      SortField = "vendor"
	SortByLocation    SortField = "location"
	SortByStatus      SortField = "status"
	SortByReorder     SortField = "reorderRecommended"
	SortByLastUpdated SortField = "lastUpdated"
)

// SortDirection is the order applied to the active sort field.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig holds the single active sort field and its direction.
type SortConfig struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// ViewPage is the paginated, filtered, sorted slice exposed to the
// presentation layer.
type ViewPage struct {
	Items      []InventoryRecord `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	Total      int               `json:"total"`
}

// FetchResult is what the fetch collaborator returns for one page request.
type FetchResult struct {
	Items []InventoryRecord `json:"items"`
	Total int               `json:"total"`
}
