package models

import "time"

// StockStatusLevel classifies how healthy a record's stock position is.
type StockStatusLevel string

const (
	StockStatusCritical    StockStatusLevel = "critical"
	StockStatusLow         StockStatusLevel = "low"
	StockStatusAdequate    StockStatusLevel = "adequate"
	StockStatusOverstocked StockStatusLevel = "overstocked"
)

// InventoryRecord represents one inventory item in the working collection.
// Records are only mutated through change events or the explicit stock/cost
// update operations, which are themselves applied as update events.
type InventoryRecord struct {
	ID                 string           `json:"id"`
	SKU                string           `json:"sku"`
	DisplayName        string           `json:"displayName"`
	CurrentStock       int              `json:"currentStock"`
	MinimumStock       int              `json:"minimumStock"`
	MaximumStock       *int             `json:"maximumStock,omitempty"`
	ReorderPoint       *int             `json:"reorderPoint,omitempty"`
	UnitPrice          *float64         `json:"unitPrice,omitempty"`
	Cost               *float64         `json:"cost,omitempty"`
	Vendor             string           `json:"vendor,omitempty"`
	Location           string           `json:"location,omitempty"`
	SalesVelocity      float64          `json:"salesVelocity"`
	StockStatusLevel   StockStatusLevel `json:"stockStatusLevel,omitempty"`
	ReorderRecommended bool             `json:"reorderRecommended"`
	Hidden             bool             `json:"hidden"`
	Version            int64            `json:"version"`
	LastUpdated        time.Time        `json:"lastUpdated"`
}
