// Package alerts derives time-sensitive critical stock alerts from the
// reconciled working collection and keeps them in a bounded buffer.
package alerts

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"inventory-live-view/internal/models"
	"inventory-live-view/internal/view"
)

// DefaultCapacity bounds the alert buffer when callers do not configure one.
const DefaultCapacity = 15

// stockoutAlertDays is the horizon below which a finite days-until-stockout
// projection raises a critical_stockout alert.
const stockoutAlertDays = 7

// lowStockHighUrgencyDays is the horizon below which a low_stock alert is
// classified high instead of medium.
const lowStockHighUrgencyDays = 14

// Buffer is the bounded, newest-first alert list owned by one session. It is
// the only component allowed to create alerts; acknowledgement is the only
// permitted mutation afterwards.
type Buffer struct {
	mu       sync.Mutex
	alerts   []models.CriticalAlert
	capacity int
}

// NewBuffer creates an alert buffer holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Scan derives alerts from the given records and merges them into the
// buffer. At most one unacknowledged alert exists per (record, alert type)
// pair: when one is already present the existing entry is left untouched,
// with no timestamp bump. New alerts are prepended; the oldest entries
// beyond capacity are evicted. The newly raised alerts are returned.
func (b *Buffer) Scan(records []models.InventoryRecord) []models.CriticalAlert {
	b.mu.Lock()
	defer b.mu.Unlock()

	var raised []models.CriticalAlert
	now := time.Now().UTC()

	for i := range records {
		for _, alert := range derive(records[i], now) {
			if b.hasUnacknowledged(alert.RecordID, alert.Type) {
				continue
			}
			raised = append(raised, alert)
		}
	}

	if len(raised) == 0 {
		return nil
	}

	b.alerts = append(raised, b.alerts...)
	if len(b.alerts) > b.capacity {
		evicted := len(b.alerts) - b.capacity
		b.alerts = b.alerts[:b.capacity]
		slog.Debug("Evicted oldest alerts beyond buffer capacity",
			"evicted", evicted,
			"capacity", b.capacity)
	}

	for _, alert := range raised {
		slog.Info("Critical stock alert raised",
			"alert_id", alert.ID,
			"record_id", alert.RecordID,
			"alert_type", alert.Type,
			"urgency", alert.Urgency)
	}

	return raised
}

// Acknowledge flips the acknowledged flag on the alert with the given id.
// It is idempotent and never removes the alert from the buffer. It reports
// whether the alert exists.
func (b *Buffer) Acknowledge(alertID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.alerts {
		if b.alerts[i].ID != alertID {
			continue
		}
		if !b.alerts[i].Acknowledged {
			b.alerts[i].Acknowledged = true
			slog.Debug("Alert acknowledged", "alert_id", alertID)
		}
		return true
	}
	return false
}

// List returns a copy of the buffer, newest first.
func (b *Buffer) List() []models.CriticalAlert {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.CriticalAlert, len(b.alerts))
	copy(out, b.alerts)
	return out
}

// Len returns the number of buffered alerts.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.alerts)
}

func (b *Buffer) hasUnacknowledged(recordID string, alertType models.AlertType) bool {
	for i := range b.alerts {
		if b.alerts[i].RecordID == recordID &&
			b.alerts[i].Type == alertType &&
			!b.alerts[i].Acknowledged {
			return true
		}
	}
	return false
}

// derive produces at most one alert per alert type for a single record.
// A record with no stock is covered by out_of_stock alone; low_stock and
// critical_stockout only apply while some stock remains.
func derive(r models.InventoryRecord, now time.Time) []models.CriticalAlert {
	var out []models.CriticalAlert

	if r.CurrentStock == 0 {
		out = append(out, newAlert(r, models.AlertOutOfStock, models.UrgencyCritical,
			fmt.Sprintf("%s (%s) is out of stock", r.DisplayName, r.SKU), now))
		return out
	}

	days := view.DaysUntilStockout(r)

	if r.ReorderPoint != nil && r.CurrentStock <= *r.ReorderPoint {
		urgency := models.UrgencyMedium
		if days < lowStockHighUrgencyDays {
			urgency = models.UrgencyHigh
		}
		out = append(out, newAlert(r, models.AlertLowStock, urgency,
			fmt.Sprintf("%s (%s) is low on stock: %d left, reorder point %d",
				r.DisplayName, r.SKU, r.CurrentStock, *r.ReorderPoint), now))
	}

	if !math.IsInf(days, 1) && days < stockoutAlertDays {
		out = append(out, newAlert(r, models.AlertCriticalStockout, models.UrgencyCritical,
			fmt.Sprintf("%s (%s) stocks out in %.1f days at current sales velocity",
				r.DisplayName, r.SKU, days), now))
	}

	return out
}

func newAlert(r models.InventoryRecord, alertType models.AlertType, urgency models.AlertUrgency, message string, now time.Time) models.CriticalAlert {
	return models.CriticalAlert{
		ID:        uuid.NewString(),
		RecordID:  r.ID,
		Type:      alertType,
		Urgency:   urgency,
		Message:   message,
		CreatedAt: now,
	}
}
