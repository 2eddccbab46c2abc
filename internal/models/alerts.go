package models

import "time"

// AlertType identifies the condition that raised a critical stock alert.
type AlertType string

const (
	AlertOutOfStock       AlertType = "out_of_stock"
	AlertLowStock         AlertType = "low_stock"
	AlertCriticalStockout AlertType = "critical_stockout"
)

// AlertUrgency is the severity classification attached to a derived alert.
type AlertUrgency string

const (
	UrgencyCritical AlertUrgency = "critical"
	UrgencyHigh     AlertUrgency = "high"
	UrgencyMedium   AlertUrgency = "medium"
	UrgencyLow      AlertUrgency = "low"
)

// CriticalAlert is a derived, time-sensitive stock alert. Alerts are created
// only by the alert derivation pass and mutated only by acknowledgement.
type CriticalAlert struct {
	ID           string       `json:"id"`
	RecordID     string       `json:"recordId"`
	Type         AlertType    `json:"alertType"`
	Urgency      AlertUrgency `json:"urgency"`
	Message      string       `json:"message"`
	CreatedAt    time.Time    `json:"createdAt"`
	Acknowledged bool         `json:"acknowledged"`
}
