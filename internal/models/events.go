package models

// EventKind identifies the type of a change event.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// ChangeEvent represents a single change on the live feed. Insert and update
// events carry the full record; delete events only need the record id.
// Events carry no ordering guarantee beyond arrival order on their stream.
type ChangeEvent struct {
	Kind     EventKind        `json:"kind"`
	RecordID string           `json:"recordId,omitempty"`
	Record   *InventoryRecord `json:"record,omitempty"`
}

// TargetID returns the id of the record the event refers to.
func (e ChangeEvent) TargetID() string {
	if e.RecordID != "" {
		return e.RecordID
	}
	if e.Record != nil {
		return e.Record.ID
	}
	return ""
}
