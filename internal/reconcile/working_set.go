// Package reconcile owns the working collection: the in-memory set of
// inventory records currently known to the client, mutated only by applying
// change events or a full resynchronization.
package reconcile

import (
	"log/slog"
	"sync"

	"inventory-live-view/internal/models"
)

// Projection filters records before they are merged into the working
// collection. Events for records outside a standing filter (for example a
// vendor or location constraint) are dropped before reaching the set.
type Projection func(models.InventoryRecord) bool

// ApplyResult summarizes one reconciliation pass over a batch of events.
type ApplyResult struct {
	Inserted int
	Updated  int
	Deleted  int
	Dropped  int // events outside the projection, malformed, or deletes of unknown ids
	Stale    int // update events losing the last-writer-wins merge
}

// Changed reports whether the pass modified the collection at all.
func (r ApplyResult) Changed() bool {
	return r.Inserted+r.Updated+r.Deleted > 0
}

// WorkingSet is the reconciler's state: records indexed by id, with their
// first-seen order preserved so downstream stable sorting has a
// deterministic input order.
type WorkingSet struct {
	mu         sync.RWMutex
	records    map[string]models.InventoryRecord
	order      []string
	projection Projection
}

// NewWorkingSet creates an empty working collection.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{
		records: make(map[string]models.InventoryRecord),
	}
}

// SetProjection installs a standing filter applied to every record before it
// is merged, on both event application and full resync. A nil projection
// admits everything.
func (ws *WorkingSet) SetProjection(p Projection) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.projection = p
}

// ReplaceAll discards the collection and reloads it from a full fetch,
// tolerating any event-feed gap that preceded it.
func (ws *WorkingSet) ReplaceAll(records []models.InventoryRecord) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.records = make(map[string]models.InventoryRecord, len(records))
	ws.order = ws.order[:0]
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if ws.projection != nil && !projectSafe(ws.projection, rec) {
			continue
		}
		if _, exists := ws.records[rec.ID]; !exists {
			ws.order = append(ws.order, rec.ID)
		}
		ws.records[rec.ID] = rec
	}

	slog.Debug("Working collection replaced", "record_count", len(ws.records))
}

// Apply merges a batch of change events into the collection in stream order.
// Insert of a known id behaves as update, update of an unknown id behaves as
// insert, and delete of an unknown id is a logged no-op. Updates losing the
// last-writer-wins merge against the resident record are dropped as stale.
func (ws *WorkingSet) Apply(events []models.ChangeEvent) ApplyResult {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	var result ApplyResult
	for _, ev := range events {
		ws.applyOne(ev, &result)
	}

	if len(events) > 0 {
		slog.Debug("Applied change events to working collection",
			"events", len(events),
			"inserted", result.Inserted,
			"updated", result.Updated,
			"deleted", result.Deleted,
			"dropped", result.Dropped,
			"stale", result.Stale,
			"record_count", len(ws.records))
	}

	return result
}

func (ws *WorkingSet) applyOne(ev models.ChangeEvent, result *ApplyResult) {
	id := ev.TargetID()
	if id == "" {
		slog.Warn("Change event carries no record id, dropping", "kind", ev.Kind)
		result.Dropped++
		return
	}

	if ev.Kind == models.EventDelete {
		if _, exists := ws.records[id]; !exists {
			slog.Debug("Delete for unknown record, ignoring", "record_id", id)
			result.Dropped++
			return
		}
		delete(ws.records, id)
		ws.removeFromOrder(id)
		result.Deleted++
		return
	}

	// Insert and update share one upsert path: an insert for a resident id
	// is treated as an update, an update for an unknown id self-heals into
	// an insert from the event payload.
	if ev.Record == nil {
		slog.Warn("Change event carries no record payload, dropping",
			"kind", ev.Kind,
			"record_id", id)
		result.Dropped++
		return
	}

	rec := *ev.Record
	rec.ID = id

	if ws.projection != nil && !projectSafe(ws.projection, rec) {
		slog.Debug("Event outside standing filter, dropping", "record_id", id)
		result.Dropped++
		return
	}

	existing, exists := ws.records[id]
	if exists {
		if staleAgainst(rec, existing) {
			slog.Debug("Stale update lost last-writer-wins merge, dropping",
				"record_id", id,
				"incoming_ts", rec.LastUpdated,
				"resident_ts", existing.LastUpdated)
			result.Stale++
			return
		}
		ws.records[id] = rec
		result.Updated++
		return
	}

	ws.records[id] = rec
	ws.order = append(ws.order, id)
	result.Inserted++
}

// staleAgainst implements the last-writer-wins merge rule between an incoming
// record and the resident one: older timestamps lose, and on an exact
// timestamp tie a lower version loses.
func staleAgainst(incoming, resident models.InventoryRecord) bool {
	if incoming.LastUpdated.Before(resident.LastUpdated) {
		return true
	}
	if incoming.LastUpdated.Equal(resident.LastUpdated) {
		return incoming.Version != 0 && resident.Version != 0 && incoming.Version < resident.Version
	}
	return false
}

// projectSafe evaluates the projection, treating a panic as a non-match so a
// misbehaving standing filter drops the one event instead of the batch.
func projectSafe(p Projection, rec models.InventoryRecord) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Standing filter panicked, dropping event",
				"record_id", rec.ID,
				"panic", r)
			ok = false
		}
	}()
	return p(rec)
}

// Snapshot returns a read-only copy of the collection in first-seen order.
func (ws *WorkingSet) Snapshot() []models.InventoryRecord {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	out := make([]models.InventoryRecord, 0, len(ws.order))
	for _, id := range ws.order {
		if rec, exists := ws.records[id]; exists {
			out = append(out, rec)
		}
	}
	return out
}

// Get returns a copy of one record by id.
func (ws *WorkingSet) Get(id string) (models.InventoryRecord, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	rec, exists := ws.records[id]
	return rec, exists
}

// Len returns the number of resident records.
func (ws *WorkingSet) Len() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	return len(ws.records)
}

func (ws *WorkingSet) removeFromOrder(id string) {
	for i, existing := range ws.order {
		if existing == id {
			ws.order = append(ws.order[:i], ws.order[i+1:]...)
			return
		}
	}
}
