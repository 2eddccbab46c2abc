// Package session coordinates the live view for one page/session scope: it
// owns the working collection and the alert buffer, debounces search edits,
// discards superseded fetch responses, folds bursts of change events into
// single reconciliation passes, and exposes the paginated view to the
// presentation layer.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inventory-live-view/internal/alerts"
	"inventory-live-view/internal/cache"
	"inventory-live-view/internal/models"
	"inventory-live-view/internal/reconcile"
	"inventory-live-view/internal/telemetry"
	"inventory-live-view/internal/view"
)

// Fetcher is the external fetch collaborator.
type Fetcher interface {
	FetchPage(ctx context.Context, filters models.FilterConfig, sort models.SortConfig, page, pageSize int) (models.FetchResult, error)
}

// Mutator is the external mutation collaborator. Successful results are
// applied locally as update events without waiting for the live feed echo.
type Mutator interface {
	UpdateStock(ctx context.Context, id string, newStock int) (models.InventoryRecord, error)
	UpdateCost(ctx context.Context, id string, newCost float64) (models.InventoryRecord, error)
}

// Subscription is the handle returned by a subscribe collaborator. Ownership
// belongs to whichever scope subscribed; the session unsubscribes on Close
// when one is attached.
type Subscription interface {
	Unsubscribe()
}

const (
	// DefaultDebounceWindow is the restartable delay between a search edit
	// and the query it issues.
	DefaultDebounceWindow = 300 * time.Millisecond

	// DefaultBatchWindow is how long arriving change events are collected
	// before being folded into one reconciliation + re-evaluation pass.
	DefaultBatchWindow = 50 * time.Millisecond

	defaultWarnSuppression = time.Minute
)

// Options configures a session.
type Options struct {
	PageSize       int
	DebounceWindow time.Duration
	BatchWindow    time.Duration
	AlertCapacity  int

	// Projection is an optional standing filter applied to fetched records
	// and incoming events before they reach the working collection.
	Projection reconcile.Projection

	// Metrics may be nil; all recording is then skipped.
	Metrics *telemetry.ViewMetrics

	// WarnSuppression bounds how often a repeated config warning (such as an
	// inverted filter range) is logged.
	WarnSuppression time.Duration
}

// Session is the single owner of one working collection and alert buffer.
// All mutation goes through its entry points; consumers only ever see
// read-only snapshots.
type Session struct {
	fetcher Fetcher
	mutator Mutator
	metrics *telemetry.ViewMetrics

	mu      sync.Mutex
	ctx     context.Context
	working *reconcile.WorkingSet
	buffer  *alerts.Buffer

	filters  models.FilterConfig
	sortCfg  models.SortConfig
	page     int
	pageSize int

	// generation guards against superseded fetches: a response is applied
	// only when its generation still equals the current one.
	generation int64

	pendingSearch  string
	debounceWindow time.Duration
	debounceTimer  *time.Timer

	batchWindow   time.Duration
	pendingEvents []models.ChangeEvent
	flushTimer    *time.Timer

	currentView models.ViewPage
	lastErr     error

	subscription Subscription
	warnCache    *cache.TTLCache
	closed       bool
}

// New creates a session over the given collaborators. Start must be called
// before the session serves live data.
func New(fetcher Fetcher, mutator Mutator, opts Options) *Session {
	if opts.PageSize < 1 {
		opts.PageSize = view.DefaultPageSize
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.BatchWindow <= 0 {
		opts.BatchWindow = DefaultBatchWindow
	}
	if opts.WarnSuppression <= 0 {
		opts.WarnSuppression = defaultWarnSuppression
	}

	working := reconcile.NewWorkingSet()
	working.SetProjection(opts.Projection)

	return &Session{
		fetcher:        fetcher,
		mutator:        mutator,
		metrics:        opts.Metrics,
		ctx:            context.Background(),
		working:        working,
		buffer:         alerts.NewBuffer(opts.AlertCapacity),
		page:           1,
		pageSize:       opts.PageSize,
		debounceWindow: opts.DebounceWindow,
		batchWindow:    opts.BatchWindow,
		currentView:    models.ViewPage{Page: 1, PageSize: opts.PageSize},
		warnCache:      cache.NewTTLCache(opts.WarnSuppression, opts.WarnSuppression),
	}
}

// Start performs the initial synchronous fetch so the session exposes a
// consistent view before any live events arrive. ctx is retained for
// background fetches issued by later query changes.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.generation++
	filters, sortCfg, page, pageSize := s.filters, s.sortCfg, s.page, s.pageSize
	s.mu.Unlock()

	res, err := s.fetcher.FetchPage(ctx, filters, sortCfg, page, pageSize)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.metrics.RecordFetchError(ctx)
		return fmt.Errorf("initial fetch failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
	s.working.ReplaceAll(res.Items)
	s.refreshLocked()
	s.scanAlertsLocked()

	slog.Info("Session started",
		"records", s.working.Len(),
		"remote_total", res.Total,
		"page_size", pageSize)
	return nil
}

// AttachSubscription hands the live-feed handle to the session so Close can
// release it.
func (s *Session) AttachSubscription(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscription = sub
}

// Close stops timers, releases the live feed subscription, and rejects any
// late timer callbacks or fetch responses.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	if s.flushTimer != nil {
		s.flushTimer.Stop()
	}
	sub := s.subscription
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	s.warnCache.Stop()
	slog.Info("Session closed")
}

// SetSearchTerm records a search edit. Each edit restarts the debounce
// window; only the term outstanding when the window elapses commits and
// issues a fetch.
func (s *Session) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pendingSearch = term
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounceWindow, s.commitSearch)
}

func (s *Session) commitSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.filters.Search = s.pendingSearch
	s.page = 1
	s.refreshLocked()
	s.scanAlertsLocked()
	s.issueFetchLocked()
}

// SetFilterConfig replaces the filter configuration wholesale and resets to
// the first page. Malformed ranges are clamped (bounds swapped), never
// rejected, with the warning suppressed to once per window.
func (s *Session) SetFilterConfig(cfg models.FilterConfig) {
	s.warnInvertedRanges(cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.filters = cfg
	s.pendingSearch = cfg.Search
	s.page = 1
	s.refreshLocked()
	s.scanAlertsLocked()
	s.issueFetchLocked()
}

// SetSortConfig replaces the sort configuration and resets to the first page.
func (s *Session) SetSortConfig(cfg models.SortConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.sortCfg = cfg
	s.page = 1
	s.refreshLocked()
	s.issueFetchLocked()
}

// GoToPage moves to the requested page, clamped into range during
// re-evaluation.
func (s *Session) GoToPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.page = page
	s.refreshLocked()
}

// SetPageSize changes the page size and resets to the first page.
func (s *Session) SetPageSize(pageSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if pageSize < 1 {
		pageSize = view.DefaultPageSize
	}
	s.pageSize = pageSize
	s.page = 1
	s.refreshLocked()
}

// Refresh forces a full resynchronization through the fetch collaborator,
// recovering from any event-feed gap.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.issueFetchLocked()
}

// OnEvent receives one live change event. Events arriving within the batch
// window are folded into a single reconciliation and a single downstream
// re-evaluation, not one per event.
func (s *Session) OnEvent(ev models.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pendingEvents = append(s.pendingEvents, ev)
	if s.flushTimer == nil {
		s.flushTimer = time.AfterFunc(s.batchWindow, s.flushEvents)
	}
}

func (s *Session) flushEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	events := s.pendingEvents
	s.pendingEvents = nil
	s.flushTimer = nil
	if len(events) == 0 {
		return
	}

	s.applyEventsLocked(events)
}

// UpdateStock asks the mutation collaborator to set a record's stock and,
// on success, applies the result locally as an update event rather than
// waiting for the subscribe stream to echo it.
func (s *Session) UpdateStock(ctx context.Context, id string, newStock int) (models.InventoryRecord, error) {
	rec, err := s.mutator.UpdateStock(ctx, id, newStock)
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("stock update failed for %s: %w", id, err)
	}
	s.applyOptimistic(rec)
	return rec, nil
}

// UpdateCost asks the mutation collaborator to set a record's cost and
// applies the result locally on success.
func (s *Session) UpdateCost(ctx context.Context, id string, newCost float64) (models.InventoryRecord, error) {
	rec, err := s.mutator.UpdateCost(ctx, id, newCost)
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("cost update failed for %s: %w", id, err)
	}
	s.applyOptimistic(rec)
	return rec, nil
}

func (s *Session) applyOptimistic(rec models.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.applyEventsLocked([]models.ChangeEvent{{Kind: models.EventUpdate, Record: &rec}})
}

// View returns the current paginated, filtered, sorted page.
func (s *Session) View() models.ViewPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.currentView
	out.Items = make([]models.InventoryRecord, len(s.currentView.Items))
	copy(out.Items, s.currentView.Items)
	return out
}

// Err returns the error surfaced by the most recent fetch, if it failed.
// The view then still holds the last good data.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Alerts returns the current alert list, newest first.
func (s *Session) Alerts() []models.CriticalAlert {
	return s.buffer.List()
}

// AcknowledgeAlert acknowledges one alert; idempotent. It reports whether
// the alert exists.
func (s *Session) AcknowledgeAlert(alertID string) bool {
	return s.buffer.Acknowledge(alertID)
}

// FilterConfig returns the committed filter configuration.
func (s *Session) FilterConfig() models.FilterConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SortConfig returns the active sort configuration.
func (s *Session) SortConfig() models.SortConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortCfg
}

// applyEventsLocked reconciles a batch and, when it changed the collection,
// runs exactly one re-evaluation and one alert scan.
func (s *Session) applyEventsLocked(events []models.ChangeEvent) {
	result := s.working.Apply(events)
	s.metrics.RecordEvents(s.ctx, result.Inserted, result.Updated, result.Deleted, result.Dropped, result.Stale)

	if !result.Changed() {
		return
	}
	s.refreshLocked()
	s.scanAlertsLocked()
}

// refreshLocked recomputes the view from the working collection:
// filter, then stable sort, then page slicing with clamping. The clamped
// page number is adopted as the session's current page.
func (s *Session) refreshLocked() {
	started := time.Now()

	snapshot := s.working.Snapshot()
	filtered := view.Filter(snapshot, s.filters)
	view.Sort(filtered, s.sortCfg)
	page := view.Paginate(filtered, s.page, s.pageSize)

	s.page = page.Page
	s.currentView = page
	s.metrics.RecordRefresh(s.ctx, time.Since(started), len(snapshot), len(filtered))

	slog.Debug("View re-evaluated",
		"working_set", len(snapshot),
		"filtered", len(filtered),
		"page", page.Page,
		"total_pages", page.TotalPages,
		"duration", time.Since(started))
}

func (s *Session) scanAlertsLocked() {
	raised := s.buffer.Scan(s.working.Snapshot())
	s.metrics.RecordAlerts(s.ctx, len(raised))
}

// issueFetchLocked starts a background fetch for the current query state.
// Bumping the generation first cancels interest in any in-flight response;
// the network operation itself is left to finish fire-and-forget.
func (s *Session) issueFetchLocked() {
	s.generation++
	gen := s.generation
	filters, sortCfg, page, pageSize := s.filters, s.sortCfg, s.page, s.pageSize
	ctx := s.ctx

	go s.fetch(ctx, gen, filters, sortCfg, page, pageSize)
}

func (s *Session) fetch(ctx context.Context, gen int64, filters models.FilterConfig, sortCfg models.SortConfig, page, pageSize int) {
	res, err := s.fetcher.FetchPage(ctx, filters, sortCfg, page, pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if gen != s.generation {
		slog.Debug("Discarding superseded fetch response",
			"response_generation", gen,
			"current_generation", s.generation)
		s.metrics.RecordStaleResponse(ctx)
		return
	}

	if err != nil {
		// Keep showing the last good data; only surface the error flag.
		s.lastErr = err
		s.metrics.RecordFetchError(ctx)
		slog.Error("Fetch failed, retaining last good view", "error", err)
		return
	}

	s.lastErr = nil
	s.working.ReplaceAll(res.Items)
	s.refreshLocked()
	s.scanAlertsLocked()
}

// warnInvertedRanges logs at most one warning per field per suppression
// window when a range arrives with min > max. Evaluation clamps by swapping
// the bounds, so the config is never rejected.
func (s *Session) warnInvertedRanges(cfg models.FilterConfig) {
	check := func(field string, inverted bool) {
		if inverted && s.warnCache.SetOnce("range-clamp:"+field, true) {
			slog.Warn("Filter range min exceeds max, clamping", "field", field)
		}
	}
	check("price", cfg.Price.Inverted())
	check("cost", cfg.Cost.Inverted())
	check("stock", cfg.Stock.Inverted())
}
