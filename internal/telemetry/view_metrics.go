package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ViewMetrics provides telemetry for the live view pipeline. All record
// methods are nil-safe so the session can run without telemetry in tests.
type ViewMetrics struct {
	refreshCounter    metric.Int64Counter
	eventCounter      metric.Int64Counter
	staleFetchCounter metric.Int64Counter
	fetchErrorCounter metric.Int64Counter
	alertCounter      metric.Int64Counter
	evalHistogram     metric.Float64Histogram
}

// NewViewMetrics creates the pipeline instruments on the global meter
// provider.
func NewViewMetrics() (*ViewMetrics, error) {
	meter := otel.Meter("inventory-live-view")
	m := &ViewMetrics{}

	var err error

	m.refreshCounter, err = meter.Int64Counter(
		"view_refreshes_total",
		metric.WithDescription("Total number of filter/sort/paginate pipeline evaluations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refresh counter: %w", err)
	}

	m.eventCounter, err = meter.Int64Counter(
		"view_change_events_total",
		metric.WithDescription("Total number of change events processed, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating event counter: %w", err)
	}

	m.staleFetchCounter, err = meter.Int64Counter(
		"view_stale_responses_discarded_total",
		metric.WithDescription("Total number of fetch responses discarded because a newer request superseded them"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stale response counter: %w", err)
	}

	m.fetchErrorCounter, err = meter.Int64Counter(
		"view_fetch_errors_total",
		metric.WithDescription("Total number of failed fetches from the central inventory API"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch error counter: %w", err)
	}

	m.alertCounter, err = meter.Int64Counter(
		"view_alerts_raised_total",
		metric.WithDescription("Total number of critical stock alerts raised"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating alert counter: %w", err)
	}

	m.evalHistogram, err = meter.Float64Histogram(
		"view_evaluation_duration_seconds",
		metric.WithDescription("Duration of one filter/sort/paginate pipeline evaluation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation histogram: %w", err)
	}

	slog.Info("View telemetry initialized")
	return m, nil
}

// RecordRefresh records one pipeline evaluation.
func (m *ViewMetrics) RecordRefresh(ctx context.Context, duration time.Duration, total, filtered int) {
	if m == nil {
		return
	}
	m.refreshCounter.Add(ctx, 1)
	m.evalHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.Int("working_set_size", total),
			attribute.Int("filtered_size", filtered),
		))
}

// RecordEvents records reconciled change events by outcome.
func (m *ViewMetrics) RecordEvents(ctx context.Context, inserted, updated, deleted, dropped, stale int) {
	if m == nil {
		return
	}
	m.addEvents(ctx, "inserted", inserted)
	m.addEvents(ctx, "updated", updated)
	m.addEvents(ctx, "deleted", deleted)
	m.addEvents(ctx, "dropped", dropped)
	m.addEvents(ctx, "stale", stale)
}

func (m *ViewMetrics) addEvents(ctx context.Context, outcome string, n int) {
	if n > 0 {
		m.eventCounter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// RecordStaleResponse records one discarded superseded fetch response.
func (m *ViewMetrics) RecordStaleResponse(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleFetchCounter.Add(ctx, 1)
}

// RecordFetchError records one failed fetch.
func (m *ViewMetrics) RecordFetchError(ctx context.Context) {
	if m == nil {
		return
	}
	m.fetchErrorCounter.Add(ctx, 1)
}

// RecordAlerts records newly raised alerts.
func (m *ViewMetrics) RecordAlerts(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.alertCounter.Add(ctx, int64(n))
}
