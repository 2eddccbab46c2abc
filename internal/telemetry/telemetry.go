// Package telemetry wires OpenTelemetry metrics for the view service, with
// either a Prometheus scrape endpoint or an OTLP gRPC exporter selected by
// configuration.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Telemetry owns the meter provider and, in scraper mode, the metrics
// HTTP server.
type Telemetry struct {
	provider *metric.MeterProvider
	server   *http.Server
}

// Init sets up the global meter provider. METRICS_EXPORTER=scraper serves a
// Prometheus scrape page; anything else exports over OTLP gRPC to
// OTEL_EXPORTER_OTLP_METRICS_ENDPOINT (default localhost:4317).
func Init(ctx context.Context) (*Telemetry, error) {
	t := &Telemetry{}

	if os.Getenv("METRICS_EXPORTER") == "scraper" {
		slog.Info("Starting metrics with Prometheus scrape exporter")
		exporter, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		t.provider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(t.provider)
		go t.serveMetrics()
		return t, nil
	}

	slog.Info("Starting metrics with OTLP gRPC exporter")
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP gRPC exporter: %w", err)
	}
	t.provider = metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(exporter)))
	otel.SetMeterProvider(t.provider)
	return t, nil
}

// Close flushes the provider and stops the scrape server if one is running.
func (t *Telemetry) Close(ctx context.Context) {
	if t.server != nil {
		if err := t.server.Shutdown(ctx); err != nil {
			slog.Warn("Metrics server shutdown", "error", err)
		}
	}
	if t.provider != nil {
		if err := t.provider.Shutdown(ctx); err != nil {
			slog.Warn("Meter provider shutdown", "error", err)
		}
	}
}

func (t *Telemetry) serveMetrics() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		addr = ":9080"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	t.server = &http.Server{Addr: addr, Handler: mux}

	slog.Info("Serving Prometheus metrics", "addr", addr, "path", "/metrics")
	if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Metrics server failed", "error", err)
	}
}
