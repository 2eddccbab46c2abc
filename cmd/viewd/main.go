package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"inventory-live-view/internal/client"
	"inventory-live-view/internal/config"
	"inventory-live-view/internal/handlers"
	"inventory-live-view/internal/middleware"
	"inventory-live-view/internal/models"
	"inventory-live-view/internal/reconcile"
	"inventory-live-view/internal/session"
	"inventory-live-view/internal/telemetry"
	"inventory-live-view/internal/view"
)

const (
	serviceName = "inventory-view-api"
	version     = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := telemetry.Init(ctx)
	if err != nil {
		slog.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		tel.Close(shutdownCtx)
	}()

	metrics, err := telemetry.NewViewMetrics()
	if err != nil {
		slog.Error("Failed to create view metrics", "error", err)
		os.Exit(1)
	}

	inventoryClient := client.NewInventoryClient(cfg.CentralAPIURL, cfg.CentralAPIKey)
	if err := inventoryClient.HealthCheck(ctx); err != nil {
		slog.Error("Failed to connect to central inventory API", "url", cfg.CentralAPIURL, "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to central inventory API", "url", cfg.CentralAPIURL)

	sess := session.New(inventoryClient, inventoryClient, sessionOptions(cfg, metrics))
	if err := sess.Start(ctx); err != nil {
		slog.Error("Failed to start view session", "error", err)
		os.Exit(1)
	}
	defer sess.Close()

	subscriber := client.NewEventSubscriber(cfg.EventsFeedURL, cfg.CentralAPIKey)
	sub, err := subscriber.Subscribe(sess.OnEvent)
	if err != nil {
		// The view still works without the live feed; it just needs manual
		// refreshes to pick up remote changes.
		slog.Warn("Live event feed unavailable, continuing without it", "error", err)
	} else {
		sess.AttachSubscription(sub)
	}

	viewHandler := handlers.NewViewHandler(sess)
	healthHandler := handlers.NewHealthHandler(serviceName, version)

	r := mux.NewRouter()

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(middleware.AuthMiddleware(cfg.APIKeyList()))

	v1.HandleFunc("/view", viewHandler.GetView).Methods("GET")
	v1.HandleFunc("/view/filters", viewHandler.SetFilters).Methods("PUT")
	v1.HandleFunc("/view/sort", viewHandler.SetSort).Methods("PUT")
	v1.HandleFunc("/view/search", viewHandler.SetSearch).Methods("PUT")
	v1.HandleFunc("/view/page", viewHandler.SetPage).Methods("PUT")
	v1.HandleFunc("/view/page-size", viewHandler.SetPageSize).Methods("PUT")
	v1.HandleFunc("/view/refresh", viewHandler.RefreshView).Methods("POST")
	v1.HandleFunc("/alerts", viewHandler.GetAlerts).Methods("GET")
	v1.HandleFunc("/alerts/{alertId}/ack", viewHandler.AcknowledgeAlert).Methods("POST")
	v1.HandleFunc("/inventory/{recordId}/stock", viewHandler.UpdateStock).Methods("POST")
	v1.HandleFunc("/inventory/{recordId}/cost", viewHandler.UpdateCost).Methods("POST")

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("Shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Starting inventory view API",
		"service", serviceName,
		"version", version,
		"addr", server.Addr,
		"environment", cfg.Environment)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}

// sessionOptions parses the raw config strings into session options,
// falling back to defaults with a warning on malformed values.
func sessionOptions(cfg *config.Config, metrics *telemetry.ViewMetrics) session.Options {
	pageSize, err := strconv.Atoi(cfg.PageSize)
	if err != nil || pageSize < 1 {
		slog.Warn("Invalid page size, using default", "provided", cfg.PageSize, "error", err)
		pageSize = view.DefaultPageSize
	}

	debounce, err := time.ParseDuration(cfg.SearchDebounceWindow)
	if err != nil {
		slog.Warn("Invalid search debounce window, using default", "provided", cfg.SearchDebounceWindow, "error", err)
		debounce = session.DefaultDebounceWindow
	}

	batch, err := time.ParseDuration(cfg.EventBatchWindow)
	if err != nil {
		slog.Warn("Invalid event batch window, using default", "provided", cfg.EventBatchWindow, "error", err)
		batch = session.DefaultBatchWindow
	}

	alertCap, err := strconv.Atoi(cfg.AlertBufferSize)
	if err != nil || alertCap < 1 {
		slog.Warn("Invalid alert buffer size, using default", "provided", cfg.AlertBufferSize, "error", err)
		alertCap = 0
	}

	var projection reconcile.Projection
	if vendor := strings.TrimSpace(cfg.StandingVendorFilter); vendor != "" {
		slog.Info("Standing vendor filter active", "vendor", vendor)
		projection = func(rec models.InventoryRecord) bool {
			return strings.EqualFold(rec.Vendor, vendor)
		}
	}

	return session.Options{
		PageSize:       pageSize,
		DebounceWindow: debounce,
		BatchWindow:    batch,
		AlertCapacity:  alertCap,
		Projection:     projection,
		Metrics:        metrics,
	}
}
