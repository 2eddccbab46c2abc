// Package config loads service configuration from a .env file and
// environment variables.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"inventory-live-view/internal/logging"
)

// Config holds all configuration for the view service. Values are kept as
// the raw environment strings; consumers parse them with warn-and-default
// on malformed input.
type Config struct {
	Port        string
	LogLevel    string
	Environment string

	CentralAPIURL string
	CentralAPIKey string
	EventsFeedURL string
	APIKeys       string

	PageSize             string
	SearchDebounceWindow string
	EventBatchWindow     string
	AlertBufferSize      string
	ManufacturedVendors  string
	StandingVendorFilter string
}

// LoadConfig loads configuration from .env (when present) and environment
// variables, and configures the global logger.
func LoadConfig() *Config {
	// Existing environment variables are never overridden by the file.
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with system environment variables only", "error", err)
	}

	config := &Config{
		Port:                 getEnvWithDefault("PORT", "8090"),
		LogLevel:             getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:          getEnvWithDefault("ENVIRONMENT", "development"),
		CentralAPIURL:        getEnvWithDefault("CENTRAL_API_URL", "http://localhost:8080"),
		CentralAPIKey:        getEnvWithDefault("CENTRAL_API_KEY", "demo"),
		EventsFeedURL:        getEnvWithDefault("EVENTS_FEED_URL", "ws://localhost:8080/v1/inventory/events"),
		APIKeys:              getEnvWithDefault("API_KEYS", "demo"),
		PageSize:             getEnvWithDefault("PAGE_SIZE", "25"),
		SearchDebounceWindow: getEnvWithDefault("SEARCH_DEBOUNCE_WINDOW", "300ms"),
		EventBatchWindow:     getEnvWithDefault("EVENT_BATCH_WINDOW", "50ms"),
		AlertBufferSize:      getEnvWithDefault("ALERT_BUFFER_SIZE", "15"),
		ManufacturedVendors:  getEnvWithDefault("MANUFACTURED_VENDORS", ""),
		StandingVendorFilter: getEnvWithDefault("STANDING_VENDOR_FILTER", ""),
	}

	logging.Setup(config.LogLevel)

	slog.Info("Configuration loaded",
		"port", config.Port,
		"environment", config.Environment,
		"logLevel", config.LogLevel,
		"centralAPIURL", config.CentralAPIURL,
		"eventsFeedURL", config.EventsFeedURL,
		"pageSize", config.PageSize,
		"searchDebounceWindow", config.SearchDebounceWindow,
		"eventBatchWindow", config.EventBatchWindow,
		"alertBufferSize", config.AlertBufferSize)

	return config
}

// APIKeyList returns the configured facade API keys.
func (c *Config) APIKeyList() []string {
	return splitList(c.APIKeys)
}

// ManufacturedVendorList returns the configured manufacturing vendor set.
func (c *Config) ManufacturedVendorList() []string {
	return splitList(c.ManufacturedVendors)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
