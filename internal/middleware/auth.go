// Package middleware holds HTTP middleware for the view facade.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"inventory-live-view/internal/models"
)

// AuthMiddleware provides API key authentication against the configured
// comma-separated key list.
func AuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	valid := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		if key = strings.TrimSpace(key); key != "" {
			valid[key] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				slog.Warn("Authentication failed: missing API key", "remote_addr", r.RemoteAddr)
				writeAuthError(w, "API key required")
				return
			}

			if _, ok := valid[apiKey]; !ok {
				slog.Warn("Authentication failed: invalid API key", "remote_addr", r.RemoteAddr)
				writeAuthError(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Code:    "unauthorized",
		Message: message,
	})
}
