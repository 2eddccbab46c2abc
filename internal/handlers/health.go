package handlers

import (
	"net/http"
	"time"

	"inventory-live-view/internal/models"
)

// HealthHandler serves the unauthenticated health endpoint.
type HealthHandler struct {
	service string
	version string
}

// NewHealthHandler creates a health handler with service identity metadata.
func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Service:   h.service,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}
