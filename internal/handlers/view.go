// Package handlers exposes the view session over HTTP for the presentation
// layer: the paginated view, the alert list, and the mutation entry points.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"inventory-live-view/internal/models"
	"inventory-live-view/internal/session"
)

// ViewHandler serves the live view endpoints backed by one session.
type ViewHandler struct {
	session *session.Session
}

// NewViewHandler creates a view handler over the given session.
func NewViewHandler(sess *session.Session) *ViewHandler {
	return &ViewHandler{session: sess}
}

// GetView handles GET /v1/view
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	resp := models.ViewResponse{ViewPage: h.session.View()}
	if err := h.session.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetFilters handles PUT /v1/view/filters
func (h *ViewHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var cfg models.FilterConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		slog.Error("Failed to decode filter config", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid filter config body")
		return
	}

	h.session.SetFilterConfig(cfg)
	writeJSON(w, http.StatusOK, models.ViewResponse{ViewPage: h.session.View()})
}

// SetSort handles PUT /v1/view/sort
func (h *ViewHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var cfg models.SortConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		slog.Error("Failed to decode sort config", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid sort config body")
		return
	}

	h.session.SetSortConfig(cfg)
	writeJSON(w, http.StatusOK, models.ViewResponse{ViewPage: h.session.View()})
}

// SetSearch handles PUT /v1/view/search. The term goes through the debounce
// window, so the response reflects the view before the search commits.
func (h *ViewHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode search request", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid search body")
		return
	}

	h.session.SetSearchTerm(req.Term)
	writeJSON(w, http.StatusAccepted, models.ViewResponse{ViewPage: h.session.View()})
}

// SetPage handles PUT /v1/view/page
func (h *ViewHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req models.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode page request", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid page body")
		return
	}

	h.session.GoToPage(req.Page)
	writeJSON(w, http.StatusOK, models.ViewResponse{ViewPage: h.session.View()})
}

// SetPageSize handles PUT /v1/view/page-size
func (h *ViewHandler) SetPageSize(w http.ResponseWriter, r *http.Request) {
	var req models.PageSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode page size request", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid page size body")
		return
	}

	h.session.SetPageSize(req.PageSize)
	writeJSON(w, http.StatusOK, models.ViewResponse{ViewPage: h.session.View()})
}

// RefreshView handles POST /v1/view/refresh
func (h *ViewHandler) RefreshView(w http.ResponseWriter, r *http.Request) {
	h.session.Refresh()
	writeJSON(w, http.StatusAccepted, models.ViewResponse{ViewPage: h.session.View()})
}

// GetAlerts handles GET /v1/alerts
func (h *ViewHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	list := h.session.Alerts()
	writeJSON(w, http.StatusOK, models.AlertsResponse{Alerts: list, Count: len(list)})
}

// AcknowledgeAlert handles POST /v1/alerts/{alertId}/ack
func (h *ViewHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["alertId"]

	if !h.session.AcknowledgeAlert(alertID) {
		writeError(w, http.StatusNotFound, "not_found", "Alert not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock handles POST /v1/inventory/{recordId}/stock
func (h *ViewHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["recordId"]

	var req models.StockUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode stock update", "record_id", recordID, "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid stock update body")
		return
	}
	if req.CurrentStock < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "currentStock must be >= 0")
		return
	}

	updated, err := h.session.UpdateStock(r.Context(), recordID, req.CurrentStock)
	if err != nil {
		slog.Error("Stock update failed", "record_id", recordID, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "Failed to update stock")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// UpdateCost handles POST /v1/inventory/{recordId}/cost
func (h *ViewHandler) UpdateCost(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["recordId"]

	var req models.CostUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode cost update", "record_id", recordID, "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid cost update body")
		return
	}
	if req.Cost < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "cost must be >= 0")
		return
	}

	updated, err := h.session.UpdateCost(r.Context(), recordID, req.Cost)
	if err != nil {
		slog.Error("Cost update failed", "record_id", recordID, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "Failed to update cost")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, models.ErrorResponse{Code: code, Message: message})
}
