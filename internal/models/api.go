package models

import "time"

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service,omitempty"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Request bodies for the view facade.

type SearchRequest struct {
	Term string `json:"term"`
}

type PageRequest struct {
	Page int `json:"page"`
}

type PageSizeRequest struct {
	PageSize int `json:"pageSize"`
}

type StockUpdateRequest struct {
	CurrentStock int `json:"currentStock"`
}

type CostUpdateRequest struct {
	Cost float64 `json:"cost"`
}

// ViewResponse is the facade payload for the current view: the page itself
// plus the error flag surfaced when the last fetch failed (the page then
// still holds the last good data).
type ViewResponse struct {
	ViewPage
	Error string `json:"error,omitempty"`
}

// AlertsResponse is the facade payload for the current alert buffer.
type AlertsResponse struct {
	Alerts []CriticalAlert `json:"alerts"`
	Count  int             `json:"count"`
}
