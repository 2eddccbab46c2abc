package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-live-view/internal/models"
	"inventory-live-view/internal/session"
)

type stubFetcher struct {
	items []models.InventoryRecord
}

func (f *stubFetcher) FetchPage(context.Context, models.FilterConfig, models.SortConfig, int, int) (models.FetchResult, error) {
	return models.FetchResult{Items: f.items, Total: len(f.items)}, nil
}

type stubMutator struct {
	err error
}

func (m *stubMutator) UpdateStock(_ context.Context, id string, newStock int) (models.InventoryRecord, error) {
	if m.err != nil {
		return models.InventoryRecord{}, m.err
	}
	return models.InventoryRecord{ID: id, CurrentStock: newStock, LastUpdated: time.Now().UTC(), Version: 2}, nil
}

func (m *stubMutator) UpdateCost(_ context.Context, id string, newCost float64) (models.InventoryRecord, error) {
	if m.err != nil {
		return models.InventoryRecord{}, m.err
	}
	return models.InventoryRecord{ID: id, Cost: &newCost, LastUpdated: time.Now().UTC(), Version: 2}, nil
}

func testRouter(t *testing.T, items []models.InventoryRecord, mutator session.Mutator) (*mux.Router, *session.Session) {
	t.Helper()

	if mutator == nil {
		mutator = &stubMutator{}
	}
	sess := session.New(&stubFetcher{items: items}, mutator, session.Options{})
	require.NoError(t, sess.Start(context.Background()))
	t.Cleanup(sess.Close)

	h := NewViewHandler(sess)
	r := mux.NewRouter()
	r.HandleFunc("/v1/view", h.GetView).Methods("GET")
	r.HandleFunc("/v1/view/filters", h.SetFilters).Methods("PUT")
	r.HandleFunc("/v1/view/sort", h.SetSort).Methods("PUT")
	r.HandleFunc("/v1/view/search", h.SetSearch).Methods("PUT")
	r.HandleFunc("/v1/view/page", h.SetPage).Methods("PUT")
	r.HandleFunc("/v1/view/page-size", h.SetPageSize).Methods("PUT")
	r.HandleFunc("/v1/view/refresh", h.RefreshView).Methods("POST")
	r.HandleFunc("/v1/alerts", h.GetAlerts).Methods("GET")
	r.HandleFunc("/v1/alerts/{alertId}/ack", h.AcknowledgeAlert).Methods("POST")
	r.HandleFunc("/v1/inventory/{recordId}/stock", h.UpdateStock).Methods("POST")
	r.HandleFunc("/v1/inventory/{recordId}/cost", h.UpdateCost).Methods("POST")
	return r, sess
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleItems() []models.InventoryRecord {
	ts := time.Now().UTC()
	return []models.InventoryRecord{
		{ID: "1", SKU: "WID-001", DisplayName: "Widget", CurrentStock: 0, LastUpdated: ts},
		{ID: "2", SKU: "GAD-002", DisplayName: "Gadget", CurrentStock: 50, LastUpdated: ts},
	}
}

func TestGetView(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/view", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Empty(t, resp.Error)
}

func TestSetFilters(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPut, "/v1/view/filters",
		models.FilterConfig{Status: models.StatusOutOfStock})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "1", resp.Items[0].ID)
}

func TestSetFilters_BadBody(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	req := httptest.NewRequest(http.MethodPut, "/v1/view/filters", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bad_request", resp.Code)
}

func TestSetSort(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPut, "/v1/view/sort",
		models.SortConfig{Field: models.SortByStock, Direction: models.SortDesc})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "2", resp.Items[0].ID)
}

func TestSetSearch_IsDeferred(t *testing.T) {
	router, sess := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPut, "/v1/view/search", models.SearchRequest{Term: "widget"})

	// Accepted, not applied: the term sits in the debounce window.
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "", sess.FilterConfig().Search)

	assert.Eventually(t, func() bool {
		return sess.FilterConfig().Search == "widget"
	}, time.Second, 10*time.Millisecond)
}

func TestSetPageAndPageSize(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPut, "/v1/view/page-size", models.PageSizeRequest{PageSize: 1})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/v1/view/page", models.PageRequest{Page: 2})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Page)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "2", resp.Items[0].ID)
}

func TestRefreshView(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/view/refresh", nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAlertsLifecycle(t *testing.T) {
	// Record 1 is out of stock, so the initial scan raised an alert.
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/alerts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.AlertsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, models.AlertOutOfStock, resp.Alerts[0].Type)

	ack := doJSON(t, router, http.MethodPost, "/v1/alerts/"+resp.Alerts[0].ID+"/ack", nil)
	assert.Equal(t, http.StatusNoContent, ack.Code)

	missing := doJSON(t, router, http.MethodPost, "/v1/alerts/does-not-exist/ack", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUpdateStock(t *testing.T) {
	router, sess := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/inventory/2/stock",
		models.StockUpdateRequest{CurrentStock: 75})

	assert.Equal(t, http.StatusOK, rec.Code)
	var updated models.InventoryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 75, updated.CurrentStock)

	// Applied locally without waiting for the live feed.
	page := sess.View()
	for _, item := range page.Items {
		if item.ID == "2" {
			assert.Equal(t, 75, item.CurrentStock)
		}
	}
}

func TestUpdateStock_RejectsNegative(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/inventory/2/stock",
		models.StockUpdateRequest{CurrentStock: -1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStock_UpstreamFailure(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), &stubMutator{err: assert.AnError})

	rec := doJSON(t, router, http.MethodPost, "/v1/inventory/2/stock",
		models.StockUpdateRequest{CurrentStock: 75})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "upstream_error", resp.Code)
}

func TestUpdateCost(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/inventory/2/cost",
		models.CostUpdateRequest{Cost: 4.25})

	assert.Equal(t, http.StatusOK, rec.Code)
	var updated models.InventoryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.Cost)
	assert.Equal(t, 4.25, *updated.Cost)
}

func TestUpdateCost_RejectsNegative(t *testing.T) {
	router, _ := testRouter(t, sampleItems(), nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/inventory/2/cost",
		models.CostUpdateRequest{Cost: -0.5})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
