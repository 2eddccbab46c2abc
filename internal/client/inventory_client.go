// Package client implements the external collaborators of the view session:
// the HTTP fetch/mutation client against the central inventory API and the
// WebSocket subscriber for the live change feed.
package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"inventory-live-view/internal/models"
)

// InventoryClient talks to the central inventory API. It implements the
// session's Fetcher and Mutator interfaces.
type InventoryClient struct {
	http *resty.Client
}

// NewInventoryClient creates a client for the given base URL and API key.
func NewInventoryClient(baseURL, apiKey string) *InventoryClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-API-Key", apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &InventoryClient{http: httpClient}
}

// HealthCheck verifies the central API is reachable.
func (c *InventoryClient) HealthCheck(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode())
	}
	return nil
}

// FetchPage retrieves one page of inventory records matching the query.
func (c *InventoryClient) FetchPage(ctx context.Context, filters models.FilterConfig, sort models.SortConfig, page, pageSize int) (models.FetchResult, error) {
	var result models.FetchResult

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("pageSize", strconv.Itoa(pageSize)).
		SetResult(&result)

	setNonEmpty := func(key, value string) {
		if value != "" {
			req.SetQueryParam(key, value)
		}
	}
	setNonEmpty("search", filters.Search)
	setNonEmpty("status", string(filters.Status))
	setNonEmpty("vendor", filters.Vendor)
	setNonEmpty("location", filters.Location)
	setNonEmpty("velocity", string(filters.Velocity))
	setNonEmpty("stockDays", string(filters.StockDays))
	setNonEmpty("sourceType", string(filters.SourceType))
	setNonEmpty("sortBy", string(sort.Field))
	setNonEmpty("sortDir", string(sort.Direction))
	if filters.IncludeHidden {
		req.SetQueryParam("includeHidden", "true")
	}

	resp, err := req.Get("/v1/inventory")
	if err != nil {
		return models.FetchResult{}, fmt.Errorf("fetch page request failed: %w", err)
	}
	if resp.IsError() {
		return models.FetchResult{}, fmt.Errorf("fetch page failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return result, nil
}

// UpdateStock sets a record's current stock and returns the updated record.
func (c *InventoryClient) UpdateStock(ctx context.Context, id string, newStock int) (models.InventoryRecord, error) {
	var updated models.InventoryRecord

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.StockUpdateRequest{CurrentStock: newStock}).
		SetResult(&updated).
		Post(fmt.Sprintf("/v1/inventory/%s/stock", id))
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("stock update request failed: %w", err)
	}
	if resp.IsError() {
		return models.InventoryRecord{}, fmt.Errorf("stock update failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return updated, nil
}

// UpdateCost sets a record's cost and returns the updated record.
func (c *InventoryClient) UpdateCost(ctx context.Context, id string, newCost float64) (models.InventoryRecord, error) {
	var updated models.InventoryRecord

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.CostUpdateRequest{Cost: newCost}).
		SetResult(&updated).
		Post(fmt.Sprintf("/v1/inventory/%s/cost", id))
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("cost update request failed: %w", err)
	}
	if resp.IsError() {
		return models.InventoryRecord{}, fmt.Errorf("cost update failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return updated, nil
}
