package view

import "inventory-live-view/internal/models"

// DefaultPageSize is used when callers do not configure a page size.
const DefaultPageSize = 25

// Paginate slices the already filtered and sorted records into the requested
// page. An out-of-range page never errors: the page number is clamped to
// [1, max(1, totalPages)] before slicing, so requesting past the end returns
// the last page and an empty collection yields page 1 with no items.
func Paginate(records []models.InventoryRecord, page, pageSize int) models.ViewPage {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(records)
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]models.InventoryRecord, end-start)
	copy(items, records[start:end])

	return models.ViewPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
	}
}
