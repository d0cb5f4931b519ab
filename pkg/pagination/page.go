package pagination

import (
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
)

// Page describes one 1-indexed window over a filtered collection.
type Page struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// TotalPages returns the number of pages needed for total items. An empty
// collection still has one (empty) page.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Slice validates the requested page and returns the half-open bounds
// [start, end) into a collection of total items.
func Slice(total, page, size int) (int, int, Page, error) {
	if size <= 0 {
		return 0, 0, Page{}, pkgerrors.New(pkgerrors.CodeValidation, "page_size must be positive").
			WithDetails(map[string]any{"field": "page_size"})
	}
	if total < 0 {
		total = 0
	}
	last := TotalPages(total, size)
	if page < 1 || page > last {
		return 0, 0, Page{}, pkgerrors.New(pkgerrors.CodeValidation, "page out of range").
			WithDetails(map[string]any{"field": "page", "min": 1, "max": last})
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	return start, end, Page{
		Page:        page,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  last,
		HasPrevious: page > 1,
		HasNext:     page < last,
	}, nil
}

// NormalizePageSize applies the console defaults to a requested page size.
func NormalizePageSize(size, def, max int) int {
	if size <= 0 {
		size = def
	}
	if max > 0 && size > max {
		size = max
	}
	if size <= 0 {
		size = 1
	}
	return size
}
