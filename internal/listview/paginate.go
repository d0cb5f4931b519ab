package listview

import (
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	"github.com/angelmondragon/men4u-admin/pkg/pagination"
)

// Paginate returns rows[(page-1)*size : page*size].
func Paginate[T any](rows []T, page, size int) ([]T, pagination.Page, error) {
	start, end, meta, err := pagination.Slice(len(rows), page, size)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	window := make([]T, end-start)
	copy(window, rows[start:end])
	return window, meta, nil
}

// Stats are the summary counters shown above a list.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// CountStatus counts rows client-side when the backend does not aggregate.
func CountStatus[T any](rows []T, statusOf func(T) enums.ActiveStatus) Stats {
	stats := Stats{Total: len(rows)}
	for _, row := range rows {
		if statusOf(row) == enums.ActiveStatusActive {
			stats.Active++
		}
	}
	stats.Inactive = stats.Total - stats.Active
	return stats
}

// StatusStats adapts CountStatus for Spec.Stats.
func StatusStats[T any](statusOf func(T) enums.ActiveStatus) func([]T) *Stats {
	return func(rows []T) *Stats {
		stats := CountStatus(rows, statusOf)
		return &stats
	}
}
