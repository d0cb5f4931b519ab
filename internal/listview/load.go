package listview

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
	"github.com/angelmondragon/men4u-admin/pkg/metrics"
	"github.com/angelmondragon/men4u-admin/pkg/pagination"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

// NoDataMessage is rendered instead of an empty table.
const NoDataMessage = "No data found"

// Query is what the operator asked for on a list screen.
type Query struct {
	Search   string
	Page     int
	PageSize int
}

// Spec describes one list screen.
type Spec[T any] struct {
	Scope    Scope
	Endpoint string
	// Fallback is the banner text when the backend gives no message, e.g. "Failed to fetch partners".
	Fallback string
	Fetch    func(ctx context.Context) ([]T, error)
	// Values picks the searchable fields of a row; nil searches every field.
	Values func(T) []string
	// Stats summarizes the unfiltered rows; nil omits stats.
	Stats func([]T) *Stats
}

// Result is the list view model.
type Result[T any] struct {
	Items      []T             `json:"items"`
	Pagination pagination.Page `json:"pagination"`
	Stats      *Stats          `json:"stats,omitempty"`
	Search     string          `json:"search"`
	Empty      bool            `json:"empty"`
	Message    string          `json:"message,omitempty"`
	// Error is the banner shown next to last-good rows after a failed refresh.
	Error      *types.APIError `json:"error,omitempty"`
	Stale      bool            `json:"stale"`
	Superseded bool            `json:"superseded,omitempty"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Generation int64           `json:"generation"`
}

// Loader runs the fetch, filter, paginate cycle shared by every list screen.
type Loader struct {
	tracker     *Tracker
	metrics     *metrics.ListViewMetrics
	logg        *logger.Logger
	defaultSize int
	maxSize     int
}

// NewLoader wires the tracker, metrics and page size limits.
func NewLoader(tracker *Tracker, m *metrics.ListViewMetrics, logg *logger.Logger, defaultSize, maxSize int) *Loader {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Loader{tracker: tracker, metrics: m, logg: logg, defaultSize: defaultSize, maxSize: maxSize}
}

// Tracker exposes the generation tracker for detail lookups.
func (l *Loader) Tracker() *Tracker {
	return l.tracker
}

// Load fetches the rows of spec and shapes them for q. On a failed fetch the
// last-good rows are served with an error banner; without any, the error is returned.
func Load[T any](ctx context.Context, l *Loader, spec Spec[T], q Query) (*Result[T], error) {
	return load(ctx, l, spec, q, false)
}

// Reload is Load for a list whose rows may have shrunk since q was built:
// a page past the end is clamped to the last page instead of rejected.
func Reload[T any](ctx context.Context, l *Loader, spec Spec[T], q Query) (*Result[T], error) {
	return load(ctx, l, spec, q, true)
}

// Refresh reloads a list after a mutation that already succeeded upstream.
// The stale snapshot is dropped first. A failed reload comes back as a banner
// so the caller can still report the mutation.
func Refresh[T any](ctx context.Context, l *Loader, spec Spec[T], q Query) (*Result[T], *types.APIError) {
	l.Invalidate(ctx, spec.Scope)
	res, err := Reload(ctx, l, spec, q)
	if err != nil {
		failure := pkgerrors.Fallback(err, spec.Fallback)
		return nil, &types.APIError{Code: string(failure.Code()), Message: failure.Message()}
	}
	return res, nil
}

// Invalidate drops the snapshot of scope so detail reads go back to the backend.
func (l *Loader) Invalidate(ctx context.Context, scope Scope) {
	if err := l.tracker.Invalidate(ctx, scope); err != nil {
		l.logg.Error(l.logg.WithView(ctx, scope.Screen, ""), "listview.invalidate_failed", err)
	}
}

func load[T any](ctx context.Context, l *Loader, spec Spec[T], q Query, clamp bool) (*Result[T], error) {
	ctx = l.logg.WithView(ctx, spec.Scope.Screen, spec.Endpoint)
	size := pagination.NormalizePageSize(q.PageSize, l.defaultSize, l.maxSize)
	search := strings.TrimSpace(q.Search)

	gen, err := l.tracker.Begin(ctx, spec.Scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "begin list fetch")
	}

	result := &Result[T]{Search: search, Generation: gen}
	rows, fetchErr := spec.Fetch(ctx)
	switch {
	case fetchErr != nil:
		failure := pkgerrors.Fallback(fetchErr, spec.Fallback)
		l.logg.Error(ctx, "listview.fetch_failed", fetchErr)
		if failure.Code() == pkgerrors.CodeUnauthorized {
			l.metrics.ObserveServed(spec.Scope.Screen, metrics.ListOutcomeFailed)
			return nil, failure
		}

		var lastGood []T
		info, found, err := l.tracker.LastGood(ctx, spec.Scope, &lastGood)
		if err != nil {
			l.logg.Error(ctx, "listview.snapshot_read_failed", err)
		}
		if !found {
			l.metrics.ObserveServed(spec.Scope.Screen, metrics.ListOutcomeFailed)
			return nil, failure
		}
		rows = lastGood
		result.Stale = true
		result.FetchedAt = info.FetchedAt
		result.Error = &types.APIError{Code: string(failure.Code()), Message: failure.Message()}
		l.metrics.ObserveServed(spec.Scope.Screen, metrics.ListOutcomeStale)

	default:
		rows = nonNil(rows)
		committed, err := l.tracker.Commit(ctx, spec.Scope, gen, rows)
		if err != nil {
			l.logg.Error(ctx, "listview.snapshot_write_failed", err)
		}
		result.FetchedAt = time.Now().UTC()
		if err == nil && !committed {
			// a newer fetch owns the scope; prefer its rows once they are committed.
			var newer []T
			info, found, readErr := l.tracker.LastGood(ctx, spec.Scope, &newer)
			if readErr != nil {
				l.logg.Error(ctx, "listview.snapshot_read_failed", readErr)
			}
			if found && info.Generation > gen {
				rows = newer
				result.FetchedAt = info.FetchedAt
				result.Generation = info.Generation
				result.Superseded = true
				l.metrics.ObserveServed(spec.Scope.Screen, metrics.ListOutcomeSuperseded)
			} else {
				l.metrics.ObserveServed(spec.Scope.Screen, metrics.ListOutcomeFresh)
			}
		} else {
			l.metrics.ObserveServed(spec.Scope.Screen, metrics.ListOutcomeFresh)
		}
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	changed, err := l.tracker.SearchChanged(ctx, spec.Scope, search)
	if err != nil {
		l.logg.Warn(ctx, "listview.search_state_failed")
	}
	if changed {
		page = 1
	}

	if spec.Stats != nil {
		result.Stats = spec.Stats(rows)
	}

	filtered := Filter(rows, search, spec.Values)
	if last := pagination.TotalPages(len(filtered), size); clamp && page > last {
		page = last
	}
	items, meta, err := Paginate(filtered, page, size)
	if err != nil {
		return nil, err
	}
	result.Items = items
	result.Pagination = meta
	if len(filtered) == 0 {
		result.Empty = true
		result.Message = NoDataMessage
	}
	return result, nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
