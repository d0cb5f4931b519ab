package listview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/metrics"
	"github.com/angelmondragon/men4u-admin/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type functionality struct {
	ID   int    `json:"functionality_id"`
	Name string `json:"functionality_name"`
}

type partner struct {
	UserID   types.ID   `json:"user_id"`
	Name     string     `json:"name"`
	Mobile   string     `json:"mobile"`
	IsActive types.Flag `json:"is_active"`
	Notes    any        `json:"notes"`
}

func TestFilterFunctionalityNames(t *testing.T) {
	rows := []functionality{
		{ID: 1, Name: "manage_orders"},
		{ID: 2, Name: "manage_reports"},
		{ID: 3, Name: "view_tickets"},
	}
	names := func(f functionality) []string { return []string{f.Name} }

	for _, query := range []string{"manage", "MANAGE", "Manage"} {
		got := Filter(rows, query, names)
		require.Len(t, got, 2, query)
		assert.Equal(t, "manage_orders", got[0].Name)
		assert.Equal(t, "manage_reports", got[1].Name)
	}

	assert.Equal(t, rows, Filter(rows, "", names))
	assert.Empty(t, Filter(rows, "delete", names))
}

func TestFilterMatchesAnyStringifiedField(t *testing.T) {
	rows := []partner{
		{UserID: "11", Name: "Ravi", Mobile: "9876500000", IsActive: types.FlagOn},
		{UserID: "12", Name: "Meena", Mobile: "9123400000", IsActive: types.FlagOff, Notes: map[string]any{"city": "Pune"}},
	}

	assert.Len(t, Filter(rows, "ravi", nil), 1)
	assert.Len(t, Filter(rows, "91234", nil), 1)
	assert.Len(t, Filter(rows, "12", nil), 1, "a row matches once even when several fields contain the query")
	assert.Len(t, Filter(rows, "pune", nil), 1, "nested values are searchable as json")
	assert.Empty(t, Filter(rows, "null", nil), "null fields stringify to empty")
}

func TestFieldValues(t *testing.T) {
	values := FieldValues(partner{UserID: "5", Name: "A", IsActive: types.FlagOn})
	sort.Strings(values)
	assert.Equal(t, []string{"", "", "1", "5", "A"}, values)
}

func TestPaginateSlices(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6, 7}

	page, meta, err := Paginate(rows, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, page)
	assert.True(t, meta.HasPrevious)
	assert.True(t, meta.HasNext)
	assert.Equal(t, 3, meta.TotalPages)

	page, meta, err = Paginate(rows, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, page)
	assert.False(t, meta.HasNext)

	_, _, err = Paginate(rows, 4, 3)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	_, _, err = Paginate(rows, 0, 3)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestCountStatus(t *testing.T) {
	rows := []partner{{IsActive: types.FlagOn}, {IsActive: types.FlagOff}, {IsActive: types.FlagOn}}
	stats := CountStatus(rows, func(p partner) enums.ActiveStatus { return enums.ActiveStatusFromFlag(p.IsActive) })
	assert.Equal(t, Stats{Total: 3, Active: 2, Inactive: 1}, stats)
}

func TestTrackerOnlyLatestGenerationCommits(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryKV(), 0)
	scope := Scope{Session: "s", Screen: "tickets", Key: "outlet-1"}

	first, err := tracker.Begin(ctx, scope)
	require.NoError(t, err)
	second, err := tracker.Begin(ctx, scope)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	ok, err := tracker.Commit(ctx, scope, second, []string{"new"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tracker.Commit(ctx, scope, first, []string{"old"})
	require.NoError(t, err)
	assert.False(t, ok, "a response from an older generation must be discarded")

	var rows []string
	info, found, err := tracker.LastGood(ctx, scope, &rows)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"new"}, rows)
	assert.Equal(t, second, info.Generation)

	other := Scope{Session: "s", Screen: "tickets", Key: "outlet-2"}
	_, found, err = tracker.LastGood(ctx, other, &rows)
	require.NoError(t, err)
	assert.False(t, found, "scopes are independent")
}

func TestTrackerSearchChanged(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryKV(), 0)
	scope := Scope{Session: "s", Screen: "partners"}

	changed, err := tracker.SearchChanged(ctx, scope, "")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = tracker.SearchChanged(ctx, scope, "ra")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = tracker.SearchChanged(ctx, scope, "ra")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestLookupFindsSnapshotRow(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryKV(), 0)
	scope := Scope{Session: "s", Screen: "customers", Key: "1"}

	gen, err := tracker.Begin(ctx, scope)
	require.NoError(t, err)
	_, err = tracker.Commit(ctx, scope, gen, []partner{{UserID: "1", Name: "A"}, {UserID: "2", Name: "B"}})
	require.NoError(t, err)

	row, found, err := Lookup(ctx, tracker, scope, func(p partner) bool { return p.UserID == "2" })
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "B", row.Name)

	_, found, err = Lookup(ctx, tracker, scope, func(p partner) bool { return p.UserID == "9" })
	require.NoError(t, err)
	assert.False(t, found)
}

func newTestLoader() *Loader {
	return NewLoader(NewTracker(NewMemoryKV(), 0), metrics.NewListViewMetrics(prometheus.NewRegistry()), nil, 2, 50)
}

func partnerSpec(fetch func(context.Context) ([]partner, error)) Spec[partner] {
	return Spec[partner]{
		Scope:    Scope{Session: "s", Screen: "partners", Key: "1"},
		Endpoint: "/admin/listview_partner",
		Fallback: "Failed to fetch partners",
		Fetch:    fetch,
		Values:   func(p partner) []string { return []string{p.Name, p.Mobile} },
		Stats:    StatusStats(func(p partner) enums.ActiveStatus { return enums.ActiveStatusFromFlag(p.IsActive) }),
	}
}

func TestLoadServesFilteredPage(t *testing.T) {
	loader := newTestLoader()
	rows := []partner{
		{UserID: "1", Name: "Ravi", IsActive: types.FlagOn},
		{UserID: "2", Name: "Rahul", IsActive: types.FlagOff},
		{UserID: "3", Name: "Meena", IsActive: types.FlagOn},
	}
	spec := partnerSpec(func(context.Context) ([]partner, error) { return rows, nil })

	res, err := Load(context.Background(), loader, spec, Query{Page: 1})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2, "default page size applies")
	assert.Equal(t, &Stats{Total: 3, Active: 2, Inactive: 1}, res.Stats)
	assert.False(t, res.Stale)

	res, err = Load(context.Background(), loader, spec, Query{Search: "RA", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page, "a new search resets to page 1")
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.Stats.Total, "stats cover the unfiltered rows")

	res, err = Load(context.Background(), loader, spec, Query{Search: "zzz"})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, NoDataMessage, res.Message)
	assert.Empty(t, res.Items)
}

func TestLoadServesLastGoodRowsOnFailure(t *testing.T) {
	loader := newTestLoader()
	fail := false
	spec := partnerSpec(func(context.Context) ([]partner, error) {
		if fail {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("boom"), "")
		}
		return []partner{{UserID: "1", Name: "Ravi"}}, nil
	})

	_, err := Load(context.Background(), loader, spec, Query{})
	require.NoError(t, err)

	fail = true
	res, err := Load(context.Background(), loader, spec, Query{})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	require.NotNil(t, res.Error)
	assert.Equal(t, "Failed to fetch partners", res.Error.Message)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Ravi", res.Items[0].Name)
}

func TestLoadWithoutSnapshotReturnsError(t *testing.T) {
	loader := newTestLoader()
	spec := partnerSpec(func(context.Context) ([]partner, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Admin not found")
	})

	_, err := Load(context.Background(), loader, spec, Query{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Admin not found", typed.Message(), "the backend message wins over the fallback")
}

func TestLoadRejectsPageBeyondLast(t *testing.T) {
	loader := newTestLoader()
	spec := partnerSpec(func(context.Context) ([]partner, error) {
		return []partner{{UserID: "1"}}, nil
	})

	_, err := Load(context.Background(), loader, spec, Query{Page: 2})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestLoadKeepsOwnRowsWhenOnlyAnOlderSnapshotExists(t *testing.T) {
	ctx := context.Background()
	loader := newTestLoader()
	calls := 0
	spec := partnerSpec(func(ctx context.Context) ([]partner, error) {
		calls++
		if calls == 2 {
			// a later fetch starts while this one is still in flight
			_, err := loader.Tracker().Begin(ctx, Scope{Session: "s", Screen: "partners", Key: "1"})
			require.NoError(t, err)
			return []partner{{UserID: "1", Name: "Ravi"}, {UserID: "2", Name: "Meena"}}, nil
		}
		return []partner{{UserID: "1", Name: "Ravi"}}, nil
	})

	first, err := Load(ctx, loader, spec, Query{})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	res, err := Load(ctx, loader, spec, Query{})
	require.NoError(t, err)
	assert.False(t, res.Superseded, "an older snapshot never replaces a fresher fetch")
	assert.Greater(t, res.Generation, first.Generation)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Meena", res.Items[1].Name)
}

func TestLoadServesNewerCommittedGeneration(t *testing.T) {
	ctx := context.Background()
	loader := newTestLoader()
	scope := Scope{Session: "s", Screen: "partners", Key: "1"}
	spec := partnerSpec(func(ctx context.Context) ([]partner, error) {
		gen, err := loader.Tracker().Begin(ctx, scope)
		require.NoError(t, err)
		_, err = loader.Tracker().Commit(ctx, scope, gen, []partner{{UserID: "9", Name: "Newer"}})
		require.NoError(t, err)
		return []partner{{UserID: "1", Name: "Older"}}, nil
	})

	res, err := Load(ctx, loader, spec, Query{})
	require.NoError(t, err)
	assert.True(t, res.Superseded)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Newer", res.Items[0].Name)
}

func TestReloadClampsPageAfterRowsShrink(t *testing.T) {
	ctx := context.Background()
	loader := newTestLoader()
	rows := []partner{{UserID: "1"}, {UserID: "2"}, {UserID: "3"}}
	spec := partnerSpec(func(context.Context) ([]partner, error) { return rows, nil })

	res, err := Load(ctx, loader, spec, Query{Page: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	rows = rows[:2]
	_, err = Load(ctx, loader, spec, Query{Page: 2})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	res, err = Reload(ctx, loader, spec, Query{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)
	assert.Len(t, res.Items, 2)

	rows = nil
	res, err = Reload(ctx, loader, spec, Query{Page: 2})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, 1, res.Pagination.Page)
}

func TestRefreshReportsFailureAsBanner(t *testing.T) {
	ctx := context.Background()
	loader := newTestLoader()
	spec := partnerSpec(func(context.Context) ([]partner, error) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("boom"), "")
	})

	res, apiErr := Refresh(ctx, loader, spec, Query{})
	assert.Nil(t, res)
	require.NotNil(t, apiErr)
	assert.Equal(t, "Failed to fetch partners", apiErr.Message)
}

func TestInvalidateDropsSnapshotAndRetiresFetches(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryKV(), 0)
	scope := Scope{Session: "s", Screen: "partners", Key: "1"}

	gen, err := tracker.Begin(ctx, scope)
	require.NoError(t, err)
	_, err = tracker.Commit(ctx, scope, gen, []string{"before"})
	require.NoError(t, err)

	inflight, err := tracker.Begin(ctx, scope)
	require.NoError(t, err)
	require.NoError(t, tracker.Invalidate(ctx, scope))

	var rows []string
	_, found, err := tracker.LastGood(ctx, scope, &rows)
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := tracker.Commit(ctx, scope, inflight, []string{"read before the mutation"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrackerLocksAreBounded(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryKV(), 0)

	var wg sync.WaitGroup
	for i := 0; i < 500; i++ {
		scope := Scope{Session: fmt.Sprintf("sess-%d", i), Screen: "partners", Key: "1"}
		stripe := stripeOf(scope)
		require.Less(t, stripe, uint32(lockStripes))
		require.Equal(t, stripe, stripeOf(scope))

		wg.Add(1)
		go func() {
			defer wg.Done()
			gen, err := tracker.Begin(ctx, scope)
			assert.NoError(t, err)
			ok, err := tracker.Commit(ctx, scope, gen, []string{scope.Session})
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}
