package listview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/men4u-admin/internal/session"
	pkgredis "github.com/angelmondragon/men4u-admin/pkg/redis"
)

// KV is the key/value surface the tracker needs; *redis.Client satisfies it.
type KV interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ListViewKey(parts ...string) string
}

// Scope identifies one list: a session, a screen, and the scoping id (actor or outlet).
type Scope struct {
	Session string
	Screen  string
	Key     string
}

// ScopeOf is the scope of screen for sess, keyed by key (an actor or outlet id).
func ScopeOf(sess *session.Session, screen, key string) Scope {
	scope := Scope{Screen: screen, Key: key}
	if sess != nil {
		scope.Session = sess.ID()
	}
	return scope
}

func (s Scope) String() string {
	return s.Session + "|" + s.Screen + "|" + s.Key
}

// SnapshotInfo describes the committed last-good snapshot of a scope.
type SnapshotInfo struct {
	Generation int64
	FetchedAt  time.Time
}

type snapshot struct {
	Generation int64           `json:"generation"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Rows       json.RawMessage `json:"rows"`
}

// Tracker hands out a generation per fetch and only lets the latest
// generation of a scope commit its rows as the last-good snapshot.
type Tracker struct {
	kv  KV
	ttl time.Duration
	now func() time.Time

	stripes [lockStripes]sync.Mutex
}

// lockStripes bounds the commit locks; scopes hashing to the same stripe share one.
const lockStripes = 64

// NewTracker builds a tracker whose snapshots live for ttl.
func NewTracker(kv KV, ttl time.Duration) *Tracker {
	return &Tracker{kv: kv, ttl: ttl, now: time.Now}
}

func (t *Tracker) lock(scope Scope) func() {
	l := &t.stripes[stripeOf(scope)]
	l.Lock()
	return l.Unlock
}

func stripeOf(scope Scope) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(scope.String()))
	return h.Sum32() % lockStripes
}

func (t *Tracker) genKey(scope Scope) string {
	return t.kv.ListViewKey(scope.Session, scope.Screen, scope.Key, "generation")
}

func (t *Tracker) snapshotKey(scope Scope) string {
	return t.kv.ListViewKey(scope.Session, scope.Screen, scope.Key, "snapshot")
}

func (t *Tracker) searchKey(scope Scope) string {
	return t.kv.ListViewKey(scope.Session, scope.Screen, scope.Key, "search")
}

// Begin issues the next generation for scope.
func (t *Tracker) Begin(ctx context.Context, scope Scope) (int64, error) {
	gen, err := t.kv.IncrWithTTL(ctx, t.genKey(scope), t.ttl)
	if err != nil {
		return 0, fmt.Errorf("begin list generation: %w", err)
	}
	return gen, nil
}

// Latest returns the most recently issued generation, 0 when none.
func (t *Tracker) Latest(ctx context.Context, scope Scope) (int64, error) {
	raw, err := t.kv.Get(ctx, t.genKey(scope))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read list generation: %w", err)
	}
	gen, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse list generation: %w", err)
	}
	return gen, nil
}

// Commit stores rows as the last-good snapshot when gen is still the latest
// generation. It reports false for a superseded generation.
func (t *Tracker) Commit(ctx context.Context, scope Scope, gen int64, rows any) (bool, error) {
	unlock := t.lock(scope)
	defer unlock()

	latest, err := t.Latest(ctx, scope)
	if err != nil {
		return false, err
	}
	if gen != latest {
		return false, nil
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return false, fmt.Errorf("marshal list snapshot: %w", err)
	}
	snap, err := json.Marshal(snapshot{Generation: gen, FetchedAt: t.now().UTC(), Rows: payload})
	if err != nil {
		return false, fmt.Errorf("marshal list snapshot: %w", err)
	}
	if err := t.kv.Set(ctx, t.snapshotKey(scope), snap, t.ttl); err != nil {
		return false, fmt.Errorf("store list snapshot: %w", err)
	}
	return true, nil
}

// LastGood decodes the last committed rows of scope into out and reports
// which generation committed them.
func (t *Tracker) LastGood(ctx context.Context, scope Scope, out any) (SnapshotInfo, bool, error) {
	raw, err := t.kv.Get(ctx, t.snapshotKey(scope))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return SnapshotInfo{}, false, nil
		}
		return SnapshotInfo{}, false, fmt.Errorf("read list snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return SnapshotInfo{}, false, fmt.Errorf("decode list snapshot: %w", err)
	}
	if err := json.Unmarshal(snap.Rows, out); err != nil {
		return SnapshotInfo{}, false, fmt.Errorf("decode list snapshot rows: %w", err)
	}
	return SnapshotInfo{Generation: snap.Generation, FetchedAt: snap.FetchedAt}, true, nil
}

// Invalidate drops the snapshot of scope after a mutation and retires every
// fetch still in flight, so none of them can commit rows read before it.
func (t *Tracker) Invalidate(ctx context.Context, scope Scope) error {
	unlock := t.lock(scope)
	defer unlock()

	if _, err := t.kv.IncrWithTTL(ctx, t.genKey(scope), t.ttl); err != nil {
		return fmt.Errorf("retire list generation: %w", err)
	}
	if err := t.kv.Del(ctx, t.snapshotKey(scope)); err != nil {
		return fmt.Errorf("drop list snapshot: %w", err)
	}
	return nil
}

// SearchChanged records search as the current text of scope and reports
// whether it differs from the previous one.
func (t *Tracker) SearchChanged(ctx context.Context, scope Scope, search string) (bool, error) {
	key := t.searchKey(scope)
	previous, err := t.kv.Get(ctx, key)
	missing := errors.Is(err, pkgredis.Nil)
	if err != nil && !missing {
		return false, fmt.Errorf("read list search: %w", err)
	}
	if !missing && previous == search {
		return false, nil
	}
	if err := t.kv.Set(ctx, key, search, t.ttl); err != nil {
		return false, fmt.Errorf("store list search: %w", err)
	}
	if missing {
		return search != "", nil
	}
	return true, nil
}

// Lookup returns the first row of the last-good snapshot accepted by match.
func Lookup[T any](ctx context.Context, t *Tracker, scope Scope, match func(T) bool) (T, bool, error) {
	var zero T
	var rows []T
	_, found, err := t.LastGood(ctx, scope, &rows)
	if err != nil || !found {
		return zero, false, err
	}
	for _, row := range rows {
		if match(row) {
			return row, true, nil
		}
	}
	return zero, false, nil
}

// MemoryKV is the in-process KV used without redis.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]memoryValue
	now    func() time.Time
}

type memoryValue struct {
	value     string
	expiresAt time.Time
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]memoryValue{}, now: time.Now}
}

func (m *MemoryKV) getLocked(key string) (memoryValue, bool) {
	v, ok := m.values[key]
	if ok && !v.expiresAt.IsZero() && !v.expiresAt.After(m.now()) {
		delete(m.values, key)
		return memoryValue{}, false
	}
	return v, ok
}

func (m *MemoryKV) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.getLocked(key)
	if !ok && ttl > 0 {
		current.expiresAt = m.now().Add(ttl)
	}
	n := int64(0)
	if current.value != "" {
		parsed, err := strconv.ParseInt(current.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not an integer", key)
		}
		n = parsed
	}
	n++
	current.value = strconv.FormatInt(n, 10)
	m.values[key] = current
	return n, nil
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.getLocked(key)
	if !ok {
		return "", pkgredis.Nil
	}
	return v.value, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		text = fmt.Sprint(v)
	}
	entry := memoryValue{value: text}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.values[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryKV) ListViewKey(parts ...string) string {
	clean := []string{"men4u", "listview"}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}
