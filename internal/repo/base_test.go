package repo

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/men4u-admin/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

type keysetRow struct {
	ID        string
	CreatedAt time.Time
}

func TestKeysetWalksNewestFirst(t *testing.T) {
	db := newTestDB(t)
	if err := db.Exec(`CREATE TABLE keyset_rows (id TEXT PRIMARY KEY, created_at DATETIME NOT NULL)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		row := keysetRow{ID: id.String(), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := db.Table("keyset_rows").Create(&row).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	var first []keysetRow
	if err := Keyset(db.Table("keyset_rows"), nil, 2).Find(&first).Error; err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || first[0].ID != ids[2].String() || first[1].ID != ids[1].String() {
		t.Fatalf("unexpected first page %+v", first)
	}

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: ids[1]}
	var second []keysetRow
	if err := Keyset(db.Table("keyset_rows"), cursor, 2).Find(&second).Error; err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 1 || second[0].ID != ids[0].String() {
		t.Fatalf("unexpected second page %+v", second)
	}
}
