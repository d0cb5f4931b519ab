package activity

import (
	"context"
	"fmt"

	"github.com/angelmondragon/men4u-admin/internal/repo"
	"github.com/angelmondragon/men4u-admin/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists activity entries.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to activity operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts one entry.
func (r *Repository) Create(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("activity entry is required")
	}
	return r.DB(ctx).Create(entry).Error
}

// List returns up to limit entries after cursor, optionally for one actor.
func (r *Repository) List(ctx context.Context, actorUserID string, cursor *pagination.Cursor, limit int) ([]Entry, error) {
	q := r.DB(ctx).Model(&Entry{})
	if actorUserID != "" {
		q = q.Where("actor_user_id = ?", actorUserID)
	}
	var entries []Entry
	if err := repo.Keyset(q, cursor, limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
