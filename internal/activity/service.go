package activity

import (
	"context"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/pagination"
	"github.com/google/uuid"
)

// Service reads the activity log.
type Service interface {
	List(ctx context.Context, actorUserID, cursor string, limit int) (Page, error)
}

type service struct {
	repo *Repository
}

// NewService builds the activity reader.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity repo is required")
	}
	return &service{repo: repo}, nil
}

// List returns one page of entries, newest first.
func (s *service) List(ctx context.Context, actorUserID, cursor string, limit int) (Page, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit = pagination.NormalizeLimit(limit)

	entries, err := s.repo.List(ctx, actorUserID, parsed, pagination.LimitWithBuffer(limit))
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity")
	}

	page := Page{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		id, err := uuid.Parse(last.ID)
		if err != nil {
			return Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activity id is not a uuid")
		}
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: id})
	}
	if page.Entries == nil {
		page.Entries = []Entry{}
	}
	return page, nil
}
