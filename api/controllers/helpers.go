package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/men4u-admin/api/middleware"
	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/session"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const (
	maxPage     = 100000
	maxPageSize = 200
	maxSearch   = 200
)

// listQuery reads search, page and page_size. The loader clamps page_size to its configured maximum.
func listQuery(r *http.Request) (listview.Query, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		return listview.Query{}, err
	}
	size, err := validators.ParseQueryInt(r, "page_size", 0, 0, maxPageSize)
	if err != nil {
		return listview.Query{}, err
	}
	return listview.Query{
		Search:   validators.SanitizeString(r.URL.Query().Get("search"), maxSearch),
		Page:     page,
		PageSize: size,
	}, nil
}

// writeList serves a list screen. A stale result keeps its rows next to the refresh error.
func writeList[T any](w http.ResponseWriter, res *listview.Result[T]) {
	if res != nil && res.Stale && res.Error != nil {
		responses.WritePartial(w, res, *res.Error)
		return
	}
	responses.WriteSuccess(w, res)
}

func pathID(r *http.Request, param string) (types.ID, error) {
	return validators.ParseID(param, chi.URLParam(r, param))
}

func queryID(r *http.Request, key string) (types.ID, error) {
	return validators.ParseID(key, r.URL.Query().Get(key))
}

func requireSession(ctx context.Context, logg *logger.Logger, w http.ResponseWriter) (*session.Session, bool) {
	sess, err := middleware.SessionFromContext(ctx)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return nil, false
	}
	return sess, true
}

func serviceUnavailable(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, name string) {
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

// withDraft attaches the submitted form to a failed submit so the console can repopulate it.
func withDraft(err error, draft any) error {
	typed := pkgerrors.As(err)
	if typed == nil || !pkgerrors.MetadataFor(typed.Code()).DetailsAllowed {
		return err
	}
	details := map[string]any{"draft": draft}
	if fields := typed.Details(); fields != nil {
		details["fields"] = fields
	}
	return pkgerrors.Wrap(typed.Code(), err, typed.Message()).WithDetails(details)
}

// viewContext tags log lines with the screen and the upstream endpoint behind it.
func viewContext(ctx context.Context, logg *logger.Logger, view, endpoint string) context.Context {
	if logg == nil {
		return ctx
	}
	return logg.WithView(ctx, view, endpoint)
}
