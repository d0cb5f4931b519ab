package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
	"github.com/angelmondragon/men4u-admin/pkg/pagination"
)

// ActivityList pages through the signed-in operator's recent console mutations.
func ActivityList(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "activity")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), sess.UserID().String(), r.URL.Query().Get("cursor"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
