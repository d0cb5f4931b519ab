package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/search"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// Search looks up a field value across the backend, optionally narrowed to a role.
func Search(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "search")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		var input search.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Search(r.Context(), sess, input)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "search", "/admin/search"), logg, w, withDraft(err, input))
			return
		}
		responses.WriteSuccess(w, res)
	}
}
