package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/internal/dashboard"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// Dashboard serves the counters of the landing screen.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "dashboard")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		summary, err := svc.Summary(r.Context(), sess)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "dashboard", "/admin/admin_home"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
