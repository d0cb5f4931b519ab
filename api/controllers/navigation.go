package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/internal/navigation"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// Navigation returns the sidebar tree with the entry for ?path= marked active.
// ?expand= toggles a group the way a sidebar click would.
func Navigation(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireSession(r.Context(), logg, w); !ok {
			return
		}
		state := navigation.Resolve(r.URL.Query().Get("path"))
		if group := r.URL.Query().Get("expand"); group != "" {
			state.Expanded = navigation.Expand(state.Expanded, group)
		}
		responses.WriteSuccess(w, state)
	}
}
