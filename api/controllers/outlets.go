package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/outlets"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// OutletList serves GET /outlets.
func OutletList(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "outlets")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		q, err := listQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.List(r.Context(), sess, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "outlets", "/common/listview_outlet"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}

// OutletDetail serves GET /outlets/{outletId}.
func OutletDetail(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "outlets")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		outletID, err := pathID(r, "outletId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), sess, outletID)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "outlet_detail", "/common/view_outlet"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// OutletUpdate serves PATCH /outlets/{outletId}.
func OutletUpdate(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "outlets")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		outletID, err := pathID(r, "outletId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input outlets.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ack, err := svc.Update(r.Context(), sess, outletID, input)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "outlet_edit", "/common/update_outlet"), logg, w, withDraft(err, input))
			return
		}
		responses.WriteSuccess(w, ack)
	}
}
