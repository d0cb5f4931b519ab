package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/owners"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// OwnerList serves GET /owners.
func OwnerList(svc owners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "owners")
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
			responses.WriteError(viewContext(r.Context(), logg, "owners", "/admin/listview_owner"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}

// OwnerDetail serves GET /owners/{ownerId}.
func OwnerDetail(svc owners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "owners")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		ownerID, err := pathID(r, "ownerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		owner, err := svc.Get(r.Context(), sess, ownerID)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "owner_detail", "/admin/view_owner"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, owner)
	}
}

// OwnerCreate serves POST /owners.
func OwnerCreate(svc owners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "owners")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		var input owners.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ack, err := svc.Create(r.Context(), sess, input)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "owner_create", "/admin/create_owner"), logg, w, withDraft(err, input))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ack)
	}
}

// OwnerDelete requires ?confirm=true and answers with the refreshed list.
func OwnerDelete(svc owners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "owners")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		ownerID, err := pathID(r, "ownerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		confirm, err := validators.ParseQueryBool(r, "confirm", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q, err := listQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Delete(r.Context(), sess, ownerID, confirm, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "owners", "/admin/delete_owner"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
