package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/partners"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// PartnerList serves GET /partners.
func PartnerList(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "partners")
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
			responses.WriteError(viewContext(r.Context(), logg, "partners", "/admin/listview_partner"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}

// PartnerDetail serves GET /partners/{partnerId}.
func PartnerDetail(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "partners")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		partnerID, err := pathID(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partner, err := svc.Get(r.Context(), sess, partnerID)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "partner_detail", "/admin/view_partner"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}

// PartnerCreate serves POST /partners.
func PartnerCreate(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "partners")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		var input partners.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ack, err := svc.Create(r.Context(), sess, input)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "partner_create", "/admin/create_partner"), logg, w, withDraft(err, input))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ack)
	}
}

// PartnerUpdate serves PATCH /partners/{partnerId}.
func PartnerUpdate(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "partners")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		partnerID, err := pathID(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input partners.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ack, err := svc.Update(r.Context(), sess, partnerID, input)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "partner_edit", "/admin/update_partner"), logg, w, withDraft(err, input))
			return
		}
		responses.WriteSuccess(w, ack)
	}
}

// PartnerDelete removes a partner and answers with the refreshed list.
func PartnerDelete(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "partners")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		partnerID, err := pathID(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q, err := listQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Delete(r.Context(), sess, partnerID, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "partners", "/admin/delete_partner"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
