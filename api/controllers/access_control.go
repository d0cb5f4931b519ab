package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/accesscontrol"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// FunctionalityList serves GET /functionalities with the shared list query.
func FunctionalityList(svc accesscontrol.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "access control")
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
		res, err := svc.ListFunctionalities(r.Context(), sess, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "functionalities", "/admin/get_ubac_functionalities"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}

// FunctionalityCreate serves POST /functionalities.
func FunctionalityCreate(svc accesscontrol.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "access control")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		var input accesscontrol.CreateFunctionalityInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ack, err := svc.CreateFunctionality(r.Context(), sess, input)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "functionalities", "/admin/create_ubac_functionality"), logg, w, withDraft(err, input))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ack)
	}
}

// RoleList groups role to functionality mappings into one entry per role.
func RoleList(svc accesscontrol.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "access control")
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
		res, err := svc.ListRoles(r.Context(), sess, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "roles", "/admin/get_ubac_role_functionality_mappings"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}
