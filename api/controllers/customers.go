package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/internal/customers"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

// CustomerList lists the customers of ?outlet_id= with the backend aggregates.
func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "customers")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		outletID, err := queryID(r, "outlet_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q, err := listQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.List(r.Context(), sess, outletID, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "customers", "/admin/customer_listview"), logg, w, err)
			return
		}
		if res.Stale && res.Error != nil {
			responses.WritePartial(w, res, *res.Error)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// CustomerDetail is served from the last customer list of ?outlet_id= only.
func CustomerDetail(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "customers")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		outletID, err := queryID(r, "outlet_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := pathID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.Get(r.Context(), sess, outletID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}
