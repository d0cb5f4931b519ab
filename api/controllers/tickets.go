package controllers

import (
	"net/http"

	"github.com/angelmondragon/men4u-admin/api/responses"
	"github.com/angelmondragon/men4u-admin/api/validators"
	"github.com/angelmondragon/men4u-admin/internal/tickets"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

type ticketMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// TicketOutlets is the outlet picker shown before any ticket list.
func TicketOutlets(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "tickets")
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
		res, err := svc.Outlets(r.Context(), sess, q)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "ticket_outlets", "/common/listview_outlet"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}

// TicketList lists the tickets of ?outlet_id=.
func TicketList(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "tickets")
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
			responses.WriteError(viewContext(r.Context(), logg, "tickets", "/admin/ticket_list"), logg, w, err)
			return
		}
		writeList(w, res)
	}
}

// TicketDetail serves GET /tickets/{ticketId} with its message thread.
func TicketDetail(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "tickets")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		ticketID, err := pathID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), sess, ticketID)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "ticket_detail", "/admin/ticket_view"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// TicketSendMessage continues the chat and returns the reloaded thread.
func TicketSendMessage(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "tickets")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		ticketID, err := pathID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req ticketMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.SendMessage(r.Context(), sess, ticketID, req.Message)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "ticket_detail", "/admin/continue_chat"), logg, w, withDraft(err, req))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

type ticketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=resolved"`
}

// TicketUpdateStatus resolves an open ticket.
func TicketUpdateStatus(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(r.Context(), logg, w, "tickets")
			return
		}
		sess, ok := requireSession(r.Context(), logg, w)
		if !ok {
			return
		}
		ticketID, err := pathID(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req ticketStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Resolve(r.Context(), sess, ticketID)
		if err != nil {
			responses.WriteError(viewContext(r.Context(), logg, "ticket_detail", "/admin/update_ticket_status"), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
