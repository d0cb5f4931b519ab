package tickets

import (
	"context"
	"strings"

	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/outlets"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const screen = "tickets"

// MaxMessageLength bounds one chat message.
const MaxMessageLength = 2000

// API is the slice of the men4u client used here.
type API interface {
	ListTickets(ctx context.Context, token string, outletID types.ID) ([]men4u.Ticket, error)
	ViewTicket(ctx context.Context, token string, ticketID types.ID) (*men4u.TicketThread, error)
	ContinueChat(ctx context.Context, token string, req men4u.ContinueChatRequest) (*men4u.Ack, error)
	UpdateTicketStatus(ctx context.Context, token string, req men4u.UpdateTicketStatusRequest) (*men4u.Ack, error)
}

// Row is a ticket with its status parsed.
type Row struct {
	men4u.Ticket
	State enums.TicketStatus `json:"state,omitempty"`
}

// Detail is the ticket screen: the ticket, its conversation and what the
// operator may still do with it.
type Detail struct {
	Ticket     Row                 `json:"ticket"`
	Chat       []men4u.ChatMessage `json:"chat"`
	CanReply   bool                `json:"can_reply"`
	CanResolve bool                `json:"can_resolve"`
}

// Service exposes the tickets screens.
type Service interface {
	Outlets(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[outlets.Row], error)
	List(ctx context.Context, sess *session.Session, outletID types.ID, q listview.Query) (*listview.Result[Row], error)
	Get(ctx context.Context, sess *session.Session, ticketID types.ID) (*Detail, error)
	SendMessage(ctx context.Context, sess *session.Session, ticketID types.ID, message string) (*Detail, error)
	Resolve(ctx context.Context, sess *session.Session, ticketID types.ID) (*Detail, error)
}

// ServiceParams groups dependencies for the tickets service.
type ServiceParams struct {
	API      API
	Outlets  outlets.Service
	Loader   *listview.Loader
	Recorder activity.Recorder
}

type service struct {
	api      API
	outlets  outlets.Service
	loader   *listview.Loader
	recorder activity.Recorder
}

// NewService builds the tickets service.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "men4u api is required")
	}
	if params.Outlets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outlets service is required")
	}
	if params.Loader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list loader is required")
	}
	recorder := params.Recorder
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &service{api: params.API, outlets: params.Outlets, loader: params.Loader, recorder: recorder}, nil
}

// Outlets is the outlet picker; it lists the actor's outlets like the outlets screen.
func (s *service) Outlets(ctx context.Context, sess *session.Session, q listview.Query) (*listview.Result[outlets.Row], error) {
	return s.outlets.List(ctx, sess, q)
}

func (s *service) List(ctx context.Context, sess *session.Session, outletID types.ID, q listview.Query) (*listview.Result[Row], error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	if outletID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outlet id is required").
			WithDetails(map[string]any{"field": "outlet_id"})
	}
	return listview.Load(ctx, s.loader, listview.Spec[Row]{
		Scope:    listview.ScopeOf(sess, screen, outletID.String()),
		Endpoint: "/admin/ticket_list",
		Fallback: "Failed to fetch tickets",
		Fetch: func(ctx context.Context) ([]Row, error) {
			tickets, err := s.api.ListTickets(ctx, token, outletID)
			if err != nil {
				return nil, err
			}
			rows := make([]Row, 0, len(tickets))
			for _, t := range tickets {
				rows = append(rows, toRow(t))
			}
			return rows, nil
		},
		Values: func(r Row) []string { return []string{r.TicketNumber, r.Title, r.UserName} },
	}, q)
}

func toRow(t men4u.Ticket) Row {
	state, _ := enums.ParseTicketStatus(t.Status)
	return Row{Ticket: t, State: state}
}

func (s *service) Get(ctx context.Context, sess *session.Session, ticketID types.ID) (*Detail, error) {
	token, _, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, token, ticketID)
}

func (s *service) load(ctx context.Context, token string, ticketID types.ID) (*Detail, error) {
	if ticketID.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id is required")
	}
	thread, err := s.api.ViewTicket(ctx, token, ticketID)
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to fetch ticket details")
	}
	if thread.Ticket == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no ticket data available")
	}
	row := toRow(*thread.Ticket)
	return &Detail{
		Ticket:     row,
		Chat:       thread.Chat,
		CanReply:   row.State.AcceptsMessages(),
		CanResolve: row.State.CanTransitionTo(enums.TicketStatusResolved),
	}, nil
}

// SendMessage appends an operator reply and returns the refreshed thread.
func (s *service) SendMessage(ctx context.Context, sess *session.Session, ticketID types.ID, message string) (*Detail, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required").
			WithDetails(map[string]any{"field": "message"})
	}
	if len(message) > MaxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is too long").
			WithDetails(map[string]any{"field": "message", "max": MaxMessageLength})
	}

	current, err := s.load(ctx, token, ticketID)
	if err != nil {
		return nil, err
	}
	if !current.CanReply {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "ticket is closed")
	}

	_, err = s.api.ContinueChat(ctx, token, men4u.ContinueChatRequest{TicketID: ticketID, UserID: userID, Message: message})
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionMessage,
		Resource:   "ticket",
		ResourceID: ticketID.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to send message")
	}
	return s.load(ctx, token, ticketID)
}

// Resolve moves an open ticket to resolved and returns the refreshed thread.
func (s *service) Resolve(ctx context.Context, sess *session.Session, ticketID types.ID) (*Detail, error) {
	token, userID, err := sess.Actor()
	if err != nil {
		return nil, err
	}
	current, err := s.load(ctx, token, ticketID)
	if err != nil {
		return nil, err
	}
	if !current.CanResolve {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only open tickets can be resolved").
			WithDetails(map[string]any{"status": current.Ticket.Status})
	}

	_, err = s.api.UpdateTicketStatus(ctx, token, men4u.UpdateTicketStatusRequest{
		TicketID:     ticketID,
		UserID:       userID,
		TicketStatus: enums.TicketStatusResolved.String(),
	})
	s.recorder.Record(ctx, sess, activity.Event{
		Action:     enums.ActivityActionStatus,
		Resource:   "ticket",
		ResourceID: ticketID.String(),
		Message:    enums.TicketStatusResolved.String(),
		Err:        err,
	})
	if err != nil {
		return nil, pkgerrors.Fallback(err, "Failed to update status")
	}
	return s.load(ctx, token, ticketID)
}
