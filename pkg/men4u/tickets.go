package men4u

import (
	"context"
	"net/http"

	"github.com/angelmondragon/men4u-admin/pkg/types"
)

const (
	pathListTickets        = "/admin/ticket_list"
	pathViewTicket         = "/admin/ticket_view"
	pathContinueChat       = "/admin/continue_chat"
	pathUpdateTicketStatus = "/admin/update_ticket_status"
)

// Ticket is a support ticket raised from an outlet.
type Ticket struct {
	TicketID     types.ID `json:"ticket_id"`
	TicketNumber string   `json:"ticket_number"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status"`
	CreatedOn    string   `json:"created_on"`
	UserName     string   `json:"user_name"`
	UserRole     string   `json:"user_role"`
	Attachment1  string   `json:"attachment_1,omitempty"`
	Attachment2  string   `json:"attachment_2,omitempty"`
}

// ChatMessage is one entry of a ticket conversation.
type ChatMessage struct {
	ChatID    types.ID `json:"chat_id,omitempty"`
	Message   string   `json:"message"`
	UserName  string   `json:"user_name,omitempty"`
	UserRole  string   `json:"user_role,omitempty"`
	CreatedOn string   `json:"created_on,omitempty"`
}

// TicketThread is the ticket_view response.
type TicketThread struct {
	Ticket *Ticket       `json:"ticket"`
	Chat   []ChatMessage `json:"chat"`
}

// ContinueChatRequest appends a message to a ticket thread.
type ContinueChatRequest struct {
	TicketID types.ID `json:"ticket_id"`
	UserID   types.ID `json:"user_id"`
	Message  string   `json:"message"`
}

// UpdateTicketStatusRequest moves a ticket to a new status.
type UpdateTicketStatusRequest struct {
	TicketID     types.ID `json:"ticket_id"`
	UserID       types.ID `json:"user_id"`
	TicketStatus string   `json:"ticket_status"`
}

type outletRef struct {
	OutletID types.ID `json:"outlet_id"`
}

type ticketRef struct {
	TicketID types.ID `json:"ticket_id"`
}

func (c *Client) ListTickets(ctx context.Context, token string, outletID types.ID) ([]Ticket, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   pathListTickets,
		token:  token,
		body:   outletRef{OutletID: outletID},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[Ticket](pathListTickets, raw, "tickets", "data")
}

func (c *Client) ViewTicket(ctx context.Context, token string, ticketID types.ID) (*TicketThread, error) {
	var thread TicketThread
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   pathViewTicket,
		token:  token,
		body:   ticketRef{TicketID: ticketID},
	}, &thread)
	if err != nil {
		return nil, err
	}
	thread.Chat = nonNil(thread.Chat)
	return &thread, nil
}

func (c *Client) ContinueChat(ctx context.Context, token string, req ContinueChatRequest) (*Ack, error) {
	var ack Ack
	if err := c.call(ctx, request{method: http.MethodPost, path: pathContinueChat, token: token, body: req}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, token string, req UpdateTicketStatusRequest) (*Ack, error) {
	var ack Ack
	if err := c.call(ctx, request{method: http.MethodPatch, path: pathUpdateTicketStatus, token: token, body: req}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}
