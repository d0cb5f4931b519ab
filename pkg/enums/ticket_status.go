package enums

import (
	"fmt"
	"strings"
)

// TicketStatus captures the support ticket lifecycle reported by the backend.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusResolved,
	TicketStatusClosed,
}

// String implements fmt.Stringer.
func (t TicketStatus) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known TicketStatus.
func (t TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// AcceptsMessages reports whether operators may still reply on the ticket.
func (t TicketStatus) AcceptsMessages() bool {
	return t != TicketStatusClosed
}

// CanTransitionTo reports whether the console may move a ticket to next.
// Only open tickets can be resolved from the console.
func (t TicketStatus) CanTransitionTo(next TicketStatus) bool {
	return t == TicketStatusOpen && next == TicketStatusResolved
}

// ParseTicketStatus converts raw input into a TicketStatus. Matching is case-insensitive
// because the backend is not consistent about casing.
func ParseTicketStatus(value string) (TicketStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validTicketStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
