package domain

import "time"

// TicketStatus enumerates the lifecycle states the service writes. The
// column itself is free text, so historical rows may carry other values.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// IsTerminal reports whether the status marks the ticket as finished.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Ticket is the aggregate for support requests. Priority is deliberately
// free text: tickets arrive from channels that use display labels rather
// than canonical priority names, and the SLA matcher resolves the
// difference. CurrentSLATarget is nil until a policy has been matched.
type Ticket struct {
	ID               int64
	ExternalKey      string
	UserID           *int64
	CategoryID       *int64
	Subject          string
	Status           TicketStatus
	Priority         string
	Organization     string
	CreatedBy        string
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
	EndDate          *time.Time
	CurrentSLATarget *time.Time
}

// ResolvedAt returns the timestamp used as the resolution signal: the end
// date when present, otherwise the last update time. Nil means the ticket
// has no usable resolution timestamp.
func (t *Ticket) ResolvedAt() *time.Time {
	if t.EndDate != nil {
		return t.EndDate
	}
	return t.UpdatedAt
}
