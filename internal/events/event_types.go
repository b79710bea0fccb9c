package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventSLATargetAssigned   EventType = "sla_target_assigned"
	EventSLASweepCompleted   EventType = "sla_sweep_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	UserID     *int64 `json:"user_id,omitempty"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Priority   string `json:"priority"`
	Subject    string `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID    int64  `json:"message_id"`
	SenderID     *int64 `json:"sender_id,omitempty"`
	IsAdminReply bool   `json:"is_admin_reply"`
}

// SLATargetAssignedPayload payload.
type SLATargetAssignedPayload struct {
	Priority      string    `json:"priority"`
	MatchedPolicy string    `json:"matched_policy"`
	Target        time.Time `json:"target"`
}

// SLASweepCompletedPayload payload.
type SLASweepCompletedPayload struct {
	Updated int `json:"updated"`
}
