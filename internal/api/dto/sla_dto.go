package dto

import "time"

// SLAPolicyRequest payload for creating a policy.
type SLAPolicyRequest struct {
	Name                  string `json:"name" validate:"required,max=200"`
	Description           string `json:"description" validate:"max=2000"`
	ResponseTimeMinutes   int    `json:"response_time_minutes" validate:"min=0"`
	ResolutionTimeMinutes int    `json:"resolution_time_minutes" validate:"required,min=1"`
}

// SLAPolicyUpdateRequest payload for partial updates.
type SLAPolicyUpdateRequest struct {
	Name                  *string `json:"name" validate:"omitempty,max=200"`
	Description           *string `json:"description" validate:"omitempty,max=2000"`
	ResponseTimeMinutes   *int    `json:"response_time_minutes" validate:"omitempty,min=0"`
	ResolutionTimeMinutes *int    `json:"resolution_time_minutes" validate:"omitempty,min=1"`
}

// SLAPolicyResponse payload.
type SLAPolicyResponse struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	Description           string `json:"description,omitempty"`
	ResponseTimeMinutes   int    `json:"response_time_minutes"`
	ResolutionTimeMinutes int    `json:"resolution_time_minutes"`
}

// TicketSLAStatusResponse reports the policy resolved for one ticket.
type TicketSLAStatusResponse struct {
	TicketID        int64              `json:"ticket_id"`
	SLAPolicy       *SLAPolicyResponse `json:"sla_policy"`
	Status          string             `json:"status"`
	TimeLeftMinutes int                `json:"time_left_minutes"`
}

// SLAViolationResponse is one breached ticket in the per-user view.
type SLAViolationResponse struct {
	TicketID   int64             `json:"ticket_id"`
	UserID     int64             `json:"user_id"`
	BreachedAt time.Time         `json:"breached_at"`
	SLAPolicy  SLAPolicyResponse `json:"sla_policy"`
}

// SLAReportDetailResponse is one row of the compliance report.
type SLAReportDetailResponse struct {
	TicketID             int64      `json:"ticket_id"`
	Subject              string     `json:"subject"`
	Status               string     `json:"status"`
	Priority             string     `json:"priority"`
	CreatedAt            *time.Time `json:"created_at"`
	ResolvedAt           *time.Time `json:"resolved_at"`
	TimeToResolveMinutes *int       `json:"time_to_resolve_minutes"`
	SLAMinutes           *int       `json:"sla_minutes"`
	WithinSLA            bool       `json:"within_sla"`
	MatchedPolicy        string     `json:"matched_policy,omitempty"`
}

// SLAReportResponse aggregates compliance over all tickets.
type SLAReportResponse struct {
	TotalTickets         int                       `json:"total_tickets"`
	TicketsWithinSLA     int                       `json:"tickets_within_sla"`
	TicketsBreached      int                       `json:"tickets_breached"`
	CompliancePercentage float64                   `json:"compliance_percentage"`
	Details              []SLAReportDetailResponse `json:"details"`
}

// SLASweepResponse reports backfill progress.
type SLASweepResponse struct {
	Status  string `json:"status"`
	Updated int    `json:"updated"`
}

// SLAAlignmentEntryResponse is one recomputed deadline.
type SLAAlignmentEntryResponse struct {
	TicketID      int64      `json:"ticket_id"`
	Subject       string     `json:"subject"`
	Priority      string     `json:"priority"`
	MatchedPolicy string     `json:"matched_policy"`
	SLAMinutes    int        `json:"sla_minutes"`
	OldTarget     *time.Time `json:"old_target"`
	NewTarget     time.Time  `json:"new_target"`
}

// SLAAlignmentResponse reports a full realignment.
type SLAAlignmentResponse struct {
	UpdatedCount int                         `json:"updated_count"`
	TotalTickets int                         `json:"total_tickets"`
	Report       []SLAAlignmentEntryResponse `json:"report"`
}
