package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SLAService owns SLA policy administration, deadline assignment and
// compliance evaluation. The policy set is re-fetched on every operation:
// policies can change between calls and a stale set would misassign
// tickets.
type SLAService struct {
	tickets    repository.TicketRepository
	policies   repository.SLAPolicyRepository
	aliases    sla.Aliases
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SLADependencies bundles requirements for the SLA service.
type SLADependencies struct {
	TicketRepo repository.TicketRepository
	PolicyRepo repository.SLAPolicyRepository
	Aliases    sla.Aliases
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAService{
		tickets:    deps.TicketRepo,
		policies:   deps.PolicyRepo,
		aliases:    deps.Aliases,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// SweepResult reports backfill progress.
type SweepResult struct {
	Status  string `json:"status"`
	Updated int    `json:"updated"`
}

// TicketSLAStatus is the per-ticket status projection.
type TicketSLAStatus struct {
	TicketID        int64
	Policy          *domain.SLAPolicy
	Status          string
	TimeLeftMinutes int
}

// SLAViolation summarizes a breached ticket attributable to a user.
// The policy is a snapshot taken at evaluation time.
type SLAViolation struct {
	TicketID   int64
	UserID     int64
	BreachedAt time.Time
	Policy     domain.SLAPolicy
}

// ReportDetail is one row of the compliance report. TimeToResolveMinutes
// is nil when the ticket lacks the data to evaluate it; such rows always
// count as breached.
type ReportDetail struct {
	TicketID             int64
	Subject              string
	Status               domain.TicketStatus
	Priority             string
	CreatedAt            *time.Time
	ResolvedAt           *time.Time
	TimeToResolveMinutes *int
	SLAMinutes           *int
	WithinSLA            bool
	MatchedPolicy        string
}

// ComplianceReport aggregates SLA compliance over all tickets.
type ComplianceReport struct {
	TotalTickets         int
	TicketsWithinSLA     int
	TicketsBreached      int
	CompliancePercentage float64
	Details              []ReportDetail
}

// AlignmentEntry records one recomputed deadline.
type AlignmentEntry struct {
	TicketID      int64
	Subject       string
	Priority      string
	MatchedPolicy string
	SLAMinutes    int
	OldTarget     *time.Time
	NewTarget     time.Time
}

// AlignmentResult reports the outcome of a full realignment.
type AlignmentResult struct {
	UpdatedCount int
	TotalTickets int
	Report       []AlignmentEntry
}

// AssignTarget matches the given priority to a policy and stamps the
// resolution deadline onto the ticket. It writes exactly one field and
// does not persist: the caller owns the transaction boundary so the
// deadline commits together with the ticket row. A nil policy with a nil
// error means no SLA could be assigned; ticket intake should treat that
// as a warning, not a failure.
func (s *SLAService) AssignTarget(ctx context.Context, ticket *domain.Ticket, priority string) (*domain.SLAPolicy, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	normalized := sla.Normalize(priority, s.aliases)
	policy, matchedName := sla.Match(normalized, policies, s.aliases)
	if policy == nil {
		return nil, nil
	}

	if ticket.CreatedAt != nil {
		target := sla.Target(*ticket.CreatedAt, *policy)
		ticket.CurrentSLATarget = &target
		s.logger.Info("sla target assigned",
			zap.String("priority", normalized),
			zap.String("matched_policy", matchedName),
			zap.Time("target", target))
	}
	return policy, nil
}

// SweepMissingTargets backfills deadlines for tickets that never received
// one, e.g. tickets created before any policy existed. Idempotent and safe
// to run on every process start: tickets already carrying a target are not
// selected, and tickets that still match no policy stay untouched for the
// next run. Changed rows are written in one batch at the end.
func (s *SLAService) SweepMissingTargets(ctx context.Context) (SweepResult, error) {
	tickets, err := s.tickets.ListMissingSLATarget(ctx)
	if err != nil {
		return SweepResult{}, apperrors.MapError(err)
	}
	policies, err := s.policies.List(ctx)
	if err != nil {
		return SweepResult{}, apperrors.MapError(err)
	}

	now := time.Now().UTC()
	changed := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		ticket := tickets[i]
		if ticket.CreatedAt == nil {
			continue
		}
		normalized := sla.Normalize(ticket.Priority, s.aliases)
		policy, _ := sla.Match(normalized, policies, s.aliases)
		if policy == nil {
			continue
		}
		target := sla.Target(*ticket.CreatedAt, *policy)
		updated := now
		ticket.CurrentSLATarget = &target
		ticket.UpdatedAt = &updated
		changed = append(changed, ticket)
	}

	if err := s.tickets.UpdateSLATargets(ctx, changed); err != nil {
		return SweepResult{}, apperrors.MapError(err)
	}

	s.logger.Info("sla sweep completed",
		zap.Int("candidates", len(tickets)),
		zap.Int("updated", len(changed)))
	s.publish(ctx, events.Event{
		Type:    events.EventSLASweepCompleted,
		Payload: events.SLASweepCompletedPayload{Updated: len(changed)},
	})

	return SweepResult{Status: "synced", Updated: len(changed)}, nil
}

// AlignAllTickets recomputes the deadline for every ticket from its
// creation time and the currently matched policy. This is the explicit
// administrative recompute: regular assignment never retroactively follows
// policy edits.
func (s *SLAService) AlignAllTickets(ctx context.Context) (*AlignmentResult, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(policies) == 0 {
		return nil, apperrors.NewNotFound("sla policies", nil)
	}

	changed := make([]domain.Ticket, 0, len(tickets))
	report := make([]AlignmentEntry, 0, len(tickets))
	for i := range tickets {
		ticket := tickets[i]
		if ticket.CreatedAt == nil {
			continue
		}
		normalized := sla.Normalize(ticket.Priority, s.aliases)
		policy, matchedName := sla.Match(normalized, policies, s.aliases)
		if policy == nil {
			continue
		}
		oldTarget := ticket.CurrentSLATarget
		target := sla.Target(*ticket.CreatedAt, *policy)
		ticket.CurrentSLATarget = &target
		changed = append(changed, ticket)
		report = append(report, AlignmentEntry{
			TicketID:      ticket.ID,
			Subject:       ticket.Subject,
			Priority:      ticket.Priority,
			MatchedPolicy: matchedName,
			SLAMinutes:    policy.ResolutionTimeMinutes,
			OldTarget:     oldTarget,
			NewTarget:     target,
		})
	}

	if err := s.tickets.UpdateSLATargets(ctx, changed); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("sla alignment completed",
		zap.Int("total", len(tickets)),
		zap.Int("updated", len(changed)))

	return &AlignmentResult{
		UpdatedCount: len(changed),
		TotalTickets: len(tickets),
		Report:       report,
	}, nil
}

// TicketStatus resolves the policy for a single ticket. The requester, if
// given and not an admin, must own the ticket.
//
// The status field is intentionally static: this endpoint has never
// compared elapsed time against the budget, unlike the compliance report.
// Kept as-is pending a product decision on unifying the two.
func (s *SLAService) TicketStatus(ctx context.Context, ticketID int64, requester *domain.User) (*TicketSLAStatus, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if requester != nil && !requester.Role.IsAdmin() {
		if ticket.UserID == nil || *ticket.UserID != requester.ID {
			return nil, apperrors.NewForbidden("not authorized to view this ticket's sla status")
		}
	}

	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(policies) == 0 {
		return nil, apperrors.NewNotFound("sla policies", nil)
	}

	normalized := sla.Normalize(ticket.Priority, s.aliases)
	policy, _ := sla.Match(normalized, policies, s.aliases)

	return &TicketSLAStatus{
		TicketID:        ticket.ID,
		Policy:          policy,
		Status:          "on track",
		TimeLeftMinutes: policy.ResolutionTimeMinutes,
	}, nil
}

// Violations lists breached tickets attributable to a user. Tickets
// without a userid are tracked by the aggregate report but excluded here;
// tickets missing creation or resolution data are skipped, not reported.
func (s *SLAService) Violations(ctx context.Context) ([]SLAViolation, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	violations := make([]SLAViolation, 0)
	for i := range tickets {
		ticket := &tickets[i]
		if ticket.UserID == nil {
			continue
		}
		resolved := ticket.ResolvedAt()
		normalized := sla.Normalize(ticket.Priority, s.aliases)
		policy, _ := sla.Match(normalized, policies, s.aliases)
		if ticket.CreatedAt == nil || resolved == nil || policy == nil {
			continue
		}
		elapsed := sla.ElapsedMinutes(*ticket.CreatedAt, *resolved)
		if sla.WithinSLA(elapsed, policy.ResolutionTimeMinutes) {
			continue
		}
		violations = append(violations, SLAViolation{
			TicketID:   ticket.ID,
			UserID:     *ticket.UserID,
			BreachedAt: *resolved,
			Policy:     *policy,
		})
	}
	return violations, nil
}

// Report evaluates every ticket against its matched policy. Evaluation is
// read-only and must always complete, even over dirty historical data:
// tickets missing creation time, resolution time or a matched policy are
// conservatively counted as breached with a nil resolve time.
func (s *SLAService) Report(ctx context.Context) (*ComplianceReport, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &ComplianceReport{Details: make([]ReportDetail, 0, len(tickets))}
	for i := range tickets {
		ticket := &tickets[i]
		resolved := ticket.ResolvedAt()
		normalized := sla.Normalize(ticket.Priority, s.aliases)
		policy, matchedName := sla.Match(normalized, policies, s.aliases)

		detail := ReportDetail{
			TicketID:      ticket.ID,
			Subject:       ticket.Subject,
			Status:        ticket.Status,
			Priority:      ticket.Priority,
			CreatedAt:     ticket.CreatedAt,
			ResolvedAt:    resolved,
			MatchedPolicy: matchedName,
		}
		if policy != nil {
			minutes := policy.ResolutionTimeMinutes
			detail.SLAMinutes = &minutes
		}

		if ticket.CreatedAt == nil || resolved == nil || policy == nil {
			report.TicketsBreached++
			report.Details = append(report.Details, detail)
			continue
		}

		elapsed := sla.ElapsedMinutes(*ticket.CreatedAt, *resolved)
		detail.TimeToResolveMinutes = &elapsed
		detail.WithinSLA = sla.WithinSLA(elapsed, policy.ResolutionTimeMinutes)
		if detail.WithinSLA {
			report.TicketsWithinSLA++
		} else {
			report.TicketsBreached++
		}
		report.Details = append(report.Details, detail)
	}

	report.TotalTickets = len(tickets)
	if report.TotalTickets > 0 {
		pct := float64(report.TicketsWithinSLA) / float64(report.TotalTickets) * 100
		report.CompliancePercentage = math.Round(pct*100) / 100
	}
	return report, nil
}

// ListPolicies returns the full policy set.
func (s *SLAService) ListPolicies(ctx context.Context) ([]domain.SLAPolicy, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policies, nil
}

// PolicyInput describes a new policy.
type PolicyInput struct {
	Name                  string
	Description           string
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
}

// PolicyUpdateInput describes a partial policy update.
type PolicyUpdateInput struct {
	Name                  *string
	Description           *string
	ResponseTimeMinutes   *int
	ResolutionTimeMinutes *int
}

// CreatePolicy persists a new policy. Existing tickets keep their targets;
// only AlignAllTickets recomputes retroactively.
func (s *SLAService) CreatePolicy(ctx context.Context, input PolicyInput) (*domain.SLAPolicy, error) {
	policy := &domain.SLAPolicy{
		Name:                  strings.TrimSpace(input.Name),
		Description:           input.Description,
		ResponseTimeMinutes:   input.ResponseTimeMinutes,
		ResolutionTimeMinutes: input.ResolutionTimeMinutes,
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("sla policy created",
		zap.Int64("sla_id", policy.ID),
		zap.String("name", policy.Name),
		zap.Int("resolution_minutes", policy.ResolutionTimeMinutes))
	return policy, nil
}

// UpdatePolicy applies the non-nil fields of the input to an existing
// policy.
func (s *SLAService) UpdatePolicy(ctx context.Context, id int64, input PolicyUpdateInput) (*domain.SLAPolicy, error) {
	policy, err := s.policies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sla policy", map[string]any{"sla_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Name != nil {
		policy.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		policy.Description = *input.Description
	}
	if input.ResponseTimeMinutes != nil {
		policy.ResponseTimeMinutes = *input.ResponseTimeMinutes
	}
	if input.ResolutionTimeMinutes != nil {
		policy.ResolutionTimeMinutes = *input.ResolutionTimeMinutes
	}

	if err := s.policies.Update(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}

func (s *SLAService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
