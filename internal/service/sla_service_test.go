package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextID  int64
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]*domain.Ticket{}, nextID: 1}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	r.nextID++
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for id := int64(1); id < r.nextID; id++ {
		ticket, ok := r.tickets[id]
		if !ok {
			continue
		}
		if filter.UserID != nil && (ticket.UserID == nil || *ticket.UserID != *filter.UserID) {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for id := int64(1); id < r.nextID; id++ {
		if ticket, ok := r.tickets[id]; ok {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ListMissingSLATarget(_ context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for id := int64(1); id < r.nextID; id++ {
		if ticket, ok := r.tickets[id]; ok && ticket.CurrentSLATarget == nil {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) UpdateSLATargets(_ context.Context, tickets []domain.Ticket) error {
	for i := range tickets {
		if stored, ok := r.tickets[tickets[i].ID]; ok {
			stored.CurrentSLATarget = tickets[i].CurrentSLATarget
			stored.UpdatedAt = tickets[i].UpdatedAt
		}
	}
	return nil
}

type fakePolicyRepo struct {
	policies []domain.SLAPolicy
	nextID   int64
}

func newFakePolicyRepo(policies ...domain.SLAPolicy) *fakePolicyRepo {
	repo := &fakePolicyRepo{nextID: 1}
	for _, p := range policies {
		p.ID = repo.nextID
		repo.nextID++
		repo.policies = append(repo.policies, p)
	}
	return repo
}

func (r *fakePolicyRepo) List(_ context.Context) ([]domain.SLAPolicy, error) {
	return append([]domain.SLAPolicy{}, r.policies...), nil
}

func (r *fakePolicyRepo) GetByID(_ context.Context, id int64) (*domain.SLAPolicy, error) {
	for i := range r.policies {
		if r.policies[i].ID == id {
			copied := r.policies[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePolicyRepo) Create(_ context.Context, policy *domain.SLAPolicy) error {
	policy.ID = r.nextID
	r.nextID++
	r.policies = append(r.policies, *policy)
	return nil
}

func (r *fakePolicyRepo) Update(_ context.Context, policy *domain.SLAPolicy) error {
	for i := range r.policies {
		if r.policies[i].ID == policy.ID {
			r.policies[i] = *policy
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newSLAService(tickets *fakeTicketRepo, policies *fakePolicyRepo) *SLAService {
	return NewSLAService(SLADependencies{
		TicketRepo: tickets,
		PolicyRepo: policies,
		Aliases:    sla.DefaultAliases(),
	})
}

func int64Ptr(v int64) *int64 { return &v }

func standardPolicies() *fakePolicyRepo {
	return newFakePolicyRepo(
		domain.SLAPolicy{Name: "Critical", ResponseTimeMinutes: 15, ResolutionTimeMinutes: 60},
		domain.SLAPolicy{Name: "High", ResponseTimeMinutes: 30, ResolutionTimeMinutes: 240},
		domain.SLAPolicy{Name: "Medium", ResponseTimeMinutes: 60, ResolutionTimeMinutes: 480},
		domain.SLAPolicy{Name: "Low", ResponseTimeMinutes: 120, ResolutionTimeMinutes: 1440},
	)
}

func TestAssignTargetStampsDeadline(t *testing.T) {
	svc := newSLAService(newFakeTicketRepo(), standardPolicies())

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{Priority: "Critical ", CreatedAt: &created}

	policy, err := svc.AssignTarget(context.Background(), ticket, ticket.Priority)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, "Critical", policy.Name)
	require.NotNil(t, ticket.CurrentSLATarget)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), *ticket.CurrentSLATarget)
}

func TestAssignTargetResolvesConfiguredAlias(t *testing.T) {
	svc := NewSLAService(SLADependencies{
		TicketRepo: newFakeTicketRepo(),
		PolicyRepo: standardPolicies(),
		Aliases:    sla.Aliases{Critical: "Urgent", High: "Important"},
	})

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{Priority: "URGENT", CreatedAt: &created}

	policy, err := svc.AssignTarget(context.Background(), ticket, ticket.Priority)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Equal(t, "Critical", policy.Name)
	require.NotNil(t, ticket.CurrentSLATarget)
	assert.Equal(t, created.Add(60*time.Minute), *ticket.CurrentSLATarget)
}

func TestAssignTargetNoPolicies(t *testing.T) {
	svc := newSLAService(newFakeTicketRepo(), newFakePolicyRepo())

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{Priority: "high", CreatedAt: &created}

	policy, err := svc.AssignTarget(context.Background(), ticket, ticket.Priority)
	require.NoError(t, err)
	assert.Nil(t, policy)
	assert.Nil(t, ticket.CurrentSLATarget)
}

func TestAssignTargetMissingCreatedAt(t *testing.T) {
	svc := newSLAService(newFakeTicketRepo(), standardPolicies())

	ticket := &domain.Ticket{Priority: "high"}
	policy, err := svc.AssignTarget(context.Background(), ticket, ticket.Priority)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.Nil(t, ticket.CurrentSLATarget)
}

func TestSweepBackfillsAndIsIdempotent(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, standardPolicies())
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{Priority: "high", CreatedAt: &created}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{Priority: "urgent", CreatedAt: &created}))
	// No creation time means no deadline can be derived.
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{Priority: "low"}))

	result, err := svc.SweepMissingTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "synced", result.Status)
	assert.Equal(t, 2, result.Updated)

	first, err := tickets.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, first.CurrentSLATarget)
	assert.Equal(t, created.Add(240*time.Minute), *first.CurrentSLATarget)

	// "urgent" matches nothing by name and falls back to the first policy.
	second, err := tickets.GetByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, second.CurrentSLATarget)
	assert.Equal(t, created.Add(60*time.Minute), *second.CurrentSLATarget)

	again, err := svc.SweepMissingTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Updated)
}

func TestSweepNoPoliciesLeavesTicketsUntouched(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, newFakePolicyRepo())
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{Priority: "high", CreatedAt: &created}))

	result, err := svc.SweepMissingTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)

	ticket, err := tickets.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, ticket.CurrentSLATarget)
}

func TestAlignRecomputesFromCreation(t *testing.T) {
	tickets := newFakeTicketRepo()
	policies := standardPolicies()
	svc := newSLAService(tickets, policies)
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	stale := created.Add(10 * time.Minute)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority:         "high",
		Subject:          "vpn down",
		CreatedAt:        &created,
		CurrentSLATarget: &stale,
	}))

	result, err := svc.AlignAllTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, 1, result.TotalTickets)
	require.Len(t, result.Report, 1)

	entry := result.Report[0]
	assert.Equal(t, "High", entry.MatchedPolicy)
	assert.Equal(t, 240, entry.SLAMinutes)
	require.NotNil(t, entry.OldTarget)
	assert.Equal(t, stale, *entry.OldTarget)
	assert.Equal(t, created.Add(240*time.Minute), entry.NewTarget)

	stored, err := tickets.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, created.Add(240*time.Minute), *stored.CurrentSLATarget)
}

func TestAlignNoPolicies(t *testing.T) {
	svc := newSLAService(newFakeTicketRepo(), newFakePolicyRepo())

	_, err := svc.AlignAllTickets(context.Background())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestTicketStatusPlaceholder(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, standardPolicies())
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority:  "low",
		UserID:    int64Ptr(9),
		CreatedAt: &created,
	}))

	status, err := svc.TicketStatus(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "on track", status.Status)
	require.NotNil(t, status.Policy)
	assert.Equal(t, "Low", status.Policy.Name)
	assert.Equal(t, 1440, status.TimeLeftMinutes)
}

func TestTicketStatusOwnership(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, standardPolicies())
	ctx := context.Background()

	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority:  "low",
		UserID:    int64Ptr(9),
		CreatedAt: &created,
	}))

	owner := &domain.User{ID: 9, Role: domain.RoleUser}
	_, err := svc.TicketStatus(ctx, 1, owner)
	assert.NoError(t, err)

	stranger := &domain.User{ID: 10, Role: domain.RoleUser}
	_, err = svc.TicketStatus(ctx, 1, stranger)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	admin := &domain.User{ID: 11, Role: domain.RoleAdmin}
	_, err = svc.TicketStatus(ctx, 1, admin)
	assert.NoError(t, err)
}

func TestTicketStatusNotFound(t *testing.T) {
	svc := newSLAService(newFakeTicketRepo(), standardPolicies())

	_, err := svc.TicketStatus(context.Background(), 42, nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestViolationsSkipUnattributable(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, standardPolicies())
	ctx := context.Background()

	created := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	breachedEnd := created.Add(2 * time.Hour)
	okEnd := created.Add(30 * time.Minute)

	// Breached and attributable.
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", UserID: int64Ptr(1),
		CreatedAt: &created, EndDate: &breachedEnd,
	}))
	// Breached but anonymous: excluded from the per-user view.
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", CreatedAt: &created, EndDate: &breachedEnd,
	}))
	// Within budget.
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", UserID: int64Ptr(2),
		CreatedAt: &created, EndDate: &okEnd,
	}))
	// Unresolved: skipped, not reported.
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", UserID: int64Ptr(3), CreatedAt: &created,
	}))

	violations, err := svc.Violations(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, int64(1), violations[0].TicketID)
	assert.Equal(t, int64(1), violations[0].UserID)
	assert.Equal(t, breachedEnd, violations[0].BreachedAt)
	assert.Equal(t, "Critical", violations[0].Policy.Name)
}

func TestReportCountsAndPercentage(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, standardPolicies())
	ctx := context.Background()

	created := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	within := created.Add(45 * time.Minute)
	late := created.Add(90 * time.Minute)

	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", CreatedAt: &created, EndDate: &within,
	}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", CreatedAt: &created, EndDate: &late,
	}))
	// Missing creation time counts as breached with no resolve time.
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", EndDate: &within,
	}))
	// Created but never resolved and never touched: also breached.
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", CreatedAt: &created,
	}))

	report, err := svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalTickets)
	assert.Equal(t, 1, report.TicketsWithinSLA)
	assert.Equal(t, 3, report.TicketsBreached)
	assert.InDelta(t, 25.0, report.CompliancePercentage, 0.001)
	require.Len(t, report.Details, 4)

	assert.True(t, report.Details[0].WithinSLA)
	require.NotNil(t, report.Details[0].TimeToResolveMinutes)
	assert.Equal(t, 45, *report.Details[0].TimeToResolveMinutes)

	assert.False(t, report.Details[1].WithinSLA)
	assert.False(t, report.Details[2].WithinSLA)
	assert.Nil(t, report.Details[2].TimeToResolveMinutes)
	assert.False(t, report.Details[3].WithinSLA)
	assert.Nil(t, report.Details[3].TimeToResolveMinutes)
}

func TestReportExactBoundaryIsWithin(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, standardPolicies())
	ctx := context.Background()

	created := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	exact := created.Add(60 * time.Minute)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", CreatedAt: &created, EndDate: &exact,
	}))

	report, err := svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TicketsWithinSLA)
}

func TestReportPartialMinutesRoundUp(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := newSLAService(tickets, standardPolicies())
	ctx := context.Background()

	created := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	// 60 minutes and 24 seconds rounds up to 61 and breaches the
	// 60-minute budget.
	over := created.Add(60*time.Minute + 24*time.Second)
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{
		Priority: "critical", CreatedAt: &created, EndDate: &over,
	}))

	report, err := svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TicketsBreached)
	require.NotNil(t, report.Details[0].TimeToResolveMinutes)
	assert.Equal(t, 61, *report.Details[0].TimeToResolveMinutes)
}

func TestReportEmpty(t *testing.T) {
	svc := newSLAService(newFakeTicketRepo(), standardPolicies())

	report, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalTickets)
	assert.Equal(t, 0.0, report.CompliancePercentage)
	assert.Empty(t, report.Details)
}

func TestCreateAndUpdatePolicy(t *testing.T) {
	policies := newFakePolicyRepo()
	svc := newSLAService(newFakeTicketRepo(), policies)
	ctx := context.Background()

	created, err := svc.CreatePolicy(ctx, PolicyInput{
		Name:                  "  Gold  ",
		Description:           "premium tier",
		ResponseTimeMinutes:   10,
		ResolutionTimeMinutes: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gold", created.Name)
	assert.NotZero(t, created.ID)

	newMinutes := 90
	updated, err := svc.UpdatePolicy(ctx, created.ID, PolicyUpdateInput{
		ResolutionTimeMinutes: &newMinutes,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gold", updated.Name)
	assert.Equal(t, 90, updated.ResolutionTimeMinutes)
	assert.Equal(t, 10, updated.ResponseTimeMinutes)

	_, err = svc.UpdatePolicy(ctx, 999, PolicyUpdateInput{ResolutionTimeMinutes: &newMinutes})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
