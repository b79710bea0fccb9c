package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SLAHandler exposes SLA policy administration and compliance endpoints.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// ListPolicies GET /sla/policies.
func (h *SLAHandler) ListPolicies(c *fiber.Ctx) error {
	policies, err := h.service.ListPolicies(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SLAPolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreatePolicy POST /sla/policies.
func (h *SLAHandler) CreatePolicy(c *fiber.Ctx) error {
	var req dto.SLAPolicyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	policy, err := h.service.CreatePolicy(c.Context(), service.PolicyInput{
		Name:                  req.Name,
		Description:           req.Description,
		ResponseTimeMinutes:   req.ResponseTimeMinutes,
		ResolutionTimeMinutes: req.ResolutionTimeMinutes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": policyResponse(policy)})
}

// UpdatePolicy PATCH /sla/policies/:id.
func (h *SLAHandler) UpdatePolicy(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.SLAPolicyUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	policy, err := h.service.UpdatePolicy(c.Context(), id, service.PolicyUpdateInput{
		Name:                  req.Name,
		Description:           req.Description,
		ResponseTimeMinutes:   req.ResponseTimeMinutes,
		ResolutionTimeMinutes: req.ResolutionTimeMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

// TicketStatus GET /sla/tickets/:id/status. Owner or admin.
func (h *SLAHandler) TicketStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	status, err := h.service.TicketStatus(c.Context(), id, principal.User)
	if err != nil {
		return err
	}

	resp := dto.TicketSLAStatusResponse{
		TicketID:        status.TicketID,
		Status:          status.Status,
		TimeLeftMinutes: status.TimeLeftMinutes,
	}
	if status.Policy != nil {
		policy := policyResponse(status.Policy)
		resp.SLAPolicy = &policy
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Violations GET /sla/violations.
func (h *SLAHandler) Violations(c *fiber.Ctx) error {
	violations, err := h.service.Violations(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SLAViolationResponse, 0, len(violations))
	for i := range violations {
		items = append(items, dto.SLAViolationResponse{
			TicketID:   violations[i].TicketID,
			UserID:     violations[i].UserID,
			BreachedAt: violations[i].BreachedAt,
			SLAPolicy:  policyResponse(&violations[i].Policy),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Report GET /sla/report.
func (h *SLAHandler) Report(c *fiber.Ctx) error {
	report, err := h.service.Report(c.Context())
	if err != nil {
		return err
	}

	details := make([]dto.SLAReportDetailResponse, 0, len(report.Details))
	for i := range report.Details {
		d := &report.Details[i]
		details = append(details, dto.SLAReportDetailResponse{
			TicketID:             d.TicketID,
			Subject:              d.Subject,
			Status:               string(d.Status),
			Priority:             d.Priority,
			CreatedAt:            d.CreatedAt,
			ResolvedAt:           d.ResolvedAt,
			TimeToResolveMinutes: d.TimeToResolveMinutes,
			SLAMinutes:           d.SLAMinutes,
			WithinSLA:            d.WithinSLA,
			MatchedPolicy:        d.MatchedPolicy,
		})
	}
	return c.JSON(fiber.Map{"data": dto.SLAReportResponse{
		TotalTickets:         report.TotalTickets,
		TicketsWithinSLA:     report.TicketsWithinSLA,
		TicketsBreached:      report.TicketsBreached,
		CompliancePercentage: report.CompliancePercentage,
		Details:              details,
	}})
}

// Sweep POST /sla/sweep.
func (h *SLAHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.service.SweepMissingTargets(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SLASweepResponse{
		Status:  result.Status,
		Updated: result.Updated,
	}})
}

// AlignTickets POST /sla/align-tickets.
func (h *SLAHandler) AlignTickets(c *fiber.Ctx) error {
	result, err := h.service.AlignAllTickets(c.Context())
	if err != nil {
		return err
	}

	entries := make([]dto.SLAAlignmentEntryResponse, 0, len(result.Report))
	for i := range result.Report {
		entry := &result.Report[i]
		entries = append(entries, dto.SLAAlignmentEntryResponse{
			TicketID:      entry.TicketID,
			Subject:       entry.Subject,
			Priority:      entry.Priority,
			MatchedPolicy: entry.MatchedPolicy,
			SLAMinutes:    entry.SLAMinutes,
			OldTarget:     entry.OldTarget,
			NewTarget:     entry.NewTarget,
		})
	}
	return c.JSON(fiber.Map{"data": dto.SLAAlignmentResponse{
		UpdatedCount: result.UpdatedCount,
		TotalTickets: result.TotalTickets,
		Report:       entries,
	}})
}

func policyResponse(policy *domain.SLAPolicy) dto.SLAPolicyResponse {
	return dto.SLAPolicyResponse{
		ID:                    policy.ID,
		Name:                  policy.Name,
		Description:           policy.Description,
		ResponseTimeMinutes:   policy.ResponseTimeMinutes,
		ResolutionTimeMinutes: policy.ResolutionTimeMinutes,
	}
}
