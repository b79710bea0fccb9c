package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets. Anonymous intake is allowed; an
// authenticated principal becomes the ticket owner.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	input := service.CreateTicketInput{
		CategoryID:   req.CategoryID,
		Subject:      req.Subject,
		Priority:     req.Priority,
		Organization: req.Organization,
		CreatedBy:    req.CreatedBy,
	}
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		input.UserID = &principal.User.ID
		if input.CreatedBy == "" {
			input.CreatedBy = principal.User.Name
		}
	}

	ticket, err := h.service.CreateTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets. Non-admin callers only see their own tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := parseTicketQuery(c)
	if !principal.User.Role.IsAdmin() {
		filter.UserID = &principal.User.ID
	}

	tickets, err := h.service.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	loaded, err := h.service.GetTicket(c.Context(), id)
	if err != nil {
		return err
	}
	if !principal.User.Role.IsAdmin() {
		if loaded.Ticket.UserID == nil || *loaded.Ticket.UserID != principal.User.ID {
			return apperrors.NewForbidden("not authorized to view this ticket")
		}
	}

	return c.JSON(fiber.Map{"data": ticketDetail(loaded)})
}

// UpdateStatus PATCH /tickets/:id/status. Admin only, enforced in routing.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.UpdateStatus(c.Context(), id, domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// DeleteTicket DELETE /tickets/:id. Admin only, enforced in routing.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.service.AddMessage(c.Context(), id, service.AddMessageInput{
		SenderID:     &principal.User.ID,
		Content:      req.Content,
		IsAdminReply: principal.User.Role.IsAdmin(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// SubmitFeedback POST /tickets/:id/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CreateFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	fb, err := h.service.SubmitFeedback(c.Context(), id, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FeedbackResponse{
		ID:        fb.ID,
		TicketID:  fb.TicketID,
		Rating:    fb.Rating,
		Comment:   fb.Comment,
		CreatedAt: fb.CreatedAt,
	}})
}

// ListCategories GET /categories.
func (h *TicketsHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.service.ListCategories(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		items = append(items, dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Team: cat.Team})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		filter.Status = &status
	}
	if priorityStr := strings.TrimSpace(c.Query("priority")); priorityStr != "" {
		filter.Priority = &priorityStr
	}
	if categoryStr := c.Query("category_id"); categoryStr != "" {
		if categoryID, err := strconv.ParseInt(categoryStr, 10, 64); err == nil {
			filter.CategoryID = &categoryID
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:               ticket.ID,
		ExternalKey:      ticket.ExternalKey,
		UserID:           ticket.UserID,
		CategoryID:       ticket.CategoryID,
		Subject:          ticket.Subject,
		Status:           ticket.Status,
		Priority:         ticket.Priority,
		Organization:     ticket.Organization,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
		EndDate:          ticket.EndDate,
		CurrentSLATarget: ticket.CurrentSLATarget,
	}
}

func ticketDetail(loaded *service.TicketWithMessages) dto.TicketDetailResponse {
	msgs := make([]dto.TicketMessageResponse, 0, len(loaded.Messages))
	for i := range loaded.Messages {
		msgs = append(msgs, messageResponse(&loaded.Messages[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(&loaded.Ticket),
		Messages:      msgs,
	}
}

func messageResponse(msg *domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:           msg.ID,
		SenderID:     msg.SenderID,
		Content:      msg.Content,
		IsAdminReply: msg.IsAdminReply,
		CreatedAt:    msg.CreatedAt,
	}
}
