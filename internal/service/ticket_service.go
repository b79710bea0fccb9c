package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService implements ticket lifecycle operations.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	feedback   repository.FeedbackRepository
	categories repository.CategoryRepository
	sla        *SLAService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	MessageRepo  repository.TicketMessageRepository
	FeedbackRepo repository.FeedbackRepository
	CategoryRepo repository.CategoryRepository
	SLAService   *SLAService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		feedback:   deps.FeedbackRepo,
		categories: deps.CategoryRepo,
		sla:        deps.SLAService,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicketInput captures intake fields.
type CreateTicketInput struct {
	UserID       *int64
	CategoryID   *int64
	Subject      string
	Priority     string
	Organization string
	CreatedBy    string
}

// TicketWithMessages pairs a ticket with its conversation thread.
type TicketWithMessages struct {
	Ticket   domain.Ticket
	Messages []domain.TicketMessage
}

// CreateTicket persists a new ticket with its SLA deadline already
// stamped, so the ticket row and the deadline commit in one insert. An
// unmatched priority is not an intake failure: the nightly sweep picks
// the ticket up once a policy exists.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	priority := strings.TrimSpace(input.Priority)
	if priority == "" {
		priority = "medium"
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ExternalKey:  "TCK-" + uuid.NewString(),
		UserID:       input.UserID,
		CategoryID:   input.CategoryID,
		Subject:      subject,
		Status:       domain.TicketStatusOpen,
		Priority:     priority,
		Organization: input.Organization,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}

	policy, err := s.sla.AssignTarget(ctx, ticket, priority)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		s.logger.Warn("ticket created without sla target",
			zap.String("priority", priority),
			zap.String("subject", subject))
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("priority", ticket.Priority))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			UserID:     ticket.UserID,
			CategoryID: ticket.CategoryID,
			Priority:   ticket.Priority,
			Subject:    ticket.Subject,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket loads a ticket together with its conversation.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*TicketWithMessages, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	msgs, err := s.messages.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketWithMessages{Ticket: *ticket, Messages: msgs}, nil
}

// UpdateStatus transitions a ticket. Moving into a terminal status stamps
// the end date, which the SLA evaluator reads as the resolution time.
func (s *TicketService) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	now := time.Now().UTC()
	ticket.Status = status
	ticket.UpdatedAt = &now
	if status.IsTerminal() && ticket.EndDate == nil {
		ticket.EndDate = &now
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, id int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// AddMessageInput captures a conversation entry.
type AddMessageInput struct {
	SenderID     *int64
	Content      string
	IsAdminReply bool
}

// AddMessage appends a message to a ticket's thread.
func (s *TicketService) AddMessage(ctx context.Context, ticketID int64, input AddMessageInput) (*domain.TicketMessage, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	msg := &domain.TicketMessage{
		TicketID:     ticketID,
		SenderID:     input.SenderID,
		Content:      content,
		IsAdminReply: input.IsAdminReply,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticketID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:    msg.ID,
			SenderID:     msg.SenderID,
			IsAdminReply: msg.IsAdminReply,
		},
	})
	return msg, nil
}

// SubmitFeedback records a rating against a ticket.
func (s *TicketService) SubmitFeedback(ctx context.Context, ticketID int64, rating int, comment string) (*domain.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	fb := &domain.Feedback{
		TicketID: ticketID,
		Rating:   rating,
		Comment:  comment,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, apperrors.MapError(err)
	}
	return fb, nil
}

// ListCategories returns the routing categories.
func (s *TicketService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return cats, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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
