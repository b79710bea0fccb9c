package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// NotificationService fans domain events out to notification channels.
// Delivery is currently a logging stub; the email and webhook targets from
// configuration are carried so handlers keep their final shape.
type NotificationService struct {
	dispatcher events.Dispatcher
	cfg        config.NotificationConfig
	logger     *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(dispatcher events.Dispatcher, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, cfg: cfg, logger: logger}
}

// RegisterHandlers subscribes to the events worth notifying on.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	s.dispatcher.Subscribe(events.EventTicketStatusChanged, s.onTicketStatusChanged)
	s.dispatcher.Subscribe(events.EventTicketMessageAdded, s.onTicketMessageAdded)
	s.dispatcher.Subscribe(events.EventSLASweepCompleted, s.onSweepCompleted)
}

func (s *NotificationService) onTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket created",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("priority", payload.Priority),
		zap.String("email_from", s.cfg.EmailFrom))
	return nil
}

func (s *NotificationService) onTicketStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket status changed",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}

func (s *NotificationService) onTicketMessageAdded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageAddedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket message added",
		zap.Int64("ticket_id", event.TicketID),
		zap.Int64("message_id", payload.MessageID),
		zap.Bool("is_admin_reply", payload.IsAdminReply))
	return nil
}

func (s *NotificationService) onSweepCompleted(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLASweepCompletedPayload)
	if !ok {
		return nil
	}
	if payload.Updated == 0 {
		return nil
	}
	s.logger.Info("notify: sla sweep backfilled targets",
		zap.Int("updated", payload.Updated),
		zap.String("webhook_url", s.cfg.WebhookURL))
	return nil
}
