package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CategoryID   *int64 `json:"category_id"`
	Subject      string `json:"subject" validate:"required,max=500"`
	Priority     string `json:"priority" validate:"max=100"`
	Organization string `json:"organization" validate:"max=200"`
	CreatedBy    string `json:"created_by" validate:"max=200"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

// TicketSummary response.
type TicketSummary struct {
	ID               int64               `json:"id"`
	ExternalKey      string              `json:"external_key"`
	UserID           *int64              `json:"user_id"`
	CategoryID       *int64              `json:"category_id"`
	Subject          string              `json:"subject"`
	Status           domain.TicketStatus `json:"status"`
	Priority         string              `json:"priority"`
	Organization     string              `json:"organization,omitempty"`
	CreatedAt        *time.Time          `json:"created_at"`
	UpdatedAt        *time.Time          `json:"updated_at"`
	EndDate          *time.Time          `json:"end_date,omitempty"`
	CurrentSLATarget *time.Time          `json:"current_sla_target"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Messages []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse represents a thread message.
type TicketMessageResponse struct {
	ID           int64     `json:"id"`
	SenderID     *int64    `json:"sender_id"`
	Content      string    `json:"content"`
	IsAdminReply bool      `json:"is_admin_reply"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// CreateFeedbackRequest payload.
type CreateFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// FeedbackResponse payload.
type FeedbackResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryResponse payload.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Team string `json:"team,omitempty"`
}
