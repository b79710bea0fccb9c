package domain

import "time"

// TicketMessage is a single entry in a ticket's conversation thread.
type TicketMessage struct {
	ID            int64
	TicketID      int64
	SenderID      *int64
	Content       string
	IsAdminReply  bool
	IsBotResponse bool
	CreatedAt     time.Time
}
