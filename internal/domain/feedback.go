package domain

import "time"

// Feedback is a post-resolution rating left on a ticket.
type Feedback struct {
	ID        int64
	TicketID  int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}
