package domain

import "time"

// Category groups tickets by the team responsible for them.
type Category struct {
	ID        int64
	Name      string
	Team      string
	CreatedAt time.Time
}
