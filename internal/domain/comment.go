package domain

import "time"

// Comment captures communications in a ticket thread. Comments are
// append-only; authorship is fixed at creation.
type Comment struct {
	ID        string
	TicketID  string
	UserID    string
	Content   string
	CreatedAt time.Time
}
