package domain

import "time"

// TicketHistory is an immutable audit trail entry. UserID is nil for
// system-generated entries (for example the SLA monitor).
type TicketHistory struct {
	ID        string
	TicketID  string
	UserID    *string
	Action    string
	CreatedAt time.Time
}
