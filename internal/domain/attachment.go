package domain

import "time"

// Attachment stores metadata for files uploaded against a ticket.
// Metadata is immutable after upload.
type Attachment struct {
	ID        string
	TicketID  string
	Filename  string
	Path      string
	MimeType  string
	SizeBytes int64
	CreatedAt time.Time
}
