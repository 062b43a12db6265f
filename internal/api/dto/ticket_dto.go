package dto

import (
	"time"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/sla"
)

// CreateTicketRequest payload. Priority is accepted as raw text and
// normalized server-side.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    string                `json:"priority"`
}

// UpdateTicketRequest payload; omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Category    *domain.TicketCategory `json:"category"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority string `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// BulkStatusRequest payload.
type BulkStatusRequest struct {
	TicketIDs []string `json:"ticket_ids"`
	Status    string   `json:"status"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// AttachmentRequest describes uploaded file metadata.
type AttachmentRequest struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// TicketSummary response row for tables and dashboards.
type TicketSummary struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	Title         string                `json:"title"`
	Category      domain.TicketCategory `json:"category"`
	Status        domain.TicketStatus   `json:"status"`
	StatusBadge   sla.Badge             `json:"status_badge"`
	Priority      domain.TicketPriority `json:"priority"`
	PriorityBadge sla.Badge             `json:"priority_badge"`
	AssignedToID  *string               `json:"assigned_to_id"`
	DueDate       *time.Time            `json:"due_date"`
	SLAState      sla.Classification    `json:"sla_state"`
	SLABadge      sla.Badge             `json:"sla_badge"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description   string                  `json:"description"`
	CreatorID     string                  `json:"creator_id"`
	SLABreachedAt *time.Time              `json:"sla_breached_at"`
	ResolvedAt    *time.Time              `json:"resolved_at"`
	ClosedAt      *time.Time              `json:"closed_at"`
	Comments      []CommentResponse       `json:"comments"`
	History       []TicketHistoryResponse `json:"history"`
	Attachments   []AttachmentResponse    `json:"attachments"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketHistoryResponse represents an audit entry.
type TicketHistoryResponse struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// BulkStatusResponse reports bulk action outcome.
type BulkStatusResponse struct {
	Updated []string            `json:"updated"`
	Failed  []BulkStatusFailure `json:"failed"`
}

// BulkStatusFailure names a rejected ticket.
type BulkStatusFailure struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}
