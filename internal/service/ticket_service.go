package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/events"
	"github.com/daviddurazo/buho-soporte-digital/internal/observability"
	"github.com/daviddurazo/buho-soporte-digital/internal/repository"
	"github.com/daviddurazo/buho-soporte-digital/internal/sla"
	apperrors "github.com/daviddurazo/buho-soporte-digital/pkg/util"
)

// Clock supplies the current time. Injected so lifecycle decisions are
// deterministic under test.
type Clock func() time.Time

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	history     repository.TicketHistoryRepository
	attachments repository.AttachmentRepository
	profiles    repository.ProfileRepository
	rules       *sla.RuleTable
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	now         Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	HistoryRepo    repository.TicketHistoryRepository
	AttachmentRepo repository.AttachmentRepository
	ProfileRepo    repository.ProfileRepository
	Rules          *sla.RuleTable
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Now            Clock
}

// TicketCreateInput describes ticket creation payload. Priority arrives
// raw from the form and is normalized before use.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    string
}

// TicketListFilter describes listing filters; the service narrows the
// scope further based on the acting profile's role.
type TicketListFilter struct {
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Categories   []domain.TicketCategory
	SearchTerm   *string
	Unassigned   bool
	AssignedToMe bool
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketDetail bundles a ticket with its thread and audit trail.
type TicketDetail struct {
	Ticket      *domain.Ticket
	Comments    []domain.Comment
	History     []domain.TicketHistory
	Attachments []domain.Attachment
}

// TicketUpdateInput carries content edits. Nil fields are left alone.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
}

// AttachmentInput defines uploaded file metadata.
type AttachmentInput struct {
	Filename  string
	Path      string
	MimeType  string
	SizeBytes int64
}

// BulkStatusFailure names a ticket the bulk action could not move.
type BulkStatusFailure struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// BulkStatusResult reports partial success of a bulk status change.
type BulkStatusResult struct {
	Updated []string            `json:"updated"`
	Failed  []BulkStatusFailure `json:"failed"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	rules := deps.Rules
	if rules == nil {
		rules = sla.DefaultRules()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		history:     deps.HistoryRepo,
		attachments: deps.AttachmentRepo,
		profiles:    deps.ProfileRepo,
		rules:       rules,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		now:         now,
	}
}

// CreateTicket files a new ticket for the acting profile. The due date
// is derived from the normalized priority and the category at creation.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Profile, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if !domain.CategoryAllowed(actor.Role, input.Category) {
		return nil, apperrors.NewValidationError("category not available for role", map[string]any{
			"category": input.Category,
			"role":     actor.Role,
		})
	}

	priority := sla.NormalizePriority(input.Priority)
	createdAt := s.now()
	dueDate := s.rules.ComputeDueDate(priority, input.Category, createdAt)

	ticket := &domain.Ticket{
		TicketNumber: generateTicketNumber(createdAt),
		CreatorID:    actor.ID,
		Title:        title,
		Description:  description,
		Category:     input.Category,
		Status:       domain.TicketStatusNew,
		Priority:     priority,
		DueDate:      &dueDate,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.metrics.RecordTicketCreated()
	if err := s.recordHistory(ctx, ticket.ID, &actor.ID,
		fmt.Sprintf("Ticket created with priority %s in category %s", priority, input.Category)); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    profileActor(actor),
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Category:     ticket.Category,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
			DueDate:      ticket.DueDate,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets visible to the acting profile.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.Profile, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if actor.CanTriage() {
		if filter.Unassigned {
			repoFilter.Unassigned = true
		}
		if filter.AssignedToMe {
			assignee := actor.ID
			repoFilter.AssignedToID = &assignee
		}
	} else {
		creator := actor.ID
		repoFilter.CreatorID = &creator
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		normalizeTicket(&tickets[i])
	}
	return tickets, nil
}

// GetTicket fetches a ticket with its thread, ensuring access.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.Profile, ticketID string) (*TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListByTicket(ctx, ticket.ID, 100, 0)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{
		Ticket:      ticket,
		Comments:    comments,
		History:     history,
		Attachments: attachments,
	}, nil
}

// ClaimTicket lets a technician take ownership of a new ticket.
func (s *TicketService) ClaimTicket(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error) {
	if !actor.CanTriage() {
		return nil, apperrors.NewForbidden("technician role required")
	}
	return s.assign(ctx, actor, ticketID, actor)
}

// AssignTicket lets an admin hand a ticket to a specific technician.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.Profile, ticketID, assigneeID string) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	assignee, err := s.profiles.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if !assignee.CanTriage() {
		return nil, apperrors.NewValidationError("assignee must be a technician", nil)
	}
	return s.assign(ctx, actor, ticketID, assignee)
}

func (s *TicketService) assign(ctx context.Context, actor *domain.Profile, ticketID string, assignee *domain.Profile) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	// re-assigning to the current assignee is a pure self-transition:
	// nothing is written and no history entry is appended
	if ticket.Status == domain.TicketStatusAssigned &&
		ticket.AssignedToID != nil && *ticket.AssignedToID == assignee.ID {
		return ticket, nil
	}
	if err := sla.CheckTransition(ticket.Status, domain.TicketStatusAssigned); err != nil {
		return nil, mapTransitionError(err)
	}

	ticket.Status = domain.TicketStatusAssigned
	assigneeID := assignee.ID
	ticket.AssignedToID = &assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.recordHistory(ctx, ticket.ID, &actor.ID,
		fmt.Sprintf("Ticket assigned to %s", assignee.FullName())); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    profileActor(actor),
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	return ticket, nil
}

// UpdateStatus moves the ticket through the lifecycle graph. A pure
// status-to-self change is an idempotent no-op: nothing is written and
// no history entry is appended.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Profile, ticketID, rawStatus, note string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	newStatus := sla.NormalizeStatus(rawStatus)
	if !s.canChangeStatus(actor, ticket, newStatus) {
		return nil, apperrors.NewForbidden("not allowed to change this ticket's status")
	}
	if newStatus == ticket.Status {
		return ticket, nil
	}
	if err := sla.CheckTransition(ticket.Status, newStatus); err != nil {
		return nil, mapTransitionError(err)
	}

	now := s.now()
	oldStatus := ticket.Status
	switch newStatus {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	case domain.TicketStatusInProgress:
		// reopen path clears terminal timestamps
		ticket.ResolvedAt = nil
		ticket.ClosedAt = nil
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	action := fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
	if strings.TrimSpace(note) != "" {
		action += ": " + strings.TrimSpace(note)
	}
	if err := s.recordHistory(ctx, ticket.ID, &actor.ID, action); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    profileActor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Note:      note,
		},
	})
	return ticket, nil
}

// UpdatePriority changes urgency and recomputes the due date. Due dates
// on resolved and closed tickets are frozen for reporting accuracy.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.Profile, ticketID, rawPriority string) (*domain.Ticket, error) {
	if !actor.CanTriage() {
		return nil, apperrors.NewForbidden("technician role required")
	}
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	newPriority := sla.NormalizePriority(rawPriority)
	if newPriority == ticket.Priority {
		return ticket, nil
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if !ticket.IsTerminal() {
		due := s.rules.ComputeDueDate(newPriority, ticket.Category, ticket.CreatedAt)
		ticket.DueDate = &due
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.recordHistory(ctx, ticket.ID, &actor.ID,
		fmt.Sprintf("Priority changed from %s to %s", oldPriority, newPriority)); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Actor:    profileActor(actor),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
			NewDueDate:  ticket.DueDate,
		},
	})
	return ticket, nil
}

// UpdateTicket edits title, description, or category. A category change
// can shift the ticket onto a different SLA rule, so the due date is
// recomputed the same way a priority change does, and stays frozen on
// resolved and closed tickets. An edit that changes nothing is a no-op
// and appends no history entry.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.Profile, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.CanTriage() {
		if ticket.CreatorID != actor.ID {
			return nil, apperrors.NewForbidden("not allowed to edit this ticket")
		}
		if ticket.IsTerminal() {
			return nil, apperrors.NewForbidden("resolved tickets can no longer be edited")
		}
	}

	var changed []string
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title required", nil)
		}
		if title != ticket.Title {
			ticket.Title = title
			changed = append(changed, "title")
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description required", nil)
		}
		if description != ticket.Description {
			ticket.Description = description
			changed = append(changed, "description")
		}
	}
	if input.Category != nil && *input.Category != ticket.Category {
		if !domain.CategoryAllowed(actor.Role, *input.Category) {
			return nil, apperrors.NewValidationError("category not available for role", map[string]any{
				"category": *input.Category,
				"role":     actor.Role,
			})
		}
		ticket.Category = *input.Category
		changed = append(changed, "category")
		if !ticket.IsTerminal() {
			due := s.rules.ComputeDueDate(ticket.Priority, ticket.Category, ticket.CreatedAt)
			ticket.DueDate = &due
		}
	}
	if len(changed) == 0 {
		return ticket, nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordHistory(ctx, ticket.ID, &actor.ID,
		fmt.Sprintf("Ticket %s updated", strings.Join(changed, ", "))); err != nil {
		return nil, err
	}
	return ticket, nil
}

// BulkUpdateStatus applies a status change to several tickets. Illegal
// transitions are reported per ticket and leave the ticket untouched.
func (s *TicketService) BulkUpdateStatus(ctx context.Context, actor *domain.Profile, ticketIDs []string, rawStatus string) (*BulkStatusResult, error) {
	if !actor.CanTriage() {
		return nil, apperrors.NewForbidden("technician role required")
	}
	result := &BulkStatusResult{Updated: []string{}, Failed: []BulkStatusFailure{}}
	for _, id := range ticketIDs {
		if _, err := s.UpdateStatus(ctx, actor, id, rawStatus, ""); err != nil {
			result.Failed = append(result.Failed, BulkStatusFailure{
				TicketID: id,
				Reason:   apperrors.ToDomainError(err).Message,
			})
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	return result, nil
}

// AddComment appends to the ticket thread.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.Profile, ticketID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		UserID:   actor.ID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.recordHistory(ctx, ticket.ID, &actor.ID, "Comment added"); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: ticket.ID,
		Actor:    profileActor(actor),
		Payload: events.TicketCommentedPayload{
			CommentID:   comment.ID,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return comment, nil
}

// AddAttachment registers uploaded file metadata against the ticket.
func (s *TicketService) AddAttachment(ctx context.Context, actor *domain.Profile, ticketID string, input AttachmentInput) (*domain.Attachment, error) {
	if strings.TrimSpace(input.Filename) == "" || strings.TrimSpace(input.Path) == "" {
		return nil, apperrors.NewValidationError("filename and path required", nil)
	}
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	attachment := &domain.Attachment{
		TicketID:  ticket.ID,
		Filename:  input.Filename,
		Path:      input.Path,
		MimeType:  input.MimeType,
		SizeBytes: input.SizeBytes,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	if err := s.recordHistory(ctx, ticket.ID, &actor.ID,
		fmt.Sprintf("Attachment %s uploaded", input.Filename)); err != nil {
		return nil, err
	}
	return attachment, nil
}

// ListHistory returns the audit trail for a ticket the actor may view.
func (s *TicketService) ListHistory(ctx context.Context, actor *domain.Profile, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	ticket, err := s.loadTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticket.ID, limit, offset)
}

// loadTicket fetches and normalizes a ticket and checks visibility.
func (s *TicketService) loadTicket(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	normalizeTicket(ticket)
	if !s.canView(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) canView(actor *domain.Profile, ticket *domain.Ticket) bool {
	if actor == nil {
		return false
	}
	if actor.CanTriage() {
		return true
	}
	return ticket.CreatorID == actor.ID
}

// canChangeStatus: triage roles may perform any legal transition;
// submitters may only archive their own resolved tickets.
func (s *TicketService) canChangeStatus(actor *domain.Profile, ticket *domain.Ticket, to domain.TicketStatus) bool {
	if actor.CanTriage() {
		return true
	}
	return ticket.CreatorID == actor.ID &&
		ticket.Status == domain.TicketStatusResolved &&
		(to == domain.TicketStatusClosed || to == ticket.Status)
}

// normalizeTicket coerces stored status/priority text into the
// enumerated sets before anything downstream consumes them.
func normalizeTicket(ticket *domain.Ticket) {
	ticket.Status = sla.NormalizeStatus(string(ticket.Status))
	ticket.Priority = sla.NormalizePriority(string(ticket.Priority))
}

func mapTransitionError(err error) error {
	var invalid *sla.InvalidTransitionError
	if errors.As(err, &invalid) {
		return apperrors.NewInvalidTransition(string(invalid.From), string(invalid.To))
	}
	return err
}

func (s *TicketService) recordHistory(ctx context.Context, ticketID string, userID *string, action string) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID: ticketID,
		UserID:   userID,
		Action:   action,
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func profileActor(profile *domain.Profile) events.Actor {
	id := profile.ID
	return events.Actor{UserID: &id, Role: profile.Role}
}

func generateTicketNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TKT-%d-%s", at.Year(), suffix)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
