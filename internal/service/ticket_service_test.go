package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/events"
	"github.com/daviddurazo/buho-soporte-digital/internal/repository"
	apperrors "github.com/daviddurazo/buho-soporte-digital/pkg/util"
)

type fakeTicketRepo struct {
	tickets    map[string]*domain.Ticket
	seq        int
	updates    int
	lastFilter repository.TicketFilter
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.updates++
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByTicketNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, stored := range r.tickets {
		if stored.TicketNumber == number {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.lastFilter = filter
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, stored := range r.tickets {
		out = append(out, *stored)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListOpenPastDue(_ context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, stored := range r.tickets {
		if stored.IsTerminal() || stored.DueDate == nil || stored.SLABreachedAt != nil {
			continue
		}
		if stored.DueDate.Before(now) {
			out = append(out, *stored)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) MarkSLABreached(_ context.Context, id string, at time.Time) (bool, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if stored.SLABreachedAt != nil {
		return false, nil
	}
	stored.SLABreachedAt = &at
	return true, nil
}

func (r *fakeTicketRepo) CountsByStatus(context.Context) (map[domain.TicketStatus]int, error) {
	counts := map[domain.TicketStatus]int{}
	for _, stored := range r.tickets {
		counts[stored.Status]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountsByPriority(context.Context) (map[domain.TicketPriority]int, error) {
	counts := map[domain.TicketPriority]int{}
	for _, stored := range r.tickets {
		counts[stored.Priority]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountsByCategory(context.Context) (map[domain.TicketCategory]int, error) {
	counts := map[domain.TicketCategory]int{}
	for _, stored := range r.tickets {
		counts[stored.Category]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CountsByAssignee(context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, stored := range r.tickets {
		if stored.AssignedToID != nil {
			counts[*stored.AssignedToID]++
		}
	}
	return counts, nil
}

func (r *fakeTicketRepo) ResolutionStats(context.Context) (int, int, error) {
	total, within := 0, 0
	for _, stored := range r.tickets {
		if stored.ResolvedAt == nil {
			continue
		}
		total++
		if stored.DueDate != nil && !stored.ResolvedAt.After(*stored.DueDate) {
			within++
		}
	}
	return total, within, nil
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	entry.ID = fmt.Sprintf("history-%d", len(r.entries)+1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(r.comments)+1)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	attachment.ID = fmt.Sprintf("attachment-%d", len(r.attachments)+1)
	attachment.CreatedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		profile.ID = fmt.Sprintf("profile-%d", len(r.profiles)+1)
	}
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *domain.Profile) error {
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return profile, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, profile := range r.profiles {
		if strings.EqualFold(profile.Email, email) {
			return profile, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) List(context.Context, repository.ProfileFilter) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, profile := range r.profiles {
		out = append(out, *profile)
	}
	return out, nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	history    *fakeHistoryRepo
	comments   *fakeCommentRepo
	profiles   *fakeProfileRepo
	dispatcher *capturingDispatcher
}

func newTicketFixture(now time.Time) *ticketFixture {
	f := &ticketFixture{
		tickets:    newFakeTicketRepo(),
		history:    &fakeHistoryRepo{},
		comments:   &fakeCommentRepo{},
		profiles:   &fakeProfileRepo{profiles: map[string]*domain.Profile{}},
		dispatcher: &capturingDispatcher{},
	}
	f.service = NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		CommentRepo:    f.comments,
		HistoryRepo:    f.history,
		AttachmentRepo: &fakeAttachmentRepo{},
		ProfileRepo:    f.profiles,
		Dispatcher:     f.dispatcher,
		Now:            func() time.Time { return now },
	})
	return f
}

func (f *ticketFixture) addProfile(id string, role domain.UserRole) *domain.Profile {
	profile := &domain.Profile{
		ID:        id,
		FirstName: "Ana",
		LastName:  "Lopez",
		Email:     id + "@universidad.example",
		Role:      role,
		Active:    true,
	}
	f.profiles.profiles[id] = profile
	return profile
}

func (f *ticketFixture) seedTicket(t *testing.T, ticket domain.Ticket) *domain.Ticket {
	t.Helper()
	require.NoError(t, f.tickets.Create(context.Background(), &ticket))
	return &ticket
}

func TestCreateTicketComputesDueDateAndRecordsHistory(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newTicketFixture(now)
	student := f.addProfile("student-1", domain.RoleStudent)

	ticket, err := f.service.CreateTicket(context.Background(), student, TicketCreateInput{
		Title:       "Projector will not turn on",
		Description: "Room B-204 projector shows no signal",
		Category:    domain.CategoryHardware,
		Priority:    "critical",
	})
	require.NoError(t, err)

	require.Equal(t, domain.TicketStatusNew, ticket.Status)
	require.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
	require.NotNil(t, ticket.DueDate)
	require.Equal(t, now.Add(2*time.Hour), *ticket.DueDate)
	require.True(t, strings.HasPrefix(ticket.TicketNumber, "TKT-2025-"))

	require.Len(t, f.history.entries, 1)
	require.Equal(t, ticket.ID, f.history.entries[0].TicketID)
	require.NotNil(t, f.history.entries[0].UserID)
	require.Equal(t, student.ID, *f.history.entries[0].UserID)

	require.Len(t, f.dispatcher.published, 1)
	require.Equal(t, events.EventTicketCreated, f.dispatcher.published[0].Type)
}

func TestCreateTicketDefaultsUnknownPriorityToMedium(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newTicketFixture(now)
	student := f.addProfile("student-1", domain.RoleStudent)

	ticket, err := f.service.CreateTicket(context.Background(), student, TicketCreateInput{
		Title:       "Cannot log into email",
		Description: "Password accepted but inbox never loads",
		Category:    domain.CategoryEmail,
		Priority:    "urgentisimo",
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	require.Equal(t, now.Add(24*time.Hour), *ticket.DueDate)
}

func TestCreateTicketRejectsCategoryOutsideRole(t *testing.T) {
	f := newTicketFixture(time.Now())
	student := f.addProfile("student-1", domain.RoleStudent)

	_, err := f.service.CreateTicket(context.Background(), student, TicketCreateInput{
		Title:       "Lab bench PSU dead",
		Description: "Physics lab bench 3",
		Category:    domain.CategoryLabEquipment,
		Priority:    "high",
	})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	require.Empty(t, f.tickets.tickets)
	require.Empty(t, f.history.entries)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	f := newTicketFixture(time.Now())
	tech := f.addProfile("tech-1", domain.RoleTechnician)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-AAAAAA",
		CreatorID:    "student-1",
		Title:        "Wifi drops",
		Description:  "Library second floor",
		Category:     domain.CategoryNetwork,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityHigh,
	})

	_, err := f.service.UpdateStatus(context.Background(), tech, ticket.ID, "resolved", "")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	require.Equal(t, 422, domainErr.HTTPStatus)

	stored, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, getErr)
	require.Equal(t, domain.TicketStatusNew, stored.Status)
	require.Zero(t, f.tickets.updates)
	require.Empty(t, f.history.entries)
}

func TestUpdateStatusSelfTransitionIsNoOp(t *testing.T) {
	f := newTicketFixture(time.Now())
	tech := f.addProfile("tech-1", domain.RoleTechnician)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-BBBBBB",
		CreatorID:    "student-1",
		Title:        "Slow VPN",
		Description:  "Campus VPN latency spikes",
		Category:     domain.CategoryNetwork,
		Status:       domain.TicketStatusInProgress,
		Priority:     domain.TicketPriorityMedium,
	})

	updated, err := f.service.UpdateStatus(context.Background(), tech, ticket.ID, "in_progress", "")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Zero(t, f.tickets.updates)
	require.Empty(t, f.history.entries)
	require.Empty(t, f.dispatcher.published)
}

func TestUpdateStatusResolveAndReopen(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	f := newTicketFixture(now)
	tech := f.addProfile("tech-1", domain.RoleTechnician)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-CCCCCC",
		CreatorID:    "student-1",
		Title:        "Account locked",
		Description:  "Too many login attempts",
		Category:     domain.CategoryAccountAccess,
		Status:       domain.TicketStatusInProgress,
		Priority:     domain.TicketPriorityMedium,
	})

	resolved, err := f.service.UpdateStatus(context.Background(), tech, ticket.ID, "resolved", "password reset issued")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.Equal(t, now, *resolved.ResolvedAt)

	reopened, err := f.service.UpdateStatus(context.Background(), tech, ticket.ID, "in_progress", "user still locked out")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, reopened.Status)
	require.Nil(t, reopened.ResolvedAt)
	require.Nil(t, reopened.ClosedAt)

	require.Len(t, f.history.entries, 2)
	require.Contains(t, f.history.entries[0].Action, "Status changed from in_progress to resolved")
	require.Contains(t, f.history.entries[0].Action, "password reset issued")
}

func TestCreatorMayOnlyCloseOwnResolvedTicket(t *testing.T) {
	f := newTicketFixture(time.Now())
	student := f.addProfile("student-1", domain.RoleStudent)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-DDDDDD",
		CreatorID:    student.ID,
		Title:        "Printer jam",
		Description:  "Second floor copy room",
		Category:     domain.CategoryHardware,
		Status:       domain.TicketStatusInProgress,
		Priority:     domain.TicketPriorityLow,
	})

	_, err := f.service.UpdateStatus(context.Background(), student, ticket.ID, "resolved", "")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	f.tickets.tickets[ticket.ID].Status = domain.TicketStatusResolved
	closed, err := f.service.UpdateStatus(context.Background(), student, ticket.ID, "closed", "")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
}

func TestUpdatePriorityRecomputesDueDateOnActiveTickets(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f := newTicketFixture(createdAt.Add(30 * time.Minute))
	tech := f.addProfile("tech-1", domain.RoleTechnician)

	due := createdAt.Add(24 * time.Hour)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-EEEEEE",
		CreatorID:    "student-1",
		Title:        "Monitor flicker",
		Description:  "External monitor flickers on dock",
		Category:     domain.CategoryHardware,
		Status:       domain.TicketStatusAssigned,
		Priority:     domain.TicketPriorityMedium,
		DueDate:      &due,
		CreatedAt:    createdAt,
	})

	updated, err := f.service.UpdatePriority(context.Background(), tech, ticket.ID, "high")
	require.NoError(t, err)
	require.Equal(t, domain.TicketPriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)
	require.Equal(t, createdAt.Add(4*time.Hour), *updated.DueDate)
	require.Len(t, f.history.entries, 1)
}

func TestUpdatePriorityFreezesDueDateOnTerminalTickets(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f := newTicketFixture(createdAt.Add(time.Hour))
	tech := f.addProfile("tech-1", domain.RoleTechnician)

	due := createdAt.Add(24 * time.Hour)
	resolvedAt := createdAt.Add(20 * time.Hour)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-FFFFFF",
		CreatorID:    "student-1",
		Title:        "Email quota",
		Description:  "Mailbox full warnings",
		Category:     domain.CategoryEmail,
		Status:       domain.TicketStatusResolved,
		Priority:     domain.TicketPriorityMedium,
		DueDate:      &due,
		ResolvedAt:   &resolvedAt,
		CreatedAt:    createdAt,
	})

	updated, err := f.service.UpdatePriority(context.Background(), tech, ticket.ID, "critical")
	require.NoError(t, err)
	require.Equal(t, domain.TicketPriorityCritical, updated.Priority)
	require.Equal(t, due, *updated.DueDate)
}

func TestUpdatePriorityRequiresTriageRole(t *testing.T) {
	f := newTicketFixture(time.Now())
	student := f.addProfile("student-1", domain.RoleStudent)

	_, err := f.service.UpdatePriority(context.Background(), student, "ticket-1", "high")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUpdateTicketRecordsSingleHistoryEntry(t *testing.T) {
	f := newTicketFixture(time.Now())
	student := f.addProfile("student-1", domain.RoleStudent)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-MMMMMM",
		CreatorID:    student.ID,
		Title:        "Projector",
		Description:  "No signal",
		Category:     domain.CategoryHardware,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityMedium,
	})

	title := "Projector dead in B-204"
	description := "No signal on HDMI or VGA"
	updated, err := f.service.UpdateTicket(context.Background(), student, ticket.ID, TicketUpdateInput{
		Title:       &title,
		Description: &description,
	})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)
	require.Equal(t, description, updated.Description)
	require.Len(t, f.history.entries, 1)
	require.Contains(t, f.history.entries[0].Action, "title")
	require.Contains(t, f.history.entries[0].Action, "description")

	// identical payload changes nothing and appends nothing
	_, err = f.service.UpdateTicket(context.Background(), student, ticket.ID, TicketUpdateInput{
		Title: &title,
	})
	require.NoError(t, err)
	require.Len(t, f.history.entries, 1)
}

func TestUpdateTicketCategoryChangeRecomputesDueDate(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f := newTicketFixture(createdAt.Add(10 * time.Minute))
	tech := f.addProfile("tech-1", domain.RoleTechnician)

	due := createdAt.Add(24 * time.Hour)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-NNNNNN",
		CreatorID:    "student-1",
		Title:        "Rack switch rebooting",
		Description:  "Top-of-rack switch cycles every hour",
		Category:     domain.CategoryOther,
		Status:       domain.TicketStatusAssigned,
		Priority:     domain.TicketPriorityMedium,
		DueDate:      &due,
		CreatedAt:    createdAt,
	})

	category := domain.CategoryServerInfra
	updated, err := f.service.UpdateTicket(context.Background(), tech, ticket.ID, TicketUpdateInput{
		Category: &category,
	})
	require.NoError(t, err)
	require.Equal(t, domain.CategoryServerInfra, updated.Category)
	require.Equal(t, createdAt.Add(2*time.Hour), *updated.DueDate)
}

func TestUpdateTicketEnforcesEditRules(t *testing.T) {
	f := newTicketFixture(time.Now())
	owner := f.addProfile("student-1", domain.RoleStudent)
	other := f.addProfile("student-2", domain.RoleStudent)
	resolvedAt := time.Now()
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-OOOOOO",
		CreatorID:    owner.ID,
		Title:        "Done already",
		Description:  "Handled",
		Category:     domain.CategorySoftware,
		Status:       domain.TicketStatusResolved,
		Priority:     domain.TicketPriorityLow,
		ResolvedAt:   &resolvedAt,
	})

	title := "new title"
	_, err := f.service.UpdateTicket(context.Background(), other, ticket.ID, TicketUpdateInput{Title: &title})
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = f.service.UpdateTicket(context.Background(), owner, ticket.ID, TicketUpdateInput{Title: &title})
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	category := domain.CategoryLabEquipment
	active := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-PPPPPP",
		CreatorID:    owner.ID,
		Title:        "Editable",
		Description:  "Still open",
		Category:     domain.CategorySoftware,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityLow,
	})
	_, err = f.service.UpdateTicket(context.Background(), owner, active.ID, TicketUpdateInput{Category: &category})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestBulkUpdateStatusReportsPartialFailure(t *testing.T) {
	f := newTicketFixture(time.Now())
	tech := f.addProfile("tech-1", domain.RoleTechnician)

	movable := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-GGGGGG",
		CreatorID:    "student-1",
		Title:        "Keyboard broken",
		Description:  "Keys stuck",
		Category:     domain.CategoryHardware,
		Status:       domain.TicketStatusInProgress,
		Priority:     domain.TicketPriorityLow,
	})
	stuck := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-HHHHHH",
		CreatorID:    "student-2",
		Title:        "New request",
		Description:  "Untouched",
		Category:     domain.CategorySoftware,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityLow,
	})

	result, err := f.service.BulkUpdateStatus(context.Background(), tech, []string{movable.ID, stuck.ID}, "resolved")
	require.NoError(t, err)
	require.Equal(t, []string{movable.ID}, result.Updated)
	require.Len(t, result.Failed, 1)
	require.Equal(t, stuck.ID, result.Failed[0].TicketID)
	require.NotEmpty(t, result.Failed[0].Reason)

	stored, getErr := f.tickets.GetByID(context.Background(), stuck.ID)
	require.NoError(t, getErr)
	require.Equal(t, domain.TicketStatusNew, stored.Status)
}

func TestClaimTicketAssignsToSelf(t *testing.T) {
	f := newTicketFixture(time.Now())
	tech := f.addProfile("tech-1", domain.RoleTechnician)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-IIIIII",
		CreatorID:    "student-1",
		Title:        "No sound",
		Description:  "Lecture hall audio dead",
		Category:     domain.CategoryHardware,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityHigh,
	})

	claimed, err := f.service.ClaimTicket(context.Background(), tech, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusAssigned, claimed.Status)
	require.NotNil(t, claimed.AssignedToID)
	require.Equal(t, tech.ID, *claimed.AssignedToID)

	student := f.addProfile("student-1", domain.RoleStudent)
	_, err = f.service.ClaimTicket(context.Background(), student, ticket.ID)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestReassignToCurrentAssigneeIsNoOp(t *testing.T) {
	f := newTicketFixture(time.Now())
	admin := f.addProfile("admin-1", domain.RoleAdmin)
	tech := f.addProfile("tech-1", domain.RoleTechnician)
	otherTech := f.addProfile("tech-2", domain.RoleTechnician)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-QQQQQQ",
		CreatorID:    "student-1",
		Title:        "Door reader offline",
		Description:  "Badge reader at lab entrance unresponsive",
		Category:     domain.CategoryHardware,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityHigh,
	})

	_, err := f.service.ClaimTicket(context.Background(), tech, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.tickets.updates)
	require.Len(t, f.history.entries, 1)

	// claiming again changes nothing and appends nothing
	claimed, err := f.service.ClaimTicket(context.Background(), tech, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, tech.ID, *claimed.AssignedToID)
	require.Equal(t, 1, f.tickets.updates)
	require.Len(t, f.history.entries, 1)
	require.Len(t, f.dispatcher.published, 1)

	// an admin re-assigning to the current assignee is the same no-op
	_, err = f.service.AssignTicket(context.Background(), admin, ticket.ID, tech.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.tickets.updates)
	require.Len(t, f.history.entries, 1)

	// handing the ticket to a different technician is a real change
	reassigned, err := f.service.AssignTicket(context.Background(), admin, ticket.ID, otherTech.ID)
	require.NoError(t, err)
	require.Equal(t, otherTech.ID, *reassigned.AssignedToID)
	require.Equal(t, 2, f.tickets.updates)
	require.Len(t, f.history.entries, 2)
}

func TestAssignTicketValidatesRoles(t *testing.T) {
	f := newTicketFixture(time.Now())
	admin := f.addProfile("admin-1", domain.RoleAdmin)
	tech := f.addProfile("tech-1", domain.RoleTechnician)
	student := f.addProfile("student-1", domain.RoleStudent)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-JJJJJJ",
		CreatorID:    student.ID,
		Title:        "Server room alarm",
		Description:  "Temperature alert",
		Category:     domain.CategoryHardware,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityCritical,
	})

	_, err := f.service.AssignTicket(context.Background(), tech, ticket.ID, tech.ID)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = f.service.AssignTicket(context.Background(), admin, ticket.ID, student.ID)
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	assigned, err := f.service.AssignTicket(context.Background(), admin, ticket.ID, tech.ID)
	require.NoError(t, err)
	require.Equal(t, tech.ID, *assigned.AssignedToID)
	require.Equal(t, domain.TicketStatusAssigned, assigned.Status)
}

func TestListTicketsScopesSubmittersToOwnTickets(t *testing.T) {
	f := newTicketFixture(time.Now())
	student := f.addProfile("student-1", domain.RoleStudent)

	_, err := f.service.ListTickets(context.Background(), student, TicketListFilter{Unassigned: true})
	require.NoError(t, err)
	require.NotNil(t, f.tickets.lastFilter.CreatorID)
	require.Equal(t, student.ID, *f.tickets.lastFilter.CreatorID)
	require.False(t, f.tickets.lastFilter.Unassigned)

	tech := f.addProfile("tech-1", domain.RoleTechnician)
	_, err = f.service.ListTickets(context.Background(), tech, TicketListFilter{Unassigned: true})
	require.NoError(t, err)
	require.Nil(t, f.tickets.lastFilter.CreatorID)
	require.True(t, f.tickets.lastFilter.Unassigned)
}

func TestGetTicketDeniesUnrelatedSubmitter(t *testing.T) {
	f := newTicketFixture(time.Now())
	owner := f.addProfile("student-1", domain.RoleStudent)
	other := f.addProfile("student-2", domain.RoleStudent)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-KKKKKK",
		CreatorID:    owner.ID,
		Title:        "Moodle error",
		Description:  "500 on quiz submit",
		Category:     domain.CategorySoftware,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityMedium,
	})

	_, err := f.service.GetTicket(context.Background(), other, ticket.ID)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	detail, err := f.service.GetTicket(context.Background(), owner, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, detail.Ticket.ID)
}

func TestAddCommentAppendsThreadAndHistory(t *testing.T) {
	f := newTicketFixture(time.Now())
	student := f.addProfile("student-1", domain.RoleStudent)
	ticket := f.seedTicket(t, domain.Ticket{
		TicketNumber: "TKT-2025-LLLLLL",
		CreatorID:    student.ID,
		Title:        "VPN cert expired",
		Description:  "Cert warning since Monday",
		Category:     domain.CategoryNetwork,
		Status:       domain.TicketStatusNew,
		Priority:     domain.TicketPriorityMedium,
	})

	comment, err := f.service.AddComment(context.Background(), student, ticket.ID, "  still failing after reboot  ")
	require.NoError(t, err)
	require.Equal(t, "still failing after reboot", comment.Content)
	require.Len(t, f.comments.comments, 1)
	require.Len(t, f.history.entries, 1)

	_, err = f.service.AddComment(context.Background(), student, ticket.ID, "   ")
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
