package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daviddurazo/buho-soporte-digital/internal/config"
	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/events"
	"github.com/daviddurazo/buho-soporte-digital/internal/repository"
)

type sweepTicketRepo struct {
	repository.TicketRepository

	tickets []domain.Ticket
	marked  map[string]time.Time
}

func (r *sweepTicketRepo) ListOpenPastDue(_ context.Context, now time.Time, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.IsTerminal() || ticket.DueDate == nil || ticket.SLABreachedAt != nil {
			continue
		}
		if ticket.DueDate.Before(now) {
			out = append(out, ticket)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *sweepTicketRepo) MarkSLABreached(_ context.Context, id string, at time.Time) (bool, error) {
	if _, done := r.marked[id]; done {
		return false, nil
	}
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			breached := at
			r.tickets[i].SLABreachedAt = &breached
			r.marked[id] = at
			return true, nil
		}
	}
	return false, nil
}

type sweepHistoryRepo struct {
	entries []domain.TicketHistory
}

func (r *sweepHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *sweepHistoryRepo) ListByTicket(context.Context, string, int, int) ([]domain.TicketHistory, error) {
	return nil, nil
}

type sweepDispatcher struct {
	published []events.Event
}

func (d *sweepDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *sweepDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func TestSweepMarksOverdueTicketsOnce(t *testing.T) {
	now := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	pastDue := now.Add(-time.Hour)
	futureDue := now.Add(time.Hour)

	repo := &sweepTicketRepo{
		marked: map[string]time.Time{},
		tickets: []domain.Ticket{
			{ID: "t-overdue", TicketNumber: "TKT-2025-SWEEP1", Status: domain.TicketStatusInProgress, DueDate: &pastDue},
			{ID: "t-ontrack", TicketNumber: "TKT-2025-SWEEP2", Status: domain.TicketStatusAssigned, DueDate: &futureDue},
			{ID: "t-closed", TicketNumber: "TKT-2025-SWEEP3", Status: domain.TicketStatusClosed, DueDate: &pastDue},
		},
	}
	history := &sweepHistoryRepo{}
	dispatcher := &sweepDispatcher{}

	monitor := NewSLAMonitor(config.SLAMonitorConfig{Enabled: true, BatchSize: 100}, SLAMonitorDependencies{
		TicketRepo:  repo,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
		Now:         func() time.Time { return now },
	})

	require.NoError(t, monitor.Sweep(context.Background()))

	require.Len(t, repo.marked, 1)
	require.Contains(t, repo.marked, "t-overdue")

	require.Len(t, history.entries, 1)
	require.Equal(t, "t-overdue", history.entries[0].TicketID)
	require.Nil(t, history.entries[0].UserID)
	require.Equal(t, "SLA deadline breached", history.entries[0].Action)

	require.Len(t, dispatcher.published, 1)
	require.Equal(t, events.EventTicketSLABreached, dispatcher.published[0].Type)

	// a second pass finds nothing new
	require.NoError(t, monitor.Sweep(context.Background()))
	require.Len(t, history.entries, 1)
	require.Len(t, dispatcher.published, 1)
}
