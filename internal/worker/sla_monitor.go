package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/daviddurazo/buho-soporte-digital/internal/config"
	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/events"
	"github.com/daviddurazo/buho-soporte-digital/internal/observability"
	"github.com/daviddurazo/buho-soporte-digital/internal/repository"
	"github.com/daviddurazo/buho-soporte-digital/internal/service"
)

// SLAMonitor periodically sweeps active tickets whose due date has
// passed, records the breach once, and emits a breach event. The
// breach timestamp on the ticket row guarantees a ticket is reported
// once even across overlapping sweeps or process restarts.
type SLAMonitor struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.SLAMonitorConfig
	now        service.Clock

	cron    *cron.Cron
	entryID cron.EntryID
}

// SLAMonitorDependencies bundles collaborators for the monitor.
type SLAMonitorDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Now         service.Clock
}

// NewSLAMonitor constructs the monitor.
func NewSLAMonitor(cfg config.SLAMonitorConfig, deps SLAMonitorDependencies) *SLAMonitor {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SLAMonitor{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        cfg,
		now:        now,
	}
}

// Start schedules the sweep. Returns immediately; sweeps run on the
// cron goroutine.
func (m *SLAMonitor) Start() error {
	if !m.cfg.Enabled {
		m.logger.Info("sla monitor disabled")
		return nil
	}
	m.cron = cron.New()
	entryID, err := m.cron.AddFunc(m.cfg.Schedule, func() {
		if err := m.Sweep(context.Background()); err != nil {
			m.logger.Error("sla sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	m.entryID = entryID
	m.cron.Start()
	m.logger.Info("sla monitor started", zap.String("schedule", m.cfg.Schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (m *SLAMonitor) Stop() {
	if m.cron == nil {
		return
	}
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// Sweep finds past-due active tickets and records their breach.
func (m *SLAMonitor) Sweep(ctx context.Context) error {
	now := m.now()
	overdue, err := m.tickets.ListOpenPastDue(ctx, now, m.cfg.BatchSize)
	if err != nil {
		return err
	}

	for i := range overdue {
		ticket := &overdue[i]
		marked, err := m.tickets.MarkSLABreached(ctx, ticket.ID, now)
		if err != nil {
			m.logger.Error("mark sla breach failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if !marked {
			continue
		}

		m.metrics.RecordSLABreach()
		entry := &domain.TicketHistory{
			TicketID: ticket.ID,
			UserID:   nil, // system-generated
			Action:   "SLA deadline breached",
		}
		if err := m.history.Create(ctx, entry); err != nil {
			m.logger.Error("record sla breach history failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
		if m.dispatcher != nil && ticket.DueDate != nil {
			_ = m.dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventTicketSLABreached,
				TicketID:  ticket.ID,
				Timestamp: now,
				Payload: events.TicketSLABreachedPayload{
					TicketNumber: ticket.TicketNumber,
					DueDate:      *ticket.DueDate,
					BreachedAt:   now,
				},
			})
		}
	}

	if len(overdue) > 0 {
		m.logger.Info("sla sweep complete", zap.Int("overdue", len(overdue)))
	}
	return nil
}
