package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/repository"
	"github.com/daviddurazo/buho-soporte-digital/internal/sla"
)

const summaryCacheKey = "reports:summary"

// ReportService aggregates dashboard statistics and exports.
type ReportService struct {
	tickets  repository.TicketRepository
	cache    *redis.Client
	cacheTTL time.Duration
	rules    *sla.RuleTable
	logger   *zap.Logger
	now      Clock
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	TicketRepo repository.TicketRepository
	Cache      *redis.Client
	CacheTTL   time.Duration
	Rules      *sla.RuleTable
	Logger     *zap.Logger
	Now        Clock
}

// SLAReport summarizes compliance across the ticket base.
type SLAReport struct {
	ResolvedTotal        int                        `json:"resolved_total"`
	ResolvedWithinSLA    int                        `json:"resolved_within_sla"`
	CompliancePercent    float64                    `json:"compliance_percent"`
	OpenByClassification map[sla.Classification]int `json:"open_by_classification"`
}

// ReportSummary backs the dashboard charts and counters.
type ReportSummary struct {
	GeneratedAt    time.Time                     `json:"generated_at"`
	ByStatus       map[domain.TicketStatus]int   `json:"by_status"`
	ByPriority     map[domain.TicketPriority]int `json:"by_priority"`
	ByCategory     map[domain.TicketCategory]int `json:"by_category"`
	TechnicianLoad map[string]int                `json:"technician_load"`
	SLA            SLAReport                     `json:"sla"`
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	rules := deps.Rules
	if rules == nil {
		rules = sla.DefaultRules()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		tickets:  deps.TicketRepo,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		rules:    rules,
		logger:   logger,
		now:      now,
	}
}

// Summary computes (or serves from cache) the dashboard aggregates.
func (s *ReportService) Summary(ctx context.Context) (*ReportSummary, error) {
	if cached := s.cachedSummary(ctx); cached != nil {
		return cached, nil
	}

	summary, err := s.buildSummary(ctx)
	if err != nil {
		return nil, err
	}
	s.storeSummary(ctx, summary)
	return summary, nil
}

func (s *ReportService) buildSummary(ctx context.Context) (*ReportSummary, error) {
	byStatus, err := s.tickets.CountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tickets.CountsByPriority(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.tickets.CountsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	load, err := s.tickets.CountsByAssignee(ctx)
	if err != nil {
		return nil, err
	}
	resolvedTotal, withinSLA, err := s.tickets.ResolutionStats(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	open, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{
			domain.TicketStatusNew,
			domain.TicketStatusAssigned,
			domain.TicketStatusInProgress,
		},
		Limit: 10000,
	})
	if err != nil {
		return nil, err
	}
	openByClass := make(map[sla.Classification]int)
	for i := range open {
		openByClass[sla.ClassifyRemaining(open[i].DueDate, now)]++
	}

	compliance := 0.0
	if resolvedTotal > 0 {
		compliance = float64(withinSLA) / float64(resolvedTotal) * 100
	}

	return &ReportSummary{
		GeneratedAt:    now,
		ByStatus:       byStatus,
		ByPriority:     byPriority,
		ByCategory:     byCategory,
		TechnicianLoad: load,
		SLA: SLAReport{
			ResolvedTotal:        resolvedTotal,
			ResolvedWithinSLA:    withinSLA,
			CompliancePercent:    compliance,
			OpenByClassification: openByClass,
		},
	}, nil
}

func (s *ReportService) cachedSummary(ctx context.Context) *ReportSummary {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var summary ReportSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *ReportService) storeSummary(ctx context.Context, summary *ReportSummary) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, summaryCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}
}

var exportHeaders = []string{
	"Ticket", "Title", "Category", "Status", "Priority",
	"Created", "Due", "SLA", "Resolved", "Closed",
}

// ExportTickets renders the flat ticket rows as an XLSX workbook.
func (s *ReportService) ExportTickets(ctx context.Context, filter repository.TicketFilter) ([]byte, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10000
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Tickets"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	now := s.now()
	for row := range tickets {
		ticket := &tickets[row]
		values := []any{
			ticket.TicketNumber,
			ticket.Title,
			string(ticket.Category),
			sla.StatusBadge(ticket.Status).Label,
			sla.PriorityBadge(ticket.Priority).Label,
			ticket.CreatedAt.Format(time.RFC3339),
			formatOptionalTime(ticket.DueDate),
			sla.ClassificationBadge(sla.ClassifyRemaining(ticket.DueDate, now)).Label,
			formatOptionalTime(ticket.ResolvedAt),
			formatOptionalTime(ticket.ClosedAt),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
