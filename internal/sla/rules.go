// Package sla implements the ticket lifecycle and SLA engine: due-date
// computation from priority/category rules, normalization of untrusted
// status and priority values, remaining-time classification, and the
// status transition graph. Everything here is pure; the rule table is
// read-only after construction, so the package is safe to call from any
// number of concurrent request handlers.
package sla

import (
	"time"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
)

// Rule holds the response and resolution budgets, in hours, committed
// for a ticket. Budgets are strictly positive so computed due dates are
// always in the future relative to creation.
type Rule struct {
	ResponseHours   int
	ResolutionHours int
}

// RuleTable maps priorities to default budgets and carries
// category-specific overrides that take precedence regardless of the
// assigned priority (critical-infrastructure categories get tighter
// windows even on low-priority tickets).
type RuleTable struct {
	byPriority map[domain.TicketPriority]Rule
	byCategory map[domain.TicketCategory]Rule
}

// DefaultRules builds the standard campus rule table.
func DefaultRules() *RuleTable {
	return &RuleTable{
		byPriority: map[domain.TicketPriority]Rule{
			domain.TicketPriorityCritical: {ResponseHours: 1, ResolutionHours: 2},
			domain.TicketPriorityHigh:     {ResponseHours: 1, ResolutionHours: 4},
			domain.TicketPriorityMedium:   {ResponseHours: 4, ResolutionHours: 24},
			domain.TicketPriorityLow:      {ResponseHours: 8, ResolutionHours: 48},
		},
		byCategory: map[domain.TicketCategory]Rule{
			domain.CategoryNetwork:     {ResponseHours: 1, ResolutionHours: 4},
			domain.CategoryServerInfra: {ResponseHours: 1, ResolutionHours: 2},
		},
	}
}

// Lookup resolves the rule for a priority/category pair. The priority is
// normalized before lookup, so an unknown priority resolves through the
// medium default and the lookup never fails. Unknown categories fall
// back to the priority-only default.
func (t *RuleTable) Lookup(priority domain.TicketPriority, category domain.TicketCategory) Rule {
	if rule, ok := t.byCategory[category]; ok {
		return rule
	}
	return t.byPriority[NormalizePriority(string(priority))]
}

// ComputeDueDate returns the absolute deadline for resolving a ticket
// created at createdAt. The result is always strictly after createdAt.
func (t *RuleTable) ComputeDueDate(priority domain.TicketPriority, category domain.TicketCategory, createdAt time.Time) time.Time {
	rule := t.Lookup(priority, category)
	return createdAt.Add(time.Duration(rule.ResolutionHours) * time.Hour)
}

// ComputeResponseDue returns the deadline for the first response.
func (t *RuleTable) ComputeResponseDue(priority domain.TicketPriority, category domain.TicketCategory, createdAt time.Time) time.Time {
	rule := t.Lookup(priority, category)
	return createdAt.Add(time.Duration(rule.ResponseHours) * time.Hour)
}

var defaultRules = DefaultRules()

// ComputeDueDate computes a due date against the default rule table.
func ComputeDueDate(priority domain.TicketPriority, category domain.TicketCategory, createdAt time.Time) time.Time {
	return defaultRules.ComputeDueDate(priority, category, createdAt)
}
