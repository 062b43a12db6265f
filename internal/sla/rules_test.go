package sla_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/sla"
)

func TestComputeDueDatePriorityDefaults(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := sla.DefaultRules()

	cases := map[domain.TicketPriority]time.Duration{
		domain.TicketPriorityCritical: 2 * time.Hour,
		domain.TicketPriorityHigh:     4 * time.Hour,
		domain.TicketPriorityMedium:   24 * time.Hour,
		domain.TicketPriorityLow:      48 * time.Hour,
	}
	for priority, budget := range cases {
		due := rules.ComputeDueDate(priority, domain.CategorySoftware, createdAt)
		require.Equal(t, createdAt.Add(budget), due, "priority %s", priority)
	}
}

func TestComputeDueDateScenario(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := sla.ComputeDueDate(domain.TicketPriorityCritical, domain.CategoryOther, createdAt)
	require.Equal(t, time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC), due)
}

func TestComputeDueDateAlwaysStrictlyFuture(t *testing.T) {
	createdAt := time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)
	rules := sla.DefaultRules()

	priorities := append(domain.TicketPriorities(), domain.TicketPriority("bogus"))
	categories := []domain.TicketCategory{
		domain.CategoryHardware,
		domain.CategoryNetwork,
		domain.CategoryServerInfra,
		domain.TicketCategory("unheard-of"),
	}
	for _, priority := range priorities {
		for _, category := range categories {
			due := rules.ComputeDueDate(priority, category, createdAt)
			require.True(t, due.After(createdAt), "priority %s category %s", priority, category)
		}
	}
}

func TestCategoryOverrideTakesPrecedence(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := sla.DefaultRules()

	// Server infrastructure is pinned to a 2h window even on a low
	// priority ticket.
	due := rules.ComputeDueDate(domain.TicketPriorityLow, domain.CategoryServerInfra, createdAt)
	require.Equal(t, createdAt.Add(2*time.Hour), due)

	due = rules.ComputeDueDate(domain.TicketPriorityLow, domain.CategoryNetwork, createdAt)
	require.Equal(t, createdAt.Add(4*time.Hour), due)
}

func TestUnknownPriorityFallsBackToMedium(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := sla.DefaultRules()

	due := rules.ComputeDueDate(domain.TicketPriority("URGENT!!"), domain.CategoryOther, createdAt)
	require.Equal(t, createdAt.Add(24*time.Hour), due)
}

func TestComputeResponseDue(t *testing.T) {
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := sla.DefaultRules()

	due := rules.ComputeResponseDue(domain.TicketPriorityHigh, domain.CategoryOther, createdAt)
	require.Equal(t, createdAt.Add(time.Hour), due)
}
