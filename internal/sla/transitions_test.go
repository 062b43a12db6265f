package sla_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
	"github.com/daviddurazo/buho-soporte-digital/internal/sla"
)

func TestForwardTransitions(t *testing.T) {
	chain := domain.TicketStatuses()
	for i := 0; i < len(chain)-1; i++ {
		require.True(t, sla.IsLegalTransition(chain[i], chain[i+1]),
			"%s -> %s should be legal", chain[i], chain[i+1])
	}
}

func TestReopenTransitions(t *testing.T) {
	require.True(t, sla.IsLegalTransition(domain.TicketStatusResolved, domain.TicketStatusInProgress))
	require.True(t, sla.IsLegalTransition(domain.TicketStatusClosed, domain.TicketStatusInProgress))
}

func TestIllegalTransitions(t *testing.T) {
	cases := [][2]domain.TicketStatus{
		{domain.TicketStatusClosed, domain.TicketStatusNew},
		{domain.TicketStatusResolved, domain.TicketStatusNew},
		{domain.TicketStatusResolved, domain.TicketStatusAssigned},
		{domain.TicketStatusNew, domain.TicketStatusClosed},
		{domain.TicketStatusNew, domain.TicketStatusResolved},
		{domain.TicketStatusNew, domain.TicketStatusInProgress},
		{domain.TicketStatusAssigned, domain.TicketStatusClosed},
		{domain.TicketStatusInProgress, domain.TicketStatusNew},
	}
	for _, pair := range cases {
		require.False(t, sla.IsLegalTransition(pair[0], pair[1]),
			"%s -> %s should be illegal", pair[0], pair[1])
	}
}

func TestSelfTransitionsAreLegal(t *testing.T) {
	for _, status := range domain.TicketStatuses() {
		require.True(t, sla.IsLegalTransition(status, status))
	}
}

func TestCheckTransitionNamesThePair(t *testing.T) {
	err := sla.CheckTransition(domain.TicketStatusClosed, domain.TicketStatusNew)
	require.Error(t, err)

	var invalid *sla.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, domain.TicketStatusClosed, invalid.From)
	require.Equal(t, domain.TicketStatusNew, invalid.To)
	require.Contains(t, err.Error(), "closed")
	require.Contains(t, err.Error(), "new")

	require.NoError(t, sla.CheckTransition(domain.TicketStatusNew, domain.TicketStatusAssigned))
}

func TestBadgesCoverEveryValue(t *testing.T) {
	for _, status := range domain.TicketStatuses() {
		require.NotEmpty(t, sla.StatusBadge(status).Label)
	}
	for _, priority := range domain.TicketPriorities() {
		require.NotEmpty(t, sla.PriorityBadge(priority).Label)
	}
	// unknown values still render through the normalized defaults
	require.Equal(t, "New", sla.StatusBadge(domain.TicketStatus("whatever")).Label)
	require.Equal(t, "Medium", sla.PriorityBadge(domain.TicketPriority("")).Label)
	require.Equal(t, "Not set", sla.ClassificationBadge(sla.Classification("nope")).Label)
}
