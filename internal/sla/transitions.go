package sla

import (
	"fmt"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
)

// allowedTransitions is the lifecycle graph. Forward movement follows
// new -> assigned -> in_progress -> resolved -> closed; the only
// backward edges are the reopen paths from resolved and closed back to
// in_progress. Self-transitions are legal everywhere (idempotent no-op)
// and handled in IsLegalTransition rather than listed here.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusAssigned},
	domain.TicketStatusAssigned:   {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusClosed:     {domain.TicketStatusInProgress},
}

// IsLegalTransition reports whether a status change is permitted by the
// lifecycle graph.
func IsLegalTransition(from, to domain.TicketStatus) bool {
	if from == to {
		return true
	}
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError names the rejected (from, to) pair so callers
// can surface an actionable message.
type InvalidTransitionError struct {
	From domain.TicketStatus
	To   domain.TicketStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}

// CheckTransition returns an InvalidTransitionError when the change is
// not permitted, nil otherwise. Callers must reject the mutation before
// any persistence write is attempted.
func CheckTransition(from, to domain.TicketStatus) error {
	if !IsLegalTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
