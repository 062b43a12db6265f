package sla

import (
	"strings"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
)

// The persistence layer stores status and priority as unconstrained
// text, and bulk-action payloads arrive as raw strings. These two
// functions are the sole gate between those sources and the rest of the
// system: anything outside the enumerated sets degrades silently to a
// safe default rather than failing. That substitution is deliberate
// policy, not error swallowing.

// NormalizeStatus coerces a raw value into a member of the status set,
// defaulting to "new". Idempotent.
func NormalizeStatus(raw string) domain.TicketStatus {
	candidate := domain.TicketStatus(strings.TrimSpace(raw))
	for _, s := range domain.TicketStatuses() {
		if candidate == s {
			return s
		}
	}
	return domain.TicketStatusNew
}

// NormalizePriority coerces a raw value into a member of the priority
// set, defaulting to "medium". Idempotent.
func NormalizePriority(raw string) domain.TicketPriority {
	candidate := domain.TicketPriority(strings.TrimSpace(raw))
	for _, p := range domain.TicketPriorities() {
		if candidate == p {
			return p
		}
	}
	return domain.TicketPriorityMedium
}
