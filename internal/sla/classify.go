package sla

import "time"

// Classification buckets the time remaining until a due date for
// display: countdown badges, table row highlighting, dashboard counts.
type Classification string

const (
	// ClassificationUndefined means the ticket has no due date yet.
	// It renders as "not set" and is a valid state, not an error.
	ClassificationUndefined Classification = "undefined"
	ClassificationOverdue   Classification = "overdue"
	ClassificationCritical  Classification = "critical"
	ClassificationWarning   Classification = "warning"
	ClassificationOK        Classification = "ok"
)

const (
	criticalWindow = 4 * time.Hour
	warningWindow  = 24 * time.Hour
)

// ClassifyRemaining buckets the time between now and the due date.
// Exactly 4h remaining is critical, not warning: the critical window is
// inclusive, the warning window exclusive. Callers supply now so a
// single rendering pass evaluates every ticket against the same clock.
func ClassifyRemaining(dueDate *time.Time, now time.Time) Classification {
	if dueDate == nil {
		return ClassificationUndefined
	}
	remaining := dueDate.Sub(now)
	switch {
	case remaining < 0:
		return ClassificationOverdue
	case remaining <= criticalWindow:
		return ClassificationCritical
	case remaining < warningWindow:
		return ClassificationWarning
	default:
		return ClassificationOK
	}
}
