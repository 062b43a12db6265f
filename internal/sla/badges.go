package sla

import "github.com/daviddurazo/buho-soporte-digital/internal/domain"

// Badge is the single source of display labels and colors for the
// enumerated types. Every rendering surface consumes these tables
// instead of keeping its own literal string comparisons.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusBadges = map[domain.TicketStatus]Badge{
	domain.TicketStatusNew:        {Label: "New", Color: "blue"},
	domain.TicketStatusAssigned:   {Label: "Assigned", Color: "purple"},
	domain.TicketStatusInProgress: {Label: "In Progress", Color: "amber"},
	domain.TicketStatusResolved:   {Label: "Resolved", Color: "green"},
	domain.TicketStatusClosed:     {Label: "Closed", Color: "gray"},
}

var priorityBadges = map[domain.TicketPriority]Badge{
	domain.TicketPriorityLow:      {Label: "Low", Color: "gray"},
	domain.TicketPriorityMedium:   {Label: "Medium", Color: "blue"},
	domain.TicketPriorityHigh:     {Label: "High", Color: "orange"},
	domain.TicketPriorityCritical: {Label: "Critical", Color: "red"},
}

var classificationBadges = map[Classification]Badge{
	ClassificationUndefined: {Label: "Not set", Color: "gray"},
	ClassificationOverdue:   {Label: "Overdue", Color: "red"},
	ClassificationCritical:  {Label: "Due soon", Color: "orange"},
	ClassificationWarning:   {Label: "Due today", Color: "amber"},
	ClassificationOK:        {Label: "On track", Color: "green"},
}

// StatusBadge returns the display badge for a status. Unknown values
// are normalized first, so a badge is always returned.
func StatusBadge(status domain.TicketStatus) Badge {
	return statusBadges[NormalizeStatus(string(status))]
}

// PriorityBadge returns the display badge for a priority.
func PriorityBadge(priority domain.TicketPriority) Badge {
	return priorityBadges[NormalizePriority(string(priority))]
}

// ClassificationBadge returns the display badge for a remaining-time class.
func ClassificationBadge(class Classification) Badge {
	if badge, ok := classificationBadges[class]; ok {
		return badge
	}
	return classificationBadges[ClassificationUndefined]
}
