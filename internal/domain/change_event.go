package domain

import "time"

// ChangeOperation describes a recorded activity operation for an item.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate ChangeOperation = "create"
	ChangeOperationMove   ChangeOperation = "move"
)

// ChangeEvent represents a single activity-log entry for a board item.
type ChangeEvent struct {
	ID         int64
	ItemID     string
	Title      string
	Operation  ChangeOperation
	FromStatus Status
	ToStatus   Status
	OccurredAt time.Time
}

// Summary renders a one-line, human readable description of the event.
func (e ChangeEvent) Summary() string {
	switch e.Operation {
	case ChangeOperationCreate:
		return "created " + quoteTitle(e.Title) + " in " + e.ToStatus.Label()
	case ChangeOperationMove:
		return "moved " + quoteTitle(e.Title) + " from " + e.FromStatus.Label() + " to " + e.ToStatus.Label()
	default:
		return string(e.Operation) + " " + quoteTitle(e.Title)
	}
}

func quoteTitle(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return "\"" + title + "\""
}
