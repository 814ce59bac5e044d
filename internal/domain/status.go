package domain

import (
	"slices"
	"strings"
)

// Status identifies which column an item belongs to.
type Status string

// Status values.
const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

var validStatuses = []Status{StatusActive, StatusFinished}

// Statuses returns every status in board order.
func Statuses() []Status {
	return slices.Clone(validStatuses)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// Label returns the upper-cased status name used in column headings.
func (s Status) Label() string {
	return strings.ToUpper(string(s))
}
