package domain

import (
	"strconv"
	"time"
)

// Item is a single unit of tracked work on the board.
type Item struct {
	ID          string
	Title       string
	Description string
	People      int
	Status      Status
	CreatedAt   time.Time
}

// PeopleLabel renders the assignment line, singular only for exactly one person.
func (i Item) PeopleLabel() string {
	if i.People == 1 {
		return "1 person assigned"
	}
	return strconv.Itoa(i.People) + " persons assigned"
}

// TransitionRequest asks the store to move an item into a target status.
type TransitionRequest struct {
	ItemID       string
	TargetStatus Status
}
