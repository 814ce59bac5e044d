package app

import (
	"context"

	"github.com/evanschultz/tavla/internal/domain"
)

// ChangeLog stores and lists board activity.
type ChangeLog interface {
	RecordChangeEvent(context.Context, domain.ChangeEvent) error
	ListChangeEvents(context.Context, int) ([]domain.ChangeEvent, error)
	ListItemChangeEvents(context.Context, string, int) ([]domain.ChangeEvent, error)
}
