// Package app turns store notifications into activity history.
package app

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/domain"
	"github.com/evanschultz/tavla/internal/store"
)

// Clock returns the current time.
type Clock func() time.Time

// RecorderOption configures an ActivityRecorder.
type RecorderOption func(*ActivityRecorder)

// WithClock overrides the timestamp source for move events.
func WithClock(clock Clock) RecorderOption {
	return func(r *ActivityRecorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLogger sets the logger used for ledger failures.
func WithLogger(logger *log.Logger) RecorderOption {
	return func(r *ActivityRecorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// ActivityRecorder diffs successive store snapshots into change events.
// Ledger failures are logged and never reach the store.
type ActivityRecorder struct {
	ctx    context.Context
	log    ChangeLog
	clock  Clock
	logger *log.Logger

	seen     map[string]domain.Status
	failures int
}

// NewActivityRecorder constructs a recorder writing to changeLog, which may be nil.
func NewActivityRecorder(ctx context.Context, changeLog ChangeLog, opts ...RecorderOption) *ActivityRecorder {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &ActivityRecorder{
		ctx:    ctx,
		log:    changeLog,
		clock:  time.Now,
		logger: log.New(io.Discard),
		seen:   map[string]domain.Status{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Attach seeds the recorder with the current items and subscribes to st.
func (r *ActivityRecorder) Attach(st *store.Store) {
	for _, it := range st.Items() {
		r.seen[it.ID] = it.Status
	}
	st.Subscribe(r.Observe)
}

// Observe records one snapshot. It is the store listener.
func (r *ActivityRecorder) Observe(items []domain.Item) {
	for _, ev := range r.diff(items) {
		if r.log == nil {
			continue
		}
		if err := r.log.RecordChangeEvent(r.ctx, ev); err != nil {
			r.failures++
			r.logger.Error("record activity failed", "item_id", ev.ItemID, "operation", ev.Operation, "err", err)
		}
	}
}

func (r *ActivityRecorder) diff(items []domain.Item) []domain.ChangeEvent {
	var out []domain.ChangeEvent
	for _, it := range items {
		prev, ok := r.seen[it.ID]
		switch {
		case !ok:
			occurred := it.CreatedAt
			if occurred.IsZero() {
				occurred = r.clock()
			}
			out = append(out, domain.ChangeEvent{
				ItemID:     it.ID,
				Title:      it.Title,
				Operation:  domain.ChangeOperationCreate,
				ToStatus:   it.Status,
				OccurredAt: occurred.UTC(),
			})
		case prev != it.Status:
			out = append(out, domain.ChangeEvent{
				ItemID:     it.ID,
				Title:      it.Title,
				Operation:  domain.ChangeOperationMove,
				FromStatus: prev,
				ToStatus:   it.Status,
				OccurredAt: r.clock().UTC(),
			})
		}
		r.seen[it.ID] = it.Status
	}
	return out
}

// Failures returns how many ledger writes failed.
func (r *ActivityRecorder) Failures() int {
	return r.failures
}

// Recent lists the newest events first.
func (r *ActivityRecorder) Recent(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if r.log == nil {
		return nil, ErrLedgerUnavailable
	}
	return r.log.ListChangeEvents(ctx, limit)
}

// History lists the events of one item, oldest first.
func (r *ActivityRecorder) History(ctx context.Context, itemID string, limit int) ([]domain.ChangeEvent, error) {
	if r.log == nil {
		return nil, ErrLedgerUnavailable
	}
	return r.log.ListItemChangeEvents(ctx, itemID, limit)
}
