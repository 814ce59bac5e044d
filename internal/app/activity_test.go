package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evanschultz/tavla/internal/domain"
	"github.com/evanschultz/tavla/internal/store"
)

type fakeChangeLog struct {
	events []domain.ChangeEvent
	err    error
}

func (f *fakeChangeLog) RecordChangeEvent(_ context.Context, ev domain.ChangeEvent) error {
	if f.err != nil {
		return f.err
	}
	ev.ID = int64(len(f.events) + 1)
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeChangeLog) ListChangeEvents(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	out := make([]domain.ChangeEvent, 0, len(f.events))
	for i := len(f.events) - 1; i >= 0; i-- {
		out = append(out, f.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeChangeLog) ListItemChangeEvents(_ context.Context, itemID string, _ int) ([]domain.ChangeEvent, error) {
	var out []domain.ChangeEvent
	for _, ev := range f.events {
		if ev.ItemID == itemID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func TestActivityRecorderRecordsCreateAndMove(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := store.New(store.WithClock(clock))
	changes := &fakeChangeLog{}
	rec := NewActivityRecorder(context.Background(), changes, WithClock(func() time.Time { return now.Add(time.Minute) }))
	rec.Attach(st)

	id := st.AddItem("T", "DDDDD", 2)
	st.MoveItem(domain.TransitionRequest{ItemID: id, TargetStatus: domain.StatusFinished})
	st.MoveItem(domain.TransitionRequest{ItemID: id, TargetStatus: domain.StatusFinished})

	if len(changes.events) != 2 {
		t.Fatalf("expected 2 events, got %#v", changes.events)
	}
	created, moved := changes.events[0], changes.events[1]
	if created.Operation != domain.ChangeOperationCreate || created.ToStatus != domain.StatusActive || !created.OccurredAt.Equal(now) {
		t.Fatalf("unexpected create event %#v", created)
	}
	if moved.Operation != domain.ChangeOperationMove || moved.FromStatus != domain.StatusActive || moved.ToStatus != domain.StatusFinished {
		t.Fatalf("unexpected move event %#v", moved)
	}
	if !moved.OccurredAt.Equal(now.Add(time.Minute)) || moved.Title != "T" {
		t.Fatalf("unexpected move metadata %#v", moved)
	}

	recent, err := rec.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 1 || recent[0].Operation != domain.ChangeOperationMove {
		t.Fatalf("unexpected recent events %#v", recent)
	}
	history, err := rec.History(context.Background(), id, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
}

func TestActivityRecorderSeedsExistingItems(t *testing.T) {
	st := store.New()
	st.AddItem("existing", "DDDDD", 1)
	changes := &fakeChangeLog{}
	NewActivityRecorder(context.Background(), changes).Attach(st)
	st.AddItem("new", "DDDDD", 1)
	if len(changes.events) != 1 || changes.events[0].Title != "new" {
		t.Fatalf("expected only the new item to be recorded, got %#v", changes.events)
	}
}

func TestActivityRecorderSwallowsLedgerErrors(t *testing.T) {
	st := store.New()
	changes := &fakeChangeLog{err: errors.New("disk full")}
	rec := NewActivityRecorder(context.Background(), changes)
	rec.Attach(st)
	var notified bool
	st.Subscribe(func([]domain.Item) { notified = true })
	st.AddItem("T", "DDDDD", 1)
	if !notified {
		t.Fatal("expected later listeners to run after a ledger failure")
	}
	if rec.Failures() != 1 {
		t.Fatalf("expected one failure, got %d", rec.Failures())
	}
}

func TestActivityRecorderWithoutLedger(t *testing.T) {
	rec := NewActivityRecorder(context.Background(), nil)
	rec.Observe([]domain.Item{{ID: "x", Status: domain.StatusActive}})
	if _, err := rec.Recent(context.Background(), 10); !errors.Is(err, ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
}
