package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evanschultz/tavla/internal/domain"
)

func openLedger(t *testing.T, maxEntries int) *Ledger {
	t.Helper()
	l, err := OpenInMemory(maxEntries)
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = l.Close()
	})
	return l
}

func TestLedger_RecordAndList(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, 0)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

	events := []domain.ChangeEvent{
		{ItemID: "i1", Title: "T", Operation: domain.ChangeOperationCreate, ToStatus: domain.StatusActive, OccurredAt: now},
		{ItemID: "i2", Title: "U", Operation: domain.ChangeOperationCreate, ToStatus: domain.StatusActive, OccurredAt: now.Add(time.Second)},
		{ItemID: "i1", Title: "T", Operation: domain.ChangeOperationMove, FromStatus: domain.StatusActive, ToStatus: domain.StatusFinished, OccurredAt: now.Add(2 * time.Second)},
	}
	for _, ev := range events {
		if err := l.RecordChangeEvent(ctx, ev); err != nil {
			t.Fatalf("RecordChangeEvent() error = %v", err)
		}
	}

	got, err := l.ListChangeEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	latest := got[0]
	if latest.Operation != domain.ChangeOperationMove || latest.FromStatus != domain.StatusActive || latest.ToStatus != domain.StatusFinished {
		t.Fatalf("unexpected latest event %#v", latest)
	}
	if !latest.OccurredAt.Equal(now.Add(2*time.Second)) || latest.ID == 0 {
		t.Fatalf("unexpected latest event metadata %#v", latest)
	}

	limited, err := l.ListChangeEvents(ctx, 1)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	history, err := l.ListItemChangeEvents(ctx, "i1", 0)
	if err != nil {
		t.Fatalf("ListItemChangeEvents() error = %v", err)
	}
	if len(history) != 2 || history[0].Operation != domain.ChangeOperationCreate {
		t.Fatalf("unexpected item history %#v", history)
	}
}

func TestLedger_PrunesBeyondMaxEntries(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, 2)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		ev := domain.ChangeEvent{ItemID: id, Operation: domain.ChangeOperationCreate, ToStatus: domain.StatusActive, OccurredAt: now.Add(time.Duration(i) * time.Second)}
		if err := l.RecordChangeEvent(ctx, ev); err != nil {
			t.Fatalf("RecordChangeEvent() error = %v", err)
		}
	}
	got, err := l.ListChangeEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(got) != 2 || got[0].ItemID != "c" || got[1].ItemID != "b" {
		t.Fatalf("unexpected events after prune %#v", got)
	}
}

func TestLedger_RejectsMissingItemID(t *testing.T) {
	l := openLedger(t, 0)
	err := l.RecordChangeEvent(context.Background(), domain.ChangeEvent{Operation: domain.ChangeOperationCreate})
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestLedger_InstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := openLedger(t, 0)
	b := openLedger(t, 0)
	if err := a.RecordChangeEvent(ctx, domain.ChangeEvent{ItemID: "x", Operation: domain.ChangeOperationCreate}); err != nil {
		t.Fatalf("RecordChangeEvent() error = %v", err)
	}
	got, err := b.ListChangeEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected isolated ledgers, got %d events", len(got))
	}
}
