// Package sqlite keeps the board activity ledger in an in-memory SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/tavla/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// defaultListLimit caps ListChangeEvents when the caller passes no limit.
const defaultListLimit = 50

// Ledger stores change events for the lifetime of the process.
type Ledger struct {
	db         *sql.DB
	maxEntries int
}

// OpenInMemory opens a private in-memory ledger. maxEntries <= 0 keeps every row.
func OpenInMemory(maxEntries int) (*Ledger, error) {
	dsn := "file:tavla-" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// every connection must see the same in-memory database.
	db.SetMaxOpenConns(1)
	l := &Ledger{db: db, maxEntries: maxEntries}
	if err := l.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			operation TEXT NOT NULL,
			from_status TEXT NOT NULL DEFAULT '',
			to_status TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_created_at ON change_events(created_at DESC, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_item ON change_events(item_id, id);`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// RecordChangeEvent appends one event and prunes the oldest rows beyond the
// configured cap.
func (l *Ledger) RecordChangeEvent(ctx context.Context, event domain.ChangeEvent) error {
	if strings.TrimSpace(event.ItemID) == "" {
		return domain.ErrInvalidID
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO change_events(item_id, title, operation, from_status, to_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		event.ItemID,
		event.Title,
		string(event.Operation),
		string(event.FromStatus),
		string(event.ToStatus),
		ts(occurred),
	)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	if l.maxEntries > 0 {
		_, err = l.db.ExecContext(ctx, `
			DELETE FROM change_events
			WHERE id NOT IN (SELECT id FROM change_events ORDER BY id DESC LIMIT ?)
		`, l.maxEntries)
		if err != nil {
			return fmt.Errorf("prune change events: %w", err)
		}
	}
	return nil
}

// ListChangeEvents lists recent events, newest first.
func (l *Ledger) ListChangeEvents(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	return l.query(ctx, `
		SELECT id, item_id, title, operation, from_status, to_status, created_at
		FROM change_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, listLimit(limit))
}

// ListItemChangeEvents lists the history of one item, oldest first.
func (l *Ledger) ListItemChangeEvents(ctx context.Context, itemID string, limit int) ([]domain.ChangeEvent, error) {
	return l.query(ctx, `
		SELECT id, item_id, title, operation, from_status, to_status, created_at
		FROM change_events
		WHERE item_id = ?
		ORDER BY id ASC
		LIMIT ?
	`, itemID, listLimit(limit))
}

func (l *Ledger) query(ctx context.Context, query string, args ...any) ([]domain.ChangeEvent, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event      domain.ChangeEvent
			opRaw      string
			fromRaw    string
			toRaw      string
			createdRaw string
		)
		if err := rows.Scan(&event.ID, &event.ItemID, &event.Title, &opRaw, &fromRaw, &toRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = domain.ChangeOperation(opRaw)
		event.FromStatus = domain.Status(fromRaw)
		event.ToStatus = domain.Status(toRaw)
		event.OccurredAt = parseTS(createdRaw)
		out = append(out, event)
	}
	return out, rows.Err()
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
