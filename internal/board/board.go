// Package board assembles the project board: an input form and one column per
// status, all fed by the shared store.
package board

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/component"
	"github.com/evanschultz/tavla/internal/domain"
	"github.com/evanschultz/tavla/internal/store"
)

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger handed to every view.
func WithLogger(logger *log.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithAlerter sets the validation alert sink.
func WithAlerter(alerter Alerter) Option {
	return func(b *Board) {
		if alerter != nil {
			b.alerter = alerter
		}
	}
}

// WithColumnTitle overrides one column heading. Blank titles are ignored.
func WithColumnTitle(status domain.Status, title string) Option {
	return func(b *Board) {
		if title != "" {
			b.titles[status] = title
		}
	}
}

// Board owns the mounted views.
type Board struct {
	logger  *log.Logger
	alerter Alerter
	titles  map[domain.Status]string

	input   *InputView
	columns []*ColumnView
}

// New mounts the input form at the start of the app host followed by the
// active and finished columns.
func New(sub component.Substrate, st *store.Store, opts ...Option) (*Board, error) {
	if st == nil {
		st = store.Default()
	}
	b := &Board{
		logger:  log.New(io.Discard),
		alerter: AlertFunc(func(string) {}),
		titles:  map[domain.Status]string{},
	}
	for _, status := range domain.Statuses() {
		b.titles[status] = DefaultColumnTitle(status)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	input, err := mountInputView(sub, st, b.alerter, b.logger)
	if err != nil {
		return nil, fmt.Errorf("mount input: %w", err)
	}
	b.input = input
	for _, status := range domain.Statuses() {
		col, err := mountColumnView(sub, st, status, b.titles[status], b.logger)
		if err != nil {
			return nil, fmt.Errorf("mount %s column: %w", status, err)
		}
		b.columns = append(b.columns, col)
	}
	b.logger.Debug("board mounted", "columns", len(b.columns))
	return b, nil
}

// Input returns the form view.
func (b *Board) Input() *InputView {
	return b.input
}

// Columns returns the column views in board order.
func (b *Board) Columns() []*ColumnView {
	return slices.Clone(b.columns)
}

// Column returns the column for status, or nil.
func (b *Board) Column(status domain.Status) *ColumnView {
	for _, c := range b.columns {
		if c.status == status {
			return c
		}
	}
	return nil
}

// Err joins the render failures recorded by the columns.
func (b *Board) Err() error {
	var errs []error
	for _, c := range b.columns {
		if c.err != nil {
			errs = append(errs, c.err)
		}
	}
	return errors.Join(errs...)
}
