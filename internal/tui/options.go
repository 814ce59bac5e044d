package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/board"
	"github.com/evanschultz/tavla/internal/domain"
)

// ActivitySource answers activity log queries for the overlays.
type ActivitySource interface {
	Recent(ctx context.Context, limit int) ([]domain.ChangeEvent, error)
	History(ctx context.Context, itemID string, limit int) ([]domain.ChangeEvent, error)
}

// RuntimeConfig holds the settings that can change while the board is open.
type RuntimeConfig struct {
	AccentColor string
	MutedColor  string
	MarkerColor string
	ShowItemIDs bool
	Keys        KeyConfig
}

// Option configures a Model.
type Option func(*Model)

// DefaultRuntimeConfig returns the built-in palette.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		AccentColor: "62",
		MutedColor:  "241",
		MarkerColor: "212",
	}
}

// WithRuntimeConfig applies colors, id display and key overrides.
func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		defaults := DefaultRuntimeConfig()
		if cfg.AccentColor == "" {
			cfg.AccentColor = defaults.AccentColor
		}
		if cfg.MutedColor == "" {
			cfg.MutedColor = defaults.MutedColor
		}
		if cfg.MarkerColor == "" {
			cfg.MarkerColor = defaults.MarkerColor
		}
		m.config = cfg
		m.keys = newKeyMap()
		m.keys.applyConfig(cfg.Keys)
	}
}

// WithLogger sets the logger shared with the board views.
func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithActivity enables the activity and history overlays.
func WithActivity(src ActivitySource) Option {
	return func(m *Model) {
		m.activity = src
	}
}

// WithColumnTitles overrides the column headings. Blank titles keep the defaults.
func WithColumnTitles(active, finished string) Option {
	return func(m *Model) {
		m.boardOpts = append(m.boardOpts,
			board.WithColumnTitle(domain.StatusActive, active),
			board.WithColumnTitle(domain.StatusFinished, finished),
		)
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copy = write
		}
	}
}

func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
