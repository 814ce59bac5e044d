// Package store holds the process-wide board state and fans out change
// notifications to its subscribers.
package store

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/evanschultz/tavla/internal/domain"
	"github.com/google/uuid"
)

// Listener receives a fresh snapshot of every item after each mutation.
type Listener func([]domain.Item)

// IDGenerator returns unique identifiers for new items.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides item id generation.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.idGen = gen
		}
	}
}

// WithClock overrides the creation clock.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the authoritative, insertion-ordered item list. It is single-writer
// and expects every call to come from the same event loop.
type Store struct {
	items     []domain.Item
	listeners []Listener
	idGen     IDGenerator
	clock     Clock
	logger    *log.Logger
}

// New constructs an isolated store.
func New(opts ...Option) *Store {
	s := &Store{
		idGen:  uuid.NewString,
		clock:  time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var (
	defaultMu    sync.Mutex
	defaultStore *Store
	defaultOpts  []Option
)

// Default returns the process-wide store, building it on first use.
func Default() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultStore == nil {
		defaultStore = New(defaultOpts...)
	}
	return defaultStore
}

// Configure sets the options applied when Default next builds the store.
// It has no effect on an already built instance.
func Configure(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultOpts = slices.Clone(opts)
}

// Reset drops the process-wide store and its configured options.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultStore = nil
	defaultOpts = nil
}

// AddItem appends a new active item and notifies every listener. Input is not
// validated here.
func (s *Store) AddItem(title, description string, people int) string {
	item := domain.Item{
		ID:          s.idGen(),
		Title:       title,
		Description: description,
		People:      people,
		Status:      domain.StatusActive,
		CreatedAt:   s.clock().UTC(),
	}
	s.items = append(s.items, item)
	s.logger.Debug("item added", "item_id", item.ID, "people", people)
	s.notify()
	return item.ID
}

// MoveItem sets the status of the matching item. Unknown ids, unknown target
// statuses and moves into the current status are no-ops and notify nobody.
func (s *Store) MoveItem(req domain.TransitionRequest) bool {
	if !req.TargetStatus.Valid() {
		s.logger.Warn("move ignored", "item_id", req.ItemID, "status", req.TargetStatus, "err", domain.ErrInvalidStatus)
		return false
	}
	idx := slices.IndexFunc(s.items, func(it domain.Item) bool { return it.ID == req.ItemID })
	if idx < 0 {
		s.logger.Debug("move ignored, unknown item", "item_id", req.ItemID)
		return false
	}
	if s.items[idx].Status == req.TargetStatus {
		return false
	}
	from := s.items[idx].Status
	s.items[idx].Status = req.TargetStatus
	s.logger.Debug("item moved", "item_id", req.ItemID, "from", from, "to", req.TargetStatus)
	s.notify()
	return true
}

// Subscribe appends a listener. Listeners are never de-duplicated or removed.
func (s *Store) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	s.listeners = append(s.listeners, listener)
}

// Items returns a snapshot of every item in insertion order.
func (s *Store) Items() []domain.Item {
	return slices.Clone(s.items)
}

// Item looks up one item by id.
func (s *Store) Item(id string) (domain.Item, bool) {
	idx := slices.IndexFunc(s.items, func(it domain.Item) bool { return it.ID == id })
	if idx < 0 {
		return domain.Item{}, false
	}
	return s.items[idx], true
}

func (s *Store) notify() {
	for _, listener := range s.listeners {
		listener(slices.Clone(s.items))
	}
}
