// Package history keeps the list of past repository searches, most recent
// first, and persists it after every change.
package history

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/reposearch/pkg/log"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/search"
)

var logger = log.ForService("history")

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("history item not found")

// Item is one recorded search.
type Item struct {
	ID string `json:"id"`
	// Timestamp is the creation time in milliseconds since the epoch.
	Timestamp  int64          `json:"timestamp"`
	Query      string         `json:"query"`
	SearchData query.Form     `json:"searchData"`
	Results    search.Results `json:"results"`
}

// Time returns the creation time of the item.
func (i Item) Time() time.Time {
	return time.UnixMilli(i.Timestamp)
}

// EventType names a history mutation.
type EventType string

const (
	EventAdded   EventType = "added"
	EventRemoved EventType = "removed"
	EventCleared EventType = "cleared"
)

// Event describes a successful mutation. Item is set for added events.
type Event struct {
	Type EventType `json:"type"`
	ID   string    `json:"id,omitempty"`
	Item *Item     `json:"item,omitempty"`
}

// Observer is called after every persisted mutation.
type Observer func(Event)

// Persister loads and saves the whole history list.
type Persister interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for item timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver registers fn to receive mutation events.
func WithObserver(fn Observer) Option {
	return func(s *Store) {
		s.observer = fn
	}
}

// WithIDGenerator replaces the random id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// Store owns the history list. Mutations are serialised and each one
// replaces the list with a new slice before persisting it.
type Store struct {
	mu        sync.RWMutex
	items     []Item
	persister Persister
	now       func() time.Time
	newID     func() string
	observer  Observer
}

// New loads the persisted history and returns a Store around it.
func New(p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	s.items = items
	logger.Debugf("loaded %d history items", len(items))
	return s, nil
}

// Add records a search at the front of the list.
func (s *Store) Add(q string, form query.Form, results search.Results) (Item, error) {
	s.mu.Lock()
	item := Item{
		ID:         s.newID(),
		Timestamp:  s.now().UnixMilli(),
		Query:      q,
		SearchData: form,
		Results:    results,
	}

	next := make([]Item, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)
	if err := s.commit(next); err != nil {
		s.mu.Unlock()
		return Item{}, err
	}
	s.mu.Unlock()

	s.notify(Event{Type: EventAdded, ID: item.ID, Item: &item})
	return item, nil
}

// Remove drops the item with the given id. It reports false, without
// writing anything, when no item matches.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(it Item) bool { return it.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}

	next := make([]Item, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	if err := s.commit(next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.notify(Event{Type: EventRemoved, ID: id})
	return true, nil
}

// Clear empties the history.
func (s *Store) Clear() error {
	s.mu.Lock()
	if err := s.commit([]Item{}); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(Event{Type: EventCleared})
	return nil
}

// List returns a copy of the items, most recent first.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *Store) commit(next []Item) error {
	if err := s.persister.Save(next); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	s.items = next
	return nil
}

func (s *Store) notify(ev Event) {
	if s.observer != nil {
		s.observer(ev)
	}
}
