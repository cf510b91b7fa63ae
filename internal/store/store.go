// Package store owns the process's single, in-memory event collection.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"calview/internal/model"
)

// ErrNotFound is returned when no event has the requested ID.
var ErrNotFound = errors.New("event not found")

// IDGenerator hands out identifiers for newly created events.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDGenerator issues random (v4) UUID strings.
var UUIDGenerator IDGenerator = IDFunc(uuid.NewString)

type Option func(*Store)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// Store is safe for concurrent use. Events are kept in insertion order.
type Store struct {
	mu     sync.RWMutex
	events []model.CalendarEvent
	ids    IDGenerator
}

func New(opts ...Option) *Store {
	s := &Store{
		events: make([]model.CalendarEvent, 0),
		ids:    UUIDGenerator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores ev under a freshly generated ID and returns the stored copy.
// Any ID set by the caller is ignored.
func (s *Store) Add(ev model.CalendarEvent) model.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = s.ids.NewID()
	s.events = append(s.events, ev)
	return ev
}

// Seed inserts events with their IDs as given. Existing events with the
// same ID are replaced in place.
func (s *Store) Seed(events []model.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		if i := s.indexLocked(ev.ID); i >= 0 {
			s.events[i] = ev
			continue
		}
		s.events = append(s.events, ev)
	}
}

// Update merges patch into the event with the given ID.
func (s *Store) Update(id string, patch model.EventPatch) (model.CalendarEvent, error) {
	return s.UpdateFunc(id, func(ev model.CalendarEvent) (model.CalendarEvent, error) {
		return patch.Apply(ev), nil
	})
}

// UpdateFunc replaces the event with the given ID by fn's result while
// holding the write lock, so fn sees the latest version and nothing
// changes the event between fn's check and the write. If fn returns an
// error the event is left as it was. The ID cannot be changed.
func (s *Store) UpdateFunc(id string, fn func(model.CalendarEvent) (model.CalendarEvent, error)) (model.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.CalendarEvent{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	next, err := fn(s.events[i])
	if err != nil {
		return s.events[i], err
	}
	next.ID = id
	s.events[i] = next
	return next, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.events = slices.Delete(s.events, i, i+1)
	return nil
}

func (s *Store) Get(id string) (model.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.CalendarEvent{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return s.events[i], nil
}

// List returns a snapshot copy of the collection.
func (s *Store) List() []model.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// ReplaceSource drops every event imported from source and appends events
// in its place, tagging them with source. It returns how many events were
// removed.
func (s *Store) ReplaceSource(source string, events []model.CalendarEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(ev model.CalendarEvent) bool {
		return ev.Source == source
	})
	removed := before - len(s.events)

	for _, ev := range events {
		ev.Source = source
		s.events = append(s.events, ev)
	}
	return removed
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.events, func(ev model.CalendarEvent) bool {
		return ev.ID == id
	})
}
