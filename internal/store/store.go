package store

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Listener is called after every dispatch with the action and the new state.
type Listener func(Action, State)

// Store owns the current State. It is safe for concurrent use; listeners run
// on the dispatching goroutine after the lock is released.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	next      int
	log       zerolog.Logger
}

// New returns a store seeded with initial.
func New(initial State, log zerolog.Logger) *Store {
	return &Store{
		state:     initial,
		listeners: map[int]Listener{},
		log:       log,
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces a into the state and notifies listeners.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	ls := make([]Listener, 0, len(s.listeners))
	for _, id := range slices.Sorted(maps.Keys(s.listeners)) {
		ls = append(ls, s.listeners[id])
	}
	s.mu.Unlock()

	s.log.Trace().Str("action", fmt.Sprintf("%T", a)).Msg("dispatch")
	for _, l := range ls {
		l(a, next)
	}
}

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
