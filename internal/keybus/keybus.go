// Package keybus routes key presses to components that registered for them
// before the focused widget sees them.
package keybus

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Handler returns true when it consumed the key.
type Handler func(tea.KeyMsg) bool

// Bus is a stack of key handlers. The zero value is ready to use.
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers []entry
}

type entry struct {
	id int
	fn Handler
}

// Subscribe pushes h and returns a func that removes it. Calling the returned
// func more than once is harmless.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.handlers = append(b.handlers, entry{id: id, fn: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.handlers {
			if e.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish offers msg to handlers, newest first, until one consumes it.
func (b *Bus) Publish(msg tea.KeyMsg) bool {
	b.mu.Lock()
	hs := make([]Handler, len(b.handlers))
	for i, e := range b.handlers {
		hs[len(hs)-1-i] = e.fn
	}
	b.mu.Unlock()

	for _, h := range hs {
		if h(msg) {
			return true
		}
	}
	return false
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
