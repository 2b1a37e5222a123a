package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subbaan/notes/internal/note"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) find(kind EventKind, id note.ID) (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ev := range l.events {
		if ev.Kind == kind && ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

func startWatcher(t *testing.T, f *FS) *eventLog {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	log := &eventLog{}
	done := make(chan error, 1)
	w := NewWatcher(f, zerolog.Nop(), 20*time.Millisecond)
	go func() { done <- w.Run(ctx, log.add) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// Give fsnotify a moment to register the root.
	time.Sleep(50 * time.Millisecond)
	return log
}

func TestWatcherReportsOutsideEdits(t *testing.T) {
	f := newTestFS(t)
	writeFile(t, f.Root(), "a.txt", "before")
	log := startWatcher(t, f)

	writeFile(t, f.Root(), "a.txt", "after")

	require.Eventually(t, func() bool {
		ev, ok := log.find(Updated, "a.txt")
		return ok && ev.Note.Content == "after"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherReportsRemovals(t *testing.T) {
	f := newTestFS(t)
	writeFile(t, f.Root(), "a.txt", "bye")
	log := startWatcher(t, f)

	require.NoError(t, os.Remove(filepath.Join(f.Root(), "a.txt")))

	require.Eventually(t, func() bool {
		_, ok := log.find(Removed, "a.txt")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherSkipsOwnWrites(t *testing.T) {
	f := newTestFS(t)
	log := startWatcher(t, f)

	require.NoError(t, f.Save(note.Note{ID: "mine.txt", Content: "quiet"}))
	writeFile(t, f.Root(), "theirs.txt", "loud")

	require.Eventually(t, func() bool {
		_, ok := log.find(Updated, "theirs.txt")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	_, ok := log.find(Updated, "mine.txt")
	assert.False(t, ok)
}
