package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/subbaan/notes/internal/note"
)

// EventKind says what happened to a note file.
type EventKind int

const (
	Updated EventKind = iota
	Removed
)

func (k EventKind) String() string {
	if k == Removed {
		return "removed"
	}
	return "updated"
}

// Event reports a change made to a note file outside this process. Note is
// set for Updated events only.
type Event struct {
	Kind EventKind
	ID   note.ID
	Note note.Note
}

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before reading a file.
const DefaultDebounce = 100 * time.Millisecond

// Watcher turns fsnotify events under an FS root into note events.
type Watcher struct {
	fs       *FS
	log      zerolog.Logger
	debounce time.Duration
}

// NewWatcher returns a watcher over f.
func NewWatcher(f *FS, log zerolog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{fs: f, log: log, debounce: debounce}
}

// Run watches until ctx is cancelled, calling emit for every settled change.
// Writes made through the FS itself are not reported.
func (w *Watcher) Run(ctx context.Context, emit func(Event)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storage: watch: %w", err)
	}
	defer fw.Close()

	if err := w.addDirsRecursive(fw, w.fs.root); err != nil {
		return fmt.Errorf("storage: watch %s: %w", w.fs.root, err)
	}
	w.log.Info().Str("root", w.fs.root).Msg("watcher started")

	pending := map[string]struct{}{}
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("watcher stopped")
			return nil

		case <-timer.C:
			for abs := range pending {
				if ev, ok := w.settle(abs); ok {
					emit(ev)
				}
			}
			clear(pending)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, relErr := filepath.Rel(w.fs.root, ev.Name)
			if relErr != nil || w.fs.Ignored(rel) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.addDirsRecursive(fw, ev.Name); addErr != nil {
						w.log.Warn().Err(addErr).Str("path", rel).Msg("watch new dir failed")
					}
					continue
				}
			}
			if !IsNoteFile(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(watchErr).Msg("watcher error")
		}
	}
}

// settle reads the current state of abs once its events have quietened.
func (w *Watcher) settle(abs string) (Event, bool) {
	rel, err := filepath.Rel(w.fs.root, abs)
	if err != nil {
		return Event{}, false
	}
	id := note.ID(filepath.ToSlash(rel))

	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		w.log.Debug().Str("note", string(id)).Msg("note removed on disk")
		return Event{Kind: Removed, ID: id}, true
	}
	if err != nil {
		w.log.Warn().Err(err).Str("note", string(id)).Msg("read changed note failed")
		return Event{}, false
	}
	if w.fs.IsOwnWrite(rel, data) {
		return Event{}, false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Event{}, false
	}
	w.log.Debug().Str("note", string(id)).Msg("note changed on disk")
	return Event{Kind: Updated, ID: id, Note: parse(id, abs, data, info)}, true
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.fs.root {
			if rel, relErr := filepath.Rel(w.fs.root, p); relErr == nil && w.fs.Ignored(rel) {
				return filepath.SkipDir
			}
		}
		return fw.Add(p)
	})
}
