package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/subbaan/notes/internal/note"
	"github.com/subbaan/notes/internal/store"
)

// NoteWriter saves a note's file.
type NoteWriter interface {
	Save(note.Note) error
}

// SelectionWriter saves and deletes persisted selections.
type SelectionWriter interface {
	Save(ctx context.Context, sels map[note.ID]note.Selection) error
	Delete(ctx context.Context, id note.ID) error
}

// Persister follows the store and writes changed notes and selections in
// batches.
type Persister struct {
	notes NoteWriter
	sels  SelectionWriter
	log   zerolog.Logger

	mu          sync.Mutex
	latest      store.State
	dirtyNotes  map[note.ID]struct{}
	dirtySels   map[note.ID]struct{}
	removedSels map[note.ID]struct{}
}

// NewPersister returns a persister writing through notes and sels.
func NewPersister(notes NoteWriter, sels SelectionWriter, log zerolog.Logger) *Persister {
	return &Persister{
		notes:       notes,
		sels:        sels,
		log:         log,
		dirtyNotes:  map[note.ID]struct{}{},
		dirtySels:   map[note.ID]struct{}{},
		removedSels: map[note.ID]struct{}{},
	}
}

// Observe is a store.Listener.
func (p *Persister) Observe(a store.Action, s store.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = s

	switch a := a.(type) {
	case store.EditNote:
		p.dirtyNotes[a.NoteID] = struct{}{}
		p.dirtySels[a.NoteID] = struct{}{}
	case store.PinNote:
		p.dirtyNotes[a.NoteID] = struct{}{}
	case store.EnableMarkdown:
		p.dirtyNotes[a.NoteID] = struct{}{}
	case store.CreateNote:
		p.dirtyNotes[a.Note.ID] = struct{}{}
	case store.PersistSelection:
		p.dirtySels[a.NoteID] = struct{}{}
		delete(p.removedSels, a.NoteID)
	case store.NoteUpdated:
		p.dirtySels[a.Note.ID] = struct{}{}
	case store.NoteRemoved:
		delete(p.dirtyNotes, a.NoteID)
		delete(p.dirtySels, a.NoteID)
		p.removedSels[a.NoteID] = struct{}{}
	}
}

// Pending reports whether anything is waiting to be written.
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dirtyNotes)+len(p.dirtySels)+len(p.removedSels) > 0
}

// Flush writes everything marked dirty since the last flush. Failed writes
// are kept dirty and retried on the next flush.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	s := p.latest
	notes, sels, removed := p.dirtyNotes, p.dirtySels, p.removedSels
	p.dirtyNotes = map[note.ID]struct{}{}
	p.dirtySels = map[note.ID]struct{}{}
	p.removedSels = map[note.ID]struct{}{}
	p.mu.Unlock()

	var errs []error
	for id := range notes {
		n, ok := s.Note(id)
		if !ok {
			continue
		}
		if err := p.notes.Save(n); err != nil {
			errs = append(errs, err)
			p.markNote(id)
		}
	}

	batch := make(map[note.ID]note.Selection, len(sels))
	for id := range sels {
		if _, ok := s.Note(id); ok {
			batch[id] = s.Selection(id)
		}
	}
	if err := p.sels.Save(ctx, batch); err != nil {
		errs = append(errs, err)
		for id := range batch {
			p.markSelection(id)
		}
	}

	for id := range removed {
		if err := p.sels.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	if len(notes)+len(batch)+len(removed) > 0 {
		p.log.Debug().
			Int("notes", len(notes)).
			Int("selections", len(batch)).
			Int("removed", len(removed)).
			Msg("flushed")
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("storage: flush: %w", err)
	}
	return nil
}

// Run flushes every interval until ctx is cancelled, then flushes once more.
func (p *Persister) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return p.Flush(context.Background())
		case <-ticker.C:
			if err := p.Flush(ctx); err != nil {
				p.log.Warn().Err(err).Msg("flush failed")
			}
		}
	}
}

func (p *Persister) markNote(id note.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirtyNotes[id] = struct{}{}
}

func (p *Persister) markSelection(id note.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirtySels[id] = struct{}{}
}
