package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subbaan/notes/internal/note"
	"github.com/subbaan/notes/internal/store"
)

type fakeNotes struct {
	saved []note.Note
	err   error
}

func (f *fakeNotes) Save(n note.Note) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, n)
	return nil
}

type fakeSelections struct {
	saved   map[note.ID]note.Selection
	deleted []note.ID
}

func (f *fakeSelections) Save(_ context.Context, sels map[note.ID]note.Selection) error {
	if f.saved == nil {
		f.saved = map[note.ID]note.Selection{}
	}
	for id, s := range sels {
		f.saved[id] = s
	}
	return nil
}

func (f *fakeSelections) Delete(_ context.Context, id note.ID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestPersister(notes ...note.Note) (*store.Store, *Persister, *fakeNotes, *fakeSelections) {
	s := store.New(store.State{}, zerolog.Nop())
	fn, fs := &fakeNotes{}, &fakeSelections{}
	p := NewPersister(fn, fs, zerolog.Nop())
	s.Subscribe(p.Observe)
	s.Dispatch(store.LoadNotes{Notes: notes})
	return s, p, fn, fs
}

func TestPersisterWritesOnlyDirtyNotes(t *testing.T) {
	s, p, fn, fs := newTestPersister(note.Note{ID: "a"}, note.Note{ID: "b"})
	assert.False(t, p.Pending())

	s.Dispatch(store.EditNote{NoteID: "a", Content: "hello"})
	s.Dispatch(store.PersistSelection{NoteID: "a", Start: 5, End: 5})
	assert.True(t, p.Pending())

	require.NoError(t, p.Flush(context.Background()))

	require.Len(t, fn.saved, 1)
	assert.Equal(t, "hello", fn.saved[0].Content)
	assert.Equal(t, map[note.ID]note.Selection{"a": {Start: 5, End: 5}}, fs.saved)
	assert.False(t, p.Pending())
}

func TestPersisterDoesNotWriteBackDiskChanges(t *testing.T) {
	s, p, fn, _ := newTestPersister(note.Note{ID: "a", Content: "old"})

	s.Dispatch(store.NoteUpdated{Note: note.Note{ID: "a", Content: "new"}})
	require.NoError(t, p.Flush(context.Background()))

	assert.Empty(t, fn.saved)
}

func TestPersisterDeletesRemovedSelections(t *testing.T) {
	s, p, _, fs := newTestPersister(note.Note{ID: "a", Content: "abc"})
	s.Dispatch(store.PersistSelection{NoteID: "a", Start: 1, End: 1})

	s.Dispatch(store.NoteRemoved{NoteID: "a"})
	require.NoError(t, p.Flush(context.Background()))

	assert.Equal(t, []note.ID{"a"}, fs.deleted)
	assert.Empty(t, fs.saved)
}

func TestPersisterRetriesFailedWrites(t *testing.T) {
	s, p, fn, _ := newTestPersister(note.Note{ID: "a"})
	fn.err = errors.New("disk full")

	s.Dispatch(store.PinNote{NoteID: "a", Pinned: true})
	err := p.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, p.Pending())

	fn.err = nil
	require.NoError(t, p.Flush(context.Background()))
	require.Len(t, fn.saved, 1)
	assert.True(t, fn.saved[0].HasSystemTag(note.TagPinned))
}

func TestPersisterRunFlushesOnShutdown(t *testing.T) {
	s, p, fn, _ := newTestPersister(note.Note{ID: "a"})
	s.Dispatch(store.EditNote{NoteID: "a", Content: "last words"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx, time.Hour))

	require.Len(t, fn.saved, 1)
	assert.Equal(t, "last words", fn.saved[0].Content)
}
