package store

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subbaan/notes/internal/note"
)

func seeded(notes ...note.Note) State {
	return Reduce(State{}, LoadNotes{Notes: notes})
}

func TestEditNoteClampsSelection(t *testing.T) {
	s := seeded(note.Note{ID: "a", Content: "hello world"})
	s = Reduce(s, PersistSelection{NoteID: "a", Start: 6, End: 11, Direction: note.RTL})

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s = Reduce(s, EditNote{NoteID: "a", Content: "hello", At: at})

	n, _ := s.Note("a")
	assert.Equal(t, "hello", n.Content)
	assert.Equal(t, at, n.ModificationDate)
	assert.Equal(t, note.Selection{Start: 5, End: 5, Direction: note.RTL}, s.Selection("a"))
}

func TestEditNoteUnknownIsNoop(t *testing.T) {
	s := seeded(note.Note{ID: "a"})
	next := Reduce(s, EditNote{NoteID: "missing", Content: "x"})
	assert.Equal(t, s, next)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := seeded(note.Note{ID: "a", Content: "one"})
	_ = Reduce(s, EditNote{NoteID: "a", Content: "two"})
	_ = Reduce(s, PersistSelection{NoteID: "a", Start: 1, End: 2})

	n, _ := s.Note("a")
	assert.Equal(t, "one", n.Content)
	assert.Empty(t, s.Selections)
}

func TestPersistSelectionClamps(t *testing.T) {
	s := seeded(note.Note{ID: "a", Content: "abc"})

	s = Reduce(s, PersistSelection{NoteID: "a", Start: 5, End: -1})

	assert.Equal(t, note.Selection{Start: 0, End: 3}, s.Selection("a"))
}

func TestSystemTags(t *testing.T) {
	s := seeded(note.Note{ID: "a"})

	s = Reduce(s, PinNote{NoteID: "a", Pinned: true})
	s = Reduce(s, EnableMarkdown{NoteID: "a", Enabled: true})
	n, _ := s.Note("a")
	assert.Equal(t, []string{note.TagMarkdown, note.TagPinned}, n.SystemTags)

	s = Reduce(s, PinNote{NoteID: "a", Pinned: false})
	n, _ = s.Note("a")
	assert.Equal(t, []string{note.TagMarkdown}, n.SystemTags)
}

func TestInsertTaskBumpsRequests(t *testing.T) {
	s := Reduce(State{}, InsertTask{})
	s = Reduce(s, InsertTask{})
	assert.Equal(t, uint64(2), s.TaskRequests)
}

func TestOpenCloseNote(t *testing.T) {
	s := seeded(note.Note{ID: "a"})

	s = Reduce(s, OpenNote{NoteID: "nope"})
	assert.Empty(t, s.OpenNoteID)

	s = Reduce(s, OpenNote{NoteID: "a"})
	_, ok := s.OpenNote()
	assert.True(t, ok)

	s = Reduce(s, CloseNote{})
	_, ok = s.OpenNote()
	assert.False(t, ok)
}

func TestNoteUpdatedRebasesSelection(t *testing.T) {
	s := seeded(note.Note{ID: "a", Content: "hello world"})
	s = Reduce(s, PersistSelection{NoteID: "a", Start: 6, End: 6})

	s = Reduce(s, NoteUpdated{Note: note.Note{ID: "a", Content: "hey hello world"}})

	assert.Equal(t, note.Selection{Start: 10, End: 10}, s.Selection("a"))
}

func TestNoteUpdatedRebasesPastCheckboxes(t *testing.T) {
	s := seeded(note.Note{ID: "a", Content: "- [ ] a\nXYZ"})
	// Offsets count a checkbox as one character, so 7 is the Y.
	s = Reduce(s, PersistSelection{NoteID: "a", Start: 7, End: 7})

	s = Reduce(s, NoteUpdated{Note: note.Note{ID: "a", Content: "- [ ] a\nQQXYZ"}})

	assert.Equal(t, note.Selection{Start: 9, End: 9}, s.Selection("a"))
}

func TestPersistSelectionClampsToDisplayedLength(t *testing.T) {
	s := seeded(note.Note{ID: "a", Content: "- [x] a"})

	s = Reduce(s, PersistSelection{NoteID: "a", Start: 7, End: 7})

	assert.Equal(t, note.Selection{Start: 5, End: 5}, s.Selection("a"))
}

func TestNoteUpdatedAddsUnknownNote(t *testing.T) {
	s := seeded(note.Note{ID: "a"})

	s = Reduce(s, NoteUpdated{Note: note.Note{ID: "b", Content: "new"}})

	assert.Equal(t, []note.ID{"a", "b"}, s.Order)
}

func TestNoteRemovedClosesOpenNote(t *testing.T) {
	s := seeded(note.Note{ID: "a"}, note.Note{ID: "b"})
	s = Reduce(s, OpenNote{NoteID: "a"})
	s = Reduce(s, PersistSelection{NoteID: "a"})

	s = Reduce(s, NoteRemoved{NoteID: "a"})

	assert.Empty(t, s.OpenNoteID)
	assert.Equal(t, []note.ID{"b"}, s.Order)
	assert.NotContains(t, s.Selections, note.ID("a"))
}

func TestCreateNoteOpensIt(t *testing.T) {
	s := Reduce(State{}, CreateNote{Note: note.Note{ID: "fresh.md"}})
	assert.Equal(t, note.ID("fresh.md"), s.OpenNoteID)
}

func TestLoadNotesClampsSelections(t *testing.T) {
	s := Reduce(State{OpenNoteID: "gone"}, LoadNotes{
		Notes: []note.Note{{ID: "a", Content: "ab"}},
		Selections: map[note.ID]note.Selection{
			"a":     {Start: 1, End: 10},
			"stale": {Start: 1, End: 1},
		},
	})

	assert.Equal(t, note.Selection{Start: 1, End: 2}, s.Selection("a"))
	assert.NotContains(t, s.Selections, note.ID("stale"))
	assert.Empty(t, s.OpenNoteID)
}

func TestVisible(t *testing.T) {
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(48 * time.Hour)
	s := seeded(
		note.Note{ID: "1", Title: "banana", Content: "fruit", ModificationDate: old},
		note.Note{ID: "2", Title: "apple", Content: "fruit", ModificationDate: recent},
		note.Note{ID: "3", Title: "zucchini", Content: "vegetable", ModificationDate: old, SystemTags: []string{note.TagPinned}},
	)

	ids := func(ns []note.Note) []note.ID {
		out := make([]note.ID, len(ns))
		for i, n := range ns {
			out[i] = n.ID
		}
		return out
	}

	assert.Equal(t, []note.ID{"3", "2", "1"}, ids(s.Visible(SortByModified)))
	assert.Equal(t, []note.ID{"3", "2", "1"}, ids(s.Visible(SortByTitle)))

	s = Reduce(s, SetSearchQuery{Query: "FRUIT"})
	assert.Equal(t, []note.ID{"2", "1"}, ids(s.Visible(SortByModified)))
}

func TestStoreNotifiesListeners(t *testing.T) {
	st := New(seeded(note.Note{ID: "a"}), zerolog.Nop())
	var got []Action
	unsubscribe := st.Subscribe(func(a Action, s State) {
		got = append(got, a)
		assert.Equal(t, note.ID("a"), s.OpenNoteID)
	})

	st.Dispatch(OpenNote{NoteID: "a"})
	unsubscribe()
	st.Dispatch(CloseNote{})

	require.Len(t, got, 1)
	assert.Equal(t, OpenNote{NoteID: "a"}, got[0])
	assert.Empty(t, st.State().OpenNoteID)
}
