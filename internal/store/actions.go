package store

import (
	"time"

	"github.com/subbaan/notes/internal/note"
)

// Action is anything Dispatch accepts.
type Action interface {
	action()
}

// EditNote replaces a note's content with text typed in the editor.
type EditNote struct {
	NoteID  note.ID
	Content string
	At      time.Time
}

// PinNote sets or clears the pinned system tag.
type PinNote struct {
	NoteID note.ID
	Pinned bool
}

// EnableMarkdown sets or clears the markdown system tag.
type EnableMarkdown struct {
	NoteID  note.ID
	Enabled bool
}

// PersistSelection records the cursor or selection of a note.
type PersistSelection struct {
	NoteID    note.ID
	Start     int
	End       int
	Direction note.Direction
}

// InsertTask asks the open editor to insert a checkbox at the cursor.
type InsertTask struct{}

// OpenNote makes a note the one shown in the editor.
type OpenNote struct {
	NoteID note.ID
}

// CloseNote returns to the note list.
type CloseNote struct{}

// LoadNotes replaces the whole collection, typically at startup.
type LoadNotes struct {
	Notes      []note.Note
	Selections map[note.ID]note.Selection
}

// NoteUpdated carries a note changed outside the editor, e.g. on disk.
type NoteUpdated struct {
	Note note.Note
}

// NoteRemoved drops a note that no longer exists.
type NoteRemoved struct {
	NoteID note.ID
}

// CreateNote adds a new note and opens it.
type CreateNote struct {
	Note note.Note
}

// SetSearchQuery changes the list filter.
type SetSearchQuery struct {
	Query string
}

func (EditNote) action()         {}
func (PinNote) action()          {}
func (EnableMarkdown) action()   {}
func (PersistSelection) action() {}
func (InsertTask) action()       {}
func (OpenNote) action()         {}
func (CloseNote) action()        {}
func (LoadNotes) action()        {}
func (NoteUpdated) action()      {}
func (NoteRemoved) action()      {}
func (CreateNote) action()       {}
func (SetSearchQuery) action()   {}
