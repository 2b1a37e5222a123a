// Package store holds the application state shared by the note list, the
// editor pane and the info panel. State changes only through Reduce.
package store

import (
	"maps"
	"slices"
	"strings"

	"github.com/subbaan/notes/internal/note"
)

// State is an immutable snapshot. Reduce never mutates the maps or slices of
// the state it was given.
type State struct {
	Notes      map[note.ID]note.Note
	Order      []note.ID
	Selections map[note.ID]note.Selection
	OpenNoteID note.ID
	// TaskRequests increments on every InsertTask so the editor can tell a new
	// request from one it already served.
	TaskRequests      uint64
	KeyboardShortcuts bool
	Theme             string
	SearchQuery       string
}

// Note returns the note with id.
func (s State) Note(id note.ID) (note.Note, bool) {
	n, ok := s.Notes[id]
	return n, ok
}

// OpenNote returns the note shown in the editor, if any.
func (s State) OpenNote() (note.Note, bool) {
	if s.OpenNoteID == "" {
		return note.Note{}, false
	}
	return s.Note(s.OpenNoteID)
}

// Selection returns the persisted selection of id, or a caret at the start.
func (s State) Selection(id note.ID) note.Selection {
	return s.Selections[id]
}

// SortOrder picks how Visible orders notes after pinned ones.
type SortOrder int

const (
	SortByModified SortOrder = iota
	SortByTitle
)

// Visible returns notes matching SearchQuery, pinned notes first.
func (s State) Visible(order SortOrder) []note.Note {
	q := strings.ToLower(strings.TrimSpace(s.SearchQuery))
	out := make([]note.Note, 0, len(s.Order))
	for _, id := range s.Order {
		n, ok := s.Notes[id]
		if !ok {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Content), q) {
			continue
		}
		out = append(out, n)
	}
	slices.SortStableFunc(out, func(a, b note.Note) int {
		ap, bp := a.HasSystemTag(note.TagPinned), b.HasSystemTag(note.TagPinned)
		if ap != bp {
			if ap {
				return -1
			}
			return 1
		}
		if order == SortByTitle {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
		return b.ModificationDate.Compare(a.ModificationDate)
	})
	return out
}

func (s State) withNote(n note.Note) State {
	notes := maps.Clone(s.Notes)
	if notes == nil {
		notes = map[note.ID]note.Note{}
	}
	if _, ok := notes[n.ID]; !ok {
		s.Order = append(slices.Clone(s.Order), n.ID)
	}
	notes[n.ID] = n
	s.Notes = notes
	return s
}

func (s State) withSelection(id note.ID, sel note.Selection) State {
	if cur, ok := s.Selections[id]; ok && cur == sel {
		return s
	}
	sels := maps.Clone(s.Selections)
	if sels == nil {
		sels = map[note.ID]note.Selection{}
	}
	sels[id] = sel
	s.Selections = sels
	return s
}
