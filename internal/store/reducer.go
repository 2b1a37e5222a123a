package store

import (
	"maps"
	"slices"

	"github.com/subbaan/notes/internal/note"
)

// Reduce returns the state after applying a. Unknown note IDs make note
// actions no-ops.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case EditNote:
		n, ok := s.Notes[a.NoteID]
		if !ok || n.Content == a.Content {
			return s
		}
		n.Content = a.Content
		if !a.At.IsZero() {
			n.ModificationDate = a.At
		}
		s = s.withNote(n)
		if sel, ok := s.Selections[a.NoteID]; ok {
			s = s.withSelection(a.NoteID, sel.Clamp(n.DisplayLen()))
		}
		return s

	case PinNote:
		return setSystemTag(s, a.NoteID, note.TagPinned, a.Pinned)

	case EnableMarkdown:
		return setSystemTag(s, a.NoteID, note.TagMarkdown, a.Enabled)

	case PersistSelection:
		n, ok := s.Notes[a.NoteID]
		if !ok {
			return s
		}
		sel := note.Selection{Start: a.Start, End: a.End, Direction: a.Direction}
		return s.withSelection(a.NoteID, sel.Clamp(n.DisplayLen()))

	case InsertTask:
		s.TaskRequests++
		return s

	case OpenNote:
		if _, ok := s.Notes[a.NoteID]; !ok {
			return s
		}
		s.OpenNoteID = a.NoteID
		return s

	case CloseNote:
		s.OpenNoteID = ""
		return s

	case LoadNotes:
		notes := make(map[note.ID]note.Note, len(a.Notes))
		order := make([]note.ID, 0, len(a.Notes))
		sels := make(map[note.ID]note.Selection, len(a.Selections))
		for _, n := range a.Notes {
			if _, dup := notes[n.ID]; !dup {
				order = append(order, n.ID)
			}
			notes[n.ID] = n
		}
		for id, sel := range a.Selections {
			if n, ok := notes[id]; ok {
				sels[id] = sel.Clamp(n.DisplayLen())
			}
		}
		s.Notes, s.Order, s.Selections = notes, order, sels
		if _, ok := notes[s.OpenNoteID]; !ok {
			s.OpenNoteID = ""
		}
		return s

	case NoteUpdated:
		prev, existed := s.Notes[a.Note.ID]
		if existed && notesEqual(prev, a.Note) {
			return s
		}
		s = s.withNote(a.Note)
		if sel, ok := s.Selections[a.Note.ID]; ok {
			if existed {
				sel = note.RebaseSelection(sel, prev.Displayed(), a.Note.Displayed())
			}
			s = s.withSelection(a.Note.ID, sel.Clamp(a.Note.DisplayLen()))
		}
		return s

	case NoteRemoved:
		if _, ok := s.Notes[a.NoteID]; !ok {
			return s
		}
		notes := maps.Clone(s.Notes)
		delete(notes, a.NoteID)
		sels := maps.Clone(s.Selections)
		delete(sels, a.NoteID)
		s.Notes, s.Selections = notes, sels
		s.Order = slices.DeleteFunc(slices.Clone(s.Order), func(id note.ID) bool { return id == a.NoteID })
		if s.OpenNoteID == a.NoteID {
			s.OpenNoteID = ""
		}
		return s

	case CreateNote:
		s = s.withNote(a.Note)
		s.OpenNoteID = a.Note.ID
		return s

	case SetSearchQuery:
		s.SearchQuery = a.Query
		return s
	}
	return s
}

func setSystemTag(s State, id note.ID, tag string, on bool) State {
	n, ok := s.Notes[id]
	if !ok || n.HasSystemTag(tag) == on {
		return s
	}
	return s.withNote(n.WithSystemTag(tag, on))
}

func notesEqual(a, b note.Note) bool {
	return a.Content == b.Content &&
		a.Title == b.Title &&
		a.PublishURL == b.PublishURL &&
		a.ModificationDate.Equal(b.ModificationDate) &&
		slices.Equal(a.SystemTags, b.SystemTags) &&
		slices.Equal(a.Tags, b.Tags)
}
