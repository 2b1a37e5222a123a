package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/muesli/reflow/truncate"

	"github.com/subbaan/notes/internal/note"
	"github.com/subbaan/notes/internal/store"
)

// noteList is the navigation view: every visible note, pinned first.
type noteList struct {
	cursor    int
	order     store.SortOrder
	searching bool
	search    textinput.Model
}

func newNoteList() noteList {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	return noteList{search: ti}
}

func (l *noteList) toggleSort() {
	if l.order == store.SortByModified {
		l.order = store.SortByTitle
	} else {
		l.order = store.SortByModified
	}
}

func (l noteList) sortLabel() string {
	if l.order == store.SortByTitle {
		return "name"
	}
	return "modified"
}

// move wraps around at either end.
func (l *noteList) move(delta, n int) {
	if n == 0 {
		l.cursor = 0
		return
	}
	l.cursor = (l.cursor + delta + n) % n
}

func (l *noteList) clamp(n int) {
	l.cursor = min(max(l.cursor, 0), max(n-1, 0))
}

// selected returns the note under the cursor.
func (l noteList) selected(notes []note.Note) (note.Note, bool) {
	if l.cursor < 0 || l.cursor >= len(notes) {
		return note.Note{}, false
	}
	return notes[l.cursor], true
}

func (l noteList) view(notes []note.Note, st Styles, width, height int) string {
	var b strings.Builder
	if l.searching || l.search.Value() != "" {
		b.WriteString(l.search.View())
		b.WriteString("\n")
		height--
	}
	if len(notes) == 0 {
		if l.search.Value() != "" {
			b.WriteString(st.Muted.Render("No matching notes."))
		} else {
			b.WriteString(st.Muted.Render("No notes yet. Press n to create one."))
		}
		return b.String()
	}

	// Keep the cursor row on screen.
	start := 0
	if height > 0 && l.cursor >= height {
		start = l.cursor - height + 1
	}
	end := len(notes)
	if height > 0 {
		end = min(end, start+height)
	}
	for i := start; i < end; i++ {
		n := notes[i]
		title := n.Title
		if title == "" {
			title = string(n.ID)
		}
		marker := "  "
		if n.HasSystemTag(note.TagPinned) {
			marker = st.Pinned.Render("★ ")
		}
		line := truncate.StringWithTail(title, uint(max(width-4, 1)), "…")
		if i == l.cursor {
			b.WriteString(st.Selected.Render("> ") + marker + st.Selected.Render(line))
		} else {
			b.WriteString("  " + marker + line)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// untitled names the i-th attempt at a fresh note.
func untitled(i int) string {
	if i <= 1 {
		return "Untitled"
	}
	return fmt.Sprintf("Untitled %d", i)
}
