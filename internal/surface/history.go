package surface

import "unicode/utf8"

const defaultHistoryLimit = 500

// edit is one undoable replacement. Offset is a rune index. Before and After
// are the selections around the edit, restored on undo and redo.
type edit struct {
	Offset   int
	Deleted  string
	Inserted string
	Before   Selection
	After    Selection
}

type history struct {
	past   []edit
	future []edit
	limit  int
	// open allows the next typed rune to merge into the last entry.
	open bool
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) reset() {
	h.past = nil
	h.future = nil
	h.open = false
}

// record pushes e, merging it into the previous entry when both are plain
// typing on the same line and contiguous.
func (h *history) record(e edit, mergeable bool) {
	h.future = nil
	if mergeable && h.open && len(h.past) > 0 {
		last := &h.past[len(h.past)-1]
		if last.Deleted == "" && e.Deleted == "" &&
			last.Offset+utf8.RuneCountInString(last.Inserted) == e.Offset {
			last.Inserted += e.Inserted
			last.After = e.After
			return
		}
	}
	h.past = append(h.past, e)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.open = mergeable
}

// seal stops the next edit from merging into the last one.
func (h *history) seal() { h.open = false }

func (h *history) popUndo() (edit, bool) {
	if len(h.past) == 0 {
		return edit{}, false
	}
	e := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, e)
	h.open = false
	return e, true
}

func (h *history) popRedo() (edit, bool) {
	if len(h.future) == 0 {
		return edit{}, false
	}
	e := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, e)
	h.open = false
	return e, true
}
