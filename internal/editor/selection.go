package editor

import (
	"github.com/subbaan/notes/internal/note"
	"github.com/subbaan/notes/internal/store"
	"github.com/subbaan/notes/internal/surface"
)

// toSurface converts a persisted selection into surface positions. The anchor
// goes at the end for RTL selections.
func toSurface(s *surface.Surface, sel note.Selection) (surface.Selection, bool) {
	start, ok := s.PositionAt(sel.Start)
	if !ok {
		return surface.Selection{}, false
	}
	end, ok := s.PositionAt(sel.End)
	if !ok {
		return surface.Selection{}, false
	}
	if sel.Direction == note.RTL {
		return surface.Selection{Anchor: end, Active: start}, true
	}
	return surface.Selection{Anchor: start, Active: end}, true
}

// fromSurface converts a live selection into offsets.
func fromSurface(s *surface.Surface, sel surface.Selection) (note.Selection, bool) {
	r := sel.Range()
	start, ok := s.OffsetAt(r.Start)
	if !ok {
		return note.Selection{}, false
	}
	end, ok := s.OffsetAt(r.End)
	if !ok {
		return note.Selection{}, false
	}
	dir := note.LTR
	if sel.Reversed() {
		dir = note.RTL
	}
	return note.Selection{Start: start, End: end, Direction: dir}, true
}

// applyStoreSelection pushes the persisted selection into the surface when it
// differs from the live one. reveal also scrolls to the start line and
// focuses the surface.
func (p *Pane) applyStoreSelection(sel note.Selection, reveal bool) {
	if p.surface == nil {
		return
	}
	want, ok := toSurface(p.surface, sel)
	if !ok {
		return
	}
	if p.surface.Selection() != want {
		p.surface.SetSelection(want, surface.ReasonProgrammatic)
	}
	if reveal {
		p.surface.RevealLine(want.Range().Start.Line)
		p.surface.Focus()
	}
}

// onSelection persists user driven selection changes.
func (p *Pane) onSelection(c surface.SelectionChange) {
	switch c.Reason {
	case surface.ReasonUndo, surface.ReasonRedo, surface.ReasonProgrammatic:
		return
	}
	if !p.mounted || p.surface == nil || p.local.Mode != ModeFull {
		return
	}
	sel, ok := fromSurface(p.surface, c.Selection)
	if !ok {
		return
	}
	p.dispatch.Dispatch(store.PersistSelection{
		NoteID:    p.local.NoteID,
		Start:     sel.Start,
		End:       sel.End,
		Direction: sel.Direction,
	})
}
