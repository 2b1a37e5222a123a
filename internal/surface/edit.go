package surface

import (
	"strings"
	"unicode/utf8"
)

// replace swaps the text between start and end for text. It returns the op in
// pre-edit coordinates, the removed text and the position just past the
// inserted text.
func (s *Surface) replace(start, end Position, text string) (Op, string, Position) {
	start = s.clampPosition(start)
	end = s.clampPosition(end)
	if end.Less(start) {
		start, end = end, start
	}
	startOff := s.offsetOf(start)
	endOff := s.offsetOf(end)
	deleted := s.textBetween(start, end)

	head := append([]rune(nil), s.lines[start.Line][:start.Column]...)
	tail := append([]rune(nil), s.lines[end.Line][end.Column:]...)

	segs := strings.Split(text, "\n")
	repl := make([][]rune, len(segs))
	for i, seg := range segs {
		repl[i] = []rune(seg)
	}
	repl[0] = append(head, repl[0]...)
	last := len(repl) - 1
	after := Position{Line: start.Line + last, Column: len(repl[last])}
	repl[last] = append(repl[last], tail...)

	lines := make([][]rune, 0, len(s.lines)-(end.Line-start.Line)+last)
	lines = append(lines, s.lines[:start.Line]...)
	lines = append(lines, repl...)
	lines = append(lines, s.lines[end.Line+1:]...)
	s.lines = lines

	op := Op{
		Range:  Range{Start: start, End: end},
		Offset: startOff,
		Length: endOff - startOff,
		Text:   text,
	}
	return op, deleted, after
}

// typeEdit applies a user edit. The caret lands after the inserted text.
func (s *Surface) typeEdit(start, end Position, text string, mergeable bool) {
	before := s.Selection()
	op, deleted, after := s.replace(start, end, text)
	if deleted == "" && text == "" {
		return
	}
	s.cursor = after
	s.hasAnchor = false
	s.updateDesiredCol()
	s.ensureCursorVisible()
	s.history.record(edit{
		Offset:   op.Offset,
		Deleted:  deleted,
		Inserted: text,
		Before:   before,
		After:    s.Selection(),
	}, mergeable)
	s.emitChange(Change{Value: s.Value(), Ops: []Op{op}})
}

// ApplyEdit replaces r with text on behalf of code rather than the user. The
// selection is carried across the edit: positions before it stay, positions
// after it shift, positions inside it move to the end of the new text. A caret
// sitting exactly at a pure insertion point moves past the inserted text.
func (s *Surface) ApplyEdit(r Range, text string) {
	s.track(ReasonProgrammatic, func() {
		before := s.Selection()
		start := s.clampPosition(r.Start)
		end := s.clampPosition(r.End)
		if end.Less(start) {
			start, end = end, start
		}
		startOff := s.offsetOf(start)
		endOff := s.offsetOf(end)
		anchorOff := s.offsetOf(before.Anchor)
		activeOff := s.offsetOf(before.Active)

		op, deleted, _ := s.replace(start, end, text)
		if deleted == "" && text == "" {
			return
		}
		inserted := utf8.RuneCountInString(text)
		carry := func(off int) int {
			switch {
			case off < startOff, off == startOff && startOff != endOff:
				return off
			case off >= endOff:
				return off + inserted - (endOff - startOff)
			default:
				return startOff + inserted
			}
		}
		anchor, _ := s.PositionAt(carry(anchorOff))
		active, _ := s.PositionAt(carry(activeOff))
		s.setSelection(Selection{Anchor: anchor, Active: active})

		s.history.record(edit{
			Offset:   op.Offset,
			Deleted:  deleted,
			Inserted: text,
			Before:   before,
			After:    s.Selection(),
		}, false)
		s.emitChange(Change{Value: s.Value(), Ops: []Op{op}})
	})
}

// ReplaceLine replaces the whole content of line n.
func (s *Surface) ReplaceLine(n int, text string) bool {
	if n < 0 || n >= len(s.lines) {
		return false
	}
	s.ApplyEdit(Range{
		Start: Position{Line: n},
		End:   Position{Line: n, Column: len(s.lines[n])},
	}, text)
	return true
}

// Undo reverts the most recent edit and restores the selection it started
// from. It reports whether anything was undone.
func (s *Surface) Undo() bool {
	e, ok := s.history.popUndo()
	if !ok {
		return false
	}
	s.track(ReasonUndo, func() {
		start, _ := s.PositionAt(e.Offset)
		end, _ := s.PositionAt(e.Offset + utf8.RuneCountInString(e.Inserted))
		op, _, _ := s.replace(start, end, e.Deleted)
		s.setSelection(e.Before)
		s.ensureCursorVisible()
		s.emitChange(Change{Value: s.Value(), Ops: []Op{op}, IsUndoing: true})
	})
	return true
}

// Redo reapplies the most recently undone edit.
func (s *Surface) Redo() bool {
	e, ok := s.history.popRedo()
	if !ok {
		return false
	}
	s.track(ReasonRedo, func() {
		start, _ := s.PositionAt(e.Offset)
		end, _ := s.PositionAt(e.Offset + utf8.RuneCountInString(e.Deleted))
		op, _, _ := s.replace(start, end, e.Inserted)
		s.setSelection(e.After)
		s.ensureCursorVisible()
		s.emitChange(Change{Value: s.Value(), Ops: []Op{op}, IsRedoing: true})
	})
	return true
}

// insertText types text at the caret, replacing any selection.
func (s *Surface) insertText(text string) {
	sel := s.Selection()
	if !sel.Collapsed() {
		r := sel.Range()
		s.history.seal()
		s.typeEdit(r.Start, r.End, text, false)
		return
	}
	mergeable := utf8.RuneCountInString(text) == 1 && text != "\n"
	if !mergeable {
		s.history.seal()
	}
	s.typeEdit(s.cursor, s.cursor, text, mergeable)
}

func (s *Surface) deleteSelection() bool {
	sel := s.Selection()
	if sel.Collapsed() {
		return false
	}
	r := sel.Range()
	s.history.seal()
	s.typeEdit(r.Start, r.End, "", false)
	return true
}

func (s *Surface) deleteCharBackward() {
	if s.deleteSelection() {
		return
	}
	c := s.cursor
	switch {
	case c.Column > 0:
		s.typeEdit(Position{Line: c.Line, Column: c.Column - 1}, c, "", false)
	case c.Line > 0:
		prev := Position{Line: c.Line - 1, Column: len(s.lines[c.Line-1])}
		s.typeEdit(prev, c, "", false)
	}
	s.history.seal()
}

func (s *Surface) deleteCharForward() {
	if s.deleteSelection() {
		return
	}
	c := s.cursor
	switch {
	case c.Column < len(s.lines[c.Line]):
		s.typeEdit(c, Position{Line: c.Line, Column: c.Column + 1}, "", false)
	case c.Line < len(s.lines)-1:
		s.typeEdit(c, Position{Line: c.Line + 1}, "", false)
	}
	s.history.seal()
}

// killToLineStart removes text before the caret on its line, or joins with the
// previous line when the caret is already at column zero.
func (s *Surface) killToLineStart() {
	c := s.cursor
	switch {
	case c.Column > 0:
		s.killBuffer = string(s.lines[c.Line][:c.Column])
		s.typeEdit(Position{Line: c.Line}, c, "", false)
	case c.Line > 0:
		s.killBuffer = "\n"
		s.typeEdit(Position{Line: c.Line - 1, Column: len(s.lines[c.Line-1])}, c, "", false)
	}
	s.history.seal()
}

// killToLineEnd removes text after the caret, or joins with the next line when
// the caret is already at the end.
func (s *Surface) killToLineEnd() {
	c := s.cursor
	line := s.lines[c.Line]
	switch {
	case c.Column < len(line):
		s.killBuffer = string(line[c.Column:])
		s.typeEdit(c, Position{Line: c.Line, Column: len(line)}, "", false)
	case c.Line < len(s.lines)-1:
		s.killBuffer = "\n"
		s.typeEdit(c, Position{Line: c.Line + 1}, "", false)
	}
	s.history.seal()
}

func (s *Surface) deleteWordBackward() {
	if s.deleteSelection() {
		return
	}
	c := s.cursor
	if c.Column == 0 {
		s.deleteCharBackward()
		return
	}
	line := s.lines[c.Line]
	col := c.Column
	for col > 0 && !isWordChar(line[col-1]) {
		col--
	}
	for col > 0 && isWordChar(line[col-1]) {
		col--
	}
	s.killBuffer = string(line[col:c.Column])
	s.typeEdit(Position{Line: c.Line, Column: col}, c, "", false)
	s.history.seal()
}

func (s *Surface) yank() {
	if s.killBuffer == "" {
		return
	}
	s.insertText(s.killBuffer)
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}
