// Package surface is the interactive text widget the note editor renders into.
// It owns the rune buffer, the caret and selection, undo history and
// rendering, and reports every content, selection and mouse change to
// subscribed listeners.
package surface

import (
	"strings"
)

// Position addresses a character by zero-based line and rune column.
type Position struct {
	Line   int
	Column int
}

// Less reports whether p comes before o in the document.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Range is a span between two positions, Start <= End.
type Range struct {
	Start Position
	End   Position
}

// Selection is the live selection. Anchor is where it started and Active is
// where the caret is. A collapsed selection is a bare caret.
type Selection struct {
	Anchor Position
	Active Position
}

// Collapsed reports whether the selection is a bare caret.
func (s Selection) Collapsed() bool { return s.Anchor == s.Active }

// Reversed reports whether the anchor sits after the caret.
func (s Selection) Reversed() bool { return s.Active.Less(s.Anchor) }

// Range returns the selection's ordered bounds.
func (s Selection) Range() Range {
	if s.Reversed() {
		return Range{Start: s.Active, End: s.Anchor}
	}
	return Range{Start: s.Anchor, End: s.Active}
}

// Reason says what caused a selection change.
type Reason int

const (
	ReasonKeyboard Reason = iota
	ReasonMouse
	ReasonProgrammatic
	ReasonUndo
	ReasonRedo
)

func (r Reason) String() string {
	switch r {
	case ReasonKeyboard:
		return "keyboard"
	case ReasonMouse:
		return "mouse"
	case ReasonProgrammatic:
		return "programmatic"
	case ReasonUndo:
		return "undo"
	case ReasonRedo:
		return "redo"
	default:
		return "unknown"
	}
}

// Op is one replaced range within a Change, expressed in pre-edit coordinates.
type Op struct {
	Range  Range
	Offset int
	Length int
	Text   string
}

// Change describes a content mutation.
type Change struct {
	Value     string
	Ops       []Op
	IsUndoing bool
	IsRedoing bool
	// IsFlush is set when the whole buffer was replaced by SetValue.
	IsFlush bool
}

// SelectionChange is emitted whenever the selection moves.
type SelectionChange struct {
	Selection Selection
	Reason    Reason
}

// MouseKind distinguishes mouse reports.
type MouseKind int

const (
	MouseMove MouseKind = iota
	MouseDown
)

// MouseEvent carries the document offset under the pointer.
type MouseEvent struct {
	Kind     MouseKind
	Offset   int
	Position Position
}

// MouseHandler may return true to consume a MouseDown and suppress the default
// caret placement.
type MouseHandler func(MouseEvent) bool

type listeners[T any] struct {
	next int
	fns  []struct {
		id int
		fn T
	}
}

func (l *listeners[T]) add(fn T) func() {
	l.next++
	id := l.next
	l.fns = append(l.fns, struct {
		id int
		fn T
	}{id, fn})
	return func() {
		for i, e := range l.fns {
			if e.id == id {
				l.fns = append(l.fns[:i], l.fns[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners[T]) each(f func(T) bool) {
	// Copy so handlers may unsubscribe while being called.
	fns := make([]T, len(l.fns))
	for i, e := range l.fns {
		fns[i] = e.fn
	}
	for _, fn := range fns {
		if f(fn) {
			return
		}
	}
}

// Surface is a multi-line text widget with caret, selection and undo.
type Surface struct {
	lines       [][]rune
	cursor      Position
	anchor      Position
	hasAnchor   bool
	desiredCol  int // visual column kept across vertical moves
	viewportRow int // top visible visual line
	width       int
	height      int
	xOffset     int
	yOffset     int
	placeholder string
	focused     bool
	killBuffer  string
	selecting   bool // left button held
	reason      Reason
	history     *history

	onChange    listeners[func(Change)]
	onSelection listeners[func(SelectionChange)]
	onMouse     listeners[MouseHandler]

	// OnPrimaryCopy receives text selected by a mouse drag once the button is
	// released.
	OnPrimaryCopy func(string)
}

// New creates an empty surface.
func New() *Surface {
	return &Surface{
		lines:   [][]rune{{}},
		width:   80,
		height:  24,
		history: newHistory(defaultHistoryLimit),
	}
}

// SetSize sets the visible area in cells.
func (s *Surface) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.ensureCursorVisible()
}

// SetOrigin records where the surface is drawn on screen, for mouse mapping.
func (s *Surface) SetOrigin(x, y int) {
	s.xOffset = x
	s.yOffset = y
}

// SetPlaceholder sets text shown when the buffer is empty and unfocused.
func (s *Surface) SetPlaceholder(p string) {
	s.placeholder = p
}

// Focus grants input focus.
func (s *Surface) Focus() { s.focused = true }

// Blur removes input focus.
func (s *Surface) Blur() { s.focused = false }

// Focused reports whether the surface has input focus.
func (s *Surface) Focused() bool { return s.focused }

// OnDidChangeContent subscribes to content changes. Call the returned func to
// unsubscribe.
func (s *Surface) OnDidChangeContent(fn func(Change)) func() {
	return s.onChange.add(fn)
}

// OnDidChangeSelection subscribes to selection changes.
func (s *Surface) OnDidChangeSelection(fn func(SelectionChange)) func() {
	return s.onSelection.add(fn)
}

// OnMouse subscribes to mouse move and mouse down reports.
func (s *Surface) OnMouse(fn MouseHandler) func() {
	return s.onMouse.add(fn)
}

// Value returns the buffer content.
func (s *Surface) Value() string {
	var sb strings.Builder
	for i, line := range s.lines {
		sb.WriteString(string(line))
		if i < len(s.lines)-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// SetValue replaces the whole buffer, resets the caret to the start and clears
// undo history. Listeners see a flush change.
func (s *Surface) SetValue(text string) {
	s.track(ReasonProgrammatic, func() {
		s.lines = splitLines(text)
		s.cursor = Position{}
		s.hasAnchor = false
		s.selecting = false
		s.desiredCol = 0
		s.viewportRow = 0
		s.history.reset()
		s.emitChange(Change{Value: text, IsFlush: true})
	})
}

// LineCount returns the number of lines.
func (s *Surface) LineCount() int { return len(s.lines) }

// Line returns the content of line n, or "" when out of range.
func (s *Surface) Line(n int) string {
	if n < 0 || n >= len(s.lines) {
		return ""
	}
	return string(s.lines[n])
}

// RuneAt returns the rune at offset, if any.
func (s *Surface) RuneAt(offset int) (rune, bool) {
	p, ok := s.PositionAt(offset)
	if !ok || p.Column >= len(s.lines[p.Line]) {
		return 0, false
	}
	return s.lines[p.Line][p.Column], true
}

// Selection returns the live selection.
func (s *Surface) Selection() Selection {
	if s.hasAnchor {
		return Selection{Anchor: s.anchor, Active: s.cursor}
	}
	return Selection{Anchor: s.cursor, Active: s.cursor}
}

// SetSelection moves the caret and anchor. Positions are clamped into the
// buffer. reason is reported to selection listeners.
func (s *Surface) SetSelection(sel Selection, reason Reason) {
	s.track(reason, func() {
		s.setSelection(sel)
		s.ensureCursorVisible()
	})
}

// SelectedText returns the text covered by the selection.
func (s *Surface) SelectedText() string {
	sel := s.Selection()
	if sel.Collapsed() {
		return ""
	}
	r := sel.Range()
	return s.textBetween(r.Start, r.End)
}

// RevealLine scrolls so that line is visible, centring it when it was not.
func (s *Surface) RevealLine(line int) {
	if line < 0 || line >= len(s.lines) {
		return
	}
	visual := s.logicalToVisualRow(line, 0)
	if visual >= s.viewportRow && visual < s.viewportRow+s.height {
		return
	}
	s.viewportRow = max(visual-s.height/2, 0)
}

func (s *Surface) setSelection(sel Selection) {
	s.cursor = s.clampPosition(sel.Active)
	s.anchor = s.clampPosition(sel.Anchor)
	s.hasAnchor = s.anchor != s.cursor
	s.updateDesiredCol()
}

func (s *Surface) clearSelection() {
	s.hasAnchor = false
	s.selecting = false
}

// track runs fn under reason and reports a selection change if fn moved the
// selection.
func (s *Surface) track(reason Reason, fn func()) {
	prev := s.reason
	before := s.Selection()
	s.reason = reason
	fn()
	s.reason = prev
	if after := s.Selection(); after != before {
		s.onSelection.each(func(f func(SelectionChange)) bool {
			f(SelectionChange{Selection: after, Reason: reason})
			return false
		})
	}
}

func (s *Surface) emitChange(c Change) {
	s.onChange.each(func(f func(Change)) bool {
		f(c)
		return false
	})
}

func (s *Surface) emitMouse(ev MouseEvent) bool {
	consumed := false
	s.onMouse.each(func(f MouseHandler) bool {
		consumed = f(ev)
		return consumed
	})
	return consumed
}

func splitLines(text string) [][]rune {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}
