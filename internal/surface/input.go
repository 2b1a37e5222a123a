package surface

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles keyboard and mouse input while focused.
func (s *Surface) Update(msg tea.Msg) tea.Cmd {
	if !s.focused {
		return nil
	}
	switch msg := msg.(type) {
	case tea.MouseMsg:
		s.track(ReasonMouse, func() { s.handleMouse(tea.MouseEvent(msg)) })
	case tea.KeyMsg:
		// Undo and redo report their own reason.
		switch msg.String() {
		case "ctrl+z":
			s.Undo()
		case "ctrl+r":
			s.Redo()
		default:
			s.track(ReasonKeyboard, func() { s.handleKey(msg) })
		}
	}
	return nil
}

func (s *Surface) inside(x, y int) bool {
	return x >= s.xOffset && x < s.xOffset+s.width && y >= s.yOffset && y < s.yOffset+s.height
}

func (s *Surface) handleMouse(ev tea.MouseEvent) {
	switch {
	case ev.Button == tea.MouseButtonLeft && ev.Action == tea.MouseActionPress:
		pos := s.mouseToPosition(ev.X, ev.Y)
		if s.emitMouse(MouseEvent{Kind: MouseDown, Offset: s.offsetOf(pos), Position: pos}) {
			return
		}
		s.cursor = pos
		s.anchor = pos
		s.hasAnchor = false
		s.selecting = true
		s.updateDesiredCol()
		s.history.seal()

	case ev.Action == tea.MouseActionMotion && s.selecting:
		s.dragTo(ev.X, ev.Y)

	case ev.Action == tea.MouseActionMotion:
		if !s.inside(ev.X, ev.Y) {
			s.emitMouse(MouseEvent{Kind: MouseMove, Offset: -1})
			return
		}
		pos := s.mouseToPosition(ev.X, ev.Y)
		s.emitMouse(MouseEvent{Kind: MouseMove, Offset: s.offsetOf(pos), Position: pos})

	case ev.Button == tea.MouseButtonLeft && ev.Action == tea.MouseActionRelease:
		if s.selecting && s.hasAnchor {
			s.killBuffer = s.SelectedText()
			if s.OnPrimaryCopy != nil {
				s.OnPrimaryCopy(s.killBuffer)
			}
		}
		s.selecting = false

	case ev.Button == tea.MouseButtonWheelUp:
		s.scrollUp(3)
		if s.selecting {
			s.dragTo(ev.X, ev.Y)
		}

	case ev.Button == tea.MouseButtonWheelDown:
		s.scrollDown(3)
		if s.selecting {
			s.dragTo(ev.X, ev.Y)
		}

	case ev.Button == tea.MouseButtonMiddle && ev.Action == tea.MouseActionPress:
		s.cursor = s.mouseToPosition(ev.X, ev.Y)
		s.clearSelection()
		s.updateDesiredCol()
		s.yank()
	}
}

func (s *Surface) dragTo(x, y int) {
	if !s.hasAnchor {
		s.anchor = s.cursor
	}
	s.cursor = s.mouseToPosition(x, y)
	s.hasAnchor = s.anchor != s.cursor
	s.updateDesiredCol()
}

func (s *Surface) handleKey(msg tea.KeyMsg) {
	key := msg.String()
	if msg.Paste {
		s.insertText(normalizeNewlines(string(msg.Runes)))
		return
	}

	switch key {
	case "enter":
		s.insertText("\n")
	case "backspace":
		s.deleteCharBackward()
	case "delete":
		s.deleteCharForward()

	case "up":
		s.move(false, s.moveUp)
	case "down":
		s.move(false, s.moveDown)
	case "left":
		s.move(false, s.moveLeft)
	case "right":
		s.move(false, s.moveRight)
	case "home", "ctrl+a":
		s.move(false, s.moveToLineStart)
	case "end", "ctrl+e":
		s.move(false, s.moveToLineEnd)
	case "ctrl+left":
		s.move(false, s.jumpWordBackward)
	case "ctrl+right":
		s.move(false, s.jumpWordForward)
	case "pgup":
		s.move(false, s.pageUp)
	case "pgdown":
		s.move(false, s.pageDown)
	case "ctrl+home":
		s.move(false, s.moveToTop)
	case "ctrl+end":
		s.move(false, s.moveToBottom)
	case "esc":
		s.clearSelection()

	case "shift+up":
		s.move(true, s.moveUp)
	case "shift+down":
		s.move(true, s.moveDown)
	case "shift+left":
		s.move(true, s.moveLeft)
	case "shift+right":
		s.move(true, s.moveRight)
	case "shift+home":
		s.move(true, s.moveToLineStart)
	case "shift+end":
		s.move(true, s.moveToLineEnd)
	case "ctrl+shift+left":
		s.move(true, s.jumpWordBackward)
	case "ctrl+shift+right":
		s.move(true, s.jumpWordForward)
	case "ctrl+shift+home":
		s.move(true, s.moveToTop)
	case "ctrl+shift+end":
		s.move(true, s.moveToBottom)

	case "ctrl+u":
		s.clearSelection()
		s.killToLineStart()
	case "ctrl+k":
		s.clearSelection()
		s.killToLineEnd()
	case "ctrl+w", "alt+backspace":
		s.deleteWordBackward()
	case "ctrl+y":
		s.yank()

	default:
		if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) == 0 {
			return
		}
		s.insertText(normalizeNewlines(string(msg.Runes)))
	}
}

// move runs a caret motion. With extend the anchor stays put, otherwise any
// selection is dropped.
func (s *Surface) move(extend bool, motion func()) {
	if extend && !s.hasAnchor {
		s.anchor = s.cursor
		s.hasAnchor = true
	}
	if !extend {
		s.hasAnchor = false
	}
	motion()
	if s.hasAnchor && s.anchor == s.cursor {
		s.hasAnchor = false
	}
	s.history.seal()
	s.ensureCursorVisible()
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func (s *Surface) moveVisualLineUp(p Position) Position {
	width := s.width
	if width <= 0 {
		width = 80
	}
	if wrap := p.Column / width; wrap > 0 {
		return Position{Line: p.Line, Column: min((wrap-1)*width+s.desiredCol, len(s.lines[p.Line]))}
	}
	if p.Line == 0 {
		return Position{}
	}
	prev := s.lines[p.Line-1]
	lastWrap := s.countVisualLines(prev) - 1
	return Position{Line: p.Line - 1, Column: min(lastWrap*width+s.desiredCol, len(prev))}
}

func (s *Surface) moveVisualLineDown(p Position) Position {
	width := s.width
	if width <= 0 {
		width = 80
	}
	line := s.lines[p.Line]
	if wrap := p.Column / width; wrap < s.countVisualLines(line)-1 {
		return Position{Line: p.Line, Column: min((wrap+1)*width+s.desiredCol, len(line))}
	}
	if p.Line == len(s.lines)-1 {
		return Position{Line: p.Line, Column: len(line)}
	}
	return Position{Line: p.Line + 1, Column: min(s.desiredCol, len(s.lines[p.Line+1]))}
}

// settleDesiredCol resets desiredCol when a vertical move was clamped to a
// shorter line's end.
func (s *Surface) settleDesiredCol() {
	if s.width > 0 && s.cursor.Column%s.width != s.desiredCol && s.cursor.Column == len(s.lines[s.cursor.Line]) {
		s.updateDesiredCol()
	}
}

func (s *Surface) moveUp() {
	s.cursor = s.moveVisualLineUp(s.cursor)
	s.settleDesiredCol()
}

func (s *Surface) moveDown() {
	s.cursor = s.moveVisualLineDown(s.cursor)
	s.settleDesiredCol()
}

func (s *Surface) moveLeft() {
	switch {
	case s.cursor.Column > 0:
		s.cursor.Column--
	case s.cursor.Line > 0:
		s.cursor.Line--
		s.cursor.Column = len(s.lines[s.cursor.Line])
	}
	s.updateDesiredCol()
}

func (s *Surface) moveRight() {
	switch {
	case s.cursor.Column < len(s.lines[s.cursor.Line]):
		s.cursor.Column++
	case s.cursor.Line < len(s.lines)-1:
		s.cursor = Position{Line: s.cursor.Line + 1}
	}
	s.updateDesiredCol()
}

func (s *Surface) moveToLineStart() {
	s.cursor.Column = 0
	s.desiredCol = 0
}

func (s *Surface) moveToLineEnd() {
	s.cursor.Column = len(s.lines[s.cursor.Line])
	s.updateDesiredCol()
}

func (s *Surface) jumpWordForward() {
	line := s.lines[s.cursor.Line]
	col := s.cursor.Column
	for col < len(line) && isWordChar(line[col]) {
		col++
	}
	for col < len(line) && !isWordChar(line[col]) {
		col++
	}
	s.cursor.Column = col
	if col >= len(line) && s.cursor.Line < len(s.lines)-1 {
		s.cursor = Position{Line: s.cursor.Line + 1}
	}
	s.updateDesiredCol()
}

func (s *Surface) jumpWordBackward() {
	if s.cursor.Column == 0 {
		if s.cursor.Line > 0 {
			s.cursor.Line--
			s.cursor.Column = len(s.lines[s.cursor.Line])
		}
		s.updateDesiredCol()
		return
	}
	line := s.lines[s.cursor.Line]
	col := s.cursor.Column - 1
	for col > 0 && !isWordChar(line[col]) {
		col--
	}
	for col > 0 && isWordChar(line[col-1]) {
		col--
	}
	s.cursor.Column = col
	s.updateDesiredCol()
}

func (s *Surface) pageUp() {
	s.scrollUp(s.height)
	for range s.height {
		next := s.moveVisualLineUp(s.cursor)
		if next == s.cursor {
			break
		}
		s.cursor = next
	}
}

func (s *Surface) pageDown() {
	s.scrollDown(s.height)
	for range s.height {
		next := s.moveVisualLineDown(s.cursor)
		if next == s.cursor {
			break
		}
		s.cursor = next
	}
}

func (s *Surface) moveToTop() {
	s.cursor = Position{}
	s.desiredCol = 0
}

func (s *Surface) moveToBottom() {
	last := len(s.lines) - 1
	s.cursor = Position{Line: last, Column: len(s.lines[last])}
	s.updateDesiredCol()
}

func (s *Surface) scrollUp(n int) {
	s.viewportRow = max(s.viewportRow-n, 0)
}

func (s *Surface) scrollDown(n int) {
	s.viewportRow = min(s.viewportRow+n, max(s.totalVisualLines()-s.height, 0))
}
