package surface

import "strings"

// PositionAt converts a rune offset into a position. Offsets past the end
// land on the last character; negative offsets fail.
func (s *Surface) PositionAt(offset int) (Position, bool) {
	if s == nil || offset < 0 {
		return Position{}, false
	}
	count := 0
	for row, line := range s.lines {
		if count+len(line) >= offset {
			return Position{Line: row, Column: offset - count}, true
		}
		count += len(line) + 1
	}
	last := len(s.lines) - 1
	return Position{Line: last, Column: len(s.lines[last])}, true
}

// OffsetAt converts a position into a rune offset. The column is clamped to
// the line; a line outside the buffer fails.
func (s *Surface) OffsetAt(p Position) (int, bool) {
	if s == nil || p.Line < 0 || p.Line >= len(s.lines) {
		return 0, false
	}
	return s.offsetOf(s.clampPosition(p)), true
}

// Len returns the number of runes in the buffer, counting newlines.
func (s *Surface) Len() int {
	n := len(s.lines) - 1
	for _, line := range s.lines {
		n += len(line)
	}
	return n
}

func (s *Surface) offsetOf(p Position) int {
	off := 0
	for i := 0; i < p.Line && i < len(s.lines); i++ {
		off += len(s.lines[i]) + 1
	}
	return off + p.Column
}

func (s *Surface) clampPosition(p Position) Position {
	if p.Line >= len(s.lines) {
		p.Line = len(s.lines) - 1
		p.Column = len(s.lines[p.Line])
	}
	if p.Line < 0 {
		p = Position{}
	}
	p.Column = min(max(p.Column, 0), len(s.lines[p.Line]))
	return p
}

func (s *Surface) textBetween(start, end Position) string {
	if start.Line == end.Line {
		return string(s.lines[start.Line][start.Column:end.Column])
	}
	var sb strings.Builder
	sb.WriteString(string(s.lines[start.Line][start.Column:]))
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteRune('\n')
		sb.WriteString(string(s.lines[i]))
	}
	sb.WriteRune('\n')
	sb.WriteString(string(s.lines[end.Line][:end.Column]))
	return sb.String()
}

// countVisualLines returns how many rows a logical line wraps onto. Empty
// lines still take one row.
func (s *Surface) countVisualLines(line []rune) int {
	if s.width <= 0 || len(line) == 0 {
		return 1
	}
	return (len(line) + s.width - 1) / s.width
}

func (s *Surface) logicalToVisualRow(line, col int) int {
	visual := 0
	for i := 0; i < line && i < len(s.lines); i++ {
		visual += s.countVisualLines(s.lines[i])
	}
	if s.width > 0 && col > 0 {
		visual += col / s.width
	}
	return visual
}

func (s *Surface) visualRowToLogical(visualRow int) (line int, wrap int) {
	if visualRow <= 0 {
		return 0, 0
	}
	visual := 0
	for i, l := range s.lines {
		vl := s.countVisualLines(l)
		if visual+vl > visualRow {
			return i, visualRow - visual
		}
		visual += vl
	}
	return len(s.lines) - 1, 0
}

func (s *Surface) totalVisualLines() int {
	total := 0
	for _, l := range s.lines {
		total += s.countVisualLines(l)
	}
	return total
}

func (s *Surface) ensureCursorVisible() {
	v := s.logicalToVisualRow(s.cursor.Line, s.cursor.Column)
	if v >= s.viewportRow+s.height {
		s.viewportRow = v - s.height + 1
	}
	if v < s.viewportRow {
		s.viewportRow = v
	}
}

func (s *Surface) updateDesiredCol() {
	if s.width > 0 {
		s.desiredCol = s.cursor.Column % s.width
	} else {
		s.desiredCol = s.cursor.Column
	}
}

// mouseToPosition maps terminal coordinates to a buffer position.
func (s *Surface) mouseToPosition(x, y int) Position {
	row := min(max(y-s.yOffset, 0), max(s.height-1, 0))
	line, wrap := s.visualRowToLogical(s.viewportRow + row)
	col := wrap*s.width + (x - s.xOffset)
	col = min(max(col, 0), len(s.lines[line]))
	return Position{Line: line, Column: col}
}
