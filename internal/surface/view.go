package surface

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/subbaan/notes/internal/checkbox"
)

// Styles controls how the surface is drawn.
type Styles struct {
	Cursor      lipgloss.Style
	Selection   lipgloss.Style
	Placeholder lipgloss.Style
	Checkbox    lipgloss.Style
}

// DefaultStyles returns the stock styling.
func DefaultStyles() Styles {
	return Styles{
		Cursor:      lipgloss.NewStyle().Reverse(true),
		Selection:   lipgloss.NewStyle().Background(lipgloss.Color("69")).Foreground(lipgloss.Color("255")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Checkbox:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	}
}

type cellKind int

const (
	cellPlain cellKind = iota
	cellSelected
	cellCursor
	cellCheckbox
)

// View renders the visible rows. Checkbox sentinels are drawn as box glyphs.
func (s *Surface) View() string {
	return s.Render(DefaultStyles())
}

// Render is View with explicit styles.
func (s *Surface) Render(st Styles) string {
	if len(s.lines) == 1 && len(s.lines[0]) == 0 && !s.focused && s.placeholder != "" {
		return st.Placeholder.Render(s.placeholder)
	}

	sel := s.Selection()
	var selRange *Range
	if !sel.Collapsed() {
		r := sel.Range()
		selRange = &r
	}
	selected := func(p Position) bool {
		return selRange != nil && !p.Less(selRange.Start) && p.Less(selRange.End)
	}

	var sb strings.Builder
	rendered := 0
	newline := func() {
		if rendered > 0 {
			sb.WriteRune('\n')
		}
		rendered++
	}

	first, firstWrap := s.visualRowToLogical(s.viewportRow)
	for row := first; row < len(s.lines) && rendered < s.height; row++ {
		line := s.lines[row]
		wraps := s.countVisualLines(line)
		start := 0
		if row == first {
			start = firstWrap
		}
		for v := start; v < wraps && rendered < s.height; v++ {
			from := v * s.width
			to := min(from+s.width, len(line))
			if s.width <= 0 {
				from, to = 0, len(line)
			}
			newline()

			kinds := make([]cellKind, to-from)
			for i := range kinds {
				p := Position{Line: row, Column: from + i}
				switch {
				case s.focused && p == s.cursor:
					kinds[i] = cellCursor
				case selected(p):
					kinds[i] = cellSelected
				case checkbox.IsSentinel(line[from+i]):
					kinds[i] = cellCheckbox
				}
			}
			writeRuns(&sb, line[from:to], kinds, st)

			if v == wraps-1 {
				eol := Position{Line: row, Column: len(line)}
				switch {
				case s.focused && s.cursor == eol && (len(line) == 0 || s.width <= 0 || len(line)%s.width != 0):
					sb.WriteString(st.Cursor.Render(" "))
				case selected(eol):
					sb.WriteString(st.Selection.Render(" "))
				}
			}
		}

		// A caret at the end of a line that exactly fills its last row wraps
		// onto a row of its own.
		if s.focused && s.cursor.Line == row && s.cursor.Column == len(line) &&
			len(line) > 0 && s.width > 0 && len(line)%s.width == 0 && rendered < s.height {
			newline()
			sb.WriteString(st.Cursor.Render(" "))
		}
	}
	return sb.String()
}

// writeRuns writes a row, grouping neighbouring cells of the same kind into
// one styled run.
func writeRuns(sb *strings.Builder, seg []rune, kinds []cellKind, st Styles) {
	for i := 0; i < len(seg); {
		j := i + 1
		for j < len(seg) && kinds[j] == kinds[i] && kinds[i] != cellCursor {
			j++
		}
		text := glyphs(seg[i:j])
		switch kinds[i] {
		case cellCursor:
			sb.WriteString(st.Cursor.Render(text))
		case cellSelected:
			sb.WriteString(st.Selection.Render(text))
		case cellCheckbox:
			sb.WriteString(st.Checkbox.Render(text))
		default:
			sb.WriteString(text)
		}
		i = j
	}
}

func glyphs(rs []rune) string {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = checkbox.Glyph(r)
	}
	return string(out)
}
