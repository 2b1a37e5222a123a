package editor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/subbaan/notes/internal/surface"
)

// listPrefixRe matches leading blank space and one or more list markers, each
// followed by blank space. Checkbox sentinels count as markers.
var listPrefixRe = regexp.MustCompile(`^[ \t]*(?:[-+*\x{2022}\x{E000}\x{E001}][ \t]+)+`)

// Continuation is the result of continuing a list onto a new line.
type Continuation struct {
	// Line is the new line that receives Prefix.
	Line   int
	Prefix string
	// Value is the full content with Prefix in place.
	Value string
	// Cursor is the position right after Prefix.
	Cursor surface.Position
}

// InferContinuation looks at a change and, when it was a bare newline typed
// at the end of a list item, returns the content with the item's marker
// repeated on the new line. A checked box is continued unchecked.
func InferContinuation(value string, change surface.Change) (Continuation, bool) {
	if change.IsUndoing || change.IsRedoing || change.IsFlush {
		return Continuation{}, false
	}

	newLine := -1
	for _, op := range change.Ops {
		if op.Range.Start.Line != op.Range.End.Line {
			continue
		}
		if strings.Count(op.Text, "\n") == 1 && strings.TrimSpace(op.Text) == "" {
			newLine = op.Range.Start.Line + 1
			break
		}
	}
	if newLine < 1 {
		return Continuation{}, false
	}

	lines := strings.Split(value, "\n")
	if newLine >= len(lines) {
		return Continuation{}, false
	}
	prefix := listPrefixRe.FindString(lines[newLine-1])
	if prefix == "" {
		return Continuation{}, false
	}
	if strings.TrimSpace(lines[newLine]) != "" {
		return Continuation{}, false
	}

	// A new item starts open even when the one above is done.
	prefix = strings.ReplaceAll(prefix, "\ue001", "\ue000")
	lines[newLine] = prefix
	return Continuation{
		Line:   newLine,
		Prefix: prefix,
		Value:  strings.Join(lines, "\n"),
		Cursor: surface.Position{Line: newLine, Column: utf8.RuneCountInString(prefix)},
	}, true
}
