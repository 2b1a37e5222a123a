package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subbaan/notes/internal/surface"
)

// typeInto loads value into a focused surface with the caret at the end of
// line, sends msg and returns the change it produced.
func typeInto(t *testing.T, value string, line int, msg tea.KeyMsg) surface.Change {
	t.Helper()
	s := surface.New()
	s.SetSize(80, 10)
	s.Focus()
	s.SetValue(value)
	end := surface.Position{Line: line, Column: len([]rune(s.Line(line)))}
	s.SetSelection(surface.Selection{Anchor: end, Active: end}, surface.ReasonProgrammatic)

	var changes []surface.Change
	s.OnDidChangeContent(func(c surface.Change) { changes = append(changes, c) })
	s.Update(msg)
	require.Len(t, changes, 1)
	return changes[0]
}

func TestInferContinuation(t *testing.T) {
	enter := tea.KeyMsg{Type: tea.KeyEnter}
	tests := []struct {
		name       string
		value      string
		line       int
		msg        tea.KeyMsg
		wantOK     bool
		wantValue  string
		wantCursor surface.Position
	}{
		{
			name:       "dash item",
			value:      "- item",
			msg:        enter,
			wantOK:     true,
			wantValue:  "- item\n- ",
			wantCursor: surface.Position{Line: 1, Column: 2},
		},
		{
			name:       "checked task continues with an open box",
			value:      "notes\n  * \ue001 done",
			line:       1,
			msg:        enter,
			wantOK:     true,
			wantValue:  "notes\n  * \ue001 done\n  * \ue000 ",
			wantCursor: surface.Position{Line: 2, Column: 6},
		},
		{
			name:       "bullet glyph",
			value:      "• point",
			msg:        enter,
			wantOK:     true,
			wantValue:  "• point\n• ",
			wantCursor: surface.Position{Line: 1, Column: 2},
		},
		{
			name:  "no marker",
			value: "item",
			msg:   enter,
		},
		{
			name:  "marker without space",
			value: "-item",
			msg:   enter,
		},
		{
			name:  "multi-line paste",
			value: "- item",
			msg:   tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\nb\n"), Paste: true},
		},
		{
			name:  "plain typing",
			value: "- item",
			msg:   tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := typeInto(t, tt.value, tt.line, tt.msg)

			got, ok := InferContinuation(change.Value, change)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantValue, got.Value)
				assert.Equal(t, tt.wantCursor, got.Cursor)
			}
		})
	}
}

func TestInferContinuationNeedsBlankNewLine(t *testing.T) {
	change := surface.Change{
		Value: "- it\nem",
		Ops: []surface.Op{{
			Range: surface.Range{Start: surface.Position{Column: 4}, End: surface.Position{Column: 4}},
			Text:  "\n",
		}},
	}

	_, ok := InferContinuation(change.Value, change)

	assert.False(t, ok)
}

func TestInferContinuationIgnoresHistoryAndFlush(t *testing.T) {
	op := surface.Op{
		Range: surface.Range{Start: surface.Position{Column: 6}, End: surface.Position{Column: 6}},
		Text:  "\n",
	}
	for _, c := range []surface.Change{
		{Value: "- item\n", Ops: []surface.Op{op}, IsUndoing: true},
		{Value: "- item\n", Ops: []surface.Op{op}, IsRedoing: true},
		{Value: "- item\n", IsFlush: true},
	} {
		_, ok := InferContinuation(c.Value, c)
		assert.False(t, ok)
	}

	_, ok := InferContinuation("- item\n", surface.Change{Value: "- item\n", Ops: []surface.Op{op}})
	assert.True(t, ok)
}
