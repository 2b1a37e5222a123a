package note

import (
	"fmt"
	"unicode/utf8"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// Direction is the orientation of a selection: which end the caret sits on.
type Direction int

const (
	// LTR places the caret at End.
	LTR Direction = iota
	// RTL places the caret at Start.
	RTL
)

func (d Direction) String() string {
	if d == RTL {
		return "RTL"
	}
	return "LTR"
}

// ParseDirection is the inverse of Direction.String. Unknown values map to LTR.
func ParseDirection(s string) Direction {
	if s == "RTL" {
		return RTL
	}
	return LTR
}

// Selection is a persisted cursor/selection range in rune offsets.
type Selection struct {
	Start     int
	End       int
	Direction Direction
}

func (s Selection) String() string {
	return fmt.Sprintf("[%d,%d %s]", s.Start, s.End, s.Direction)
}

// Collapsed reports whether the selection is a bare cursor.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Clamp forces both offsets into [0, length] and orders them so that
// Start <= End.
func (s Selection) Clamp(length int) Selection {
	s.Start = clamp(s.Start, 0, length)
	s.End = clamp(s.End, 0, length)
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	return s
}

// RebaseSelection maps sel, valid for oldContent, onto newContent so that the
// cursor stays next to the same surrounding text after an external edit.
func RebaseSelection(sel Selection, oldContent, newContent string) Selection {
	if oldContent == newContent {
		return sel.Clamp(utf8.RuneCountInString(newContent))
	}

	diffs := dmp.New().DiffMain(oldContent, newContent, false)
	sel.Start = xIndex(diffs, sel.Start)
	sel.End = xIndex(diffs, sel.End)
	return sel.Clamp(utf8.RuneCountInString(newContent))
}

// xIndex translates a rune offset in the diff's source text to the matching
// offset in its target text. An offset inside a deletion lands at the start
// of the deletion. It mirrors diffmatchpatch's DiffXIndex, which counts
// bytes instead of runes.
func xIndex(diffs []dmp.Diff, loc int) int {
	chars1, chars2 := 0, 0
	last1, last2 := 0, 0
	var hit *dmp.Diff
	for i := range diffs {
		n := utf8.RuneCountInString(diffs[i].Text)
		if diffs[i].Type != dmp.DiffInsert {
			chars1 += n
		}
		if diffs[i].Type != dmp.DiffDelete {
			chars2 += n
		}
		if chars1 > loc {
			hit = &diffs[i]
			break
		}
		last1, last2 = chars1, chars2
	}
	if hit != nil && hit.Type == dmp.DiffDelete {
		return last2
	}
	return last2 + (loc - last1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
