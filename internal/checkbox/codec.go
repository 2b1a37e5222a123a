// Package checkbox translates between the persisted checkbox syntax ("[ ]",
// "[x]") and the private-use sentinel runes the editor works with.
package checkbox

import (
	"regexp"
	"strings"
)

const (
	// Unchecked is the sentinel for "[ ]".
	Unchecked rune = '\ue000'
	// Checked is the sentinel for "[x]".
	Checked rune = '\ue001'

	UncheckedToken = "[ ]"
	CheckedToken   = "[x]"
)

// A token only counts as a checkbox when it follows a line-leading list
// marker and is followed by blank space or the end of the line.
var (
	uncheckedRe = regexp.MustCompile(`(?m)^([ \t]*[-+*\x{2022}][ \t]+)\[ \]([ \t\r]|$)`)
	checkedRe   = regexp.MustCompile(`(?m)^([ \t]*[-+*\x{2022}][ \t]+)\[x\]([ \t\r]|$)`)

	encoder = strings.NewReplacer(
		string(Unchecked), UncheckedToken,
		string(Checked), CheckedToken,
	)
)

// Decode replaces checkbox tokens in list position with sentinel runes.
func Decode(text string) string {
	if !strings.Contains(text, "]") {
		return text
	}
	text = uncheckedRe.ReplaceAllString(text, "${1}"+string(Unchecked)+"${2}")
	return checkedRe.ReplaceAllString(text, "${1}"+string(Checked)+"${2}")
}

// Encode replaces sentinel runes with their bracket tokens.
func Encode(text string) string {
	if !strings.ContainsAny(text, string([]rune{Unchecked, Checked})) {
		return text
	}
	return encoder.Replace(text)
}

// IsSentinel reports whether r is one of the checkbox sentinels.
func IsSentinel(r rune) bool {
	return r == Unchecked || r == Checked
}

// Toggle flips a sentinel. Other runes are returned unchanged.
func Toggle(r rune) rune {
	switch r {
	case Unchecked:
		return Checked
	case Checked:
		return Unchecked
	default:
		return r
	}
}

// Glyph returns the rune drawn on screen for r. Sentinels live in the private
// use area and most terminal fonts have no glyph for them.
func Glyph(r rune) rune {
	switch r {
	case Unchecked:
		return '☐'
	case Checked:
		return '☑'
	default:
		return r
	}
}
