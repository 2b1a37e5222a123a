// Package note defines the note and selection types shared by the store, the
// storage layer and the editor.
package note

import (
	"regexp"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/subbaan/notes/internal/checkbox"
)

// ID identifies a note. For file-backed notes it is the path relative to the
// notes directory.
type ID string

// System tags understood by the editor and the info panel.
const (
	TagMarkdown  = "markdown"
	TagPinned    = "pinned"
	TagPublished = "published"
)

// Note is a single note as held by the store. Tags holds the tags declared in
// the note's header; AllTags adds the #hashtags found in the content.
type Note struct {
	ID               ID
	Title            string
	Content          string
	SystemTags       []string
	Tags             []string
	PublishURL       string
	Path             string
	CreationDate     time.Time
	ModificationDate time.Time
}

// HasSystemTag reports whether tag is set on the note.
func (n Note) HasSystemTag(tag string) bool {
	return slices.Contains(n.SystemTags, tag)
}

// WithSystemTag returns a copy of n with tag added (on=true) or removed.
func (n Note) WithSystemTag(tag string, on bool) Note {
	tags := make([]string, 0, len(n.SystemTags)+1)
	for _, t := range n.SystemTags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	if on {
		tags = append(tags, tag)
		slices.Sort(tags)
	}
	n.SystemTags = tags
	return n
}

// Len returns the stored content length in characters (runes).
func (n Note) Len() int {
	return utf8.RuneCountInString(n.Content)
}

// Displayed returns the content as the editor shows it, with checkbox tokens
// decoded. Selection offsets index into this text.
func (n Note) Displayed() string {
	return checkbox.Decode(n.Content)
}

// DisplayLen is the length of Displayed in runes.
func (n Note) DisplayLen() int {
	return utf8.RuneCountInString(n.Displayed())
}

var hashtagRe = regexp.MustCompile(`(^|\s)#(\w+)`)

// AllTags returns declared tags followed by #hashtags from the content,
// without duplicates.
func (n Note) AllTags() []string {
	var out []string
	seen := map[string]bool{}
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range n.Tags {
		add(t)
	}
	for _, m := range hashtagRe.FindAllStringSubmatch(n.Content, -1) {
		add(m[2])
	}
	return out
}
