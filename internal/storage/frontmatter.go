package storage

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/subbaan/notes/internal/note"
)

const (
	delim = "---"
	// legacyPinned is the header older versions wrote at the top of pinned notes.
	legacyPinned = "favorite: true\n"
)

// frontMatter is the YAML header stored above a note's content.
type frontMatter struct {
	SystemTags []string  `yaml:"system_tags,omitempty"`
	PublishURL string    `yaml:"publish_url,omitempty"`
	Created    time.Time `yaml:"created,omitempty"`
	Tags       []string  `yaml:"tags,omitempty"`
}

var knownKeys = []string{"system_tags", "publish_url", "created", "tags"}

// decode splits raw file bytes into front matter and content. A header only
// counts when it is valid YAML naming at least one known key, so content
// that merely starts with a horizontal rule is left alone.
func decode(data []byte) (frontMatter, string) {
	var fm frontMatter
	text := string(data)

	if strings.HasPrefix(text, legacyPinned) {
		fm.SystemTags = []string{note.TagPinned}
		return fm, strings.TrimPrefix(text, legacyPinned)
	}
	if !bytes.HasPrefix(data, []byte(delim+"\n")) {
		return fm, text
	}

	rest := text[len(delim)+1:]
	var block, body string
	switch {
	case strings.HasPrefix(rest, delim+"\n"):
		block, body = "", rest[len(delim)+1:]
	default:
		idx := strings.Index(rest, "\n"+delim+"\n")
		if idx < 0 {
			if !strings.HasSuffix(rest, "\n"+delim) {
				return frontMatter{}, text
			}
			idx = len(rest) - len(delim) - 1
			block, body = rest[:idx], ""
		} else {
			block, body = rest[:idx], rest[idx+len(delim)+2:]
		}
	}

	var keys map[string]any
	if err := yaml.Unmarshal([]byte(block), &keys); err != nil {
		return frontMatter{}, text
	}
	if !slices.ContainsFunc(knownKeys, func(k string) bool { _, ok := keys[k]; return ok }) {
		return frontMatter{}, text
	}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return frontMatter{}, text
	}
	return fm, body
}

// encode renders a note back to file bytes. The header is written only when
// the note carries metadata.
func encode(n note.Note) ([]byte, error) {
	fm := frontMatter{
		SystemTags: n.SystemTags,
		PublishURL: n.PublishURL,
		Tags:       n.Tags,
	}
	if len(fm.SystemTags) == 0 && fm.PublishURL == "" && len(fm.Tags) == 0 {
		return []byte(n.Content), nil
	}
	if !n.CreationDate.IsZero() {
		fm.Created = n.CreationDate.UTC().Truncate(time.Second)
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(header)
	buf.WriteString(delim + "\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}
