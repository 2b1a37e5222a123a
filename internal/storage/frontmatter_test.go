package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subbaan/notes/internal/note"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		tags    []string
		url     string
		content string
	}{
		{
			name:    "no header",
			in:      "just text\n",
			content: "just text\n",
		},
		{
			name:    "header",
			in:      "---\nsystem_tags: [pinned]\npublish_url: https://example.com/n\n---\nbody",
			tags:    []string{note.TagPinned},
			url:     "https://example.com/n",
			content: "body",
		},
		{
			name:    "legacy favorite",
			in:      "favorite: true\nbody",
			tags:    []string{note.TagPinned},
			content: "body",
		},
		{
			name:    "horizontal rule is content",
			in:      "---\nnot: a header\n---\nbody",
			content: "---\nnot: a header\n---\nbody",
		},
		{
			name:    "unterminated",
			in:      "---\nsystem_tags: [pinned]\nbody",
			content: "---\nsystem_tags: [pinned]\nbody",
		},
		{
			name: "closing delimiter at eof",
			in:   "---\nsystem_tags: [markdown]\n---",
			tags: []string{note.TagMarkdown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, content := decode([]byte(tt.in))
			assert.Equal(t, tt.tags, fm.SystemTags)
			assert.Equal(t, tt.url, fm.PublishURL)
			assert.Equal(t, tt.content, content)
		})
	}
}

func TestEncodeWithoutMetadataIsContentOnly(t *testing.T) {
	data, err := encode(note.Note{Content: "plain"})
	require.NoError(t, err)
	assert.Equal(t, "plain", string(data))
}

func TestEncodeDecodeKeepsMetadata(t *testing.T) {
	created := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)
	n := note.Note{
		Content:      "- [ ] task\n",
		SystemTags:   []string{note.TagMarkdown, note.TagPinned},
		Tags:         []string{"work"},
		CreationDate: created,
	}

	data, err := encode(n)
	require.NoError(t, err)
	fm, content := decode(data)

	assert.Equal(t, n.Content, content)
	assert.Equal(t, n.SystemTags, fm.SystemTags)
	assert.Equal(t, n.Tags, fm.Tags)
	assert.True(t, created.Equal(fm.Created))
}
