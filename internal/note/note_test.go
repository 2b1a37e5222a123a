package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionClamp(t *testing.T) {
	tests := []struct {
		name   string
		in     Selection
		length int
		want   Selection
	}{
		{"in range", Selection{Start: 1, End: 3}, 5, Selection{Start: 1, End: 3}},
		{"past end", Selection{Start: 4, End: 9}, 5, Selection{Start: 4, End: 5}},
		{"negative", Selection{Start: -2, End: 1}, 5, Selection{Start: 0, End: 1}},
		{"swapped", Selection{Start: 4, End: 2, Direction: RTL}, 5, Selection{Start: 2, End: 4, Direction: RTL}},
		{"empty note", Selection{Start: 3, End: 3}, 0, Selection{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp(tt.length))
		})
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	assert.Equal(t, RTL, ParseDirection(RTL.String()))
	assert.Equal(t, LTR, ParseDirection(LTR.String()))
	assert.Equal(t, LTR, ParseDirection("sideways"))
}

func TestRebaseSelection(t *testing.T) {
	tests := []struct {
		name     string
		sel      Selection
		old, new string
		want     Selection
	}{
		{
			name: "unchanged",
			sel:  Selection{Start: 2, End: 4},
			old:  "hello", new: "hello",
			want: Selection{Start: 2, End: 4},
		},
		{
			name: "insert before cursor",
			sel:  Selection{Start: 6, End: 6},
			old:  "hello world", new: "hey hello world",
			want: Selection{Start: 10, End: 10},
		},
		{
			name: "cursor inside deleted text",
			sel:  Selection{Start: 2, End: 2},
			old:  "abc def", new: "def",
			want: Selection{Start: 0, End: 0},
		},
		{
			name: "counts runes",
			sel:  Selection{Start: 5, End: 5, Direction: RTL},
			old:  "héllo", new: "XXhéllo",
			want: Selection{Start: 7, End: 7, Direction: RTL},
		},
		{
			name: "clamped to shorter content",
			sel:  Selection{Start: 0, End: 20},
			old:  "twenty characters!!!", new: "",
			want: Selection{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RebaseSelection(tt.sel, tt.old, tt.new))
		})
	}
}

func TestWithSystemTag(t *testing.T) {
	n := Note{SystemTags: []string{TagPinned}}

	n = n.WithSystemTag(TagMarkdown, true)
	assert.Equal(t, []string{TagMarkdown, TagPinned}, n.SystemTags)
	assert.True(t, n.HasSystemTag(TagMarkdown))

	n = n.WithSystemTag(TagMarkdown, true)
	assert.Equal(t, []string{TagMarkdown, TagPinned}, n.SystemTags)

	n = n.WithSystemTag(TagPinned, false)
	assert.Equal(t, []string{TagMarkdown}, n.SystemTags)
	assert.False(t, n.HasSystemTag(TagPinned))
}

func TestLenCountsRunes(t *testing.T) {
	assert.Equal(t, 5, Note{Content: "héllo"}.Len())

	n := Note{Content: "- [ ] a"}
	assert.Equal(t, 7, n.Len())
	assert.Equal(t, 5, n.DisplayLen())
}

func TestAllTags(t *testing.T) {
	n := Note{
		Tags:    []string{"work", "ideas"},
		Content: "#ideas for #later\nnot#atag and #work",
	}
	assert.Equal(t, []string{"work", "ideas", "later"}, n.AllTags())
}
