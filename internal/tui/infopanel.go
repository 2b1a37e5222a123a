package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/subbaan/notes/internal/checkbox"
	"github.com/subbaan/notes/internal/note"
)

const infoWidth = 30

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// infoView renders the details of n for the side panel.
func infoView(n note.Note, st Styles, now time.Time, focused bool) string {
	width := infoWidth - 4
	text := checkbox.Decode(n.Content)

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(wordwrap.String(st.Label.Render(label+":")+" "+value, width))
		b.WriteString("\n")
	}

	row("Title", n.Title)
	row("Pinned", onOff(n.HasSystemTag(note.TagPinned)))
	row("Markdown", onOff(n.HasSystemTag(note.TagMarkdown)))
	if n.PublishURL != "" {
		row("Published", n.PublishURL)
	}
	if !n.ModificationDate.IsZero() {
		row("Modified", humanize.RelTime(n.ModificationDate, now, "ago", "from now"))
	}
	if !n.CreationDate.IsZero() {
		row("Created", n.CreationDate.Format("2006-01-02 15:04"))
	}
	row("Words", humanize.Comma(int64(len(strings.Fields(text)))))
	row("Characters", humanize.Comma(int64(n.DisplayLen())))
	if tags := n.AllTags(); len(tags) > 0 {
		row("Tags", "#"+strings.Join(tags, " #"))
	}

	if focused {
		b.WriteString("\n")
		b.WriteString(st.Muted.Render(wordwrap.String("p: pin  m: markdown  y: copy url  tab: back", width)))
	}

	border := st.Border.Width(infoWidth - 2)
	if focused {
		border = border.BorderForeground(st.Selected.GetForeground())
	}
	return border.Render(strings.TrimRight(b.String(), "\n"))
}

func countLabel(n note.Note) string {
	words := len(strings.Fields(checkbox.Decode(n.Content)))
	return fmt.Sprintf("%s words", humanize.Comma(int64(words)))
}
