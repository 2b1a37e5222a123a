// Package editor is the note editor pane. It keeps the text surface in step
// with the note held by the store: it picks between a quick read-only preview
// and the full surface for large notes, decodes checkboxes for display, syncs
// the selection both ways, and continues lists on enter.
package editor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/subbaan/notes/internal/checkbox"
	"github.com/subbaan/notes/internal/note"
)

// Mode is how the open note is shown.
type Mode int

const (
	// ModeFull is the interactive surface.
	ModeFull Mode = iota
	// ModeFast is a read-only preview of the start of a large note.
	ModeFast
)

func (m Mode) String() string {
	if m == ModeFast {
		return "fast"
	}
	return "full"
}

// Thresholds decide when a note opens in fast mode and for how long.
type Thresholds struct {
	// Threshold is the content length in characters above which a note is
	// oversized.
	Threshold int
	// Delay is how long an oversized note stays in fast mode.
	Delay time.Duration
}

// DefaultThresholds returns 5000 characters and 120ms.
func DefaultThresholds() Thresholds {
	return Thresholds{Threshold: 5000, Delay: 120 * time.Millisecond}
}

// SelectMode returns ModeFast for oversized content opened less than Delay ago.
func SelectMode(contentLen int, elapsed time.Duration, th Thresholds) Mode {
	if contentLen > th.Threshold && elapsed < th.Delay {
		return ModeFast
	}
	return ModeFull
}

// LocalState is what the pane shows for the open note. It is reset whenever
// NoteID changes.
type LocalState struct {
	DisplayedContent string
	Mode             Mode
	NoteID           note.ID
	HoveringCheckbox bool
}

// Props is the slice of store state the pane reads.
type Props struct {
	Note              note.Note
	Selection         note.Selection
	KeyboardShortcuts bool
	Theme             string
	SearchQuery       string
	TaskRequests      uint64
	// Elapsed is the time since the note was opened.
	Elapsed time.Duration
}

// Derivation reports what DeriveLocalState changed.
type Derivation struct {
	NoteSwitched   bool
	ContentChanged bool
	// ArmPromotion asks the pane to start the fast mode timer.
	ArmPromotion bool
	// EnteredFull is set when the result is in full mode and prev was not
	// showing this note in full mode.
	EnteredFull bool
}

// DeriveLocalState computes the next local state from incoming props.
func DeriveLocalState(prev LocalState, p Props, th Thresholds) (LocalState, Derivation) {
	content := p.Note.Content
	length := p.Note.Len()

	if prev.NoteID != p.Note.ID {
		next := LocalState{NoteID: p.Note.ID, Mode: SelectMode(length, p.Elapsed, th)}
		next.DisplayedContent = display(content, p.Selection, next.Mode, th)
		return next, Derivation{
			NoteSwitched:   true,
			ContentChanged: true,
			ArmPromotion:   next.Mode == ModeFast,
			EnteredFull:    next.Mode == ModeFull,
		}
	}

	next := prev
	if prev.Mode == ModeFast {
		next.Mode = SelectMode(length, p.Elapsed, th)
	}
	var changed bool
	if next.Mode == ModeFast {
		shown := display(content, p.Selection, ModeFast, th)
		changed = shown != prev.DisplayedContent
		next.DisplayedContent = shown
	} else if prev.Mode == ModeFast || content != checkbox.Encode(prev.DisplayedContent) {
		changed = true
		next.DisplayedContent = checkbox.Decode(content)
	}
	return next, Derivation{
		ContentChanged: changed,
		EnteredFull:    prev.Mode == ModeFast && next.Mode == ModeFull,
	}
}

// Promote moves a fast mode state for the note in p into full mode. It
// reports false when the state belongs to another note or is already full.
func Promote(prev LocalState, p Props) (LocalState, bool) {
	if prev.NoteID != p.Note.ID || prev.Mode != ModeFast {
		return prev, false
	}
	prev.Mode = ModeFull
	prev.DisplayedContent = checkbox.Decode(p.Note.Content)
	return prev, true
}

// display decodes content and, in fast mode, cuts it Threshold characters
// past the selection end. Both are measured in decoded text.
func display(content string, sel note.Selection, mode Mode, th Thresholds) string {
	decoded := checkbox.Decode(content)
	if mode != ModeFast {
		return decoded
	}
	rs := []rune(decoded)
	if end := sel.Clamp(len(rs)).End + th.Threshold; end < len(rs) {
		return string(rs[:end])
	}
	return decoded
}

// promoteMsg fires when a fast mode timer runs out.
type promoteMsg struct {
	noteID note.ID
	gen    uint64
}

// promotion is the single pending fast mode timer of a pane.
type promotion struct {
	gen  uint64
	stop chan struct{}
}

// arm replaces any pending timer with a new one for id and returns the
// command that waits for it.
func (p *promotion) arm(id note.ID, delay time.Duration) tea.Cmd {
	p.cancel()
	p.gen++
	gen, stop := p.gen, make(chan struct{})
	p.stop = stop
	return func() tea.Msg {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return promoteMsg{noteID: id, gen: gen}
		case <-stop:
			return nil
		}
	}
}

// cancel stops the pending timer, if any.
func (p *promotion) cancel() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// current reports whether msg came from the timer armed last and not
// cancelled since.
func (p *promotion) current(msg promoteMsg) bool {
	return p.stop != nil && msg.gen == p.gen
}
