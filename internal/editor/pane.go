package editor

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/subbaan/notes/internal/checkbox"
	"github.com/subbaan/notes/internal/clipboard"
	"github.com/subbaan/notes/internal/keybus"
	"github.com/subbaan/notes/internal/note"
	"github.com/subbaan/notes/internal/store"
	"github.com/subbaan/notes/internal/surface"
)

// Dispatcher accepts store actions.
type Dispatcher interface {
	Dispatch(store.Action)
}

// Options configure a Pane.
type Options struct {
	Thresholds Thresholds
	// InsertTask is the chord that requests a new checkbox.
	InsertTask key.Binding
	// Copy is the chord that copies the selection with checkboxes encoded.
	Copy      key.Binding
	Clipboard clipboard.Writer
	Bus       *keybus.Bus
	Styles    surface.Styles
	Log       zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default chords and thresholds with a system
// clipboard.
func DefaultOptions(bus *keybus.Bus) Options {
	return Options{
		Thresholds: DefaultThresholds(),
		InsertTask: key.NewBinding(key.WithKeys("alt+C"), key.WithHelp("alt+C", "insert task")),
		Copy:       key.NewBinding(key.WithKeys("alt+w"), key.WithHelp("alt+w", "copy")),
		Clipboard:  clipboard.System{},
		Bus:        bus,
		Styles:     surface.DefaultStyles(),
		Log:        zerolog.Nop(),
	}
}

// placeCursorMsg moves the caret after a list continuation.
type placeCursorMsg struct {
	noteID note.ID
	pos    surface.Position
}

// Pane shows the open note. It is mounted while a note is open and unmounted
// when the editor closes.
type Pane struct {
	dispatch Dispatcher
	opts     Options

	surface *surface.Surface
	preview viewport.Model

	local    LocalState
	props    Props
	openedAt time.Time
	promo    promotion

	mounted   bool
	reveal    bool
	suppress  bool
	lastTasks uint64
	pending   []tea.Cmd
	disposers []func()

	width, height int
}

// New returns an unmounted pane.
func New(d Dispatcher, opts Options) *Pane {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Bus == nil {
		opts.Bus = &keybus.Bus{}
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	return &Pane{dispatch: d, opts: opts, preview: viewport.New(0, 0)}
}

// Mount creates the surface and registers the pane's listeners and key
// handler.
func (p *Pane) Mount() {
	if p.mounted {
		return
	}
	p.mounted = true
	p.surface = surface.New()
	p.surface.SetSize(p.width, p.height)
	p.surface.OnPrimaryCopy = p.copyPrimary
	p.disposers = append(p.disposers,
		p.surface.OnDidChangeContent(p.onChange),
		p.surface.OnDidChangeSelection(p.onSelection),
		p.surface.OnMouse(p.onMouse),
		p.opts.Bus.Subscribe(p.handleKey),
	)
	p.opts.Log.Debug().Msg("editor mounted")
}

// Unmount drops every listener, stops the fast mode timer and forgets the
// open note.
func (p *Pane) Unmount() {
	if !p.mounted {
		return
	}
	for _, dispose := range p.disposers {
		dispose()
	}
	p.disposers = nil
	p.promo.cancel()
	p.mounted = false
	p.surface = nil
	p.local = LocalState{}
	p.props = Props{}
	p.pending = nil
	p.opts.Log.Debug().Msg("editor unmounted")
}

// Mounted reports whether the pane is mounted.
func (p *Pane) Mounted() bool { return p.mounted }

// Local returns the pane's local state.
func (p *Pane) Local() LocalState { return p.local }

// Surface returns the live surface, nil while unmounted.
func (p *Pane) Surface() *surface.Surface { return p.surface }

// SetSize resizes the surface and the preview.
func (p *Pane) SetSize(width, height int) {
	p.width, p.height = width, height
	p.preview.Width, p.preview.Height = width, height
	if p.surface != nil {
		p.surface.SetSize(width, height)
	}
}

// SetOrigin tells the surface where it sits on screen for mouse mapping.
func (p *Pane) SetOrigin(x, y int) {
	if p.surface != nil {
		p.surface.SetOrigin(x, y)
	}
}

// SetProps feeds the latest store state for the open note to the pane.
func (p *Pane) SetProps(in Props) tea.Cmd {
	if !p.mounted {
		return nil
	}
	now := p.opts.Now()
	if in.Note.ID != p.local.NoteID {
		p.openedAt = now
	}
	in.Elapsed = now.Sub(p.openedAt)

	next, d := DeriveLocalState(p.local, in, p.opts.Thresholds)
	selChanged := in.Selection != p.props.Selection
	p.local, p.props = next, in

	var cmds []tea.Cmd
	if d.NoteSwitched {
		p.promo.cancel()
		p.lastTasks = in.TaskRequests
	}
	if d.ContentChanged {
		p.show()
	}
	if d.ArmPromotion {
		p.opts.Log.Debug().
			Str("note", string(next.NoteID)).
			Int("len", in.Note.Len()).
			Dur("delay", p.opts.Thresholds.Delay).
			Msg("fast mode, promotion armed")
		cmds = append(cmds, p.promo.arm(next.NoteID, p.opts.Thresholds.Delay))
	}
	if d.EnteredFull {
		p.promo.cancel()
		p.reveal = true
	}
	if next.Mode == ModeFull {
		if p.reveal || d.ContentChanged || selChanged {
			p.applyStoreSelection(in.Selection, p.reveal)
			p.reveal = false
		}
		if in.TaskRequests != p.lastTasks {
			p.lastTasks = in.TaskRequests
			p.insertTask()
		}
	}
	return tea.Batch(append(cmds, p.flush())...)
}

// Update handles timer messages and, in full mode, forwards input to the
// surface.
func (p *Pane) Update(msg tea.Msg) tea.Cmd {
	if !p.mounted {
		return nil
	}
	switch msg := msg.(type) {
	case promoteMsg:
		p.promote(msg)
	case placeCursorMsg:
		if p.surface != nil && msg.noteID == p.local.NoteID && p.local.Mode == ModeFull {
			p.surface.SetSelection(surface.Selection{Anchor: msg.pos, Active: msg.pos}, surface.ReasonKeyboard)
		}
	case tea.KeyMsg, tea.MouseMsg:
		if p.local.Mode == ModeFull && p.surface != nil {
			if cmd := p.surface.Update(msg); cmd != nil {
				p.pending = append(p.pending, cmd)
			}
		}
	}
	return p.flush()
}

// View renders the surface, or the preview in fast mode.
func (p *Pane) View() string {
	if !p.mounted {
		return ""
	}
	if p.local.Mode == ModeFast {
		return p.preview.View()
	}
	return p.surface.Render(p.opts.Styles)
}

func (p *Pane) promote(msg promoteMsg) {
	if !p.promo.current(msg) {
		p.opts.Log.Debug().Str("note", string(msg.noteID)).Msg("stale promotion dropped")
		return
	}
	p.promo.stop = nil
	next, ok := Promote(p.local, p.props)
	if !ok {
		return
	}
	p.local = next
	p.opts.Log.Debug().Str("note", string(next.NoteID)).Msg("promoted to full mode")
	p.show()
	p.applyStoreSelection(p.props.Selection, true)
}

// show puts DisplayedContent on screen without treating it as an edit.
func (p *Pane) show() {
	if p.local.Mode == ModeFast {
		p.preview.SetContent(strings.Map(checkbox.Glyph, p.local.DisplayedContent))
		p.preview.SetYOffset(lineOf(p.local.DisplayedContent, p.props.Selection.End))
		return
	}
	p.suppress = true
	p.surface.SetValue(p.local.DisplayedContent)
	p.suppress = false
}

// onChange runs list continuation on user edits and sends the result to the
// store.
func (p *Pane) onChange(c surface.Change) {
	if p.suppress || c.IsFlush || !p.mounted || p.surface == nil || p.local.Mode != ModeFull {
		return
	}
	value := c.Value
	if cont, ok := InferContinuation(value, c); ok {
		p.suppress = true
		p.surface.ReplaceLine(cont.Line, cont.Prefix)
		p.suppress = false
		value = cont.Value
		noteID, pos := p.local.NoteID, cont.Cursor
		p.pending = append(p.pending, func() tea.Msg {
			return placeCursorMsg{noteID: noteID, pos: pos}
		})
		p.opts.Log.Debug().Int("line", cont.Line).Str("prefix", cont.Prefix).Msg("list continued")
	}
	p.local.DisplayedContent = value
	p.dispatch.Dispatch(store.EditNote{
		NoteID:  p.local.NoteID,
		Content: checkbox.Encode(value),
		At:      p.opts.Now(),
	})
}

// onMouse tracks hovering over checkboxes and toggles them on click.
func (p *Pane) onMouse(ev surface.MouseEvent) bool {
	if !p.mounted || p.surface == nil {
		return false
	}
	r, ok := p.surface.RuneAt(ev.Offset)
	onBox := ok && checkbox.IsSentinel(r)
	switch ev.Kind {
	case surface.MouseMove:
		p.local.HoveringCheckbox = onBox
		return false
	case surface.MouseDown:
		if !onBox {
			return false
		}
		pos, ok := p.surface.PositionAt(ev.Offset)
		if !ok {
			return false
		}
		p.surface.ApplyEdit(surface.Range{
			Start: pos,
			End:   surface.Position{Line: pos.Line, Column: pos.Column + 1},
		}, string(checkbox.Toggle(r)))
		return true
	}
	return false
}

// handleKey intercepts the pane's chords before the focused widget sees them.
func (p *Pane) handleKey(msg tea.KeyMsg) bool {
	if !p.mounted {
		return false
	}
	switch {
	case key.Matches(msg, p.opts.InsertTask):
		if !p.props.KeyboardShortcuts {
			return false
		}
		p.dispatch.Dispatch(store.InsertTask{})
		return true
	case key.Matches(msg, p.opts.Copy):
		if p.surface == nil || p.local.NoteID == "" {
			return false
		}
		if p.local.Mode == ModeFast {
			// The surface is still empty; the stored content is already encoded.
			p.writeClipboard(p.props.Note.Content)
			return true
		}
		p.copy()
		return true
	}
	return false
}

// insertTask puts an unchecked checkbox after the caret line's list marker,
// adding a "- " marker when the line has none.
func (p *Pane) insertTask() {
	if p.surface == nil {
		return
	}
	line := p.surface.Selection().Active.Line
	text := p.surface.Line(line)
	prefix := listPrefixRe.FindString(text)
	if strings.ContainsAny(prefix, string([]rune{checkbox.Unchecked, checkbox.Checked})) {
		return
	}
	insert := string(checkbox.Unchecked) + " "
	col := utf8.RuneCountInString(prefix)
	if prefix == "" {
		insert = "- " + insert
		col = utf8.RuneCountInString(text) - utf8.RuneCountInString(strings.TrimLeft(text, " \t"))
	}
	at := surface.Position{Line: line, Column: col}
	p.surface.ApplyEdit(surface.Range{Start: at, End: at}, insert)
}

// copy writes the selection, or the whole note, with checkboxes encoded.
func (p *Pane) copy() {
	text := p.surface.SelectedText()
	if text == "" {
		text = p.surface.Value()
	}
	p.writeClipboard(checkbox.Encode(text))
}

func (p *Pane) writeClipboard(text string) {
	if p.opts.Clipboard == nil {
		return
	}
	if err := p.opts.Clipboard.WriteAll(text); err != nil {
		p.opts.Log.Debug().Err(err).Msg("clipboard write failed")
	}
}

func (p *Pane) copyPrimary(text string) {
	pw, ok := p.opts.Clipboard.(clipboard.PrimaryWriter)
	if !ok {
		return
	}
	if err := pw.Primary(checkbox.Encode(text)); err != nil {
		p.opts.Log.Debug().Err(err).Msg("primary selection write failed")
	}
}

func (p *Pane) flush() tea.Cmd {
	if len(p.pending) == 0 {
		return nil
	}
	cmds := p.pending
	p.pending = nil
	return tea.Batch(cmds...)
}

// lineOf returns the line holding rune offset off in text.
func lineOf(text string, off int) int {
	rs := []rune(text)
	off = min(max(off, 0), len(rs))
	return strings.Count(string(rs[:off]), "\n")
}
