// Package tui is the bubbletea program: the note list, the editor pane, the
// info panel and the markdown preview, all driven by the shared store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/subbaan/notes/internal/clipboard"
	"github.com/subbaan/notes/internal/config"
	"github.com/subbaan/notes/internal/editor"
	"github.com/subbaan/notes/internal/keybus"
	"github.com/subbaan/notes/internal/note"
	"github.com/subbaan/notes/internal/storage"
	"github.com/subbaan/notes/internal/store"
)

// NoteSource creates and re-reads note files.
type NoteSource interface {
	Create(title, content string) (note.Note, error)
	Read(id note.ID) (note.Note, error)
}

// Saver holds edits that have not reached disk yet.
type Saver interface {
	Pending() bool
	Flush(ctx context.Context) error
}

// Deps are the collaborators of an App.
type Deps struct {
	Store     *store.Store
	Notes     NoteSource
	Bus       *keybus.Bus
	Clipboard clipboard.Writer
	Config    *config.Config
	// Saver is flushed before an external editor takes over.
	Saver   Saver
	Log     zerolog.Logger
	Version string
	Now     func() time.Time
}

type focus int

const (
	focusList focus = iota
	focusEditor
	focusInfo
)

const statusHeight = 2

type externalDoneMsg struct {
	id  note.ID
	err error
}

// App is the root tea.Model.
type App struct {
	deps   Deps
	cfg    *config.Config
	styles Styles
	keys   keyMap
	help   help.Model

	list noteList
	pane *editor.Pane
	md   markdownPreview

	focus      focus
	showInfo   bool
	previewing bool
	mdSource   string
	notice     string

	width, height int
}

// New builds the app around d.Store.
func New(d Deps) *App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Bus == nil {
		d.Bus = &keybus.Bus{}
	}
	cfg := d.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	styles := NewStyles(cfg.Colors)
	keys := defaultKeys(cfg.Editor.InsertTaskKeys, cfg.Editor.CopyKeys)

	pane := editor.New(d.Store, editor.Options{
		Thresholds: editor.Thresholds{
			Threshold: cfg.Editor.FastModeThreshold,
			Delay:     cfg.Editor.FastModeDelay,
		},
		InsertTask: keys.Editor.InsertTask,
		Copy:       keys.Editor.Copy,
		Clipboard:  d.Clipboard,
		Bus:        d.Bus,
		Styles:     styles.Editor,
		Log:        d.Log.With().Str("cmp", "editor").Logger(),
		Now:        d.Now,
	})

	return &App{
		deps:   d,
		cfg:    cfg,
		styles: styles,
		keys:   keys,
		help:   help.New(),
		list:   newNoteList(),
		pane:   pane,
		md:     newMarkdownPreview(),
		width:  80,
		height: 24,
	}
}

// Pane exposes the editor pane.
func (a *App) Pane() *editor.Pane { return a.pane }

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	return a, tea.Batch(cmd, a.syncPane())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.layout()
		return nil

	case storage.Event:
		a.applyEvent(msg)
		return nil

	case externalDoneMsg:
		a.externalDone(msg)
		return nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if a.focus == focusEditor && !a.previewing {
			return a.pane.Update(msg)
		}
		return nil
	}
	return a.pane.Update(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	a.notice = ""
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if a.focus == focusList && a.list.searching {
		return a.updateSearch(msg)
	}
	if a.deps.Bus.Publish(msg) {
		return nil
	}
	switch a.focus {
	case focusEditor:
		return a.updateEditor(msg)
	case focusInfo:
		return a.updateInfo(msg)
	}
	return a.updateList(msg)
}

func (a *App) visible() []note.Note {
	notes := a.deps.Store.State().Visible(a.list.order)
	a.list.clamp(len(notes))
	return notes
}

func (a *App) updateList(msg tea.KeyMsg) tea.Cmd {
	k := a.keys.List
	notes := a.visible()
	current, hasCurrent := a.list.selected(notes)

	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Up):
		a.list.move(-1, len(notes))
	case key.Matches(msg, k.Down):
		a.list.move(1, len(notes))
	case key.Matches(msg, k.Open):
		if hasCurrent {
			a.open(current.ID)
		}
	case key.Matches(msg, k.New):
		a.create()
	case key.Matches(msg, k.Pin):
		if hasCurrent {
			a.deps.Store.Dispatch(store.PinNote{
				NoteID: current.ID,
				Pinned: !current.HasSystemTag(note.TagPinned),
			})
		}
	case key.Matches(msg, k.Sort):
		a.list.toggleSort()
		a.notice = "sorted by " + a.list.sortLabel()
	case key.Matches(msg, k.Search):
		a.list.searching = true
		return a.list.search.Focus()
	case key.Matches(msg, k.Info):
		a.showInfo = !a.showInfo
		a.layout()
	case key.Matches(msg, k.External):
		if hasCurrent {
			return a.external(current)
		}
	case msg.String() == "esc":
		if a.list.search.Value() != "" {
			a.list.search.SetValue("")
			a.deps.Store.Dispatch(store.SetSearchQuery{})
		}
	}
	return nil
}

func (a *App) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		a.list.searching = false
		a.list.search.Blur()
		return nil
	case "esc":
		a.list.searching = false
		a.list.search.Blur()
		a.list.search.SetValue("")
		a.deps.Store.Dispatch(store.SetSearchQuery{})
		return nil
	}
	var cmd tea.Cmd
	a.list.search, cmd = a.list.search.Update(msg)
	if q := a.list.search.Value(); q != a.deps.Store.State().SearchQuery {
		a.deps.Store.Dispatch(store.SetSearchQuery{Query: q})
		a.list.cursor = 0
	}
	return cmd
}

func (a *App) updateEditor(msg tea.KeyMsg) tea.Cmd {
	k := a.keys.Editor
	switch {
	case key.Matches(msg, k.Close):
		if a.previewing {
			a.previewing = false
			return nil
		}
		a.close()
		return nil
	case key.Matches(msg, k.ToggleInfo):
		a.showInfo = !a.showInfo
		a.layout()
		return nil
	case key.Matches(msg, k.FocusInfo) && a.showInfo:
		a.focus = focusInfo
		return nil
	case key.Matches(msg, k.Preview):
		a.togglePreview()
		return nil
	case key.Matches(msg, k.External):
		if n, ok := a.deps.Store.State().OpenNote(); ok {
			return a.external(n)
		}
		return nil
	}
	if a.previewing {
		var cmd tea.Cmd
		a.md.viewport, cmd = a.md.viewport.Update(msg)
		return cmd
	}
	return a.pane.Update(msg)
}

func (a *App) updateInfo(msg tea.KeyMsg) tea.Cmd {
	k := a.keys.Info
	n, ok := a.infoNote()
	if !ok {
		a.focus = a.restingFocus()
		return nil
	}
	switch {
	case key.Matches(msg, k.Pin):
		a.deps.Store.Dispatch(store.PinNote{NoteID: n.ID, Pinned: !n.HasSystemTag(note.TagPinned)})
	case key.Matches(msg, k.Markdown):
		on := !n.HasSystemTag(note.TagMarkdown)
		a.deps.Store.Dispatch(store.EnableMarkdown{NoteID: n.ID, Enabled: on})
		if !on {
			a.previewing = false
		}
	case key.Matches(msg, k.CopyURL):
		a.copyURL(n)
	case key.Matches(msg, k.Back):
		a.focus = a.restingFocus()
	}
	return nil
}

func (a *App) copyURL(n note.Note) {
	switch {
	case n.PublishURL == "":
		a.notice = "note is not published"
	case a.deps.Clipboard == nil:
		a.notice = "no clipboard"
	default:
		if err := a.deps.Clipboard.WriteAll(n.PublishURL); err != nil {
			a.fail("copy url", err)
			return
		}
		a.notice = "copied " + n.PublishURL
	}
}

// infoNote is the open note, or the note under the list cursor.
func (a *App) infoNote() (note.Note, bool) {
	if a.pane.Mounted() {
		return a.deps.Store.State().OpenNote()
	}
	return a.list.selected(a.visible())
}

func (a *App) restingFocus() focus {
	if a.pane.Mounted() {
		return focusEditor
	}
	return focusList
}

func (a *App) open(id note.ID) {
	a.deps.Store.Dispatch(store.OpenNote{NoteID: id})
	if a.deps.Store.State().OpenNoteID != id {
		return
	}
	a.mount()
}

func (a *App) mount() {
	a.pane.Mount()
	a.focus = focusEditor
	a.previewing = false
	a.layout()
}

func (a *App) close() {
	a.pane.Unmount()
	a.deps.Store.Dispatch(store.CloseNote{})
	a.focus = focusList
	a.previewing = false
}

// create makes a file named Untitled, Untitled 2, ... and opens it.
func (a *App) create() {
	if a.deps.Notes == nil {
		return
	}
	for i := 1; i <= 100; i++ {
		n, err := a.deps.Notes.Create(untitled(i), "")
		if errors.Is(err, storage.ErrExists) {
			continue
		}
		if err != nil {
			a.fail("create note", err)
			return
		}
		a.deps.Store.Dispatch(store.CreateNote{Note: n})
		a.mount()
		return
	}
	a.notice = "too many untitled notes"
}

func (a *App) external(n note.Note) tea.Cmd {
	args := strings.Fields(a.cfg.ExternalEditor)
	if len(args) == 0 || n.Path == "" {
		a.notice = "no external editor configured"
		return nil
	}
	if a.deps.Saver != nil && a.deps.Saver.Pending() {
		if err := a.deps.Saver.Flush(context.Background()); err != nil {
			a.fail("save before external editor", err)
			return nil
		}
	}
	id := n.ID
	c := exec.Command(args[0], append(args[1:], n.Path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return externalDoneMsg{id: id, err: err}
	})
}

func (a *App) externalDone(msg externalDoneMsg) {
	if msg.err != nil {
		a.fail("external editor", msg.err)
	}
	if a.deps.Notes == nil {
		return
	}
	n, err := a.deps.Notes.Read(msg.id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		a.deps.Store.Dispatch(store.NoteRemoved{NoteID: msg.id})
	case err != nil:
		a.fail("reload note", err)
	default:
		a.deps.Store.Dispatch(store.NoteUpdated{Note: n})
	}
}

func (a *App) applyEvent(ev storage.Event) {
	a.deps.Log.Debug().Stringer("kind", ev.Kind).Str("note", string(ev.ID)).Msg("file event")
	switch ev.Kind {
	case storage.Updated:
		a.deps.Store.Dispatch(store.NoteUpdated{Note: ev.Note})
	case storage.Removed:
		a.deps.Store.Dispatch(store.NoteRemoved{NoteID: ev.ID})
	}
}

func (a *App) togglePreview() {
	if a.previewing {
		a.previewing = false
		return
	}
	n, ok := a.deps.Store.State().OpenNote()
	if !ok {
		return
	}
	if !n.HasSystemTag(note.TagMarkdown) {
		a.notice = "markdown is off for this note"
		return
	}
	if err := a.md.render(n.Content, a.deps.Store.State().Theme); err != nil {
		a.fail("preview", err)
		return
	}
	a.previewing, a.mdSource = true, n.Content
}

// syncPane hands the store's view of the open note to the pane.
func (a *App) syncPane() tea.Cmd {
	if !a.pane.Mounted() {
		return nil
	}
	s := a.deps.Store.State()
	n, ok := s.OpenNote()
	if !ok {
		a.pane.Unmount()
		a.focus = focusList
		a.previewing = false
		a.notice = "note was removed"
		return nil
	}
	cmd := a.pane.SetProps(editor.Props{
		Note:              n,
		Selection:         s.Selection(n.ID),
		KeyboardShortcuts: s.KeyboardShortcuts,
		Theme:             s.Theme,
		SearchQuery:       s.SearchQuery,
		TaskRequests:      s.TaskRequests,
	})
	if a.previewing {
		switch {
		case !n.HasSystemTag(note.TagMarkdown):
			a.previewing = false
		case n.Content != a.mdSource:
			if err := a.md.render(n.Content, s.Theme); err != nil {
				a.fail("preview", err)
				a.previewing = false
			}
			a.mdSource = n.Content
		}
	}
	return cmd
}

func (a *App) bodySize() (int, int) {
	w := a.width
	if a.showInfo {
		w = max(w-infoWidth, 10)
	}
	return w, max(a.height-1-statusHeight, 1)
}

func (a *App) layout() {
	w, h := a.bodySize()
	a.pane.SetSize(w, h)
	a.pane.SetOrigin(0, 1)
	a.md.setSize(w, h)
}

func (a *App) fail(op string, err error) {
	a.deps.Log.Warn().Err(err).Str("op", op).Msg("operation failed")
	a.notice = fmt.Sprintf("%s: %v", op, err)
}

func (a *App) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, a.titleView(), a.bodyView(), a.statusView())
}

func (a *App) titleView() string {
	title := "Notes v" + a.deps.Version
	if n, ok := a.deps.Store.State().OpenNote(); ok && a.pane.Mounted() {
		title += " - " + n.Title
		if a.previewing {
			title += " [PREVIEW]"
		}
	}
	return a.styles.Title.Width(a.width).Render(title)
}

func (a *App) bodyView() string {
	w, h := a.bodySize()
	var main string
	switch {
	case a.pane.Mounted() && a.previewing:
		main = a.md.viewport.View()
	case a.pane.Mounted():
		main = a.pane.View()
	default:
		main = a.list.view(a.visible(), a.styles, w, h)
	}
	box := lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(main)
	if !a.showInfo {
		return box
	}
	n, ok := a.infoNote()
	if !ok {
		return box
	}
	info := infoView(n, a.styles, a.deps.Now(), a.focus == focusInfo)
	return lipgloss.JoinHorizontal(lipgloss.Top, box, lipgloss.NewStyle().MaxHeight(h).Render(info))
}

func (a *App) statusView() string {
	var line string
	switch {
	case a.notice != "":
		line = a.notice
	case a.pane.Mounted() && a.pane.Local().HoveringCheckbox:
		line = "click to toggle"
	case a.pane.Mounted() && a.pane.Local().Mode == editor.ModeFast:
		line = "large note, loading editor…"
	case a.pane.Mounted():
		if n, ok := a.deps.Store.State().OpenNote(); ok {
			line = countLabel(n)
		}
	default:
		line = fmt.Sprintf("%d notes, sorted by %s", len(a.visible()), a.list.sortLabel())
	}

	var keys help.KeyMap = a.keys.List
	switch a.focus {
	case focusEditor:
		keys = a.keys.Editor
	case focusInfo:
		keys = a.keys.Info
	}
	return a.styles.Status.Width(a.width).Render(line) + "\n" + a.help.View(keys)
}
