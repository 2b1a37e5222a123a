package tui

import "github.com/charmbracelet/bubbles/key"

type listKeys struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	New      key.Binding
	Pin      key.Binding
	Sort     key.Binding
	Search   key.Binding
	Info     key.Binding
	External key.Binding
	Quit     key.Binding
}

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.New, k.Pin, k.Sort, k.Search, k.Quit}
}

func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.New, k.Pin, k.Sort, k.Search},
		{k.Info, k.External, k.Quit},
	}
}

type editorKeys struct {
	Close      key.Binding
	ToggleInfo key.Binding
	FocusInfo  key.Binding
	Preview    key.Binding
	External   key.Binding
	InsertTask key.Binding
	Copy       key.Binding
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Close, k.InsertTask, k.Copy, k.ToggleInfo, k.Preview, k.External}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Close, k.InsertTask, k.Copy},
		{k.ToggleInfo, k.FocusInfo, k.Preview, k.External},
	}
}

type infoKeys struct {
	Pin      key.Binding
	Markdown key.Binding
	CopyURL  key.Binding
	Back     key.Binding
}

func (k infoKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Pin, k.Markdown, k.CopyURL, k.Back}
}

func (k infoKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type keyMap struct {
	List   listKeys
	Editor editorKeys
	Info   infoKeys
}

func defaultKeys(insertTask, copyKeys []string) keyMap {
	return keyMap{
		List: listKeys{
			Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Open:     key.NewBinding(key.WithKeys("enter", "right"), key.WithHelp("enter", "open")),
			New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
			Pin:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "pin")),
			Sort:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sort")),
			Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
			Info:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
			External: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "external editor")),
			Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
		Editor: editorKeys{
			Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
			ToggleInfo: key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "info")),
			FocusInfo:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus info")),
			Preview:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
			External:   key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "external editor")),
			InsertTask: key.NewBinding(key.WithKeys(insertTask...), key.WithHelp(insertTask[0], "task")),
			Copy:       key.NewBinding(key.WithKeys(copyKeys...), key.WithHelp(copyKeys[0], "copy")),
		},
		Info: infoKeys{
			Pin:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
			Markdown: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "markdown")),
			CopyURL:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
			Back:     key.NewBinding(key.WithKeys("tab", "esc"), key.WithHelp("tab", "back")),
		},
	}
}
