package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/subbaan/notes/internal/config"
	"github.com/subbaan/notes/internal/surface"
)

// Styles are the lipgloss styles of the app chrome.
type Styles struct {
	Title    lipgloss.Style
	Status   lipgloss.Style
	Border   lipgloss.Style
	Selected lipgloss.Style
	Pinned   lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Notice   lipgloss.Style
	Editor   surface.Styles
}

func color(index int) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(index))
}

// NewStyles builds the styles from palette indices.
func NewStyles(c config.ColorConfig) Styles {
	editor := surface.DefaultStyles()
	editor.Checkbox = lipgloss.NewStyle().Foreground(color(c.CheckboxColor))
	editor.Selection = lipgloss.NewStyle().Background(color(c.SelectionBg)).Foreground(lipgloss.Color("255"))

	return Styles{
		Title: lipgloss.NewStyle().
			Background(color(c.TitleBg)).
			Foreground(color(c.TitleFg)).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Background(color(c.StatusBg)).
			Foreground(color(c.StatusFg)),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color(c.BorderColor)),
		Selected: lipgloss.NewStyle().
			Foreground(color(c.SelectedFg)).
			Bold(true),
		Pinned: lipgloss.NewStyle().Foreground(color(c.PinnedColor)),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Label:  lipgloss.NewStyle().Bold(true),
		Notice: lipgloss.NewStyle().Foreground(color(c.SelectedFg)),
		Editor: editor,
	}
}
