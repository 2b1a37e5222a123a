package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// markdownPreview renders a markdown note with glamour. Renderers are cached
// per width and theme.
type markdownPreview struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	width    int
	theme    string
}

func newMarkdownPreview() markdownPreview {
	return markdownPreview{viewport: viewport.New(0, 0)}
}

func (p *markdownPreview) setSize(width, height int) {
	p.viewport.Width, p.viewport.Height = width, height
}

// render lays out content. It returns an error when glamour cannot build a
// renderer or parse the text.
func (p *markdownPreview) render(content, theme string) error {
	width := max(p.viewport.Width, 20)
	if p.renderer == nil || p.width != width || p.theme != theme {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(theme),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return fmt.Errorf("markdown renderer: %w", err)
		}
		p.renderer, p.width, p.theme = r, width, theme
	}
	out, err := p.renderer.Render(content)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	p.viewport.SetContent(out)
	p.viewport.GotoTop()
	return nil
}
