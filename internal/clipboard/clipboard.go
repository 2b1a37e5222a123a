// Package clipboard copies text to the system clipboard, falling back to the
// terminal's OSC 52 escape when no system clipboard is reachable (e.g. over
// SSH).
package clipboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Writer copies text somewhere the user can paste it from.
type Writer interface {
	WriteAll(text string) error
}

// PrimaryWriter is a Writer that can also set the primary selection.
type PrimaryWriter interface {
	Writer
	Primary(text string) error
}

// System writes to the OS clipboard, then to the terminal.
type System struct {
	// OpenTTY opens the terminal for OSC 52 output. Defaults to /dev/tty.
	OpenTTY func() (io.WriteCloser, error)
	// Getenv reads the environment for multiplexer detection. Defaults to
	// os.Getenv.
	Getenv func(string) string
	// SkipNative forces the OSC 52 path.
	SkipNative bool
}

// WriteAll copies text to the clipboard selection.
func (s System) WriteAll(text string) error {
	if !s.SkipNative && !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	return s.writeSequence(s.sequence(text, false))
}

// Primary copies text to the X11 primary selection, used for middle-click
// paste.
func (s System) Primary(text string) error {
	return s.writeSequence(s.sequence(text, true))
}

func (s System) sequence(text string, primary bool) osc52.Sequence {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	seq := osc52.New(text)
	term := getenv("TERM")
	switch {
	case getenv("TMUX") != "" || strings.HasPrefix(term, "tmux"):
		seq = seq.Tmux()
	case strings.HasPrefix(term, "screen"):
		seq = seq.Screen()
	}
	if primary {
		seq = seq.Primary()
	}
	return seq
}

func (s System) writeSequence(seq osc52.Sequence) error {
	open := s.OpenTTY
	if open == nil {
		open = openTTY
	}
	tty, err := open()
	if err != nil {
		return fmt.Errorf("clipboard: open terminal: %w", err)
	}
	defer tty.Close()
	if _, err := seq.WriteTo(tty); err != nil {
		return fmt.Errorf("clipboard: write osc52: %w", err)
	}
	return nil
}

func openTTY() (io.WriteCloser, error) {
	return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
}
