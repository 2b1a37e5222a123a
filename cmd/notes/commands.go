package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/subbaan/notes/internal/config"
	"github.com/subbaan/notes/internal/note"
	"github.com/subbaan/notes/internal/storage"
	"github.com/subbaan/notes/internal/store"
)

func newCommand(cfg func() *config.Config) *cli.Command {
	var title string
	return &cli.Command{
		Name:      "new",
		Usage:     "create a note",
		UsageText: "notes new [--title TITLE] [content...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "note title, prompted for when omitted",
				Destination: &title,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if title == "" {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return errors.New("--title is required when stdin is not a terminal")
				}
				if err := promptTitle(&title); err != nil {
					return err
				}
			}
			content := strings.Join(c.Args().Slice(), " ")
			return createNote(cfg(), title, content, os.Stdout)
		},
	}
}

func promptTitle(title *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Used as the file name").
				Validate(validateTitle).
				Value(title),
		),
	).Run()
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func createNote(cfg *config.Config, title, content string, out io.Writer) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.NotesPath, 0o755); err != nil {
		return fmt.Errorf("create notes directory: %w", err)
	}
	fsys, err := storage.NewFS(cfg.NotesPath, cfg.Ignore)
	if err != nil {
		return err
	}
	n, err := fsys.Create(title, content)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, n.Path)
	return err
}

func listCommand(cfg func() *config.Config) *cli.Command {
	var sortByTitle bool
	return &cli.Command{
		Name:    "ls",
		Aliases: []string{"list"},
		Usage:   "list notes, pinned first",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "by-title",
				Usage:       "sort by title instead of modification time",
				Destination: &sortByTitle,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			order := store.SortByModified
			if sortByTitle {
				order = store.SortByTitle
			}
			return listNotes(cfg(), strings.Join(c.Args().Slice(), " "), order, os.Stdout)
		},
	}
}

func listNotes(cfg *config.Config, query string, order store.SortOrder, out io.Writer) error {
	fsys, err := storage.NewFS(cfg.NotesPath, cfg.Ignore)
	if err != nil {
		return err
	}
	notes, err := fsys.List()
	if err != nil {
		return err
	}
	state := store.Reduce(store.State{}, store.LoadNotes{Notes: notes})
	state = store.Reduce(state, store.SetSearchQuery{Query: query})

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, n := range state.Visible(order) {
		pin := " "
		if n.HasSystemTag(note.TagPinned) {
			pin = "*"
		}
		modified := ""
		if !n.ModificationDate.IsZero() {
			modified = humanize.Time(n.ModificationDate)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", pin, n.Title, modified, n.ID)
	}
	return w.Flush()
}
