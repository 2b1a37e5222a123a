package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/subbaan/notes/internal/clipboard"
	"github.com/subbaan/notes/internal/config"
	"github.com/subbaan/notes/internal/keybus"
	"github.com/subbaan/notes/internal/logging"
	"github.com/subbaan/notes/internal/storage"
	"github.com/subbaan/notes/internal/store"
	"github.com/subbaan/notes/internal/tui"
)

// session is everything opened for one run against the notes directory.
type session struct {
	fs        *storage.FS
	sels      *storage.SelectionDB
	store     *store.Store
	persister *storage.Persister
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	if err := os.MkdirAll(cfg.NotesPath, 0o755); err != nil {
		return nil, fmt.Errorf("create notes directory: %w", err)
	}
	fsys, err := storage.NewFS(cfg.NotesPath, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	notes, err := fsys.List()
	if err != nil {
		return nil, err
	}

	sels, err := storage.OpenSelections(cfg.SelectionsDB())
	if err != nil {
		return nil, err
	}
	saved, err := sels.Load(ctx)
	if err != nil {
		_ = sels.Close()
		return nil, err
	}

	st := store.New(store.State{
		KeyboardShortcuts: cfg.KeyboardShortcuts,
		Theme:             cfg.Theme,
	}, logging.Component("store"))
	st.Dispatch(store.LoadNotes{Notes: notes, Selections: saved})

	persister := storage.NewPersister(fsys, sels, logging.Component("persister"))
	st.Subscribe(persister.Observe)

	return &session{fs: fsys, sels: sels, store: st, persister: persister}, nil
}

func (s *session) Close() error {
	return s.sels.Close()
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal, use 'notes ls' instead")
	}

	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	log := logging.Component("main")
	log.Info().Int("notes", len(sess.store.State().Order)).Msg("starting")

	app := tui.New(tui.Deps{
		Store:     sess.store,
		Notes:     sess.fs,
		Bus:       &keybus.Bus{},
		Clipboard: clipboard.System{},
		Config:    cfg,
		Saver:     sess.persister,
		Log:       logging.Component("tui"),
		Version:   buildVersion(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	watcher := storage.NewWatcher(sess.fs, logging.Component("watcher"), storage.DefaultDebounce)
	g.Go(func() error {
		// Without the watcher the editor still works, it just misses outside edits.
		if err := watcher.Run(runCtx, func(ev storage.Event) { p.Send(ev) }); err != nil {
			log.Warn().Err(err).Msg("file watcher stopped")
		}
		return nil
	})

	g.Go(func() error {
		return sess.persister.Run(runCtx, cfg.FlushInterval)
	})

	g.Go(func() error {
		defer stop()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("stopped")
	return nil
}
