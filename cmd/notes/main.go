package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/subbaan/notes/internal/config"
	"github.com/subbaan/notes/internal/logging"
)

// Populated at build time via -ldflags.
var version = "dev"

func buildVersion() string {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				return mv
			}
		}
	}
	return version
}

type flags struct {
	ConfigPath string
	DataDir    string
	NotesPath  string
	LogLevel   string
	LogFile    string
}

func main() {
	var (
		f         flags
		cfg       *config.Config
		logCloser = func() {}
	)

	app := &cli.Command{
		Name:  "notes",
		Usage: "Plain text notes with checklists, in the terminal",
		Description: `Notes are plain files under the notes path. Run 'notes' with no
arguments to open the editor, 'notes new' to create a note and 'notes ls'
to list them.`,
		Version: buildVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("NOTES_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "directory for the selection database and logs",
				Sources:     cli.EnvVars("NOTES_DATA_DIR"),
				Destination: &f.DataDir,
			},
			&cli.StringFlag{
				Name:        "notes-path",
				Usage:       "directory holding the note files",
				Sources:     cli.EnvVars("NOTES_PATH"),
				Destination: &f.NotesPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error)",
				Sources:     cli.EnvVars("NOTES_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/notes.log)",
				Sources:     cli.EnvVars("NOTES_LOG_FILE"),
				Destination: &f.LogFile,
			},
		},
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			loaded, err := config.Load(f.ConfigPath, f.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if f.NotesPath != "" {
				loaded.NotesPath = f.NotesPath
			}
			if f.LogLevel != "" {
				loaded.LogLevel = f.LogLevel
			}

			logFile := f.LogFile
			if logFile == "" {
				logFile = loaded.LogFile()
			}
			logger, closer, err := logging.New(loaded.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			cfg = loaded

			log.Debug().
				Str("notes_path", cfg.NotesPath).
				Str("data_dir", cfg.DataDir).
				Msg("config loaded")
			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			logCloser()
			return nil
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return runTUI(ctx, cfg)
		},
		Commands: []*cli.Command{
			newCommand(func() *config.Config { return cfg }),
			listCommand(func() *config.Config { return cfg }),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("notes failed")
		fmt.Fprintln(os.Stderr, "notes:", err)
		os.Exit(1)
	}
}
