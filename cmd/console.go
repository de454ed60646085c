package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inheir-ai/inheir-console/internal/bus"
	"github.com/inheir-ai/inheir-console/internal/docs"
	"github.com/inheir-ai/inheir-console/internal/ui"
)

// consoleCmd launches the TUI. Running the binary with no subcommand does
// the same thing.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Launch the interactive portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(ctx context.Context) error {
	cfg := GetConfig()

	if cols, rows := getTerminalSize(); cols > 0 && (cols < 80 || rows < 24) {
		fmt.Fprintf(os.Stderr, "Warning: terminal is %dx%d; the portal works best at 80x24 or larger\n", cols, rows)
	}

	// The TUI owns the screen, so logs go to a file.
	logger, flush, err := buildLogger(cfg.Log.Level, true)
	if err != nil {
		return err
	}
	defer flush()

	client, st, sess, err := openWorkspace(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	eventBus := bus.NewBus(cfg.Redis.URL, logger)
	defer eventBus.Close()

	watcher, err := docs.NewWatcher(docs.WatcherOptions{
		Dir:    cfg.Documents.Dir,
		Logger: logger,
	})
	if err != nil {
		logger.Warnw("documents folder unavailable, case creation disabled", "dir", cfg.Documents.Dir, "error", err)
		watcher = nil
	}

	app := ui.NewUI(ctx, ui.Options{
		Client:  client,
		Session: sess,
		Cache:   st,
		Bus:     eventBus,
		Watcher: watcher,
		Logger:  logger,
		Theme:   cfg.UI.Theme,
	})

	logger.Infow("console starting", "api", cfg.API.BaseURL, "db", cfg.Database.Path)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("console exited with error: %w", err)
	}
	return nil
}
