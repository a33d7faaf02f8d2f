package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jpc2301-netizen/todo-app/internal/task"
	"github.com/jpc2301-netizen/todo-app/internal/tui"
)

func (a *app) newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Manage tasks in the terminal",
		RunE:  a.runTUI,
	}
	cmd.Flags().String("filter", "", "initial filter: all | active | completed")
	a.bindFlag("default_filter", cmd.Flags(), "filter")
	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errors.New("tui needs an interactive terminal; use `todo list` or `todo serve` instead")
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the view, so logs go to a file.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	logPath := filepath.Join(cfg.DataDir, "tui.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", logPath, err)
	}
	defer logFile.Close()
	logger := a.logger(cfg, logFile)

	ctx := cmd.Context()
	storage, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStorage() }()

	store := task.Open(ctx, task.Options{
		Storage: storage,
		Key:     cfg.Storage.Key,
		Logger:  logger,
	})
	return tui.Run(ctx, store, task.ParseFilter(cfg.UI.DefaultFilter))
}
