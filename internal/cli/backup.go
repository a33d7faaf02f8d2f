package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpc2301-netizen/todo-app/internal/ops"
)

func (a *app) newBackupCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the stored task list (.tar.gz)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := a.logger(cfg, nil)
			storage, closeStorage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeStorage() }()

			now := time.Now()
			if out == "" {
				out = ops.DefaultArchivePath("backups", now)
			}
			m, err := ops.Backup(cmd.Context(), storage, cfg.Storage.Key, out, now)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Fprintf(a.stdout, "%s (%d tasks, sha256 %s)\n", out, m.Tasks, m.SHA256)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output archive path (default backups/todo-<ts>.tar.gz)")
	return cmd
}

func (a *app) newRestoreCmd() *cobra.Command {
	var archive string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the stored task list with an archived one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if archive == "" {
				return errors.New("--archive is required")
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := a.logger(cfg, nil)
			storage, closeStorage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeStorage() }()

			m, err := ops.Restore(cmd.Context(), storage, cfg.Storage.Key, archive)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintf(a.stdout, "restored %d tasks from %s\n", m.Tasks, archive)
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	return cmd
}

func (a *app) newDrillCmd() *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore to scratch storage and compare digests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := a.logger(cfg, nil)
			storage, closeStorage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeStorage() }()

			res, err := ops.Drill(cmd.Context(), storage, cfg.Storage.Key, workDir, time.Now())
			if err != nil {
				return fmt.Errorf("drill failed: %w", err)
			}
			fmt.Fprintln(a.stdout, "backup:", res.Archive)
			fmt.Fprintln(a.stdout, "tasks:", res.Tasks)
			fmt.Fprintln(a.stdout, "digest:", res.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	return cmd
}
