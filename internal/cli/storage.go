package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jpc2301-netizen/todo-app/internal/config"
	"github.com/jpc2301-netizen/todo-app/internal/task"
)

// openStorage builds the configured backend. The returned close func is
// always safe to call.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (task.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warn("memory storage selected, tasks will not survive a restart")
		return task.NewMemoryStorage(), noop, nil

	case config.BackendFile:
		fs, err := task.NewFileStorage(cfg.DataDir, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("file storage: %w", err)
		}
		logger.Debug("file storage opened", "path", fs.Path())
		return fs, noop, nil

	case config.BackendSQLite:
		path := cfg.Storage.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, "todo.db")
		}
		db, err := task.OpenSQLiteStorage(ctx, path)
		if err != nil {
			return nil, noop, fmt.Errorf("sqlite storage: %w", err)
		}
		logger.Debug("sqlite storage opened", "path", path)
		return db, db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
