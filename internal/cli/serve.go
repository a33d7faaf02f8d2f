package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpc2301-netizen/todo-app/internal/serverapp"
	"github.com/jpc2301-netizen/todo-app/internal/task"
	"github.com/jpc2301-netizen/todo-app/internal/telemetry"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser view on a loopback address",
		RunE:  a.runServe,
	}
	cmd.Flags().String("addr", "", "listen address, must be loopback (default 127.0.0.1:42069)")
	cmd.Flags().Bool("dev-static", false, "serve static assets from --static-dir instead of the embedded bundle")
	cmd.Flags().String("static-dir", "", "static asset directory for --dev-static")
	a.bindFlag("addr", cmd.Flags(), "addr")
	a.bindFlag("dev_static", cmd.Flags(), "dev-static")
	a.bindFlag("static_dir", cmd.Flags(), "static-dir")
	return cmd
}

// checkLoopback refuses addresses that would expose the task list beyond
// this machine.
func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("addr %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("addr %q is not a loopback address", addr)
	}
	return nil
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := checkLoopback(cfg.Server.Addr); err != nil {
		return err
	}
	logger := a.logger(cfg, nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.Warn("close storage", "error", err)
		}
	}()

	metrics := telemetry.NewMetrics(telemetry.NewMemoryRepository(cfg.Telemetry.EventLimit))
	store := task.Open(ctx, task.Options{
		Storage: storage,
		Key:     cfg.Storage.Key,
		Logger:  logger,
		Events:  metrics,
	})

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:  cfg,
		Store:   store,
		Events:  metrics,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "url", "http://"+cfg.Server.Addr, "backend", cfg.Storage.Backend, "tasks", store.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
