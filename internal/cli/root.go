package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jpc2301-netizen/todo-app/internal/config"
	"github.com/jpc2301-netizen/todo-app/internal/telemetry"
)

const defaultConfigFile = "todo.yaml"

// app carries per-invocation state shared by subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	stdout  io.Writer
	stderr  io.Writer
}

// Execute is the entry point called from cmd/todo/main.go.
func Execute(ctx context.Context) {
	if err := NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr}
	a.v.SetEnvPrefix("TODO")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "todo",
		Short:         "A local to-do list with a browser view and a terminal view",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file path (default: ./todo.yaml)")
	root.PersistentFlags().String("data-dir", "", "directory holding the task store")
	root.PersistentFlags().String("storage", "", "storage backend: memory | file | sqlite")
	root.PersistentFlags().String("log-level", "", "log level: debug | info | warn | error")
	root.PersistentFlags().String("log-format", "", "log format: json | text")
	a.bindFlag("data_dir", root.PersistentFlags(), "data-dir")
	a.bindFlag("storage_backend", root.PersistentFlags(), "storage")
	a.bindFlag("log_level", root.PersistentFlags(), "log-level")
	a.bindFlag("log_format", root.PersistentFlags(), "log-format")

	root.AddCommand(
		a.newServeCmd(),
		a.newTUICmd(),
		a.newListCmd(),
		a.newInitCmd(),
		a.newBackupCmd(),
		a.newRestoreCmd(),
		a.newDrillCmd(),
		a.newVersionCmd(),
	)
	return root
}

func (a *app) bindFlag(viperKey string, fs *pflag.FlagSet, flagName string) {
	if err := a.v.BindPFlag(viperKey, fs.Lookup(flagName)); err != nil {
		panic(fmt.Sprintf("bindFlag %q → %q: %v", flagName, viperKey, err))
	}
}

func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	if p := strings.TrimSpace(a.v.GetString("config")); p != "" {
		return p
	}
	return defaultConfigFile
}

// loadConfig resolves file values, then flag and TODO_* overrides.
// Priority: CLI flag > environment > config file > default.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(a.configPath())
	if err != nil {
		return nil, err
	}
	config.Overlay(cfg, a.v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) logger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = a.stderr
	}
	return telemetry.NewLogger(w, cfg.Log.Level, cfg.Log.Format)
}
