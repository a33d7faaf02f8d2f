package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jpc2301-netizen/todo-app/internal/config"
)

const configHeader = `# todo config
# Priority: CLI flag > TODO_* environment > this file > default.
# storage.backend: memory | file | sqlite
`

func (a *app) newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default configuration.

If --config is given the file is written to that path, otherwise to ./todo.yaml.
Fails if the file already exists unless --force is passed.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			dest := a.configPath()

			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("mkdir: %w", err)
			}
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", dest)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat %s: %w", dest, err)
				}
			}

			body, err := config.Marshal(config.Default())
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, append([]byte(configHeader), body...), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(a.stdout, "config written to %s\n", dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	return cmd
}
