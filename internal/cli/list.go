package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpc2301-netizen/todo-app/internal/task"
)

func (a *app) newListCmd() *cobra.Command {
	var (
		filter string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the visible tasks and the number left",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if filter == "" {
				filter = cfg.UI.DefaultFilter
			}
			logger := a.logger(cfg, nil)

			storage, closeStorage, err := openStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeStorage() }()

			store := task.Open(cmd.Context(), task.Options{Storage: storage, Key: cfg.Storage.Key, Logger: logger})
			f := task.ParseFilter(filter)
			visible := store.Visible(f)

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Tasks     []task.Task `json:"tasks"`
					ItemsLeft string      `json:"itemsLeft"`
					Filter    task.Filter `json:"filter"`
				}{visible, task.ItemsLeft(store.ActiveCount()), f})
			}
			printTasks(a.stdout, visible)
			fmt.Fprintln(a.stdout, task.ItemsLeft(store.ActiveCount()))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "all | active | completed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printTasks(w io.Writer, tasks []task.Task) {
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, t.Text)
		if t.Due != nil {
			line += "  (due " + t.Due.String() + ")"
		}
		fmt.Fprintln(w, line)
	}
}
