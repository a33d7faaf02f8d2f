package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X .../internal/cli.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "todo %s\n", Version)
			fmt.Fprintf(a.stdout, "  commit:     %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  built:      %s\n", BuildTime)
			fmt.Fprintf(a.stdout, "  go version: %s\n", runtime.Version())
		},
	}
}
