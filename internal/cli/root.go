package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// Typically called by the main package with values injected via
// ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the dotwhisker CLI under ctx and returns an error if
// any command fails. This is the main entry point for the CLI
// application; cancelling ctx aborts the running command.
//
// Logging defaults to info level on stderr; --verbose (-v) selects
// debug level. The logger is attached to the context and accessible to
// all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "dotwhisker",
		Short:        "dotwhisker renders regression coefficients as dot-and-whisker charts",
		Long:         `dotwhisker is a CLI tool for turning tidy regression output into dot-and-whisker coefficient charts, with model comparison, faceted small multiples, and group brackets.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("dotwhisker %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newPlotCmd())
	root.AddCommand(newSecretWeaponCmd())
	root.AddCommand(newSmallMultipleCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}
