// Package cmd implements the orcaslicer-web command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/internal/observability"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0-dev"

var rootLogLevel string

var rootCmd = &cobra.Command{
	Use:   "orcaslicer-web",
	Short: "Web service wrapping the OrcaSlicer CLI",
	Long: `orcaslicer-web exposes slicer profile management and model slicing
over HTTP, wrapping the OrcaSlicer command line engine.

User profiles may inherit from the profiles bundled with the engine
installation; inheritance is resolved and engine metadata injected before
any document reaches the slicer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return observability.InitCLILogger(rootLogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "CLI log level (debug|info|warn|error)")
}

// exitCode is set by exitError so Execute can exit with a meaningful code.
var exitCode = 1

// exitError records the exit code, logs the failure, and returns err for
// cobra's RunE plumbing.
func exitError(code int, msg string, err error) error {
	exitCode = code
	observability.CLILogger.Error(msg, zap.Error(err))
	return err
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode)
	}
}
