// Printlink-cfg links PrusaLink printers to this machine.
//
// It provides printer discovery, an interactive setup wizard, and direct
// linking commands. The tool talks to printers over HTTP using either
// digest credentials or an API key, verifies the printer's API version,
// and records each linked printer in a local entries file.
//
// Usage:
//
//	printlink-cfg [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'printlink-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okvist/printlink/internal/logging"
	"github.com/okvist/printlink/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "printlink-cfg",
	Short: "PrusaLink Printer Setup Utility",
	Long: `A standalone utility for linking PrusaLink 3D printers.

Provides printer discovery, an interactive setup wizard, and direct
linking commands for printers running PrusaLink firmware.

If no command is specified, the interactive wizard will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run wizard when no subcommand provided
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("printlink-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
