// Printlink-sim is a simulated PrusaLink printer.
//
// It serves the subset of the PrusaLink HTTP API that the setup tools
// use, so the wizard and link commands can be exercised end to end
// without a physical printer. Both authentication modes of real firmware
// are supported: HTTP digest credentials and an API key.
//
// Usage:
//
//	printlink-sim serve [flags]
//
// See 'printlink-sim serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okvist/printlink/internal/server"
	"github.com/okvist/printlink/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "printlink-sim",
	Short: "Simulated PrusaLink Printer",
	Long: `A standalone simulator of a PrusaLink 3D printer.

Serves the version endpoint behind either authentication scheme and
streams fake job status updates over a WebSocket. Intended for trying
out 'printlink-cfg' without a physical printer.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	host       string
	port       int
	hostname   string
	apiVersion string
	apiKey     string
	user       string
	password   string
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the printer simulator",
	Long: `Start the simulated printer and block until interrupted.

Pick an authentication mode with either --api-key or --user/--password.
With neither, the simulator answers unauthenticated requests. Use
--api-version to simulate old firmware that the setup tools must
reject.`,
	Example: `  # Simulate a printer with an API key
  printlink-sim serve --api-key secret

  # Simulate a printer with digest credentials
  printlink-sim serve --user maker --password insecure

  # Simulate unsupported old firmware
  printlink-sim serve --api-key secret --api-version 1.2.0

  # Custom identity and port
  printlink-sim serve --api-key secret --port 8081 --hostname PrusaXL`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "Listen address")
	serveCmd.Flags().IntVar(&port, "port", 8080, "Listen port")
	serveCmd.Flags().StringVar(&hostname, "hostname", "PrusaMINI", "Hostname reported by the version endpoint")
	serveCmd.Flags().StringVar(&apiVersion, "api-version", "2.0.0", "API version reported by the version endpoint")
	serveCmd.Flags().StringVar(&apiKey, "api-key", "", "Require this API key in the X-Api-Key header")
	serveCmd.Flags().StringVar(&user, "user", "", "Require digest authentication with this username")
	serveCmd.Flags().StringVar(&password, "password", "", "Password for digest authentication")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if apiKey != "" && user != "" {
		return fmt.Errorf("choose one of --api-key or --user/--password")
	}
	if (user != "") != (password != "") {
		return fmt.Errorf("--user and --password must be provided together")
	}

	config := &server.Config{
		Host:     host,
		Port:     port,
		Hostname: hostname,
		API:      apiVersion,
		APIKey:   apiKey,
		User:     user,
		Password: password,
		LogLevel: logLevel,
	}

	return server.New(config).Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("printlink-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
