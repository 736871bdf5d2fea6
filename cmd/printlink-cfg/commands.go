package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/okvist/printlink/internal/discovery"
	"github.com/okvist/printlink/internal/entries"
	"github.com/okvist/printlink/internal/linkflow"
	"github.com/okvist/printlink/internal/printer"
	"github.com/okvist/printlink/internal/ui"
	"github.com/okvist/printlink/internal/urls"
	"github.com/okvist/printlink/internal/wizard/tui"
)

// Command flags
var (
	hostFlag         string
	userFlag         string
	passwordFlag     string
	apiKeyFlag       string
	scanTimeout      int
	validateTimeout  int
	skipVersionCheck bool
)

func init() {
	// Common flags for printer commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Printer host or IP address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&validateTimeout, "timeout", 5, "Validation timeout in seconds")
	rootCmd.PersistentFlags().BoolVar(&skipVersionCheck, "skip-version-check", false, "Skip the minimum API version check")

	// Add subcommands directly to root
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(entriesCmd)
}

// newFlow builds a setup flow against a real printer and the default
// entries file
func newFlow() (*linkflow.Flow, error) {
	store, err := entries.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open entries file: %w", err)
	}

	opts := linkflow.DefaultOptions()
	opts.ValidateTimeout = time.Duration(validateTimeout) * time.Second
	opts.SkipVersionCheck = skipVersionCheck

	return linkflow.New(printer.NewClient(), store, opts)
}

// wizardCmd launches the interactive TUI wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch interactive setup wizard",
	Long: `Launch an interactive TUI wizard for linking a printer.

The wizard provides a user-friendly interface for:
- Discovering printers on the network
- Choosing how to authenticate (credentials or API key)
- Validating the connection before anything is saved

This is the recommended way to link printers for most users.`,
	Example: `  # Launch wizard with auto-discovery
  printlink-cfg wizard
  # Or simply (wizard is default):
  printlink-cfg

  # Launch wizard for a specific printer
  printlink-cfg wizard --host 192.168.1.50
  printlink-cfg --host prusa-mini.local`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	flow, err := newFlow()
	if err != nil {
		return err
	}

	model := tui.NewAppModel(flow, hostFlag, hostFlag != "")

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}

	return nil
}

// linkCmd links a printer without the TUI
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link a printer non-interactively",
	Long: `Link a printer without the interactive wizard.

Provide either an API key or a username and password. Missing secrets
are prompted for on the terminal without echo. The printer is validated
before any entry is written.`,
	Example: `  # Link with an API key (prompted without echo)
  printlink-cfg link --host 192.168.1.50 --api-key ""

  # Link with digest credentials
  printlink-cfg link --host prusa-mini.local --user maker

  # Link in a script, key supplied on the command line
  printlink-cfg link --host 192.168.1.50 --api-key "$PRINTER_KEY"`,
	RunE: runLink,
}

func init() {
	linkCmd.Flags().StringVar(&userFlag, "user", "", "Username for digest authentication")
	linkCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for digest authentication (prompted if empty)")
	linkCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key (prompted if flag given without value)")
}

func runLink(cmd *cobra.Command, args []string) error {
	if hostFlag == "" {
		return fmt.Errorf("--host is required (or run the wizard for discovery)")
	}

	useAPIKey := cmd.Flags().Changed("api-key")
	useDigest := userFlag != "" || cmd.Flags().Changed("password")

	if useAPIKey && useDigest {
		return fmt.Errorf("choose one of --api-key or --user/--password")
	}
	if !useAPIKey && !useDigest {
		return fmt.Errorf("provide --api-key or --user (see %s)", urls.GettingStarted)
	}

	flow, err := newFlow()
	if err != nil {
		return err
	}
	flow.Start()

	fields := map[string]string{linkflow.FieldHost: hostFlag}

	if useAPIKey {
		if _, err := flow.ChooseAuthType(linkflow.AuthTypeAPIKey); err != nil {
			return err
		}
		key := apiKeyFlag
		if key == "" {
			key, err = promptSecret("API key: ")
			if err != nil {
				return err
			}
		}
		fields[linkflow.FieldAPIKey] = key
	} else {
		if _, err := flow.ChooseAuthType(linkflow.AuthTypeDigest); err != nil {
			return err
		}
		password := passwordFlag
		if password == "" {
			password, err = promptSecret(fmt.Sprintf("Password for %s: ", userFlag))
			if err != nil {
				return err
			}
		}
		fields[linkflow.FieldUser] = userFlag
		fields[linkflow.FieldPassword] = password
	}

	fmt.Println(ui.RenderCommandHeader(ui.HeaderConfig{
		Title:   "Link Printer",
		Command: "printlink-cfg link",
		Params: map[string]string{
			"Host": linkflow.NormalizeHost(hostFlag),
			"Auth": flow.AuthType().String(),
		},
	}))
	fmt.Println()

	result, err := flow.SubmitCredentials(context.Background(), fields)
	if err != nil {
		return err
	}

	if result.Entry == nil {
		fmt.Println(linkFailureBox(result.Form.Error))
		return fmt.Errorf("linking failed")
	}

	fmt.Println(ui.RenderSuccess("Printer linked", map[string]string{
		"Title": result.Entry.Title,
		"Host":  result.Entry.Config.Host,
		"Auth":  result.Entry.Config.Auth.Type.String(),
	}))
	return nil
}

// linkFailureBox renders a flow error tag as a failure box with hints
func linkFailureBox(tag linkflow.ErrorTag) string {
	switch tag {
	case linkflow.ErrorCannotConnect:
		return ui.RenderFailure("Cannot connect to the printer",
			fmt.Errorf("the printer did not answer within the timeout"),
			[]string{
				"Check that the printer is powered on and online",
				"Verify the host address and that this machine can reach it",
				"See " + urls.TroubleshootingGuide,
			})
	case linkflow.ErrorNotSupported:
		return ui.RenderFailure("Printer not supported",
			fmt.Errorf("printer firmware is too old or misreports its API version"),
			[]string{
				"Update the printer firmware to a recent release",
				"See " + urls.FirmwareSupport,
			})
	case linkflow.ErrorInvalidAuth:
		return ui.RenderFailure("Credentials rejected",
			fmt.Errorf("the printer rejected the supplied credentials"),
			[]string{
				"Re-check the username and password or the API key",
				"See " + urls.DigestCredentials,
			})
	default:
		return ui.RenderFailure("Unexpected error",
			fmt.Errorf("something went wrong while checking the printer"),
			[]string{
				"Re-run with PRINTLINK_LOG_LEVEL=debug for details",
				"See " + urls.TroubleshootingGuide,
			})
	}
}

// promptSecret reads a secret from the terminal without echoing it
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// scanCmd discovers printers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for PrusaLink printers on the network",
	Long: `Scan for printers using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from printers on the local
network and displays all discovered printers with their addresses and
metadata.`,
	Example: `  # Scan for 10 seconds (default)
  printlink-cfg scan

  # Quick 3-second scan
  printlink-cfg scan --scan-timeout 3

  # Longer scan for busy networks
  printlink-cfg scan --scan-timeout 30`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for printers (timeout: %ds)...\n\n", scanTimeout)

	printers, err := discovery.ScanForPrinters(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(printers) == 0 {
		fmt.Println("No printers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the printer is powered on and connected to your network")
		fmt.Println("  - Check that PrusaLink is enabled in the printer's network settings")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Use --host to specify the address manually if discovery fails")
		fmt.Printf("\nSee %s\n", urls.TroubleshootingGuide)
		return nil
	}

	fmt.Printf("Found %d printer(s):\n\n", len(printers))

	for i, p := range printers {
		fmt.Printf("%d. %s\n", i+1, p.Name)
		fmt.Printf("   Address: %s:%d\n", p.IP, p.Port)
		fmt.Printf("   Service: %s\n", p.Service)
		if len(p.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", p.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'printlink-cfg link --host <address>' to link a printer")
	fmt.Println("Use 'printlink-cfg wizard' for interactive setup")

	return nil
}

// checkCmd probes a printer without persisting anything
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a printer's API version",
	Long: `Connect to a printer and print its reported version information.

No entry is written. Credentials are optional; many printers answer the
version endpoint without authentication.`,
	Example: `  # Check an unauthenticated printer
  printlink-cfg check --host 192.168.1.50

  # Check with an API key
  printlink-cfg check --host 192.168.1.50 --api-key "$PRINTER_KEY"`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&userFlag, "user", "", "Username for digest authentication")
	checkCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for digest authentication")
	checkCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if hostFlag == "" {
		return fmt.Errorf("--host is required")
	}

	cfg := linkflow.LinkConfiguration{
		Host: linkflow.NormalizeHost(hostFlag),
	}
	switch {
	case apiKeyFlag != "":
		cfg.Auth = linkflow.APIKeyAuth(apiKeyFlag)
	case userFlag != "":
		cfg.Auth = linkflow.DigestAuth(userFlag, passwordFlag)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(validateTimeout)*time.Second)
	defer cancel()

	info, err := printer.NewClient().GetVersion(ctx, cfg)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	details := map[string]string{
		"Hostname":    info.Hostname,
		"API version": info.API,
		"Server":      info.Server,
	}
	if info.Text != "" {
		details["Firmware"] = info.Text
	}
	fmt.Println(ui.RenderSuccess("Printer reachable", details))

	return nil
}

// entriesCmd groups entry management subcommands
var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage linked printer entries",
}

func init() {
	entriesCmd.AddCommand(entriesListCmd)
	entriesCmd.AddCommand(entriesRemoveCmd)
}

// entriesListCmd lists all linked printers
var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List linked printers",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := entries.DefaultStore()
		if err != nil {
			return err
		}

		list, err := store.List()
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No printers linked yet. Run 'printlink-cfg' to link one.")
			return nil
		}

		fmt.Printf("Linked printers (%s):\n\n", store.Path())
		for _, entry := range list {
			fmt.Printf("  %s\n", entry.Title)
			fmt.Printf("    Host:   %s\n", entry.Config.Host)
			fmt.Printf("    Auth:   %s\n", entry.Config.Auth.Type)
			fmt.Printf("    Linked: %s\n", entry.CreatedAt.Format(time.RFC3339))
			fmt.Println()
		}
		return nil
	},
}

// entriesRemoveCmd removes a linked printer by host
var entriesRemoveCmd = &cobra.Command{
	Use:   "remove <host>",
	Short: "Remove a linked printer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := entries.DefaultStore()
		if err != nil {
			return err
		}

		removed, err := store.Remove(args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no entry found for %q", args[0])
		}

		fmt.Printf("Removed entry for %s\n", linkflow.NormalizeHost(args[0]))
		return nil
	},
}
