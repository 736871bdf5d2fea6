// Package ui provides terminal UI components for the printlink-cfg CLI.
//
// This package uses Lipgloss to render polished terminal output for the
// non-interactive commands. Unlike the interactive TUI wizard, these
// components follow a "run once and exit" pattern - they render output
// compellingly but don't require user interaction.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Result: Success/failure boxes with styled information
//
// # Usage Pattern
//
//	fmt.Println(ui.RenderCommandHeader(ui.HeaderConfig{
//	    Title:   "Link Printer",
//	    Command: "printlink-cfg link",
//	    Params:  map[string]string{"Host": host},
//	}))
//
//	// ... perform the operation ...
//
//	fmt.Println(ui.RenderSuccess("Printer linked", details))
package ui
