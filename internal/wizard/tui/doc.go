// Package tui implements the terminal user interface for the printlink
// setup wizard.
//
// This package provides an interactive, full-screen TUI for linking a
// network 3D printer. Built using the Bubble Tea framework, it follows the
// Elm architecture with immutable state updates and a clean
// Model-Update-View pattern.
//
// # Screen Flow
//
// The typical user flow through the wizard:
//
//  1. Discovery screen (optional): scans the network for printers via
//     mDNS; selecting one prefills the host field. Manual entry is always
//     available.
//  2. Auth-choice screen: pick username/password or API key. After a
//     failed attempt the flow returns here with the error rendered.
//  3. Credentials screen: host plus the fields the chosen auth type
//     requires; secret fields are masked.
//  4. Validating screen: spinner while the printer is checked (single
//     timeout-bounded call).
//  5. Success screen: shows the created entry.
//
// All validation and persistence logic lives in the linkflow package; the
// TUI only collects input and renders FormRequest/Result values.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: loading indicator during scan and validation
//   - bubbles/textinput: text entry with masked secrets
//   - bubbles/list: discovered printer selection
//   - bubbles/help: context-aware key binding help
//   - lipgloss: styling and layout
//
// # Thread Safety
//
// The Bubble Tea framework ensures thread safety through message passing.
// All model updates occur in a single goroutine.
package tui
