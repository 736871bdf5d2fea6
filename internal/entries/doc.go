// Package entries persists the link entries created by the setup flow.
//
// This package manages a YAML-based registry file that stores one entry per
// linked printer: the entry title (the printer's reported hostname) and the
// normalized link configuration the wizard validated. The registry follows
// OS-specific conventions for storage location.
//
// # Registry File Location
//
// The registry file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/printlink/entries.yaml or $HOME/.config/printlink/entries.yaml
//   - macOS: $HOME/.config/printlink/entries.yaml
//   - Windows: %LOCALAPPDATA%\printlink\entries.yaml
//
// The file carries credentials (passwords or API keys) for the linked
// printers, so it is written with 0600 permissions. Encryption at rest is
// out of scope for this tool.
//
// # Usage Example
//
//	store, err := entries.NewStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Persist a validated configuration (implements linkflow.EntryStore)
//	if err := store.Create("PrusaMINI", cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Enumerate linked printers
//	list, err := store.List()
//
// # Thread Safety
//
// File operations are protected by a mutex and use atomic tmp+rename
// writes to ensure the registry is never corrupted by a crash.
package entries
