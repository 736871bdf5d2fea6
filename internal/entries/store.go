package entries

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/okvist/printlink/internal/linkflow"
)

const (
	appName     = "printlink"
	entriesFile = "entries.yaml"
)

// GetConfigDir returns the OS-appropriate configuration directory for the
// application. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/printlink or $HOME/.config/printlink
//   - macOS: $HOME/.config/printlink (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\printlink
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: Use LOCALAPPDATA
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		// macOS: Use $HOME/.config/printlink (following modern XDG convention)
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetEntriesPath returns the full path to the entries file.
func GetEntriesPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, entriesFile), nil
}

// Store reads and writes the entries registry at a fixed path.
// It implements linkflow.EntryStore.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store at the platform-default entries path.
func NewStore() (*Store, error) {
	path, err := GetEntriesPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entries path: %w", err)
	}
	return &Store{path: path}, nil
}

// NewStoreAt creates a store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

var (
	defaultStore     *Store
	defaultStoreErr  error
	defaultStoreOnce sync.Once
)

// DefaultStore returns the process-wide store at the platform-default
// path, created on first use.
func DefaultStore() (*Store, error) {
	defaultStoreOnce.Do(func() {
		defaultStore, defaultStoreErr = NewStore()
	})
	return defaultStore, defaultStoreErr
}

// Path returns the file path backing this store.
func (s *Store) Path() string {
	return s.path
}

// Create persists a new entry for the validated configuration, replacing
// any previous entry for the same host. Implements linkflow.EntryStore.
func (s *Store) Create(title string, cfg linkflow.LinkConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	registry, err := s.load()
	if err != nil {
		return err
	}

	registry.Put(title, cfg)
	return s.save(registry)
}

// List returns all entries sorted by key.
func (s *Store) List() ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registry, err := s.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(registry.Entries))
	for key := range registry.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]*Entry, 0, len(keys))
	for _, key := range keys {
		list = append(list, registry.Entries[key])
	}
	return list, nil
}

// Remove deletes the entry for the given host (or registry key).
// Reports whether an entry existed.
func (s *Store) Remove(host string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	registry, err := s.load()
	if err != nil {
		return false, err
	}

	removed := registry.Remove(EntryKey(linkflow.NormalizeHost(host)))
	if !removed {
		return false, nil
	}

	return true, s.save(registry)
}

// load reads the registry from disk, returning a fresh default registry
// when the file doesn't exist yet.
func (s *Store) load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entries file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse entries file: %w", err)
	}

	if registry.Version != 1 {
		return nil, fmt.Errorf("unsupported entries file version: %d (expected 1)", registry.Version)
	}

	if registry.Entries == nil {
		registry.Entries = make(map[string]*Entry)
	}

	return &registry, nil
}

// save writes the registry to disk with an atomic tmp+rename, creating
// the parent directory if needed.
func (s *Store) save(registry *Registry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(registry)
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}

	header := []byte(`# printlink entries file
#
# One entry per linked printer, created by the setup wizard after a
# successful validation. This file contains printer credentials; keep its
# permissions restrictive.

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary entries file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, s.path); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save entries file: %w", err)
	}

	return nil
}
