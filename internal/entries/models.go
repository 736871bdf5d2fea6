package entries

import (
	"strings"
	"time"

	"github.com/okvist/printlink/internal/linkflow"
)

// Registry represents the entire entries file.
type Registry struct {
	Version int               `yaml:"version"`
	Entries map[string]*Entry `yaml:"entries,omitempty"` // Keyed by a slug of the host
}

// Entry represents one linked printer.
type Entry struct {
	Title     string                     `yaml:"title"`      // Printer-reported hostname
	Config    linkflow.LinkConfiguration `yaml:"config"`     // Validated link configuration
	CreatedAt time.Time                  `yaml:"created_at"` // When the link was established
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Entries: make(map[string]*Entry),
	}
}

// Get retrieves an entry by key. Returns nil if the entry doesn't exist.
func (r *Registry) Get(key string) *Entry {
	return r.Entries[key]
}

// Put adds or replaces the entry for the given configuration, keyed by a
// slug of its host. Returns the key used.
func (r *Registry) Put(title string, cfg linkflow.LinkConfiguration) string {
	if r.Entries == nil {
		r.Entries = make(map[string]*Entry)
	}

	key := EntryKey(cfg.Host)
	r.Entries[key] = &Entry{
		Title:     title,
		Config:    cfg,
		CreatedAt: time.Now(),
	}
	return key
}

// Remove deletes the entry for key. Reports whether an entry existed.
func (r *Registry) Remove(key string) bool {
	if _, ok := r.Entries[key]; !ok {
		return false
	}
	delete(r.Entries, key)
	return true
}

// EntryKey derives the registry key for a normalized host: the host with
// its scheme stripped and path separators flattened.
func EntryKey(host string) string {
	key := strings.TrimPrefix(host, "http://")
	key = strings.TrimPrefix(key, "https://")
	return strings.ReplaceAll(key, "/", "_")
}
