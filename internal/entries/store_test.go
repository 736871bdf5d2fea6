package entries

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/okvist/printlink/internal/linkflow"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStoreAt(filepath.Join(t.TempDir(), "entries.yaml"))
}

func apiKeyConfig(host, key string) linkflow.LinkConfiguration {
	return linkflow.LinkConfiguration{Host: host, Auth: linkflow.APIKeyAuth(key)}
}

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "printlink") {
		t.Errorf("GetConfigDir() = %v, should contain 'printlink'", configDir)
	}

	// Platform-specific checks
	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetEntriesPath(t *testing.T) {
	path, err := GetEntriesPath()
	if err != nil {
		t.Fatalf("GetEntriesPath() error = %v", err)
	}

	if filepath.Base(path) != "entries.yaml" {
		t.Errorf("GetEntriesPath() should end with 'entries.yaml', got: %v", path)
	}
}

func TestEntryKey(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"http://myprinter", "myprinter"},
		{"https://printer.lan", "printer.lan"},
		{"http://192.168.1.50:8080", "192.168.1.50:8080"},
	}

	for _, tt := range tests {
		if got := EntryKey(tt.host); got != tt.want {
			t.Errorf("EntryKey(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestCreateAndList(t *testing.T) {
	store := testStore(t)

	before := time.Now()
	if err := store.Create("PrusaMINI", apiKeyConfig("http://myprinter", "abc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(list))
	}

	entry := list[0]
	if entry.Title != "PrusaMINI" {
		t.Errorf("Title = %q, want PrusaMINI", entry.Title)
	}
	if entry.Config.Host != "http://myprinter" {
		t.Errorf("Host = %q, want http://myprinter", entry.Config.Host)
	}
	if entry.Config.Auth.Type != linkflow.AuthTypeAPIKey || entry.Config.Auth.APIKey != "abc" {
		t.Errorf("Auth = %+v, want apiKeyAuth abc", entry.Config.Auth)
	}
	if entry.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("CreatedAt = %v, too old", entry.CreatedAt)
	}
}

func TestCreateReplacesSameHost(t *testing.T) {
	store := testStore(t)

	if err := store.Create("old", apiKeyConfig("http://myprinter", "abc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create("new", apiKeyConfig("http://myprinter", "def")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() returned %d entries, want 1 (replaced)", len(list))
	}
	if list[0].Title != "new" || list[0].Config.Auth.APIKey != "def" {
		t.Errorf("entry = %+v, want replacement", list[0])
	}
}

func TestRemove(t *testing.T) {
	store := testStore(t)

	if err := store.Create("PrusaMINI", apiKeyConfig("http://myprinter", "abc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Removal accepts the raw host the user typed, not only the key.
	removed, err := store.Remove("myprinter")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !removed {
		t.Error("Remove() = false, want true")
	}

	removed, err = store.Remove("myprinter")
	if err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
	if removed {
		t.Error("second Remove() = true, want false")
	}
}

func TestListEmptyStore(t *testing.T) {
	store := testStore(t)

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() returned %d entries, want 0", len(list))
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.yaml")
	if err := os.WriteFile(path, []byte("version: 99\n"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStoreAt(path)
	if _, err := store.List(); err == nil {
		t.Error("List() should reject unsupported file version")
	}
}

func TestSaveFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not meaningful on windows")
	}

	store := testStore(t)
	if err := store.Create("PrusaMINI", apiKeyConfig("http://myprinter", "abc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("entries file mode = %o, want 600", perm)
	}
}

func TestStoreImplementsEntryStore(t *testing.T) {
	var _ linkflow.EntryStore = testStore(t)
}

func TestDefaultStoreIsSingleton(t *testing.T) {
	first, err := DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore() error = %v", err)
	}
	second, err := DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore() error = %v", err)
	}
	if first != second {
		t.Error("DefaultStore() should return the same instance")
	}
	if filepath.Base(first.Path()) != entriesFile {
		t.Errorf("DefaultStore() path = %q, want file named %q", first.Path(), entriesFile)
	}
}
