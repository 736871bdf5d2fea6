package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okvist/printlink/internal/linkflow"
	"github.com/okvist/printlink/internal/printer"
)

// newTestServer starts the simulator's handler on an httptest listener
func newTestServer(t *testing.T, config *Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(config)
	ts := httptest.NewServer(s.http.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func TestVersionWithAPIKey(t *testing.T) {
	_, ts := newTestServer(t, &Config{Hostname: "PrusaMINI", APIKey: "secret"})

	cfg := linkflow.LinkConfiguration{
		Host: ts.URL,
		Auth: linkflow.APIKeyAuth("secret"),
	}

	info, err := printer.NewClient().GetVersion(context.Background(), cfg)
	if err != nil {
		t.Fatalf("GetVersion() error = %v", err)
	}
	if info.Hostname != "PrusaMINI" {
		t.Errorf("Hostname = %q, want PrusaMINI", info.Hostname)
	}
	if info.API != "2.0.0" {
		t.Errorf("API = %q, want 2.0.0", info.API)
	}
}

func TestVersionRejectsWrongAPIKey(t *testing.T) {
	_, ts := newTestServer(t, &Config{APIKey: "secret"})

	cfg := linkflow.LinkConfiguration{
		Host: ts.URL,
		Auth: linkflow.APIKeyAuth("wrong"),
	}

	_, err := printer.NewClient().GetVersion(context.Background(), cfg)
	if err == nil {
		t.Fatal("GetVersion() succeeded with wrong API key")
	}
	if !errors.Is(err, linkflow.ErrInvalidAuth) {
		t.Errorf("error = %v, want ErrInvalidAuth in chain", err)
	}
}

func TestVersionWithDigestAuth(t *testing.T) {
	_, ts := newTestServer(t, &Config{
		Hostname: "PrusaXL",
		User:     "maker",
		Password: "hunter2",
	})

	cfg := linkflow.LinkConfiguration{
		Host: ts.URL,
		Auth: linkflow.DigestAuth("maker", "hunter2"),
	}

	info, err := printer.NewClient().GetVersion(context.Background(), cfg)
	if err != nil {
		t.Fatalf("GetVersion() error = %v", err)
	}
	if info.Hostname != "PrusaXL" {
		t.Errorf("Hostname = %q, want PrusaXL", info.Hostname)
	}
}

func TestVersionRejectsWrongDigestPassword(t *testing.T) {
	_, ts := newTestServer(t, &Config{User: "maker", Password: "hunter2"})

	cfg := linkflow.LinkConfiguration{
		Host: ts.URL,
		Auth: linkflow.DigestAuth("maker", "wrong"),
	}

	_, err := printer.NewClient().GetVersion(context.Background(), cfg)
	if !errors.Is(err, linkflow.ErrInvalidAuth) {
		t.Errorf("error = %v, want ErrInvalidAuth in chain", err)
	}
}

func TestVersionWithoutCredentialsConfigured(t *testing.T) {
	_, ts := newTestServer(t, &Config{Hostname: "PrusaMK4"})

	resp, err := http.Get(ts.URL + "/api/version")
	if err != nil {
		t.Fatalf("GET /api/version error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestChallengeCarriesFreshNonce(t *testing.T) {
	_, ts := newTestServer(t, &Config{User: "maker", Password: "hunter2"})

	var nonces []string
	for range 2 {
		resp, err := http.Get(ts.URL + "/api/version")
		if err != nil {
			t.Fatalf("GET error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
		header := resp.Header.Get("WWW-Authenticate")
		if !strings.HasPrefix(header, "Digest ") {
			t.Fatalf("WWW-Authenticate = %q, want digest challenge", header)
		}
		nonces = append(nonces, parseAuthParams(strings.TrimPrefix(header, "Digest "))["nonce"])
	}

	if nonces[0] == "" || nonces[0] == nonces[1] {
		t.Errorf("nonces not fresh: %v", nonces)
	}
}

func TestParseAuthParams(t *testing.T) {
	params := parseAuthParams(`username="maker", realm="Printer API", nonce="abc", uri="/api/version", qop=auth, nc=00000001, cnonce="xyz", response="deadbeef"`)

	want := map[string]string{
		"username": "maker",
		"realm":    "Printer API",
		"nonce":    "abc",
		"uri":      "/api/version",
		"qop":      "auth",
		"nc":       "00000001",
		"cnonce":   "xyz",
		"response": "deadbeef",
	}
	for key, value := range want {
		if params[key] != value {
			t.Errorf("params[%q] = %q, want %q", key, params[key], value)
		}
	}
}

func TestNonceCacheExpiry(t *testing.T) {
	cache := newNonceCache()

	nonce := cache.issue()
	if !cache.valid(nonce) {
		t.Error("freshly issued nonce reported invalid")
	}
	if cache.valid("never-issued") {
		t.Error("unknown nonce reported valid")
	}
}

func TestDefaultsApplied(t *testing.T) {
	s := New(&Config{})

	if s.config.Hostname != "PrusaMINI" {
		t.Errorf("Hostname default = %q", s.config.Hostname)
	}
	if s.config.API != "2.0.0" {
		t.Errorf("API default = %q", s.config.API)
	}
}
