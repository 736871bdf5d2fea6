package linkflow

import "testing"

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare hostname", "myprinter", "http://myprinter"},
		{"bare hostname with trailing slash", "myprinter/", "http://myprinter"},
		{"multiple trailing slashes", "myprinter///", "http://myprinter"},
		{"http scheme preserved", "http://myprinter", "http://myprinter"},
		{"https scheme preserved", "https://myprinter", "https://myprinter"},
		{"https with trailing slash", "https://myprinter/", "https://myprinter"},
		{"ip with port", "192.168.1.50:8080", "http://192.168.1.50:8080"},
		{"surrounding whitespace", "  myprinter.local ", "http://myprinter.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeHost(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeHost(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigestAuth(t *testing.T) {
	auth := DigestAuth("maker", "hunter2")

	if auth.Type != AuthTypeDigest {
		t.Errorf("Type = %q, want %q", auth.Type, AuthTypeDigest)
	}
	if auth.User != "maker" || auth.Password != "hunter2" {
		t.Errorf("credentials = %q/%q, want maker/hunter2", auth.User, auth.Password)
	}
	if auth.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", auth.APIKey)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	auth := APIKeyAuth("abc")

	if auth.Type != AuthTypeAPIKey {
		t.Errorf("Type = %q, want %q", auth.Type, AuthTypeAPIKey)
	}
	if auth.APIKey != "abc" {
		t.Errorf("APIKey = %q, want abc", auth.APIKey)
	}
	if auth.User != "" || auth.Password != "" {
		t.Errorf("digest fields = %q/%q, want empty", auth.User, auth.Password)
	}
}

func TestAuthTypeValid(t *testing.T) {
	if !AuthTypeDigest.Valid() || !AuthTypeAPIKey.Valid() {
		t.Error("supported auth types should be valid")
	}
	if AuthType("basicAuth").Valid() {
		t.Error("unknown auth type should not be valid")
	}
}

func TestRedactedHidesSecrets(t *testing.T) {
	cfg := LinkConfiguration{
		Host: "http://myprinter",
		Auth: DigestAuth("maker", "hunter2"),
	}
	if s := cfg.Redacted(); contains(s, "hunter2") {
		t.Errorf("Redacted() = %q leaks password", s)
	}

	cfg.Auth = APIKeyAuth("topsecret")
	if s := cfg.Redacted(); contains(s, "topsecret") {
		t.Errorf("Redacted() = %q leaks API key", s)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
