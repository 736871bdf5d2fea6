package linkflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AuthType selects the credential scheme used to talk to the printer.
type AuthType string

const (
	// AuthTypeDigest is username/password HTTP digest authentication.
	AuthTypeDigest AuthType = "digestAuth"

	// AuthTypeAPIKey is single shared-secret authentication via API key.
	AuthTypeAPIKey AuthType = "apiKeyAuth"
)

// Form field names shared between the flow and its front ends.
const (
	FieldAuthType = "authType"
	FieldHost     = "host"
	FieldUser     = "user"
	FieldPassword = "password"
	FieldAPIKey   = "apiKey"
)

// AuthConfig is a tagged union of the supported credential schemes.
// Exactly one variant is populated, selected by Type.
type AuthConfig struct {
	Type AuthType `yaml:"authType" json:"authType"`

	// Digest variant
	User     string `yaml:"user,omitempty" json:"user,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// API key variant
	APIKey string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
}

// DigestAuth builds the username/password variant of AuthConfig.
func DigestAuth(user, password string) AuthConfig {
	return AuthConfig{Type: AuthTypeDigest, User: user, Password: password}
}

// APIKeyAuth builds the API key variant of AuthConfig.
func APIKeyAuth(apiKey string) AuthConfig {
	return AuthConfig{Type: AuthTypeAPIKey, APIKey: apiKey}
}

// LinkConfiguration is the normalized connection descriptor sent to the
// device client and persisted as entry data. The host always carries a URL
// scheme and no trailing slash. Built fresh on every validation attempt.
type LinkConfiguration struct {
	Host string     `yaml:"host" json:"host"`
	Auth AuthConfig `yaml:"auth" json:"auth"`
}

// VersionInfo is the printer's response to a successful validation call.
type VersionInfo struct {
	API      string `json:"api"`
	Server   string `json:"server"`
	Hostname string `json:"hostname"`
	Text     string `json:"text"`
}

// DeviceClient performs the reachability and credential check against the
// printer. Implementations classify failures by wrapping ErrCannotConnect
// or ErrInvalidAuth so the flow can map them to error tags.
type DeviceClient interface {
	Validate(ctx context.Context, cfg LinkConfiguration) (*VersionInfo, error)
}

// EntryStore persists the final link configuration.
type EntryStore interface {
	Create(title string, cfg LinkConfiguration) error
}

// Sentinel errors used by DeviceClient implementations to classify
// validation failures.
var (
	// ErrCannotConnect marks a transport-level failure (dial error,
	// unreachable host). Timeouts are detected separately through the
	// context deadline.
	ErrCannotConnect = errors.New("cannot connect to printer")

	// ErrInvalidAuth marks a credential rejection from the printer.
	ErrInvalidAuth = errors.New("printer rejected credentials")
)

// NormalizeHost strips trailing slashes and prepends "http://" when the
// host carries no scheme. Hosts already prefixed with http:// or https://
// keep their scheme.
func NormalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host
}

// String returns a human-readable name for the auth type.
func (a AuthType) String() string {
	switch a {
	case AuthTypeDigest:
		return "Username / Password"
	case AuthTypeAPIKey:
		return "API Key"
	default:
		return string(a)
	}
}

// Valid reports whether the auth type is one of the supported variants.
func (a AuthType) Valid() bool {
	return a == AuthTypeDigest || a == AuthTypeAPIKey
}

// Redacted returns a copy of the configuration with secret fields masked,
// safe for logging.
func (c LinkConfiguration) Redacted() string {
	switch c.Auth.Type {
	case AuthTypeDigest:
		return fmt.Sprintf("%s (digest, user=%s)", c.Host, c.Auth.User)
	case AuthTypeAPIKey:
		return fmt.Sprintf("%s (api key)", c.Host)
	default:
		return c.Host
	}
}
