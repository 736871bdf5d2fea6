package printer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/okvist/printlink/internal/linkflow"
	"github.com/okvist/printlink/internal/logging"
)

// VersionPath is the printer API endpoint used for the reachability and
// credential check.
const VersionPath = "/api/version"

// apiKeyHeader carries the shared secret for API key authentication.
const apiKeyHeader = "X-Api-Key"

// Client talks to the local HTTP API of a PrusaLink-compatible printer.
// Credentials travel with each LinkConfiguration rather than with the
// client, so one Client serves any number of validation attempts.
type Client struct {
	// HTTPClient is the underlying HTTP client. Timeouts are applied by
	// callers through the request context.
	HTTPClient *http.Client
}

// NewClient creates a printer client with default settings
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{},
	}
}

// Validate implements linkflow.DeviceClient by fetching the printer's
// version endpoint with the configured credentials.
func (c *Client) Validate(ctx context.Context, cfg linkflow.LinkConfiguration) (*linkflow.VersionInfo, error) {
	info, err := c.GetVersion(ctx, cfg)
	if err != nil {
		logging.Debug("Printer validation failed",
			zap.String("target", cfg.Redacted()),
			zap.Error(err),
		)
		return nil, err
	}

	logging.Debug("Printer validation succeeded",
		zap.String("target", cfg.Redacted()),
		zap.String("api", info.API),
		zap.String("hostname", info.Hostname),
	)
	return info, nil
}

// GetVersion fetches and parses the /api/version response.
func (c *Client) GetVersion(ctx context.Context, cfg linkflow.LinkConfiguration) (*linkflow.VersionInfo, error) {
	resp, err := c.get(ctx, cfg, VersionPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewAuthError("printer rejected credentials", resp.StatusCode)
	default:
		return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	var info linkflow.VersionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, NewParseError("failed to parse version response", err)
	}

	return &info, nil
}

// get performs an authenticated GET against the printer. For digest auth
// the first 401 carries the challenge, which is answered with a single
// retried request.
func (c *Client) get(ctx context.Context, cfg linkflow.LinkConfiguration, path string) (*http.Response, error) {
	req, err := c.newRequest(ctx, cfg, path)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusUnauthorized || cfg.Auth.Type != linkflow.AuthTypeDigest {
		return resp, nil
	}

	// Digest challenge round: answer the nonce and retry once.
	header := resp.Header.Get("WWW-Authenticate")
	_ = resp.Body.Close()

	ch, err := parseChallenge(header)
	if err != nil {
		return nil, NewAuthError(fmt.Sprintf("unusable digest challenge: %v", err), http.StatusUnauthorized)
	}

	authz, err := ch.authorize(http.MethodGet, path, cfg.Auth.User, cfg.Auth.Password)
	if err != nil {
		return nil, NewAuthError(fmt.Sprintf("cannot answer digest challenge: %v", err), http.StatusUnauthorized)
	}

	req, err = c.newRequest(ctx, cfg, path)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authz)

	resp, err = c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	return resp, nil
}

// newRequest builds a GET request with the non-challenge auth headers set.
func (c *Client) newRequest(ctx context.Context, cfg linkflow.LinkConfiguration, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Host+path, nil)
	if err != nil {
		return nil, NewNetworkError("failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	if cfg.Auth.Type == linkflow.AuthTypeAPIKey {
		req.Header.Set(apiKeyHeader, cfg.Auth.APIKey)
	}

	return req, nil
}

// classifyTransportError keeps context errors visible through the chain
// while tagging everything else as a connectivity failure.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewNetworkError("request aborted", err)
	}
	return NewNetworkError("printer unreachable", err)
}
