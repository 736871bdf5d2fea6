package server

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/okvist/printlink/internal/logging"
)

// digestRealm is the authentication realm reported in challenges, matching
// what PrusaLink firmware uses.
const digestRealm = "Printer API"

// versionResponse is the /api/version payload
type versionResponse struct {
	API      string `json:"api"`
	Server   string `json:"server"`
	Hostname string `json:"hostname"`
	Text     string `json:"text"`
}

// handleVersion answers the version endpoint
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	resp := versionResponse{
		API:      s.config.API,
		Server:   s.config.Server,
		Hostname: s.config.Hostname,
		Text:     fmt.Sprintf("PrusaLink %s", s.config.Server),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("Failed to encode version response", zap.Error(err))
		return
	}

	logging.LogHTTPRequest(r, http.StatusOK)
}

// requireAuth wraps a handler with the configured authentication scheme
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case s.config.APIKey != "":
			if !s.checkAPIKey(r) {
				logging.LogHTTPRequest(r, http.StatusUnauthorized)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		case s.config.User != "":
			if !s.checkDigest(r) {
				s.challenge(w)
				logging.LogHTTPRequest(r, http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// checkAPIKey verifies the X-Api-Key header in constant time
func (s *Server) checkAPIKey(r *http.Request) bool {
	key := r.Header.Get("X-Api-Key")
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.config.APIKey)) == 1
}

// challenge sends a 401 with a fresh digest challenge
func (s *Server) challenge(w http.ResponseWriter) {
	nonce := s.nonces.issue()
	w.Header().Set("WWW-Authenticate",
		fmt.Sprintf(`Digest realm=%q, nonce=%q, qop="auth", algorithm=MD5`, digestRealm, nonce))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// checkDigest verifies an RFC 7616 MD5 digest Authorization header
func (s *Server) checkDigest(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Digest ") {
		return false
	}

	params := parseAuthParams(strings.TrimPrefix(header, "Digest "))

	nonce := params["nonce"]
	if params["username"] != s.config.User || !s.nonces.valid(nonce) {
		return false
	}

	ha1 := md5Hex(fmt.Sprintf("%s:%s:%s", s.config.User, params["realm"], s.config.Password))
	ha2 := md5Hex(fmt.Sprintf("%s:%s", r.Method, params["uri"]))

	var expected string
	if params["qop"] == "auth" {
		expected = md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s",
			ha1, nonce, params["nc"], params["cnonce"], params["qop"], ha2))
	} else {
		// RFC 2069 fallback for clients that ignore qop
		expected = md5Hex(fmt.Sprintf("%s:%s:%s", ha1, nonce, ha2))
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(params["response"])) == 1
}

// parseAuthParams splits comma-separated key=value pairs, honoring commas
// inside quoted values
func parseAuthParams(s string) map[string]string {
	params := make(map[string]string)

	var parts []string
	var current strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ',' && !inQuotes:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, current.String())

	for _, part := range parts {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		params[strings.ToLower(key)] = strings.Trim(value, `"`)
	}

	return params
}

// md5Hex returns the lowercase hex MD5 of s
func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// nonceTTL bounds how long an issued nonce stays acceptable
const nonceTTL = 5 * time.Minute

// nonceCache tracks issued digest nonces
type nonceCache struct {
	mu     sync.Mutex
	nonces map[string]time.Time
}

// newNonceCache creates an empty nonce cache
func newNonceCache() *nonceCache {
	return &nonceCache{nonces: make(map[string]time.Time)}
}

// issue generates and records a fresh nonce
func (c *nonceCache) issue() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	nonce := hex.EncodeToString(buf)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Trim expired entries while we hold the lock
	now := time.Now()
	for n, issued := range c.nonces {
		if now.Sub(issued) > nonceTTL {
			delete(c.nonces, n)
		}
	}
	c.nonces[nonce] = now

	return nonce
}

// valid reports whether a nonce was issued by this cache and is not yet
// expired
func (c *nonceCache) valid(nonce string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	issued, ok := c.nonces[nonce]
	return ok && time.Since(issued) <= nonceTTL
}
