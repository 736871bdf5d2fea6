package printer

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// challenge holds the parameters of a WWW-Authenticate: Digest header,
// as sent by PrusaLink firmwares on a 401 response.
type challenge struct {
	realm     string
	nonce     string
	qop       string
	opaque    string
	algorithm string
}

// parseChallenge parses a WWW-Authenticate header value into a challenge.
// Only the Digest scheme is supported.
func parseChallenge(header string) (*challenge, error) {
	const prefix = "Digest "
	if !strings.HasPrefix(header, prefix) {
		return nil, fmt.Errorf("unsupported authentication scheme: %q", header)
	}

	ch := &challenge{algorithm: "MD5"}
	for _, param := range splitChallengeParams(header[len(prefix):]) {
		key, value, found := strings.Cut(param, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "realm":
			ch.realm = value
		case "nonce":
			ch.nonce = value
		case "qop":
			ch.qop = value
		case "opaque":
			ch.opaque = value
		case "algorithm":
			ch.algorithm = value
		}
	}

	if ch.nonce == "" {
		return nil, fmt.Errorf("digest challenge missing nonce: %q", header)
	}

	return ch, nil
}

// splitChallengeParams splits a challenge parameter list on commas while
// respecting quoted values (qop="auth,auth-int" must stay intact).
func splitChallengeParams(s string) []string {
	var params []string
	var current strings.Builder
	inQuotes := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ',' && !inQuotes:
			if p := strings.TrimSpace(current.String()); p != "" {
				params = append(params, p)
			}
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if p := strings.TrimSpace(current.String()); p != "" {
		params = append(params, p)
	}

	return params
}

// authorize computes the Authorization header value answering the
// challenge for the given request method, URI and credentials.
func (ch *challenge) authorize(method, uri, username, password string) (string, error) {
	if !strings.EqualFold(ch.algorithm, "MD5") {
		return "", fmt.Errorf("unsupported digest algorithm: %q", ch.algorithm)
	}

	ha1 := md5Hex(username + ":" + ch.realm + ":" + password)
	ha2 := md5Hex(method + ":" + uri)

	var response string
	var parts []string

	if qopAuth(ch.qop) {
		cnonce, err := newCnonce()
		if err != nil {
			return "", err
		}
		const nc = "00000001"
		response = md5Hex(strings.Join([]string{ha1, ch.nonce, nc, cnonce, "auth", ha2}, ":"))
		parts = []string{
			fmt.Sprintf(`username=%q`, username),
			fmt.Sprintf(`realm=%q`, ch.realm),
			fmt.Sprintf(`nonce=%q`, ch.nonce),
			fmt.Sprintf(`uri=%q`, uri),
			fmt.Sprintf(`response=%q`, response),
			`qop=auth`,
			fmt.Sprintf(`nc=%s`, nc),
			fmt.Sprintf(`cnonce=%q`, cnonce),
		}
	} else {
		// Legacy RFC 2069 form without qop
		response = md5Hex(ha1 + ":" + ch.nonce + ":" + ha2)
		parts = []string{
			fmt.Sprintf(`username=%q`, username),
			fmt.Sprintf(`realm=%q`, ch.realm),
			fmt.Sprintf(`nonce=%q`, ch.nonce),
			fmt.Sprintf(`uri=%q`, uri),
			fmt.Sprintf(`response=%q`, response),
		}
	}

	if ch.opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque=%q`, ch.opaque))
	}
	parts = append(parts, `algorithm=MD5`)

	return "Digest " + strings.Join(parts, ", "), nil
}

// qopAuth reports whether the challenge offers the "auth" quality of
// protection.
func qopAuth(qop string) bool {
	for _, option := range strings.Split(qop, ",") {
		if strings.TrimSpace(option) == "auth" {
			return true
		}
	}
	return false
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newCnonce() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate cnonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
