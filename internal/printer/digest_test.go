package printer

import (
	"strings"
	"testing"
)

func TestParseChallenge(t *testing.T) {
	header := `Digest realm="Printer API", nonce="abc123", qop="auth,auth-int", opaque="xyz", algorithm=MD5`

	ch, err := parseChallenge(header)
	if err != nil {
		t.Fatalf("parseChallenge() error = %v", err)
	}

	if ch.realm != "Printer API" {
		t.Errorf("realm = %q, want Printer API", ch.realm)
	}
	if ch.nonce != "abc123" {
		t.Errorf("nonce = %q, want abc123", ch.nonce)
	}
	if ch.qop != "auth,auth-int" {
		t.Errorf("qop = %q, want auth,auth-int", ch.qop)
	}
	if ch.opaque != "xyz" {
		t.Errorf("opaque = %q, want xyz", ch.opaque)
	}
	if ch.algorithm != "MD5" {
		t.Errorf("algorithm = %q, want MD5", ch.algorithm)
	}
}

func TestParseChallengeDefaults(t *testing.T) {
	ch, err := parseChallenge(`Digest realm="r", nonce="n"`)
	if err != nil {
		t.Fatalf("parseChallenge() error = %v", err)
	}

	if ch.algorithm != "MD5" {
		t.Errorf("algorithm = %q, want MD5 default", ch.algorithm)
	}
	if ch.qop != "" {
		t.Errorf("qop = %q, want empty", ch.qop)
	}
}

func TestParseChallengeRejectsBasic(t *testing.T) {
	if _, err := parseChallenge(`Basic realm="r"`); err == nil {
		t.Error("parseChallenge() should reject non-digest schemes")
	}
}

func TestParseChallengeRequiresNonce(t *testing.T) {
	if _, err := parseChallenge(`Digest realm="r"`); err == nil {
		t.Error("parseChallenge() should require a nonce")
	}
}

func TestSplitChallengeParamsRespectsQuotes(t *testing.T) {
	params := splitChallengeParams(`realm="a,b", nonce="n", qop="auth,auth-int"`)

	want := []string{`realm="a,b"`, `nonce="n"`, `qop="auth,auth-int"`}
	if len(params) != len(want) {
		t.Fatalf("got %d params %v, want %d", len(params), params, len(want))
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("params[%d] = %q, want %q", i, params[i], want[i])
		}
	}
}

func TestAuthorizeLegacy(t *testing.T) {
	// RFC 2069 form: no qop, so the response is fully deterministic.
	ch := &challenge{realm: "testrealm", nonce: "deadbeef", algorithm: "MD5"}

	header, err := ch.authorize("GET", "/api/version", "maker", "hunter2")
	if err != nil {
		t.Fatalf("authorize() error = %v", err)
	}

	ha1 := md5Hex("maker:testrealm:hunter2")
	ha2 := md5Hex("GET:/api/version")
	wantResponse := md5Hex(ha1 + ":deadbeef:" + ha2)

	if !strings.Contains(header, `response="`+wantResponse+`"`) {
		t.Errorf("header = %q, want response %q", header, wantResponse)
	}
	if strings.Contains(header, "qop=") {
		t.Errorf("header = %q should not negotiate qop", header)
	}
}

func TestAuthorizeQopAuth(t *testing.T) {
	ch := &challenge{realm: "Printer API", nonce: "abc123", qop: "auth", algorithm: "MD5"}

	header, err := ch.authorize("GET", "/api/version", "maker", "hunter2")
	if err != nil {
		t.Fatalf("authorize() error = %v", err)
	}

	if !verifyDigestAuthorization(t, header, "GET", "maker", "hunter2", "Printer API", "abc123") {
		t.Errorf("server-side verification failed for %q", header)
	}
	if !strings.Contains(header, "qop=auth") {
		t.Errorf("header = %q, want qop=auth", header)
	}
	if !strings.Contains(header, `nc=00000001`) {
		t.Errorf("header = %q, want nc=00000001", header)
	}
}

func TestAuthorizeRejectsUnknownAlgorithm(t *testing.T) {
	ch := &challenge{realm: "r", nonce: "n", algorithm: "SHA-512"}

	if _, err := ch.authorize("GET", "/", "u", "p"); err == nil {
		t.Error("authorize() should reject unsupported algorithms")
	}
}

// verifyDigestAuthorization recomputes the digest response the way a
// printer would and compares it to the one in the Authorization header.
func verifyDigestAuthorization(t *testing.T, header, method, user, password, realm, nonce string) bool {
	t.Helper()

	params := map[string]string{}
	for _, p := range splitChallengeParams(strings.TrimPrefix(header, "Digest ")) {
		key, value, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		params[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	if params["username"] != user || params["realm"] != realm || params["nonce"] != nonce {
		return false
	}

	ha1 := md5Hex(user + ":" + realm + ":" + password)
	ha2 := md5Hex(method + ":" + params["uri"])

	var want string
	if params["qop"] == "auth" {
		want = md5Hex(strings.Join([]string{ha1, nonce, params["nc"], params["cnonce"], "auth", ha2}, ":"))
	} else {
		want = md5Hex(ha1 + ":" + nonce + ":" + ha2)
	}

	return params["response"] == want
}
