// Package auth provides shared-secret bearer token authentication for
// subscribers and HTTP endpoints.
package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Authentication methods reported to subscribers.
const (
	MethodHeader = "header"
	MethodQuery  = "query"
)

// Verifier checks presented tokens against the configured secret.
type Verifier struct {
	secret          []byte
	allowQueryToken bool
}

// NewVerifier creates a Verifier. An empty secret rejects every token.
func NewVerifier(secret string, allowQueryToken bool) *Verifier {
	return &Verifier{
		secret:          []byte(secret),
		allowQueryToken: allowQueryToken,
	}
}

// LoadSecret returns secret, or the trimmed contents of path when secret is empty.
func LoadSecret(secret, path string) (string, error) {
	if secret != "" {
		return secret, nil
	}
	if path == "" {
		return "", fmt.Errorf("auth token or token file is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", path)
	}
	return token, nil
}

// Verify reports whether token matches the secret.
func (v *Verifier) Verify(token string) bool {
	if len(v.secret) == 0 || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), v.secret) == 1
}

// Token extracts the presented token from r and the method it came by.
// The Authorization bearer header wins; ?token= is read only when query
// tokens are allowed.
func (v *Verifier) Token(r *http.Request) (token, method string) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value), MethodHeader
		}
	}

	if v.allowQueryToken {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, MethodQuery
		}
	}
	return "", ""
}

// Authenticate extracts and verifies the token on r.
func (v *Verifier) Authenticate(r *http.Request) (method string, ok bool) {
	token, method := v.Token(r)
	if !v.Verify(token) {
		return method, false
	}
	return method, true
}
