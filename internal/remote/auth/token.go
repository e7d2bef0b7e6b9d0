// Package auth stores the API token used by the remote client.
package auth

import (
	"strings"
	"time"
)

// expiryBuffer treats a token as expired shortly before it actually is.
const expiryBuffer = 60 * time.Second

// Token is an API bearer token. A zero ExpiresAt means it does not expire.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewToken builds a bearer token. A non-positive ttl never expires.
func NewToken(accessToken string, ttl time.Duration) *Token {
	now := time.Now()
	t := &Token{
		AccessToken: strings.TrimSpace(accessToken),
		TokenType:   "Bearer",
		CreatedAt:   now,
	}
	if ttl > 0 {
		t.ExpiresAt = now.Add(ttl)
	}
	return t
}

// IsExpired returns true if the token has expired or will expire within the buffer.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(expiryBuffer).After(t.ExpiresAt)
}

// Valid reports whether the token can be sent.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != "" && !t.IsExpired()
}

// Header returns the Authorization header value.
func (t *Token) Header() string {
	typ := t.TokenType
	if typ == "" {
		typ = "Bearer"
	}
	return typ + " " + t.AccessToken
}

// Masked returns the token with all but its last four characters hidden.
func (t *Token) Masked() string {
	if len(t.AccessToken) <= 4 {
		return strings.Repeat("*", len(t.AccessToken))
	}
	return strings.Repeat("*", 8) + t.AccessToken[len(t.AccessToken)-4:]
}
