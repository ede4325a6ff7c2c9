// Package session issues opaque session tokens. Only the SHA-256 of a
// token is persisted; the raw value lives in the client cookie.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// CookieName is the session cookie set on login.
const CookieName = "_sid"

// NewToken returns a fresh random token and its stored hash.
func NewToken() (token, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(raw)
	return token, HashToken(token), nil
}

// HashToken maps a raw token to the value persisted in the sessions table.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
