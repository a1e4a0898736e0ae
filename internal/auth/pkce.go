// Package auth implements the authorization-code flow with PKCE against the
// catalogue service's accounts endpoint, and keeps the stored access token
// fresh for API calls.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	verifierLength   = 128
	verifierAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewVerifier returns a random PKCE code verifier.
func NewVerifier() (string, error) {
	return randomString(verifierLength)
}

// Challenge derives the S256 code challenge for verifier.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func randomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		// 256 is not a multiple of 62, the slight bias is acceptable for a verifier.
		out[i] = verifierAlphabet[int(b)%len(verifierAlphabet)]
	}
	return string(out), nil
}
