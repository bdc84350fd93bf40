package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// resetTokenSize gives reset tokens 256 bits of entropy (43 chars base64url).
const resetTokenSize = 32

// generateToken creates a cryptographically secure random token of size
// bytes, encoded as unpadded base64url.
func generateToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the SHA-256 fingerprint under which an opaque
// token is stored, so tokens can be looked up without keeping them in clear.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
