package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
)

// FingerprintToken returns a deterministic SHA-256 fingerprint of a secret,
// base64url encoded. It identifies which secret is configured without
// revealing it.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ShortFingerprint is the first 8 characters of FingerprintToken, enough to
// tell configured secrets apart in logs.
func ShortFingerprint(token string) string {
	return FingerprintToken(token)[:8]
}
