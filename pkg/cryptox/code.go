package cryptox

import (
	"crypto/rand"
	"fmt"
)

// AlphanumericAlphabet holds the 62 symbols used for invite codes.
const AlphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultCodeLength gives 62^8 (~2.2e14) possible codes.
const DefaultCodeLength = 8

// GenerateCode returns a uniformly random string of length symbols drawn
// from alphabet. Bytes that would bias the distribution are rejected.
func GenerateCode(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}
	if len(alphabet) < 2 || len(alphabet) > 256 {
		return "", fmt.Errorf("alphabet size must be in [2, 256], got %d", len(alphabet))
	}

	limit := 256 - (256 % len(alphabet))
	out := make([]byte, 0, length)
	buf := make([]byte, length*2)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// GenerateInviteCode returns a DefaultCodeLength alphanumeric code.
func GenerateInviteCode() (string, error) {
	return GenerateCode(DefaultCodeLength, AlphanumericAlphabet)
}
