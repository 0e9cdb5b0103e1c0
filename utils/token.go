package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSessionToken returns a 32-char hex string used as the bearer
// capability for a table session. Customers hold nothing else, so the
// only requirement is that it cannot be guessed.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
