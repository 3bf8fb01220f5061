package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SessionTokenBytes is the entropy of an admin session token
const SessionTokenBytes = 32

// GenerateSecret generates a cryptographically secure random hex string
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSessionToken generates an opaque admin session token
func GenerateSessionToken() (string, error) {
	return GenerateSecret(SessionTokenBytes)
}
