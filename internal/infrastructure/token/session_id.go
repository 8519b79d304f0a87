package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const sessionIDBytes = 32

// RandomSessionIDs generates session ids from crypto/rand.
// Implements domain.SessionIDGenerator.
type RandomSessionIDs struct{}

// NewRandomSessionIDs creates a new session id generator.
func NewRandomSessionIDs() *RandomSessionIDs {
	return &RandomSessionIDs{}
}

// NewSessionID returns 256 bits of randomness, base64url encoded without padding.
func (RandomSessionIDs) NewSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
