// Package token provides opaque capability-token generation.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy per token. 32 bytes (256 bits) keeps tokens
// unguessable as one-time capabilities.
const tokenBytes = 32

// Issuer generates cryptographically unpredictable opaque tokens.
type Issuer struct{}

// NewIssuer creates a new Issuer.
func NewIssuer() *Issuer {
	return &Issuer{}
}

// Generate returns a fresh 64-character hex token from crypto/rand.
func (i *Issuer) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
