package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewResetToken returns an opaque token string: a random UUID in hex
// followed by 32 bytes from crypto/rand, base64url encoded. The storage
// layer still enforces uniqueness.
func NewResetToken() (string, error) {
	id := uuid.New()

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read token bytes: %w", err)
	}

	return hex.EncodeToString(id[:]) + base64.RawURLEncoding.EncodeToString(buf), nil
}
