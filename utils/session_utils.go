package utils

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// GenerateSessionID creates a random URL-safe session id for clients that
// did not send one.
func GenerateSessionID() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "session_" + uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
