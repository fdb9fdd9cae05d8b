package usecase

import (
	"crypto/rand"
	"encoding/base64"

	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// GenerateSecret creates a new cryptographically secure 32-byte random secret.
// The secret is base64-encoded for easy transmission and storage.
func GenerateSecret() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate random secret")
	}
	return base64.URLEncoding.EncodeToString(randomBytes), nil
}
