package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
)

func TestSecretRecord_HasValidPrevious(t *testing.T) {
	now := time.Now().UTC()
	blob := &cryptoDomain.EncryptedBlob{
		Nonce:      make([]byte, cryptoDomain.NonceSize),
		Ciphertext: make([]byte, cryptoDomain.TagSize),
	}

	tests := []struct {
		name     string
		record   SecretRecord
		expected bool
	}{
		{
			name:     "no previous secret",
			record:   SecretRecord{TenantID: "t1"},
			expected: false,
		},
		{
			name: "previous inside grace window",
			record: SecretRecord{
				TenantID:                "t1",
				PreviousEncryptedSecret: blob,
				PreviousEncryptedDek:    blob,
				PreviousExpiresAt:       ptrTime(now.Add(time.Minute)),
			},
			expected: true,
		},
		{
			name: "previous expired",
			record: SecretRecord{
				TenantID:                "t1",
				PreviousEncryptedSecret: blob,
				PreviousEncryptedDek:    blob,
				PreviousExpiresAt:       ptrTime(now.Add(-time.Minute)),
			},
			expected: false,
		},
		{
			name: "previous secret without expiry",
			record: SecretRecord{
				TenantID:                "t1",
				PreviousEncryptedSecret: blob,
				PreviousEncryptedDek:    blob,
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.HasValidPrevious(now))
		})
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
