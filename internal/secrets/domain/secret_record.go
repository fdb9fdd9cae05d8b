// Package domain defines the core domain models for tenant secret records.
// Each tenant owns exactly one record holding its token encrypted under a
// per-tenant DEK, with the DEK itself wrapped under the process master key.
package domain

import (
	"time"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
)

// SecretRecord represents the persisted envelope-encrypted secret of one tenant.
//
// Records are created once per tenant (registration is idempotent) and mutated
// only by rotation, which replaces the secret, the DEK, and the updated
// timestamp, and increments the rotation count. The tenant identifier never
// changes. When a rotation grace period is configured, the outgoing secret and
// its DEK are kept in the Previous* fields until PreviousExpiresAt.
type SecretRecord struct {
	// TenantID is the unique, immutable record key.
	TenantID string
	// EncryptedSecret is the tenant token encrypted under the tenant's DEK.
	EncryptedSecret cryptoDomain.EncryptedBlob
	// EncryptedDek is the DEK wrapped under the master key.
	EncryptedDek cryptoDomain.EncryptedBlob
	// Algorithm is the AEAD algorithm identifier, recorded for forward compatibility.
	Algorithm cryptoDomain.Algorithm
	// PreviousEncryptedSecret holds the pre-rotation token during a grace window (nil otherwise).
	PreviousEncryptedSecret *cryptoDomain.EncryptedBlob
	// PreviousEncryptedDek holds the pre-rotation DEK during a grace window (nil otherwise).
	PreviousEncryptedDek *cryptoDomain.EncryptedBlob
	// PreviousExpiresAt is the UTC instant after which the previous secret stops verifying.
	PreviousExpiresAt *time.Time
	// CreatedAt is the UTC timestamp of registration.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last mutation.
	UpdatedAt time.Time
	// RotationCount is incremented on every rotation, starting at 0.
	RotationCount uint
}

// HasValidPrevious reports whether the record carries a previous secret that
// is still inside its rotation grace window at the given instant.
func (r *SecretRecord) HasValidPrevious(now time.Time) bool {
	return r.PreviousEncryptedSecret != nil &&
		r.PreviousEncryptedDek != nil &&
		r.PreviousExpiresAt != nil &&
		now.Before(*r.PreviousExpiresAt)
}
