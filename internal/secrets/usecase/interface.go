package usecase

import (
	"context"

	secretsDomain "github.com/tenantsec/tenantgate/internal/secrets/domain"
)

// SecretRecordRepository defines the interface for secret record persistence.
type SecretRecordRepository interface {
	// Get retrieves the record for a tenant, ErrRecordNotFound when absent.
	Get(ctx context.Context, tenantID string) (*secretsDomain.SecretRecord, error)

	// InsertIfAbsent atomically creates the record unless one exists.
	// Returns true when this call created the record.
	InsertIfAbsent(ctx context.Context, record *secretsDomain.SecretRecord) (bool, error)

	// Replace overwrites the tenant's record in a single atomic write.
	Replace(ctx context.Context, record *secretsDomain.SecretRecord) error
}

// SecretLifecycleManager defines the interface for tenant secret lifecycle operations.
type SecretLifecycleManager interface {
	// Register stores an envelope-encrypted secret for the tenant.
	// Registration is idempotent: an existing record is never overwritten and
	// the call reports created=false without mutation.
	Register(ctx context.Context, tenantID string, plainSecret string) (created bool, err error)

	// Verify reports whether the provided secret matches the tenant's stored
	// secret. A missing record and a wrong secret are both (false, nil) and
	// indistinguishable to the caller. A failure to unwrap the tenant's data
	// key returns a configuration error.
	Verify(ctx context.Context, tenantID string, providedSecret string) (bool, error)

	// HasSecret reports whether a secret record exists for the tenant. Trusted
	// internal callers only; the access gate uses it to decide whether the
	// token check applies at all.
	HasSecret(ctx context.Context, tenantID string) (bool, error)

	// Rotate replaces the tenant's secret and data key with fresh material and
	// returns the new plaintext secret. This is the only lifecycle operation
	// that returns plaintext after registration.
	Rotate(ctx context.Context, tenantID string) (string, error)

	// GetPlaintext decrypts and returns the tenant's secret for operator
	// tooling. Returns found=false when the tenant has no record.
	GetPlaintext(ctx context.Context, tenantID string) (secret string, found bool, err error)
}
