package domain

import (
	"fmt"

	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// Domain errors for the audit trail.
var (
	// ErrSignatureInvalid indicates an audit event failed signature verification.
	ErrSignatureInvalid = fmt.Errorf("audit event signature invalid: %w", apperrors.ErrCrypto)
)
