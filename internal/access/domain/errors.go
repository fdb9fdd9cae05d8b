package domain

import (
	"fmt"

	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// Domain errors for access authorization.
var (
	// ErrScopeDeclarationNotFound indicates no scope declaration exists for a tenant.
	ErrScopeDeclarationNotFound = fmt.Errorf("scope declaration not found: %w", apperrors.ErrNotFound)

	// ErrInvalidPolicy indicates an unknown scope policy value.
	ErrInvalidPolicy = fmt.Errorf("invalid scope policy: %w", apperrors.ErrInvalidInput)
)
