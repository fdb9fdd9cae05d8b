// Package domain defines core domain models and errors for tenant secrets.
package domain

import (
	"github.com/tenantsec/tenantgate/internal/errors"
)

// Secret-record-specific error definitions.
var (
	// ErrRecordNotFound indicates no secret record exists for the tenant.
	//
	// Only repository and rotation paths surface this error. Verification
	// folds a missing record into a plain false result so callers cannot
	// enumerate tenants through error types.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "secret record not found")
)
