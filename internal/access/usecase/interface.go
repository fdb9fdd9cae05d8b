package usecase

import (
	"context"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
)

// ScopeDeclarationRepository defines the interface for scope declaration persistence.
type ScopeDeclarationRepository interface {
	// Get retrieves the declaration for a tenant, ErrScopeDeclarationNotFound when absent.
	Get(ctx context.Context, tenantID string) (*accessDomain.ScopeDeclaration, error)

	// Upsert creates or replaces the declaration for a tenant.
	Upsert(ctx context.Context, declaration *accessDomain.ScopeDeclaration) error
}

// SecretVerifier is the slice of the secret lifecycle the gate depends on.
type SecretVerifier interface {
	HasSecret(ctx context.Context, tenantID string) (bool, error)
	Verify(ctx context.Context, tenantID string, providedSecret string) (bool, error)
}

// AuditSink records gate decisions. Sink failures never fail the gated call.
type AuditSink interface {
	Record(
		ctx context.Context,
		tenantID string,
		action auditDomain.Action,
		outcome auditDomain.Outcome,
		reason string,
		requestedScopes []string,
	) error
}

// AccessGate defines the interface for cross-tenant access authorization.
type AccessGate interface {
	// Authorize runs the token check then the scope check for a tenant
	// request. A nil requestedScopes means "use the declared default"; an
	// empty slice means "own partition only". The returned error covers
	// infrastructure failures outside the verification path; verification
	// failures of any kind surface as an InvalidToken decision.
	Authorize(
		ctx context.Context,
		tenantID string,
		providedToken string,
		requestedScopes []string,
	) (accessDomain.AuthorizationDecision, error)
}
