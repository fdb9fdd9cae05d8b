// Package usecase implements the access gate for cross-tenant authorization.
//
// The gate sequences the two checks the authorization boundary requires:
// tenant token verification first, then scope validation against the tenant's
// declaration. Every branch, allowed or denied, emits a signed audit event
// carrying the tenant id, outcome, and requested scopes; audit events never
// carry the token or any secret material.
package usecase

import (
	"context"
	"log/slog"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// accessGate implements AccessGate.
type accessGate struct {
	secrets   SecretVerifier
	scopeRepo ScopeDeclarationRepository
	audit     AuditSink
	logger    *slog.Logger
}

// NewAccessGate creates an access gate with the provided collaborators.
func NewAccessGate(
	secrets SecretVerifier,
	scopeRepo ScopeDeclarationRepository,
	audit AuditSink,
	logger *slog.Logger,
) AccessGate {
	return &accessGate{
		secrets:   secrets,
		scopeRepo: scopeRepo,
		audit:     audit,
		logger:    logger,
	}
}

// Authorize runs the token check then the scope check.
//
// Tenants with no registered secret skip the token check entirely: "no secret
// provisioned" means "no token required". Once a secret is registered, a
// missing or wrong token denies with InvalidToken. Verification errors from
// the secrets layer (configuration faults, storage faults) are logged and
// audited internally but deny with the same InvalidToken reason, so a caller
// cannot distinguish an internal fault from a policy failure.
func (a *accessGate) Authorize(
	ctx context.Context,
	tenantID string,
	providedToken string,
	requestedScopes []string,
) (accessDomain.AuthorizationDecision, error) {
	if tenantID == "" {
		return accessDomain.AuthorizationDecision{}, apperrors.Wrap(apperrors.ErrInvalidInput, "tenant id must not be empty")
	}

	hasSecret, err := a.secrets.HasSecret(ctx, tenantID)
	if err != nil {
		a.recordEvent(ctx, tenantID, auditDomain.OutcomeError, "secret lookup failed", requestedScopes)
		return accessDomain.AuthorizationDecision{}, err
	}

	if hasSecret {
		if decision, denied := a.checkToken(ctx, tenantID, providedToken, requestedScopes); denied {
			return decision, nil
		}
	}

	declaration, err := a.loadDeclaration(ctx, tenantID)
	if err != nil {
		a.recordEvent(ctx, tenantID, auditDomain.OutcomeError, "scope declaration lookup failed", requestedScopes)
		return accessDomain.AuthorizationDecision{}, err
	}

	decision := declaration.Validate(requestedScopes)

	outcome := auditDomain.OutcomeAuthorized
	if !decision.Authorized {
		outcome = auditDomain.OutcomeDenied
	}
	a.recordEvent(ctx, tenantID, outcome, string(decision.Reason), requestedScopes)

	return decision, nil
}

// checkToken verifies the provided token. The second return value is true
// when the request must be denied.
func (a *accessGate) checkToken(
	ctx context.Context,
	tenantID string,
	providedToken string,
	requestedScopes []string,
) (accessDomain.AuthorizationDecision, bool) {
	deny := accessDomain.AuthorizationDecision{
		Authorized: false,
		TenantID:   tenantID,
		Reason:     accessDomain.ReasonInvalidToken,
	}

	if providedToken == "" {
		a.recordEvent(ctx, tenantID, auditDomain.OutcomeDenied, string(accessDomain.ReasonInvalidToken), requestedScopes)
		return deny, true
	}

	match, err := a.secrets.Verify(ctx, tenantID, providedToken)
	if err != nil {
		// Internal fault. Logged and audited, but externally
		// indistinguishable from a wrong token.
		a.logger.Error("token verification failed",
			slog.String("tenant_id", tenantID),
			slog.Any("error", err),
		)
		a.recordEvent(ctx, tenantID, auditDomain.OutcomeError, string(accessDomain.ReasonInvalidToken), requestedScopes)
		return deny, true
	}
	if !match {
		a.recordEvent(ctx, tenantID, auditDomain.OutcomeDenied, string(accessDomain.ReasonInvalidToken), requestedScopes)
		return deny, true
	}

	return accessDomain.AuthorizationDecision{}, false
}

// loadDeclaration fetches the tenant's scope declaration, falling back to a
// default declaration (no cross-tenant scopes, explicit policy) for tenants
// that never declared one.
func (a *accessGate) loadDeclaration(
	ctx context.Context,
	tenantID string,
) (*accessDomain.ScopeDeclaration, error) {
	declaration, err := a.scopeRepo.Get(ctx, tenantID)
	if err != nil {
		if apperrors.Is(err, accessDomain.ErrScopeDeclarationNotFound) {
			return accessDomain.NewScopeDeclaration(tenantID, nil, "", accessDomain.PolicyExplicit), nil
		}
		return nil, err
	}
	return declaration, nil
}

// recordEvent emits an audit event; sink failures are logged and swallowed so
// auditing never fails a gated call.
func (a *accessGate) recordEvent(
	ctx context.Context,
	tenantID string,
	outcome auditDomain.Outcome,
	reason string,
	requestedScopes []string,
) {
	err := a.audit.Record(ctx, tenantID, auditDomain.ActionAuthorize, outcome, reason, requestedScopes)
	if err != nil {
		a.logger.Warn("failed to record audit event",
			slog.String("tenant_id", tenantID),
			slog.Any("error", err),
		)
	}
}
