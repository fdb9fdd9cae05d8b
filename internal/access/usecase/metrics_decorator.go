package usecase

import (
	"context"
	"time"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	"github.com/tenantsec/tenantgate/internal/metrics"
)

// accessGateWithMetrics decorates AccessGate with metrics instrumentation.
type accessGateWithMetrics struct {
	next    AccessGate
	metrics metrics.BusinessMetrics
}

// NewAccessGateWithMetrics wraps an AccessGate with metrics recording.
func NewAccessGateWithMetrics(gate AccessGate, m metrics.BusinessMetrics) AccessGate {
	return &accessGateWithMetrics{
		next:    gate,
		metrics: m,
	}
}

// Authorize records metrics for authorization decisions. Denied decisions are
// recorded as "denied" rather than "error": a deny is a correct outcome.
func (a *accessGateWithMetrics) Authorize(
	ctx context.Context,
	tenantID string,
	providedToken string,
	requestedScopes []string,
) (accessDomain.AuthorizationDecision, error) {
	start := time.Now()
	decision, err := a.next.Authorize(ctx, tenantID, providedToken, requestedScopes)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !decision.Authorized:
		status = "denied"
	}

	a.metrics.RecordOperation(ctx, "access", "authorize", status)
	a.metrics.RecordDuration(ctx, "access", "authorize", time.Since(start), status)

	return decision, err
}
