package usecase

import (
	"context"
	"time"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
)

// AuditEventRepository defines the interface for audit event persistence.
type AuditEventRepository interface {
	Create(ctx context.Context, event *auditDomain.AuditEvent) error
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.AuditEvent, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// AuditEventUseCase defines the interface for recording and maintaining the
// signed audit trail.
type AuditEventUseCase interface {
	// Record signs and persists one audit event. Scope lists are recorded
	// verbatim; token and secret material must never be passed in.
	Record(
		ctx context.Context,
		tenantID string,
		action auditDomain.Action,
		outcome auditDomain.Outcome,
		reason string,
		requestedScopes []string,
	) error

	// List retrieves audit events newest first with pagination and optional
	// inclusive time boundaries.
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.AuditEvent, error)

	// VerifySignatures checks one page of events against their signatures and
	// returns the valid and invalid counts.
	VerifySignatures(ctx context.Context, offset, limit int) (valid int, invalid int, err error)

	// CleanOlderThan removes events older than the retention period and
	// returns the number removed.
	CleanOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}
