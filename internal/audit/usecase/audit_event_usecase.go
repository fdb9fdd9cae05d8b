// Package usecase implements business logic for the signed audit trail.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	auditService "github.com/tenantsec/tenantgate/internal/audit/service"
	cryptoService "github.com/tenantsec/tenantgate/internal/crypto/service"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// auditEventUseCase implements AuditEventUseCase.
type auditEventUseCase struct {
	eventRepo       AuditEventRepository
	signer          auditService.AuditSigner
	masterKeySource cryptoService.MasterKeySource
}

// NewAuditEventUseCase creates a new AuditEventUseCase with the provided dependencies.
func NewAuditEventUseCase(
	eventRepo AuditEventRepository,
	signer auditService.AuditSigner,
	masterKeySource cryptoService.MasterKeySource,
) AuditEventUseCase {
	return &auditEventUseCase{
		eventRepo:       eventRepo,
		signer:          signer,
		masterKeySource: masterKeySource,
	}
}

// Record signs and persists one audit event with a UUIDv7 identifier.
func (a *auditEventUseCase) Record(
	ctx context.Context,
	tenantID string,
	action auditDomain.Action,
	outcome auditDomain.Outcome,
	reason string,
	requestedScopes []string,
) error {
	event := &auditDomain.AuditEvent{
		ID:              uuid.Must(uuid.NewV7()),
		TenantID:        tenantID,
		Action:          action,
		Outcome:         outcome,
		Reason:          reason,
		RequestedScopes: requestedScopes,
		CreatedAt:       time.Now().UTC(),
	}

	masterKey, err := a.masterKeySource.Get(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to load signing key")
	}

	if event.Signature, err = a.signer.Sign(masterKey, event); err != nil {
		return apperrors.Wrap(err, "failed to sign audit event")
	}

	if err := a.eventRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit event")
	}
	return nil
}

// List retrieves audit events newest first.
func (a *auditEventUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	events, err := a.eventRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

// VerifySignatures checks one page of events against their signatures.
func (a *auditEventUseCase) VerifySignatures(
	ctx context.Context,
	offset, limit int,
) (int, int, error) {
	masterKey, err := a.masterKeySource.Get(ctx)
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "failed to load signing key")
	}

	events, err := a.eventRepo.List(ctx, offset, limit, nil, nil)
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "failed to list audit events")
	}

	var valid, invalid int
	for _, event := range events {
		if err := a.signer.Verify(masterKey, event); err != nil {
			if errors.Is(err, auditDomain.ErrSignatureInvalid) {
				invalid++
				continue
			}
			return valid, invalid, err
		}
		valid++
	}
	return valid, invalid, nil
}

// CleanOlderThan removes events past the retention period.
func (a *auditEventUseCase) CleanOlderThan(
	ctx context.Context,
	retention time.Duration,
) (int64, error) {
	before := time.Now().UTC().Add(-retention)
	deleted, err := a.eventRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to clean audit events")
	}
	return deleted, nil
}
