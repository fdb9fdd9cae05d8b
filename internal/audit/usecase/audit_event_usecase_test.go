package usecase

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	auditRepository "github.com/tenantsec/tenantgate/internal/audit/repository"
	auditService "github.com/tenantsec/tenantgate/internal/audit/service"
	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	cryptoService "github.com/tenantsec/tenantgate/internal/crypto/service"
)

func newAuditTestUseCase(t *testing.T) (AuditEventUseCase, *auditRepository.InMemoryAuditEventRepository) {
	t.Helper()
	raw := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	masterKey, err := cryptoDomain.NewMasterKey(raw)
	require.NoError(t, err)

	repo := auditRepository.NewInMemoryAuditEventRepository()
	uc := NewAuditEventUseCase(
		repo,
		auditService.NewAuditSigner(),
		cryptoService.NewStaticMasterKeySource(masterKey),
	)
	return uc, repo
}

func TestAuditEventUseCase_Record(t *testing.T) {
	ctx := context.Background()
	uc, _ := newAuditTestUseCase(t)

	err := uc.Record(ctx, "app_a", auditDomain.ActionAuthorize, auditDomain.OutcomeDenied,
		string(auditDomain.OutcomeDenied), []string{"app_b"})
	require.NoError(t, err)

	events, err := uc.List(ctx, 0, 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "app_a", event.TenantID)
	assert.Equal(t, auditDomain.ActionAuthorize, event.Action)
	assert.Equal(t, auditDomain.OutcomeDenied, event.Outcome)
	assert.Equal(t, []string{"app_b"}, event.RequestedScopes)
	assert.NotEmpty(t, event.Signature)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestAuditEventUseCase_VerifySignatures(t *testing.T) {
	ctx := context.Background()
	uc, repo := newAuditTestUseCase(t)

	for i := 0; i < 3; i++ {
		err := uc.Record(ctx, "app_a", auditDomain.ActionAuthorize, auditDomain.OutcomeAuthorized, "", nil)
		require.NoError(t, err)
	}

	valid, invalid, err := uc.VerifySignatures(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, valid)
	assert.Equal(t, 0, invalid)

	// Tamper with one persisted event.
	events, err := repo.List(ctx, 0, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	tampered := *events[0]
	tampered.Outcome = auditDomain.OutcomeDenied
	_, err = repo.DeleteOlderThan(ctx, time.Now().UTC().Add(time.Second))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &tampered))

	valid, invalid, err = uc.VerifySignatures(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, valid)
	assert.Equal(t, 1, invalid)
}

func TestAuditEventUseCase_CleanOlderThan(t *testing.T) {
	ctx := context.Background()
	uc, repo := newAuditTestUseCase(t)

	err := uc.Record(ctx, "app_a", auditDomain.ActionRotate, auditDomain.OutcomeRotated, "", nil)
	require.NoError(t, err)

	// A fresh event survives a 24h retention.
	deleted, err := uc.CleanOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	// Zero retention removes everything recorded before now.
	deleted, err = uc.CleanOlderThan(ctx, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err := repo.List(ctx, 0, 10, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}
