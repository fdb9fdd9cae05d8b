// Package usecase implements business logic for the tenant secret lifecycle.
//
// The lifecycle manager coordinates the envelope service and the secret record
// repository: registration seals a tenant secret under a fresh per-tenant DEK,
// verification unwraps and compares in constant time, and rotation replaces
// both secret and DEK atomically. Plaintext secret material is zeroed as soon
// as a comparison or encryption completes.
//
// Verification deliberately collapses "tenant unknown" and "wrong secret" into
// a plain false so the result cannot be used to probe which tenants exist.
package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	cryptoService "github.com/tenantsec/tenantgate/internal/crypto/service"
	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
	secretsDomain "github.com/tenantsec/tenantgate/internal/secrets/domain"
)

// secretLifecycleManager implements SecretLifecycleManager.
type secretLifecycleManager struct {
	txManager       database.TxManager
	recordRepo      SecretRecordRepository
	envelope        cryptoService.Envelope
	masterKeySource cryptoService.MasterKeySource
	algorithm       cryptoDomain.Algorithm
	gracePeriod     time.Duration
	now             func() time.Time
}

// NewSecretLifecycleManager creates a lifecycle manager. A zero gracePeriod
// invalidates the outgoing secret immediately on rotation; a positive value
// keeps it verifiable until the grace window elapses.
func NewSecretLifecycleManager(
	txManager database.TxManager,
	recordRepo SecretRecordRepository,
	envelope cryptoService.Envelope,
	masterKeySource cryptoService.MasterKeySource,
	algorithm cryptoDomain.Algorithm,
	gracePeriod time.Duration,
) SecretLifecycleManager {
	return &secretLifecycleManager{
		txManager:       txManager,
		recordRepo:      recordRepo,
		envelope:        envelope,
		masterKeySource: masterKeySource,
		algorithm:       algorithm,
		gracePeriod:     gracePeriod,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// seal envelopes a plaintext secret: fresh DEK, DEK wrapped under the master
// key, secret sealed under the DEK. The DEK is zeroed before returning.
func (s *secretLifecycleManager) seal(
	ctx context.Context,
	plainSecret string,
) (encryptedSecret, encryptedDek cryptoDomain.EncryptedBlob, err error) {
	masterKey, err := s.masterKeySource.Get(ctx)
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, cryptoDomain.EncryptedBlob{}, err
	}

	dek, err := s.envelope.GenerateDek()
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, cryptoDomain.EncryptedBlob{}, err
	}
	defer cryptoDomain.Zero(dek)

	encryptedDek, err = s.envelope.Wrap(dek, masterKey)
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, cryptoDomain.EncryptedBlob{}, err
	}

	encryptedSecret, err = s.envelope.Seal(dek, []byte(plainSecret))
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, cryptoDomain.EncryptedBlob{}, err
	}

	return encryptedSecret, encryptedDek, nil
}

// open recovers a plaintext secret from its envelope. An unwrap failure means
// the master key cannot decrypt material it should own, which is a deployment
// problem, not a caller problem; it surfaces as ErrConfiguration.
func (s *secretLifecycleManager) open(
	ctx context.Context,
	encryptedSecret, encryptedDek cryptoDomain.EncryptedBlob,
) ([]byte, error) {
	masterKey, err := s.masterKeySource.Get(ctx)
	if err != nil {
		return nil, err
	}

	dek, err := s.envelope.Unwrap(encryptedDek, masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap tenant data key: %w: %v", apperrors.ErrConfiguration, err)
	}
	defer cryptoDomain.Zero(dek)

	return s.envelope.Open(dek, encryptedSecret)
}

// Register stores an envelope-encrypted secret for the tenant. The write uses
// InsertIfAbsent so concurrent duplicate registrations race safely: at most
// one insert wins and the others observe created=false.
func (s *secretLifecycleManager) Register(
	ctx context.Context,
	tenantID string,
	plainSecret string,
) (bool, error) {
	if tenantID == "" {
		return false, apperrors.Wrap(apperrors.ErrInvalidInput, "tenant id must not be empty")
	}
	if plainSecret == "" {
		return false, apperrors.Wrap(apperrors.ErrInvalidInput, "secret must not be empty")
	}

	encryptedSecret, encryptedDek, err := s.seal(ctx, plainSecret)
	if err != nil {
		return false, err
	}

	now := s.now()
	record := &secretsDomain.SecretRecord{
		TenantID:        tenantID,
		EncryptedSecret: encryptedSecret,
		EncryptedDek:    encryptedDek,
		Algorithm:       s.algorithm,
		CreatedAt:       now,
		UpdatedAt:       now,
		RotationCount:   0,
	}

	return s.recordRepo.InsertIfAbsent(ctx, record)
}

// HasSecret reports whether a secret record exists for the tenant.
func (s *secretLifecycleManager) HasSecret(ctx context.Context, tenantID string) (bool, error) {
	_, err := s.recordRepo.Get(ctx, tenantID)
	if err != nil {
		if apperrors.Is(err, secretsDomain.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Verify reports whether providedSecret matches the tenant's stored secret.
func (s *secretLifecycleManager) Verify(
	ctx context.Context,
	tenantID string,
	providedSecret string,
) (bool, error) {
	record, err := s.recordRepo.Get(ctx, tenantID)
	if err != nil {
		if apperrors.Is(err, secretsDomain.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	match, err := s.compareSecret(ctx, record.EncryptedSecret, record.EncryptedDek, providedSecret)
	if err != nil {
		return false, err
	}
	if match {
		return true, nil
	}

	if record.HasValidPrevious(s.now()) {
		return s.compareSecret(ctx, *record.PreviousEncryptedSecret, *record.PreviousEncryptedDek, providedSecret)
	}
	return false, nil
}

// compareSecret opens one envelope and compares it against the candidate in
// constant time. An authentication failure on the sealed secret itself means
// the candidate cannot match, so it folds to false rather than an error.
func (s *secretLifecycleManager) compareSecret(
	ctx context.Context,
	encryptedSecret, encryptedDek cryptoDomain.EncryptedBlob,
	providedSecret string,
) (bool, error) {
	storedSecret, err := s.open(ctx, encryptedSecret, encryptedDek)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConfiguration) {
			return false, err
		}
		return false, nil
	}
	defer cryptoDomain.Zero(storedSecret)

	return constantTimeMatch(storedSecret, []byte(providedSecret)), nil
}

// constantTimeMatch compares two byte slices without leaking content through
// timing. The explicit length check keeps the comparison length-independent.
func constantTimeMatch(a, b []byte) bool {
	if subtle.ConstantTimeEq(int32(len(a)), int32(len(b))) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Rotate replaces the tenant's secret and DEK with fresh material and returns
// the new plaintext secret. The outgoing envelope moves into the previous_*
// slots when a grace window is configured, otherwise it is dropped and the old
// secret stops verifying immediately.
func (s *secretLifecycleManager) Rotate(ctx context.Context, tenantID string) (string, error) {
	newSecret, err := GenerateSecret()
	if err != nil {
		return "", err
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		record, err := s.recordRepo.Get(ctx, tenantID)
		if err != nil {
			return err
		}

		encryptedSecret, encryptedDek, err := s.seal(ctx, newSecret)
		if err != nil {
			return err
		}

		if s.gracePeriod > 0 {
			previousSecret := record.EncryptedSecret
			previousDek := record.EncryptedDek
			expiresAt := s.now().Add(s.gracePeriod)
			record.PreviousEncryptedSecret = &previousSecret
			record.PreviousEncryptedDek = &previousDek
			record.PreviousExpiresAt = &expiresAt
		} else {
			record.PreviousEncryptedSecret = nil
			record.PreviousEncryptedDek = nil
			record.PreviousExpiresAt = nil
		}

		record.EncryptedSecret = encryptedSecret
		record.EncryptedDek = encryptedDek
		record.Algorithm = s.algorithm
		record.UpdatedAt = s.now()
		record.RotationCount++

		return s.recordRepo.Replace(ctx, record)
	})
	if err != nil {
		return "", err
	}

	return newSecret, nil
}

// GetPlaintext decrypts and returns the tenant's secret for operator tooling.
func (s *secretLifecycleManager) GetPlaintext(
	ctx context.Context,
	tenantID string,
) (string, bool, error) {
	record, err := s.recordRepo.Get(ctx, tenantID)
	if err != nil {
		if apperrors.Is(err, secretsDomain.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	plaintext, err := s.open(ctx, record.EncryptedSecret, record.EncryptedDek)
	if err != nil {
		return "", false, err
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), true, nil
}
