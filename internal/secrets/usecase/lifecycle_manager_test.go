package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	cryptoService "github.com/tenantsec/tenantgate/internal/crypto/service"
	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
	"github.com/tenantsec/tenantgate/internal/secrets/repository"
)

func newTestMasterKey(t *testing.T) *cryptoDomain.MasterKey {
	t.Helper()
	raw := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	key, err := cryptoDomain.NewMasterKey(raw)
	require.NoError(t, err)
	return key
}

func newTestManager(t *testing.T, gracePeriod time.Duration) (SecretLifecycleManager, *repository.InMemorySecretRecordRepository) {
	t.Helper()
	repo := repository.NewInMemorySecretRecordRepository()
	envelope := cryptoService.NewEnvelope(cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	source := cryptoService.NewStaticMasterKeySource(newTestMasterKey(t))
	manager := NewSecretLifecycleManager(
		database.NewNoopTxManager(),
		repo,
		envelope,
		source,
		cryptoDomain.AESGCM,
		gracePeriod,
	)
	return manager, repo
}

func TestSecretLifecycleManager_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates record and verifies", func(t *testing.T) {
		manager, repo := newTestManager(t, 0)

		created, err := manager.Register(ctx, "app_a", "super-secret")
		require.NoError(t, err)
		assert.True(t, created)

		record, err := repo.Get(ctx, "app_a")
		require.NoError(t, err)
		assert.Equal(t, "app_a", record.TenantID)
		assert.Equal(t, cryptoDomain.AESGCM, record.Algorithm)
		assert.Equal(t, uint(0), record.RotationCount)
		assert.NotContains(t, record.EncryptedSecret.String(), "super-secret")

		match, err := manager.Verify(ctx, "app_a", "super-secret")
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("is idempotent", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)

		created, err := manager.Register(ctx, "app_a", "first-secret")
		require.NoError(t, err)
		assert.True(t, created)

		created, err = manager.Register(ctx, "app_a", "second-secret")
		require.NoError(t, err)
		assert.False(t, created)

		// The original secret must survive the duplicate registration.
		match, err := manager.Verify(ctx, "app_a", "first-secret")
		require.NoError(t, err)
		assert.True(t, match)

		match, err = manager.Verify(ctx, "app_a", "second-secret")
		require.NoError(t, err)
		assert.False(t, match)
	})

	t.Run("rejects empty tenant id", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)

		_, err := manager.Register(ctx, "", "secret")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)

		_, err := manager.Register(ctx, "app_a", "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestSecretLifecycleManager_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown tenant is plain false", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)

		match, err := manager.Verify(ctx, "ghost", "anything")
		require.NoError(t, err)
		assert.False(t, match)
	})

	t.Run("wrong secret is plain false", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)
		_, err := manager.Register(ctx, "app_a", "right")
		require.NoError(t, err)

		match, err := manager.Verify(ctx, "app_a", "wrong")
		require.NoError(t, err)
		assert.False(t, match)
	})

	t.Run("unknown tenant and wrong secret are indistinguishable", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)
		_, err := manager.Register(ctx, "app_a", "right")
		require.NoError(t, err)

		missMatch, missErr := manager.Verify(ctx, "ghost", "right")
		wrongMatch, wrongErr := manager.Verify(ctx, "app_a", "wrong")

		assert.Equal(t, missMatch, wrongMatch)
		assert.Equal(t, missErr, wrongErr)
	})

	t.Run("undecryptable data key is a configuration error", func(t *testing.T) {
		repo := repository.NewInMemorySecretRecordRepository()
		envelope := cryptoService.NewEnvelope(cryptoService.NewAEADManager(), cryptoDomain.AESGCM)

		registerSource := cryptoService.NewStaticMasterKeySource(newTestMasterKey(t))
		registerManager := NewSecretLifecycleManager(
			database.NewNoopTxManager(), repo, envelope, registerSource, cryptoDomain.AESGCM, 0,
		)
		_, err := registerManager.Register(ctx, "app_a", "secret")
		require.NoError(t, err)

		// Same store, different master key: the stored DEK cannot unwrap.
		verifySource := cryptoService.NewStaticMasterKeySource(newTestMasterKey(t))
		verifyManager := NewSecretLifecycleManager(
			database.NewNoopTxManager(), repo, envelope, verifySource, cryptoDomain.AESGCM, 0,
		)

		match, err := verifyManager.Verify(ctx, "app_a", "secret")
		assert.False(t, match)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func TestSecretLifecycleManager_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("old secret stops verifying immediately without grace", func(t *testing.T) {
		manager, repo := newTestManager(t, 0)
		_, err := manager.Register(ctx, "app_a", "old-secret")
		require.NoError(t, err)

		newSecret, err := manager.Rotate(ctx, "app_a")
		require.NoError(t, err)
		require.NotEmpty(t, newSecret)
		assert.NotEqual(t, "old-secret", newSecret)

		// Rotation generates base64url-encoded 32-byte secrets.
		decoded, err := base64.URLEncoding.DecodeString(newSecret)
		require.NoError(t, err)
		assert.Len(t, decoded, 32)

		match, err := manager.Verify(ctx, "app_a", newSecret)
		require.NoError(t, err)
		assert.True(t, match)

		match, err = manager.Verify(ctx, "app_a", "old-secret")
		require.NoError(t, err)
		assert.False(t, match)

		record, err := repo.Get(ctx, "app_a")
		require.NoError(t, err)
		assert.Equal(t, uint(1), record.RotationCount)
		assert.Nil(t, record.PreviousEncryptedSecret)
		assert.Nil(t, record.PreviousExpiresAt)
	})

	t.Run("grace window keeps old secret verifiable until expiry", func(t *testing.T) {
		manager, repo := newTestManager(t, time.Minute)
		_, err := manager.Register(ctx, "app_a", "old-secret")
		require.NoError(t, err)

		newSecret, err := manager.Rotate(ctx, "app_a")
		require.NoError(t, err)

		for _, secret := range []string{newSecret, "old-secret"} {
			match, err := manager.Verify(ctx, "app_a", secret)
			require.NoError(t, err)
			assert.True(t, match)
		}

		// Force the grace window into the past.
		record, err := repo.Get(ctx, "app_a")
		require.NoError(t, err)
		require.NotNil(t, record.PreviousExpiresAt)
		expired := time.Now().UTC().Add(-time.Second)
		record.PreviousExpiresAt = &expired
		require.NoError(t, repo.Replace(ctx, record))

		match, err := manager.Verify(ctx, "app_a", "old-secret")
		require.NoError(t, err)
		assert.False(t, match)

		match, err = manager.Verify(ctx, "app_a", newSecret)
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("repeated rotations increment the counter", func(t *testing.T) {
		manager, repo := newTestManager(t, 0)
		_, err := manager.Register(ctx, "app_a", "secret")
		require.NoError(t, err)

		var latest string
		for i := 0; i < 3; i++ {
			latest, err = manager.Rotate(ctx, "app_a")
			require.NoError(t, err)
		}

		record, err := repo.Get(ctx, "app_a")
		require.NoError(t, err)
		assert.Equal(t, uint(3), record.RotationCount)

		match, err := manager.Verify(ctx, "app_a", latest)
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("unknown tenant fails", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)

		_, err := manager.Rotate(ctx, "ghost")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestSecretLifecycleManager_GetPlaintext(t *testing.T) {
	ctx := context.Background()

	t.Run("returns registered secret", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)
		_, err := manager.Register(ctx, "app_a", "super-secret")
		require.NoError(t, err)

		secret, found, err := manager.GetPlaintext(ctx, "app_a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "super-secret", secret)
	})

	t.Run("unknown tenant reports not found", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)

		secret, found, err := manager.GetPlaintext(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, secret)
	})

	t.Run("returns rotated secret", func(t *testing.T) {
		manager, _ := newTestManager(t, 0)
		_, err := manager.Register(ctx, "app_a", "original")
		require.NoError(t, err)

		rotated, err := manager.Rotate(ctx, "app_a")
		require.NoError(t, err)

		secret, found, err := manager.GetPlaintext(ctx, "app_a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, rotated, secret)
	})
}

func TestSecretLifecycleManager_HasSecret(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(t, 0)

	exists, err := manager.HasSecret(ctx, "app_a")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = manager.Register(ctx, "app_a", "secret")
	require.NoError(t, err)

	exists, err = manager.HasSecret(ctx, "app_a")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerateSecret(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		secret, err := GenerateSecret()
		require.NoError(t, err)

		decoded, err := base64.URLEncoding.DecodeString(secret)
		require.NoError(t, err)
		assert.Len(t, decoded, 32)

		assert.False(t, seen[secret])
		seen[secret] = true
	}
}

// TestSecretLifecycleManager_VerifyTiming measures Verify against a guess that
// matches the stored secret except for the last byte and a guess that matches
// nowhere. Both must take comparable wall-clock time; a large gap would leak
// how much of the secret a caller has guessed.
func TestSecretLifecycleManager_VerifyTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical timing test in short mode")
	}

	ctx := context.Background()
	manager, _ := newTestManager(t, 0)

	secret := "correct-horse-battery-staple"
	_, err := manager.Register(ctx, "app_a", secret)
	require.NoError(t, err)

	nearMiss := secret[:len(secret)-1] + "X"
	farMiss := string(make([]byte, len(secret)))

	const trials = 300
	measure := func(guess string) time.Duration {
		start := time.Now()
		match, err := manager.Verify(ctx, "app_a", guess)
		elapsed := time.Since(start)
		require.NoError(t, err)
		require.False(t, match)
		return elapsed
	}

	// Warm up so one-time allocations do not skew the first samples.
	measure(nearMiss)
	measure(farMiss)

	nearSamples := make([]time.Duration, 0, trials)
	farSamples := make([]time.Duration, 0, trials)
	// Interleave trials so scheduler drift hits both guesses equally.
	for i := 0; i < trials; i++ {
		nearSamples = append(nearSamples, measure(nearMiss))
		farSamples = append(farSamples, measure(farMiss))
	}

	nearMedian := medianDuration(nearSamples)
	farMedian := medianDuration(farSamples)

	slower, faster := nearMedian, farMedian
	if slower < faster {
		slower, faster = faster, slower
	}
	assert.Less(t, float64(slower)/float64(faster), 2.0,
		"near-miss median %v vs far-miss median %v", nearMedian, farMedian)
}

func medianDuration(samples []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}

func TestConstantTimeMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "equal", a: "secret", b: "secret", want: true},
		{name: "different content", a: "secret", b: "secreT", want: false},
		{name: "different length", a: "secret", b: "secret1", want: false},
		{name: "both empty", a: "", b: "", want: true},
		{name: "one empty", a: "", b: "x", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, constantTimeMatch([]byte(tt.a), []byte(tt.b)))
		})
	}
}
