package usecase

import (
	"context"
	"time"

	"github.com/tenantsec/tenantgate/internal/metrics"
)

// secretLifecycleManagerWithMetrics decorates SecretLifecycleManager with metrics instrumentation.
type secretLifecycleManagerWithMetrics struct {
	next    SecretLifecycleManager
	metrics metrics.BusinessMetrics
}

// NewSecretLifecycleManagerWithMetrics wraps a SecretLifecycleManager with metrics recording.
func NewSecretLifecycleManagerWithMetrics(
	manager SecretLifecycleManager,
	m metrics.BusinessMetrics,
) SecretLifecycleManager {
	return &secretLifecycleManagerWithMetrics{
		next:    manager,
		metrics: m,
	}
}

// Register records metrics for tenant registration operations.
func (s *secretLifecycleManagerWithMetrics) Register(
	ctx context.Context,
	tenantID string,
	plainSecret string,
) (bool, error) {
	start := time.Now()
	created, err := s.next.Register(ctx, tenantID, plainSecret)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "tenant_register", status)
	s.metrics.RecordDuration(ctx, "secrets", "tenant_register", time.Since(start), status)

	return created, err
}

// Verify records metrics for secret verification operations.
func (s *secretLifecycleManagerWithMetrics) Verify(
	ctx context.Context,
	tenantID string,
	providedSecret string,
) (bool, error) {
	start := time.Now()
	match, err := s.next.Verify(ctx, tenantID, providedSecret)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_verify", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_verify", time.Since(start), status)

	return match, err
}

// HasSecret forwards without recording metrics; it is an internal existence
// probe, not a caller-facing operation.
func (s *secretLifecycleManagerWithMetrics) HasSecret(
	ctx context.Context,
	tenantID string,
) (bool, error) {
	return s.next.HasSecret(ctx, tenantID)
}

// Rotate records metrics for secret rotation operations.
func (s *secretLifecycleManagerWithMetrics) Rotate(
	ctx context.Context,
	tenantID string,
) (string, error) {
	start := time.Now()
	secret, err := s.next.Rotate(ctx, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_rotate", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_rotate", time.Since(start), status)

	return secret, err
}

// GetPlaintext records metrics for operator secret reads.
func (s *secretLifecycleManagerWithMetrics) GetPlaintext(
	ctx context.Context,
	tenantID string,
) (string, bool, error) {
	start := time.Now()
	secret, found, err := s.next.GetPlaintext(ctx, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_read", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_read", time.Since(start), status)

	return secret, found, err
}
