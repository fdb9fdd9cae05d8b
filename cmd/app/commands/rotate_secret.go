package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
	secretsUseCase "github.com/tenantsec/tenantgate/internal/secrets/usecase"
)

// RunRotateSecret replaces the tenant's secret and data key with fresh material
// and prints the new secret exactly once. Within the configured grace period the
// previous secret still verifies.
func RunRotateSecret(
	ctx context.Context,
	lifecycleManager secretsUseCase.SecretLifecycleManager,
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tenantID, format string,
) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}

	logger.Info("rotating tenant secret", slog.String("tenant_id", tenantID))

	newSecret, err := lifecycleManager.Rotate(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to rotate secret: %w", err)
	}

	if err := auditEventUseCase.Record(
		ctx, tenantID, auditDomain.ActionRotate, auditDomain.OutcomeRotated, "", nil,
	); err != nil {
		logger.Warn("failed to record audit event", slog.Any("error", err))
	}

	if format == "json" {
		return writeJSON(writer, map[string]interface{}{
			"tenant_id": tenantID,
			"secret":    newSecret,
		})
	}

	_, _ = fmt.Fprintf(writer, "Tenant %q secret rotated\n", tenantID)
	_, _ = fmt.Fprintf(writer, "New secret (shown only once): %s\n", newSecret)
	return nil
}
