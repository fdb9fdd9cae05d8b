package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secretsUseCase "github.com/tenantsec/tenantgate/internal/secrets/usecase"
)

// RunShowSecret decrypts and prints the tenant's current secret. Operator
// tooling only; the authorize API never returns plaintext.
func RunShowSecret(
	ctx context.Context,
	lifecycleManager secretsUseCase.SecretLifecycleManager,
	logger *slog.Logger,
	writer io.Writer,
	tenantID, format string,
) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}

	logger.Info("reading tenant secret", slog.String("tenant_id", tenantID))

	secret, found, err := lifecycleManager.GetPlaintext(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to read secret: %w", err)
	}
	if !found {
		return fmt.Errorf("tenant %q has no registered secret", tenantID)
	}

	if format == "json" {
		return writeJSON(writer, map[string]interface{}{
			"tenant_id": tenantID,
			"secret":    secret,
		})
	}

	_, _ = fmt.Fprintf(writer, "Tenant: %s\n", tenantID)
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", secret)
	return nil
}
