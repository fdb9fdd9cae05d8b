package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	accessUseCase "github.com/tenantsec/tenantgate/internal/access/usecase"
	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
	secretsUseCase "github.com/tenantsec/tenantgate/internal/secrets/usecase"
)

// RunRegisterTenant registers a tenant secret and its scope declaration.
// When secret is empty a random one is generated and printed exactly once.
// Registration is idempotent: an existing secret is never overwritten, but the
// scope declaration is updated on every call.
func RunRegisterTenant(
	ctx context.Context,
	lifecycleManager secretsUseCase.SecretLifecycleManager,
	scopeRepo accessUseCase.ScopeDeclarationRepository,
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	tenantID, secret string,
	readScopes []string,
	writeScope, policy, format string,
) error {
	if err := validateTenantID(tenantID); err != nil {
		return err
	}

	parsedPolicy, err := accessDomain.ParsePolicy(policy)
	if err != nil {
		return err
	}

	generated := false
	if secret == "" {
		secret, err = secretsUseCase.GenerateSecret()
		if err != nil {
			return fmt.Errorf("failed to generate secret: %w", err)
		}
		generated = true
	}

	logger.Info("registering tenant",
		slog.String("tenant_id", tenantID),
		slog.Bool("generated_secret", generated),
	)

	created, err := lifecycleManager.Register(ctx, tenantID, secret)
	if err != nil {
		return fmt.Errorf("failed to register tenant: %w", err)
	}

	declaration := accessDomain.NewScopeDeclaration(tenantID, readScopes, writeScope, parsedPolicy)
	if err := scopeRepo.Upsert(ctx, declaration); err != nil {
		return fmt.Errorf("failed to store scope declaration: %w", err)
	}

	outcome := auditDomain.OutcomeExists
	if created {
		outcome = auditDomain.OutcomeCreated
	}
	if err := auditEventUseCase.Record(ctx, tenantID, auditDomain.ActionRegister, outcome, "", nil); err != nil {
		logger.Warn("failed to record audit event", slog.Any("error", err))
	}

	// The plaintext secret is only shown for a generated secret on first
	// registration; an existing tenant's secret is never echoed back.
	showSecret := generated && created

	if format == "json" {
		result := map[string]interface{}{
			"tenant_id": tenantID,
			"created":   created,
		}
		if showSecret {
			result["secret"] = secret
		}
		return writeJSON(writer, result)
	}

	if created {
		_, _ = fmt.Fprintf(writer, "Tenant %q registered\n", tenantID)
		if showSecret {
			_, _ = fmt.Fprintf(writer, "Generated secret (shown only once): %s\n", secret)
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Tenant %q already registered, secret unchanged, scope declaration updated\n", tenantID)
	}

	return nil
}

// writeJSON writes an indented JSON document to the writer.
func writeJSON(writer io.Writer, result map[string]interface{}) error {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
