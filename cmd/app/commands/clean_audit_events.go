package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
)

// countPageSize is the page size used when counting events for a dry run.
const countPageSize = 500

// RunCleanAuditEvents deletes audit events older than the specified number of days.
// Supports dry-run mode to preview deletion count and both text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditEvents(
	ctx context.Context,
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning audit events",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	retention := time.Duration(days) * 24 * time.Hour

	var count int64
	var err error
	if dryRun {
		count, err = countOlderThan(ctx, auditEventUseCase, retention)
		if err != nil {
			return fmt.Errorf("failed to count audit events: %w", err)
		}
	} else {
		count, err = auditEventUseCase.CleanOlderThan(ctx, retention)
		if err != nil {
			return fmt.Errorf("failed to delete audit events: %w", err)
		}
	}

	// Output result based on format
	if format == "json" {
		if err := writeJSON(writer, map[string]interface{}{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		}); err != nil {
			return err
		}
	} else if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would delete %d audit event(s) older than %d day(s)\n", count, days)
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d audit event(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// countOlderThan pages through events at or before the cutoff without deleting.
func countOlderThan(
	ctx context.Context,
	auditEventUseCase auditUseCase.AuditEventUseCase,
	retention time.Duration,
) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	var count int64
	for offset := 0; ; offset += countPageSize {
		events, err := auditEventUseCase.List(ctx, offset, countPageSize, nil, &cutoff)
		if err != nil {
			return 0, err
		}
		count += int64(len(events))
		if len(events) < countPageSize {
			return count, nil
		}
	}
}
