package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
)

// RunVerifyAuditEvents checks the HMAC signatures of all stored audit events in
// batches and reports how many are valid. Returns an error when any signature
// fails so the command exits non-zero on tampering.
//
// Requirements: Database must be migrated and the master key configured.
func RunVerifyAuditEvents(
	ctx context.Context,
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	format string,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be a positive number, got: %d", batchSize)
	}

	logger.Info("verifying audit events", slog.Int("batch_size", batchSize))

	var totalValid, totalInvalid int
	for offset := 0; ; offset += batchSize {
		valid, invalid, err := auditEventUseCase.VerifySignatures(ctx, offset, batchSize)
		if err != nil {
			return fmt.Errorf("failed to verify audit events: %w", err)
		}

		totalValid += valid
		totalInvalid += invalid
		if valid+invalid < batchSize {
			break
		}
	}

	totalChecked := totalValid + totalInvalid

	if format == "json" {
		if err := writeJSON(writer, map[string]interface{}{
			"total_checked": totalChecked,
			"valid_count":   totalValid,
			"invalid_count": totalInvalid,
			"passed":        totalInvalid == 0,
		}); err != nil {
			return err
		}
	} else {
		outputVerifyText(writer, totalChecked, totalValid, totalInvalid)
	}

	logger.Info("verification completed",
		slog.Int("total_checked", totalChecked),
		slog.Int("valid", totalValid),
		slog.Int("invalid", totalInvalid),
	)

	if totalInvalid > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", totalInvalid)
	}

	return nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, totalChecked, valid, invalid int) {
	_, _ = fmt.Fprintf(writer, "Audit Event Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "==================================\n\n")
	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", totalChecked)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", valid)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", invalid)

	switch {
	case invalid > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d event(s) failed integrity check!\n", invalid)
		_, _ = fmt.Fprintf(writer, "Status: FAILED\n")
	case totalChecked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No audit events found\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}
