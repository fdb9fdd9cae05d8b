// Package http provides HTTP handlers for audit trail operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tenantsec/tenantgate/internal/audit/http/dto"
	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
	"github.com/tenantsec/tenantgate/internal/httputil"
)

// AuditEventHandler handles HTTP requests for audit event operations.
// All routes are operator-only.
type AuditEventHandler struct {
	auditEventUseCase auditUseCase.AuditEventUseCase
	logger            *slog.Logger
}

// NewAuditEventHandler creates a new audit event handler with required dependencies.
func NewAuditEventHandler(
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
) *AuditEventHandler {
	return &AuditEventHandler{
		auditEventUseCase: auditEventUseCase,
		logger:            logger,
	}
}

// ListHandler retrieves audit events with pagination and optional time filtering.
// GET /v1/audit-events?offset=0&limit=50&created_at_from=2026-08-01T00:00:00Z&created_at_to=2026-08-30T23:59:59Z
// Returns 200 OK with events ordered newest first. Both time boundaries are
// inclusive, RFC3339, converted to UTC.
func (h *AuditEventHandler) ListHandler(c *gin.Context) {
	// Parse offset and limit query parameters
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Parse optional created_at_from query parameter
	var createdAtFrom *time.Time
	if fromStr := c.Query("created_at_from"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid created_at_from format: must be RFC3339 (e.g., 2026-08-01T00:00:00Z)"),
				h.logger)
			return
		}
		utcTime := parsed.UTC()
		createdAtFrom = &utcTime
	}

	// Parse optional created_at_to query parameter
	var createdAtTo *time.Time
	if toStr := c.Query("created_at_to"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid created_at_to format: must be RFC3339 (e.g., 2026-08-30T23:59:59Z)"),
				h.logger)
			return
		}
		utcTime := parsed.UTC()
		createdAtTo = &utcTime
	}

	if createdAtFrom != nil && createdAtTo != nil && createdAtFrom.After(*createdAtTo) {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("created_at_from must be before or equal to created_at_to"),
			h.logger)
		return
	}

	events, err := h.auditEventUseCase.List(c.Request.Context(), offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapAuditEventsToListResponse(events)
	c.JSON(http.StatusOK, response)
}
