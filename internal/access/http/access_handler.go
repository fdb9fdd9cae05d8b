package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenantsec/tenantgate/internal/access/http/dto"
	accessUseCase "github.com/tenantsec/tenantgate/internal/access/usecase"
	"github.com/tenantsec/tenantgate/internal/httputil"
	customValidation "github.com/tenantsec/tenantgate/internal/validation"
)

// AccessHandler handles HTTP requests for authorization decisions.
type AccessHandler struct {
	gate        accessUseCase.AccessGate
	rateLimiter *TenantRateLimiter
	logger      *slog.Logger
}

// NewAccessHandler creates a new access handler. A nil rateLimiter disables
// rate limiting.
func NewAccessHandler(
	gate accessUseCase.AccessGate,
	rateLimiter *TenantRateLimiter,
	logger *slog.Logger,
) *AccessHandler {
	return &AccessHandler{
		gate:        gate,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// AuthorizeHandler decides a tenant's access request.
// POST /v1/authorize
// Returns 200 OK with the decision for both authorized and denied outcomes;
// denial is a result, not an HTTP error. Rate limiting is per claimed tenant
// id and happens after binding, before any secret material is touched.
func (h *AccessHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if h.rateLimiter != nil {
		allowed, retryAfter := h.rateLimiter.Allow(req.TenantID)
		if !allowed {
			h.logger.Debug("authorize rate limit exceeded",
				slog.String("tenant_id", req.TenantID),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many authorization requests for this tenant. Please retry after the specified delay.",
			})
			return
		}
	}

	decision, err := h.gate.Authorize(c.Request.Context(), req.TenantID, req.Token, req.RequestedScopes)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecisionToResponse(decision))
}
