package http

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tenantsec/tenantgate/internal/errors"
	"github.com/tenantsec/tenantgate/internal/httputil"
)

// OperatorAPIKeyHeader carries the operator API key on management requests.
const OperatorAPIKeyHeader = "X-Operator-Api-Key"

// OperatorAuthMiddleware protects operator endpoints with a shared API key.
//
// The key comparison is constant-time. When no key is configured the
// middleware rejects every request: operator endpoints are never open, and
// the CLI remains available for management in that deployment.
//
// Returns 401 Unauthorized for a missing or wrong key.
func OperatorAuthMiddleware(apiKey string, logger *slog.Logger) gin.HandlerFunc {
	if apiKey == "" {
		logger.Warn("operator api key not configured, operator endpoints disabled")
	}

	return func(c *gin.Context) {
		provided := c.GetHeader(OperatorAPIKeyHeader)

		if apiKey == "" || provided == "" {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Length equality is checked in constant time as well, so the
		// comparison leaks nothing about the configured key.
		sameLength := subtle.ConstantTimeEq(int32(len(provided)), int32(len(apiKey)))
		match := subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey))
		if sameLength&match != 1 {
			logger.Debug("operator authentication failed",
				slog.String("client_ip", c.ClientIP()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
