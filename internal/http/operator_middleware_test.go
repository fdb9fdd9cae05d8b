package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newOperatorRouter(apiKey string) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OperatorAuthMiddleware(apiKey, logger))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func TestOperatorAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		configuredKey  string
		providedKey    string
		expectedStatus int
	}{
		{
			name:           "valid key",
			configuredKey:  "operator-key",
			providedKey:    "operator-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong key",
			configuredKey:  "operator-key",
			providedKey:    "wrong-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "key with different length",
			configuredKey:  "operator-key",
			providedKey:    "operator-key-extended",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing key",
			configuredKey:  "operator-key",
			providedKey:    "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "no key configured rejects everything",
			configuredKey:  "",
			providedKey:    "anything",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newOperatorRouter(tt.configuredKey)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.providedKey != "" {
				req.Header.Set(OperatorAPIKeyHeader, tt.providedKey)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
