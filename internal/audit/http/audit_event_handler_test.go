package http

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	"github.com/tenantsec/tenantgate/internal/audit/http/dto"
	auditRepository "github.com/tenantsec/tenantgate/internal/audit/repository"
	auditService "github.com/tenantsec/tenantgate/internal/audit/service"
	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	cryptoService "github.com/tenantsec/tenantgate/internal/crypto/service"
)

func newAuditHandlerFixture(t *testing.T) (*AuditEventHandler, auditUseCase.AuditEventUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	rawKey := make([]byte, 32)
	_, err := rand.Read(rawKey)
	require.NoError(t, err)
	masterKey, err := cryptoDomain.NewMasterKey(rawKey)
	require.NoError(t, err)

	useCase := auditUseCase.NewAuditEventUseCase(
		auditRepository.NewInMemoryAuditEventRepository(),
		auditService.NewAuditSigner(),
		cryptoService.NewStaticMasterKeySource(masterKey),
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuditEventHandler(useCase, logger), useCase
}

func getAuditEvents(t *testing.T, handler *AuditEventHandler, target string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)

	handler.ListHandler(c)

	return w
}

func TestAuditEventHandler_ListHandler(t *testing.T) {
	t.Run("Success_ReturnsEventsNewestFirst", func(t *testing.T) {
		handler, useCase := newAuditHandlerFixture(t)

		ctx := context.Background()
		require.NoError(t, useCase.Record(ctx, "app_a", auditDomain.ActionRegister, auditDomain.OutcomeCreated, "", nil))
		require.NoError(t, useCase.Record(ctx, "app_a", auditDomain.ActionAuthorize, auditDomain.OutcomeAuthorized, "", []string{"app_b"}))

		w := getAuditEvents(t, handler, "/v1/audit-events")

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 2)
		assert.Equal(t, "authorize", response.Data[0].Action)
		assert.Equal(t, "register", response.Data[1].Action)
		assert.NotEmpty(t, response.Data[0].Signature)
	})

	t.Run("Pagination_LimitsResults", func(t *testing.T) {
		handler, useCase := newAuditHandlerFixture(t)

		ctx := context.Background()
		for range 5 {
			require.NoError(t, useCase.Record(ctx, "app_a", auditDomain.ActionAuthorize, auditDomain.OutcomeAuthorized, "", nil))
		}

		w := getAuditEvents(t, handler, "/v1/audit-events?offset=0&limit=2")

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditEventsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 2)
	})

	t.Run("InvalidPagination_Returns422", func(t *testing.T) {
		handler, _ := newAuditHandlerFixture(t)

		w := getAuditEvents(t, handler, "/v1/audit-events?limit=5000")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("InvalidTimeFilter_Returns422", func(t *testing.T) {
		handler, _ := newAuditHandlerFixture(t)

		w := getAuditEvents(t, handler, "/v1/audit-events?created_at_from=yesterday")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("InvertedTimeRange_Returns422", func(t *testing.T) {
		handler, _ := newAuditHandlerFixture(t)

		w := getAuditEvents(t, handler,
			"/v1/audit-events?created_at_from=2026-08-30T00:00:00Z&created_at_to=2026-08-01T00:00:00Z")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
