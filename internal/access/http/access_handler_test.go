package http

import (
	"bytes"
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

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	accessRepository "github.com/tenantsec/tenantgate/internal/access/repository"
	accessUseCase "github.com/tenantsec/tenantgate/internal/access/usecase"
	auditRepository "github.com/tenantsec/tenantgate/internal/audit/repository"
	auditService "github.com/tenantsec/tenantgate/internal/audit/service"
	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	cryptoService "github.com/tenantsec/tenantgate/internal/crypto/service"
	"github.com/tenantsec/tenantgate/internal/database"
	"github.com/tenantsec/tenantgate/internal/secrets/repository"
	secretsUseCase "github.com/tenantsec/tenantgate/internal/secrets/usecase"
)

// accessFixture wires an access handler against in-memory storage.
type accessFixture struct {
	handler   *AccessHandler
	lifecycle secretsUseCase.SecretLifecycleManager
	scopeRepo *accessRepository.InMemoryScopeDeclarationRepository
}

func newAccessFixture(t *testing.T, rateLimiter *TenantRateLimiter) *accessFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	rawKey := make([]byte, 32)
	_, err := rand.Read(rawKey)
	require.NoError(t, err)
	masterKey, err := cryptoDomain.NewMasterKey(rawKey)
	require.NoError(t, err)
	masterKeySource := cryptoService.NewStaticMasterKeySource(masterKey)

	envelope := cryptoService.NewEnvelope(cryptoService.NewAEADManager(), cryptoDomain.AESGCM)

	lifecycle := secretsUseCase.NewSecretLifecycleManager(
		database.NewNoopTxManager(),
		repository.NewInMemorySecretRecordRepository(),
		envelope,
		masterKeySource,
		cryptoDomain.AESGCM,
		0,
	)

	scopeRepo := accessRepository.NewInMemoryScopeDeclarationRepository()
	auditCases := auditUseCase.NewAuditEventUseCase(
		auditRepository.NewInMemoryAuditEventRepository(),
		auditService.NewAuditSigner(),
		masterKeySource,
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := accessUseCase.NewAccessGate(lifecycle, scopeRepo, auditCases, logger)

	return &accessFixture{
		handler:   NewAccessHandler(gate, rateLimiter, logger),
		lifecycle: lifecycle,
		scopeRepo: scopeRepo,
	}
}

func (f *accessFixture) registerTenant(t *testing.T, tenantID, secret string, readScopes []string) {
	t.Helper()

	ctx := t.Context()
	created, err := f.lifecycle.Register(ctx, tenantID, secret)
	require.NoError(t, err)
	require.True(t, created)

	declaration := accessDomain.NewScopeDeclaration(tenantID, readScopes, "", accessDomain.PolicyExplicit)
	require.NoError(t, f.scopeRepo.Upsert(ctx, declaration))
}

func postAuthorize(t *testing.T, handler *AccessHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/authorize", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.AuthorizeHandler(c)

	return w
}

func TestAccessHandler_AuthorizeHandler(t *testing.T) {
	t.Run("Authorized_WithDeclaredScopes", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)
		fixture.registerTenant(t, "app_a", "secret-a", []string{"app_b"})

		w := postAuthorize(t, fixture.handler,
			`{"tenant_id":"app_a","token":"secret-a","requested_scopes":["app_a","app_b"]}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["authorized"])
		assert.ElementsMatch(t, []any{"app_a", "app_b"}, response["resolved_read_scopes"])
	})

	t.Run("Denied_ScopeNotAuthorized", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)
		fixture.registerTenant(t, "app_a", "secret-a", []string{"app_b"})

		w := postAuthorize(t, fixture.handler,
			`{"tenant_id":"app_a","token":"secret-a","requested_scopes":["app_c"]}`)

		// Denial is a 200 decision, not an HTTP error
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, false, response["authorized"])
		assert.Equal(t, "scope_not_authorized", response["reason"])
	})

	t.Run("Denied_WrongToken", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)
		fixture.registerTenant(t, "app_a", "secret-a", nil)

		w := postAuthorize(t, fixture.handler,
			`{"tenant_id":"app_a","token":"wrong"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, false, response["authorized"])
		assert.Equal(t, "invalid_token", response["reason"])
	})

	t.Run("AbsentScopes_UsesDeclaredDefault", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)
		fixture.registerTenant(t, "app_a", "secret-a", []string{"app_b"})

		w := postAuthorize(t, fixture.handler,
			`{"tenant_id":"app_a","token":"secret-a"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["authorized"])
		assert.ElementsMatch(t, []any{"app_a", "app_b"}, response["resolved_read_scopes"])
	})

	t.Run("EmptyScopes_OwnPartitionOnly", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)
		fixture.registerTenant(t, "app_a", "secret-a", []string{"app_b"})

		w := postAuthorize(t, fixture.handler,
			`{"tenant_id":"app_a","token":"secret-a","requested_scopes":[]}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["authorized"])
		assert.ElementsMatch(t, []any{"app_a"}, response["resolved_read_scopes"])
	})

	t.Run("NoSecretRegistered_TokenCheckSkipped", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)

		w := postAuthorize(t, fixture.handler, `{"tenant_id":"legacy_app"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["authorized"])
	})

	t.Run("ValidationError_MissingTenantID", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)

		w := postAuthorize(t, fixture.handler, `{"token":"x"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("MalformedJSON_Returns422", func(t *testing.T) {
		fixture := newAccessFixture(t, nil)

		w := postAuthorize(t, fixture.handler, `{"tenant_id":`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("RateLimited_Returns429WithRetryAfter", func(t *testing.T) {
		fixture := newAccessFixture(t, NewTenantRateLimiter(1, 1))
		fixture.registerTenant(t, "app_a", "secret-a", nil)

		w := postAuthorize(t, fixture.handler, `{"tenant_id":"app_a","token":"secret-a"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = postAuthorize(t, fixture.handler, `{"tenant_id":"app_a","token":"secret-a"}`)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("RateLimit_IsPerTenant", func(t *testing.T) {
		fixture := newAccessFixture(t, NewTenantRateLimiter(1, 1))
		fixture.registerTenant(t, "app_a", "secret-a", nil)
		fixture.registerTenant(t, "app_b", "secret-b", nil)

		w := postAuthorize(t, fixture.handler, `{"tenant_id":"app_a","token":"secret-a"}`)
		require.Equal(t, http.StatusOK, w.Code)

		// app_b has its own budget
		w = postAuthorize(t, fixture.handler, `{"tenant_id":"app_b","token":"secret-b"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
