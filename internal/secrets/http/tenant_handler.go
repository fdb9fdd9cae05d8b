// Package http provides HTTP handlers for tenant secret management operations.
// Tenant secrets are envelope-encrypted at rest and returned in plaintext only
// at generation time.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	accessUseCase "github.com/tenantsec/tenantgate/internal/access/usecase"
	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	"github.com/tenantsec/tenantgate/internal/httputil"
	secretsDomain "github.com/tenantsec/tenantgate/internal/secrets/domain"
	"github.com/tenantsec/tenantgate/internal/secrets/http/dto"
	secretsUseCase "github.com/tenantsec/tenantgate/internal/secrets/usecase"
	customValidation "github.com/tenantsec/tenantgate/internal/validation"
)

// TenantHandler handles HTTP requests for tenant registration and secret
// lifecycle operations. All routes are operator-only.
type TenantHandler struct {
	lifecycleManager secretsUseCase.SecretLifecycleManager
	scopeRepo        accessUseCase.ScopeDeclarationRepository
	audit            accessUseCase.AuditSink
	logger           *slog.Logger
}

// NewTenantHandler creates a new tenant handler with required dependencies.
func NewTenantHandler(
	lifecycleManager secretsUseCase.SecretLifecycleManager,
	scopeRepo accessUseCase.ScopeDeclarationRepository,
	audit accessUseCase.AuditSink,
	logger *slog.Logger,
) *TenantHandler {
	return &TenantHandler{
		lifecycleManager: lifecycleManager,
		scopeRepo:        scopeRepo,
		audit:            audit,
		logger:           logger,
	}
}

// RegisterHandler registers a tenant: stores its secret and scope declaration.
// POST /v1/tenants
// Returns 201 Created when the tenant is new, 200 OK when it already existed.
// Registration of the secret is first-write-wins; the scope declaration is
// replaced on every call so operators can update it without re-registering.
func (h *TenantHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterTenantRequest

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

	policy, err := accessDomain.ParsePolicy(req.Policy)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Generate a secret when the operator did not supply one
	secret := req.Secret
	generated := false
	if secret == "" {
		secret, err = secretsUseCase.GenerateSecret()
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		generated = true
	}

	created, err := h.lifecycleManager.Register(c.Request.Context(), req.TenantID, secret)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	declaration := accessDomain.NewScopeDeclaration(req.TenantID, req.ReadScopes, req.WriteScope, policy)
	if err := h.scopeRepo.Upsert(c.Request.Context(), declaration); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	outcome := auditDomain.OutcomeExists
	if created {
		outcome = auditDomain.OutcomeCreated
	}
	h.recordAudit(c, req.TenantID, auditDomain.ActionRegister, outcome, req.ReadScopes)

	response := dto.RegisterTenantResponse{
		TenantID: req.TenantID,
		Created:  created,
	}

	// The generated plaintext is returned exactly once, and only if this
	// call actually stored it.
	if generated && created {
		response.Secret = secret
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, response)
}

// RotateHandler replaces the tenant's secret with fresh material.
// POST /v1/tenants/:tenant_id/rotate
// Returns 200 OK with the new plaintext secret (one-time read).
func (h *TenantHandler) RotateHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	if err := customValidation.TenantID.Validate(tenantID); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, err := h.lifecycleManager.Rotate(c.Request.Context(), tenantID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recordAudit(c, tenantID, auditDomain.ActionRotate, auditDomain.OutcomeRotated, nil)

	c.JSON(http.StatusOK, dto.RotateSecretResponse{
		TenantID: tenantID,
		Secret:   secret,
	})
}

// GetSecretHandler decrypts and returns the tenant's current secret.
// GET /v1/tenants/:tenant_id/secret
// Break-glass operator read, useful when a tenant lost its secret but a
// rotation would break deployed copies.
func (h *TenantHandler) GetSecretHandler(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	if err := customValidation.TenantID.Validate(tenantID); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, found, err := h.lifecycleManager.GetPlaintext(c.Request.Context(), tenantID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if !found {
		httputil.HandleErrorGin(c, secretsDomain.ErrRecordNotFound, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TenantSecretResponse{
		TenantID: tenantID,
		Secret:   secret,
	})
}

// recordAudit records an operator action; sink failures are logged, never
// surfaced to the caller.
func (h *TenantHandler) recordAudit(
	c *gin.Context,
	tenantID string,
	action auditDomain.Action,
	outcome auditDomain.Outcome,
	scopes []string,
) {
	if err := h.audit.Record(c.Request.Context(), tenantID, action, outcome, "", scopes); err != nil {
		h.logger.Warn("failed to record audit event",
			slog.String("tenant_id", tenantID),
			slog.String("action", string(action)),
			slog.Any("error", err),
		)
	}
}
