// Package http provides the HTTP server, router setup and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessHTTP "github.com/tenantsec/tenantgate/internal/access/http"
	auditHTTP "github.com/tenantsec/tenantgate/internal/audit/http"
	secretsHTTP "github.com/tenantsec/tenantgate/internal/secrets/http"
)

// Server represents the API HTTP server.
type Server struct {
	server     *http.Server
	router     *gin.Engine
	logger     *slog.Logger
	db         *sql.DB
	readyProbe func(ctx context.Context) error
}

// NewServer creates a new HTTP server. The database handle is used by the
// readiness endpoint; it may be nil when the backend is not SQL-based, in
// which case a readiness probe should be set via SetReadinessProbe.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler exposes the configured router so tests can mount the server
// without opening a listener. Nil until SetupRouter is called.
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// SetReadinessProbe overrides the default database ping used by /ready.
// Used for backends without a *sql.DB handle, such as MongoDB.
func (s *Server) SetReadinessProbe(probe func(ctx context.Context) error) {
	s.readyProbe = probe
}

// RouterConfig holds the handlers and settings used to build the API router.
type RouterConfig struct {
	TenantHandler     *secretsHTTP.TenantHandler
	AccessHandler     *accessHTTP.AccessHandler
	AuditEventHandler *auditHTTP.AuditEventHandler
	OperatorAPIKey    string
	CORSEnabled       bool
	CORSAllowOrigins  string
}

// SetupRouter builds the Gin router with all middleware and API routes.
// Must be called before Start.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	// Health and readiness endpoints
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Authorization decisions are the caller-facing surface; callers prove
	// knowledge of their tenant secret per request, so no session middleware.
	if cfg.AccessHandler != nil {
		v1.POST("/authorize", cfg.AccessHandler.AuthorizeHandler)
	}

	// Operator endpoints require the operator API key.
	operator := v1.Group("", OperatorAuthMiddleware(cfg.OperatorAPIKey, s.logger))
	if cfg.TenantHandler != nil {
		operator.POST("/tenants", cfg.TenantHandler.RegisterHandler)
		operator.POST("/tenants/:tenant_id/rotate", cfg.TenantHandler.RotateHandler)
		operator.GET("/tenants/:tenant_id/secret", cfg.TenantHandler.GetSecretHandler)
	}
	if cfg.AuditEventHandler != nil {
		operator.GET("/audit-events", cfg.AuditEventHandler.ListHandler)
	}

	s.router = router
	s.server.Handler = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	switch {
	case s.readyProbe != nil:
		if err := s.readyProbe(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	case s.db != nil:
		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	default:
		components["database"] = "error"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter before Start")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
