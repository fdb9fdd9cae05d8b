package app

import (
	"fmt"

	accessHTTP "github.com/tenantsec/tenantgate/internal/access/http"
	accessRepository "github.com/tenantsec/tenantgate/internal/access/repository"
	accessUseCase "github.com/tenantsec/tenantgate/internal/access/usecase"
)

// ScopeDeclarationRepository returns the scope declaration repository based on database driver.
func (c *Container) ScopeDeclarationRepository() (accessUseCase.ScopeDeclarationRepository, error) {
	var err error
	c.scopeRepoInit.Do(func() {
		c.scopeRepo, err = c.initScopeDeclarationRepository()
		if err != nil {
			c.initErrors["scopeRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scopeRepo"]; exists {
		return nil, storedErr
	}
	return c.scopeRepo, nil
}

// AccessGate returns the cross-tenant access gate.
func (c *Container) AccessGate() (accessUseCase.AccessGate, error) {
	var err error
	c.accessGateInit.Do(func() {
		c.accessGate, err = c.initAccessGate()
		if err != nil {
			c.initErrors["accessGate"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessGate"]; exists {
		return nil, storedErr
	}
	return c.accessGate, nil
}

// AccessHandler returns the HTTP handler for authorization decisions.
func (c *Container) AccessHandler() (*accessHTTP.AccessHandler, error) {
	var err error
	c.accessHandlerInit.Do(func() {
		c.accessHandler, err = c.initAccessHandler()
		if err != nil {
			c.initErrors["accessHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessHandler"]; exists {
		return nil, storedErr
	}
	return c.accessHandler, nil
}

// initScopeDeclarationRepository creates the scope declaration repository based on the database driver.
func (c *Container) initScopeDeclarationRepository() (accessUseCase.ScopeDeclarationRepository, error) {
	switch c.config.DBDriver {
	case "postgres":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for scope declaration repository: %w", err)
		}
		return accessRepository.NewPostgreSQLScopeDeclarationRepository(db), nil
	case "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for scope declaration repository: %w", err)
		}
		return accessRepository.NewMySQLScopeDeclarationRepository(db), nil
	case "mongodb":
		db, err := c.MongoDatabase()
		if err != nil {
			return nil, fmt.Errorf("failed to get mongodb for scope declaration repository: %w", err)
		}
		return accessRepository.NewMongoDBScopeDeclarationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAccessGate creates the access gate with all its dependencies.
func (c *Container) initAccessGate() (accessUseCase.AccessGate, error) {
	lifecycleManager, err := c.SecretLifecycleManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get lifecycle manager for access gate: %w", err)
	}

	scopeRepo, err := c.ScopeDeclarationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get scope declaration repository for access gate: %w", err)
	}

	auditEventUseCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for access gate: %w", err)
	}

	baseGate := accessUseCase.NewAccessGate(
		lifecycleManager,
		scopeRepo,
		auditEventUseCase,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for access gate: %w", err)
		}
		return accessUseCase.NewAccessGateWithMetrics(baseGate, businessMetrics), nil
	}

	return baseGate, nil
}

// initAccessHandler creates the access HTTP handler with all its dependencies.
func (c *Container) initAccessHandler() (*accessHTTP.AccessHandler, error) {
	gate, err := c.AccessGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get access gate for access handler: %w", err)
	}

	var rateLimiter *accessHTTP.TenantRateLimiter
	if c.config.RateLimitEnabled {
		rateLimiter = accessHTTP.NewTenantRateLimiter(
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
		)
	}

	return accessHTTP.NewAccessHandler(gate, rateLimiter, c.Logger()), nil
}
