package app

import (
	"fmt"

	auditHTTP "github.com/tenantsec/tenantgate/internal/audit/http"
	auditRepository "github.com/tenantsec/tenantgate/internal/audit/repository"
	auditService "github.com/tenantsec/tenantgate/internal/audit/service"
	auditUseCase "github.com/tenantsec/tenantgate/internal/audit/usecase"
)

// AuditEventRepository returns the audit event repository based on database driver.
func (c *Container) AuditEventRepository() (auditUseCase.AuditEventRepository, error) {
	var err error
	c.auditRepoInit.Do(func() {
		c.auditRepo, err = c.initAuditEventRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// AuditEventUseCase returns the audit event use case.
func (c *Container) AuditEventUseCase() (auditUseCase.AuditEventUseCase, error) {
	var err error
	c.auditEventUseCaseInit.Do(func() {
		c.auditEventUseCase, err = c.initAuditEventUseCase()
		if err != nil {
			c.initErrors["auditEventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEventUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditEventUseCase, nil
}

// AuditEventHandler returns the HTTP handler for audit event operations.
func (c *Container) AuditEventHandler() (*auditHTTP.AuditEventHandler, error) {
	var err error
	c.auditHandlerInit.Do(func() {
		c.auditEventHandler, err = c.initAuditEventHandler()
		if err != nil {
			c.initErrors["auditEventHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEventHandler"]; exists {
		return nil, storedErr
	}
	return c.auditEventHandler, nil
}

// initAuditEventRepository creates the audit event repository based on the database driver.
func (c *Container) initAuditEventRepository() (auditUseCase.AuditEventRepository, error) {
	switch c.config.DBDriver {
	case "postgres":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
		}
		return auditRepository.NewPostgreSQLAuditEventRepository(db), nil
	case "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
		}
		return auditRepository.NewMySQLAuditEventRepository(db), nil
	case "mongodb":
		db, err := c.MongoDatabase()
		if err != nil {
			return nil, fmt.Errorf("failed to get mongodb for audit event repository: %w", err)
		}
		return auditRepository.NewMongoDBAuditEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditEventUseCase creates the audit event use case with all its dependencies.
func (c *Container) initAuditEventUseCase() (auditUseCase.AuditEventUseCase, error) {
	auditRepo, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for audit event use case: %w", err)
	}

	masterKeySource, err := c.MasterKeySource()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key source for audit event use case: %w", err)
	}

	return auditUseCase.NewAuditEventUseCase(
		auditRepo,
		auditService.NewAuditSigner(),
		masterKeySource,
	), nil
}

// initAuditEventHandler creates the audit event HTTP handler.
func (c *Container) initAuditEventHandler() (*auditHTTP.AuditEventHandler, error) {
	auditEventUseCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for audit event handler: %w", err)
	}

	return auditHTTP.NewAuditEventHandler(auditEventUseCase, c.Logger()), nil
}
