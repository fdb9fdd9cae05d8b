package app

import (
	"fmt"

	secretsHTTP "github.com/tenantsec/tenantgate/internal/secrets/http"
	secretsRepository "github.com/tenantsec/tenantgate/internal/secrets/repository"
	secretsUseCase "github.com/tenantsec/tenantgate/internal/secrets/usecase"
)

// SecretRecordRepository returns the secret record repository based on database driver.
func (c *Container) SecretRecordRepository() (secretsUseCase.SecretRecordRepository, error) {
	var err error
	c.secretRecordRepoInit.Do(func() {
		c.secretRecordRepo, err = c.initSecretRecordRepository()
		if err != nil {
			c.initErrors["secretRecordRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretRecordRepo"]; exists {
		return nil, storedErr
	}
	return c.secretRecordRepo, nil
}

// SecretLifecycleManager returns the secret lifecycle manager.
func (c *Container) SecretLifecycleManager() (secretsUseCase.SecretLifecycleManager, error) {
	var err error
	c.lifecycleManagerInit.Do(func() {
		c.lifecycleManager, err = c.initSecretLifecycleManager()
		if err != nil {
			c.initErrors["lifecycleManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lifecycleManager"]; exists {
		return nil, storedErr
	}
	return c.lifecycleManager, nil
}

// TenantHandler returns the HTTP handler for tenant management operations.
func (c *Container) TenantHandler() (*secretsHTTP.TenantHandler, error) {
	var err error
	c.tenantHandlerInit.Do(func() {
		c.tenantHandler, err = c.initTenantHandler()
		if err != nil {
			c.initErrors["tenantHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantHandler"]; exists {
		return nil, storedErr
	}
	return c.tenantHandler, nil
}

// initSecretRecordRepository creates the secret record repository based on the database driver.
func (c *Container) initSecretRecordRepository() (secretsUseCase.SecretRecordRepository, error) {
	switch c.config.DBDriver {
	case "postgres":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret record repository: %w", err)
		}
		return secretsRepository.NewPostgreSQLSecretRecordRepository(db), nil
	case "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret record repository: %w", err)
		}
		return secretsRepository.NewMySQLSecretRecordRepository(db), nil
	case "mongodb":
		db, err := c.MongoDatabase()
		if err != nil {
			return nil, fmt.Errorf("failed to get mongodb for secret record repository: %w", err)
		}
		return secretsRepository.NewMongoDBSecretRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSecretLifecycleManager creates the lifecycle manager with all its dependencies.
func (c *Container) initSecretLifecycleManager() (secretsUseCase.SecretLifecycleManager, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for lifecycle manager: %w", err)
	}

	recordRepo, err := c.SecretRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret record repository for lifecycle manager: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope for lifecycle manager: %w", err)
	}

	masterKeySource, err := c.MasterKeySource()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key source for lifecycle manager: %w", err)
	}

	algorithm, err := c.encryptionAlgorithm()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve algorithm for lifecycle manager: %w", err)
	}

	baseManager := secretsUseCase.NewSecretLifecycleManager(
		txManager,
		recordRepo,
		envelope,
		masterKeySource,
		algorithm,
		c.config.RotationGracePeriod,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for lifecycle manager: %w", err)
		}
		return secretsUseCase.NewSecretLifecycleManagerWithMetrics(baseManager, businessMetrics), nil
	}

	return baseManager, nil
}

// initTenantHandler creates the tenant HTTP handler with all its dependencies.
func (c *Container) initTenantHandler() (*secretsHTTP.TenantHandler, error) {
	lifecycleManager, err := c.SecretLifecycleManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get lifecycle manager for tenant handler: %w", err)
	}

	scopeRepo, err := c.ScopeDeclarationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get scope declaration repository for tenant handler: %w", err)
	}

	auditEventUseCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for tenant handler: %w", err)
	}

	return secretsHTTP.NewTenantHandler(lifecycleManager, scopeRepo, auditEventUseCase, c.Logger()), nil
}
