package repository

import (
	"context"
	"database/sql"
	"fmt"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// MySQLScopeDeclarationRepository implements ScopeDeclaration persistence for MySQL.
type MySQLScopeDeclarationRepository struct {
	db *sql.DB
}

// NewMySQLScopeDeclarationRepository creates a repository backed by the given database.
func NewMySQLScopeDeclarationRepository(db *sql.DB) *MySQLScopeDeclarationRepository {
	return &MySQLScopeDeclarationRepository{db: db}
}

// Get retrieves the scope declaration for a tenant.
func (m *MySQLScopeDeclarationRepository) Get(
	ctx context.Context,
	tenantID string,
) (*accessDomain.ScopeDeclaration, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT tenant_id, read_scopes, write_scope, policy, created_at, updated_at
		  FROM tenant_scope_declarations
		  WHERE tenant_id = ?`

	return scanScopeDeclaration(querier.QueryRowContext(ctx, query, tenantID))
}

// Upsert creates or replaces the scope declaration for a tenant.
func (m *MySQLScopeDeclarationRepository) Upsert(
	ctx context.Context,
	declaration *accessDomain.ScopeDeclaration,
) error {
	querier := database.GetTx(ctx, m.db)

	readScopes, err := marshalReadScopes(declaration.ReadScopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO tenant_scope_declarations
			 (tenant_id, read_scopes, write_scope, policy, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?)
		  ON DUPLICATE KEY UPDATE
			  read_scopes = VALUES(read_scopes),
			  write_scope = VALUES(write_scope),
			  policy = VALUES(policy),
			  updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		declaration.TenantID,
		readScopes,
		declaration.WriteScope,
		string(declaration.Policy),
		declaration.CreatedAt,
		declaration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert scope declaration: %w: %v", apperrors.ErrStorage, err)
	}
	return nil
}
