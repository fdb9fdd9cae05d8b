// Package repository implements persistence for tenant scope declarations.
// Declarations are tenant configuration, stored separately from the secret
// store; the read scope list is kept as a JSON column in SQL backends.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// PostgreSQLScopeDeclarationRepository implements ScopeDeclaration persistence for PostgreSQL.
type PostgreSQLScopeDeclarationRepository struct {
	db *sql.DB
}

// NewPostgreSQLScopeDeclarationRepository creates a repository backed by the given database.
func NewPostgreSQLScopeDeclarationRepository(db *sql.DB) *PostgreSQLScopeDeclarationRepository {
	return &PostgreSQLScopeDeclarationRepository{db: db}
}

// Get retrieves the scope declaration for a tenant.
func (p *PostgreSQLScopeDeclarationRepository) Get(
	ctx context.Context,
	tenantID string,
) (*accessDomain.ScopeDeclaration, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT tenant_id, read_scopes, write_scope, policy, created_at, updated_at
		  FROM tenant_scope_declarations
		  WHERE tenant_id = $1`

	return scanScopeDeclaration(querier.QueryRowContext(ctx, query, tenantID))
}

// Upsert creates or replaces the scope declaration for a tenant.
func (p *PostgreSQLScopeDeclarationRepository) Upsert(
	ctx context.Context,
	declaration *accessDomain.ScopeDeclaration,
) error {
	querier := database.GetTx(ctx, p.db)

	readScopes, err := marshalReadScopes(declaration.ReadScopes)
	if err != nil {
		return err
	}

	query := `INSERT INTO tenant_scope_declarations
			 (tenant_id, read_scopes, write_scope, policy, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6)
		  ON CONFLICT (tenant_id) DO UPDATE
		  SET read_scopes = EXCLUDED.read_scopes,
			  write_scope = EXCLUDED.write_scope,
			  policy = EXCLUDED.policy,
			  updated_at = EXCLUDED.updated_at`

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

// scanScopeDeclaration maps one row to a ScopeDeclaration, decoding the JSON
// scope column.
func scanScopeDeclaration(row rowScanner) (*accessDomain.ScopeDeclaration, error) {
	var declaration accessDomain.ScopeDeclaration
	var readScopes []byte
	var policy string

	err := row.Scan(
		&declaration.TenantID,
		&readScopes,
		&declaration.WriteScope,
		&policy,
		&declaration.CreatedAt,
		&declaration.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, accessDomain.ErrScopeDeclarationNotFound
		}
		return nil, fmt.Errorf("failed to get scope declaration: %w: %v", apperrors.ErrStorage, err)
	}

	if declaration.Policy, err = accessDomain.ParsePolicy(policy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(readScopes, &declaration.ReadScopes); err != nil {
		return nil, fmt.Errorf("failed to decode read scopes: %w: %v", apperrors.ErrStorage, err)
	}

	return &declaration, nil
}

// rowScanner abstracts *sql.Row for shared scanning between drivers.
type rowScanner interface {
	Scan(dest ...any) error
}

// marshalReadScopes serializes the scope list, writing an empty JSON array
// rather than null so the column round-trips cleanly.
func marshalReadScopes(readScopes []string) ([]byte, error) {
	if readScopes == nil {
		readScopes = []string{}
	}
	raw, err := json.Marshal(readScopes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode read scopes: %w: %v", apperrors.ErrStorage, err)
	}
	return raw, nil
}
