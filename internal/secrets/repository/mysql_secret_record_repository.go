package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
	secretsDomain "github.com/tenantsec/tenantgate/internal/secrets/domain"
)

// MySQLSecretRecordRepository implements SecretRecord persistence for MySQL.
type MySQLSecretRecordRepository struct {
	db *sql.DB
}

// NewMySQLSecretRecordRepository creates a repository backed by the given database.
func NewMySQLSecretRecordRepository(db *sql.DB) *MySQLSecretRecordRepository {
	return &MySQLSecretRecordRepository{db: db}
}

// Get retrieves the secret record for a tenant.
// Returns ErrRecordNotFound when no record exists and ErrStorage on I/O failure.
func (m *MySQLSecretRecordRepository) Get(
	ctx context.Context,
	tenantID string,
) (*secretsDomain.SecretRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT tenant_id, encrypted_secret, encrypted_dek, algorithm,
			 previous_encrypted_secret, previous_encrypted_dek, previous_expires_at,
			 created_at, updated_at, rotation_count
		  FROM tenant_secret_records
		  WHERE tenant_id = ?`

	return scanSecretRecord(querier.QueryRowContext(ctx, query, tenantID))
}

// InsertIfAbsent atomically inserts a record unless one already exists for the
// tenant. Returns true when this call created the record.
func (m *MySQLSecretRecordRepository) InsertIfAbsent(
	ctx context.Context,
	record *secretsDomain.SecretRecord,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT IGNORE INTO tenant_secret_records
			 (tenant_id, encrypted_secret, encrypted_dek, algorithm,
			  previous_encrypted_secret, previous_encrypted_dek, previous_expires_at,
			  created_at, updated_at, rotation_count)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.TenantID,
		record.EncryptedSecret.Bytes(),
		record.EncryptedDek.Bytes(),
		string(record.Algorithm),
		nullableBlobBytes(record.PreviousEncryptedSecret),
		nullableBlobBytes(record.PreviousEncryptedDek),
		record.PreviousExpiresAt,
		record.CreatedAt,
		record.UpdatedAt,
		record.RotationCount,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert secret record: %w: %v", apperrors.ErrStorage, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w: %v", apperrors.ErrStorage, err)
	}
	return inserted == 1, nil
}

// Replace overwrites the full record for a tenant in a single atomic write.
// Returns ErrRecordNotFound when the tenant has no record.
func (m *MySQLSecretRecordRepository) Replace(
	ctx context.Context,
	record *secretsDomain.SecretRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE tenant_secret_records
		  SET encrypted_secret = ?,
			  encrypted_dek = ?,
			  algorithm = ?,
			  previous_encrypted_secret = ?,
			  previous_encrypted_dek = ?,
			  previous_expires_at = ?,
			  updated_at = ?,
			  rotation_count = ?
		  WHERE tenant_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.EncryptedSecret.Bytes(),
		record.EncryptedDek.Bytes(),
		string(record.Algorithm),
		nullableBlobBytes(record.PreviousEncryptedSecret),
		nullableBlobBytes(record.PreviousEncryptedDek),
		record.PreviousExpiresAt,
		record.UpdatedAt,
		record.RotationCount,
		record.TenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to replace secret record: %w: %v", apperrors.ErrStorage, err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read replace result: %w: %v", apperrors.ErrStorage, err)
	}
	if updated == 0 {
		return secretsDomain.ErrRecordNotFound
	}
	return nil
}
