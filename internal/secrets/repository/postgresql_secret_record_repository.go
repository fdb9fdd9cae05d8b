// Package repository implements persistence for tenant secret records.
// Repositories support PostgreSQL, MySQL, and MongoDB with a single document
// or row per tenant. The secret store is reachable only through these
// repositories, never via the general tenant-scoped query path; the
// separation is a security boundary.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
	secretsDomain "github.com/tenantsec/tenantgate/internal/secrets/domain"
)

// PostgreSQLSecretRecordRepository implements SecretRecord persistence for PostgreSQL.
type PostgreSQLSecretRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLSecretRecordRepository creates a repository backed by the given database.
func NewPostgreSQLSecretRecordRepository(db *sql.DB) *PostgreSQLSecretRecordRepository {
	return &PostgreSQLSecretRecordRepository{db: db}
}

// Get retrieves the secret record for a tenant.
// Returns ErrRecordNotFound when no record exists and ErrStorage on I/O failure.
func (p *PostgreSQLSecretRecordRepository) Get(
	ctx context.Context,
	tenantID string,
) (*secretsDomain.SecretRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT tenant_id, encrypted_secret, encrypted_dek, algorithm,
			 previous_encrypted_secret, previous_encrypted_dek, previous_expires_at,
			 created_at, updated_at, rotation_count
		  FROM tenant_secret_records
		  WHERE tenant_id = $1`

	return scanSecretRecord(querier.QueryRowContext(ctx, query, tenantID))
}

// InsertIfAbsent atomically inserts a record unless one already exists for the
// tenant. Returns true when this call created the record; false when a record
// was already present. This is the only race guard for concurrent duplicate
// registrations.
func (p *PostgreSQLSecretRecordRepository) InsertIfAbsent(
	ctx context.Context,
	record *secretsDomain.SecretRecord,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tenant_secret_records
			 (tenant_id, encrypted_secret, encrypted_dek, algorithm,
			  previous_encrypted_secret, previous_encrypted_dek, previous_expires_at,
			  created_at, updated_at, rotation_count)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		  ON CONFLICT (tenant_id) DO NOTHING`

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
func (p *PostgreSQLSecretRecordRepository) Replace(
	ctx context.Context,
	record *secretsDomain.SecretRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tenant_secret_records
		  SET encrypted_secret = $2,
			  encrypted_dek = $3,
			  algorithm = $4,
			  previous_encrypted_secret = $5,
			  previous_encrypted_dek = $6,
			  previous_expires_at = $7,
			  updated_at = $8,
			  rotation_count = $9
		  WHERE tenant_id = $1`

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
		record.UpdatedAt,
		record.RotationCount,
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

// rowScanner abstracts *sql.Row for shared scanning between drivers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSecretRecord maps one row to a SecretRecord, decoding blob columns.
func scanSecretRecord(row rowScanner) (*secretsDomain.SecretRecord, error) {
	var record secretsDomain.SecretRecord
	var algorithm string
	var encryptedSecret, encryptedDek []byte
	var previousSecret, previousDek []byte

	err := row.Scan(
		&record.TenantID,
		&encryptedSecret,
		&encryptedDek,
		&algorithm,
		&previousSecret,
		&previousDek,
		&record.PreviousExpiresAt,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.RotationCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, secretsDomain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get secret record: %w: %v", apperrors.ErrStorage, err)
	}

	record.Algorithm = cryptoDomain.Algorithm(algorithm)

	if record.EncryptedSecret, err = cryptoDomain.NewEncryptedBlobFromBytes(encryptedSecret); err != nil {
		return nil, err
	}
	if record.EncryptedDek, err = cryptoDomain.NewEncryptedBlobFromBytes(encryptedDek); err != nil {
		return nil, err
	}
	if record.PreviousEncryptedSecret, err = nullableBlobFromBytes(previousSecret); err != nil {
		return nil, err
	}
	if record.PreviousEncryptedDek, err = nullableBlobFromBytes(previousDek); err != nil {
		return nil, err
	}

	return &record, nil
}

// nullableBlobBytes serializes an optional blob for a nullable column.
func nullableBlobBytes(blob *cryptoDomain.EncryptedBlob) []byte {
	if blob == nil {
		return nil
	}
	return blob.Bytes()
}

// nullableBlobFromBytes parses an optional blob from a nullable column.
func nullableBlobFromBytes(raw []byte) (*cryptoDomain.EncryptedBlob, error) {
	if raw == nil {
		return nil, nil
	}
	blob, err := cryptoDomain.NewEncryptedBlobFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return &blob, nil
}
