// Package repository implements persistence for signed audit events.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// PostgreSQLAuditEventRepository implements AuditEvent persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEventRepository creates a new PostgreSQL AuditEvent repository.
func NewPostgreSQLAuditEventRepository(db *sql.DB) *PostgreSQLAuditEventRepository {
	return &PostgreSQLAuditEventRepository{db: db}
}

// Create inserts a new AuditEvent into the database.
func (p *PostgreSQLAuditEventRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	scopesJSON, err := json.Marshal(event.RequestedScopes)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal requested scopes")
	}

	query := `INSERT INTO audit_events (id, tenant_id, action, outcome, reason, requested_scopes, signature, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.TenantID,
		string(event.Action),
		string(event.Outcome),
		event.Reason,
		scopesJSON,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// List retrieves audit events ordered by ID descending (newest first) with
// pagination and optional time-based filtering. Both boundaries are inclusive.
func (p *PostgreSQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, action, outcome, reason, requested_scopes, signature, created_at
		  FROM audit_events
		  WHERE ($1::timestamptz IS NULL OR created_at >= $1)
			AND ($2::timestamptz IS NULL OR created_at <= $2)
		  ORDER BY id DESC
		  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, createdAtFrom, createdAtTo, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.AuditEvent, 0)
	for rows.Next() {
		var event auditDomain.AuditEvent
		var action, outcome string
		var scopesJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&action,
			&outcome,
			&event.Reason,
			&scopesJSON,
			&event.Signature,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		event.Action = auditDomain.Action(action)
		event.Outcome = auditDomain.Outcome(outcome)
		if err := json.Unmarshal(scopesJSON, &event.RequestedScopes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal requested scopes")
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// DeleteOlderThan removes audit events created before the given timestamp and
// returns the number of rows removed.
func (p *PostgreSQLAuditEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM audit_events WHERE created_at < $1`,
		before,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read delete result")
	}
	return deleted, nil
}
