package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	"github.com/tenantsec/tenantgate/internal/database"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// MySQLAuditEventRepository implements AuditEvent persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLAuditEventRepository struct {
	db *sql.DB
}

// NewMySQLAuditEventRepository creates a new MySQL AuditEvent repository.
func NewMySQLAuditEventRepository(db *sql.DB) *MySQLAuditEventRepository {
	return &MySQLAuditEventRepository{db: db}
}

// Create inserts a new AuditEvent into the database.
func (m *MySQLAuditEventRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	scopesJSON, err := json.Marshal(event.RequestedScopes)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal requested scopes")
	}

	query := `INSERT INTO audit_events (id, tenant_id, action, outcome, reason, requested_scopes, signature, created_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID[:],
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
func (m *MySQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any
	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, tenant_id, action, outcome, reason, requested_scopes, signature, created_at
		  FROM audit_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.AuditEvent, 0)
	for rows.Next() {
		var event auditDomain.AuditEvent
		var id []byte
		var action, outcome string
		var scopesJSON []byte

		err := rows.Scan(
			&id,
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

		if event.ID, err = uuid.FromBytes(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse audit event id")
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
func (m *MySQLAuditEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM audit_events WHERE created_at < ?`,
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
