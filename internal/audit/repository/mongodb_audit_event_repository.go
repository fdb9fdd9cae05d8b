package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// AuditEventCollection holds one document per audit event.
const AuditEventCollection = "audit_events"

// MongoDBAuditEventRepository implements AuditEvent persistence for MongoDB.
type MongoDBAuditEventRepository struct {
	collection *mongo.Collection
}

// NewMongoDBAuditEventRepository creates a repository on the audit collection
// of the given database.
func NewMongoDBAuditEventRepository(db *mongo.Database) *MongoDBAuditEventRepository {
	return &MongoDBAuditEventRepository{collection: db.Collection(AuditEventCollection)}
}

// auditEventDocument is the BSON document shape for an AuditEvent.
type auditEventDocument struct {
	ID              string    `bson:"_id"`
	TenantID        string    `bson:"tenant_id"`
	Action          string    `bson:"action"`
	Outcome         string    `bson:"outcome"`
	Reason          string    `bson:"reason,omitempty"`
	RequestedScopes []string  `bson:"requested_scopes"`
	Signature       []byte    `bson:"signature"`
	CreatedAt       time.Time `bson:"created_at"`
}

// Create inserts a new AuditEvent into the collection.
func (r *MongoDBAuditEventRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	doc := auditEventDocument{
		ID:              event.ID.String(),
		TenantID:        event.TenantID,
		Action:          string(event.Action),
		Outcome:         string(event.Outcome),
		Reason:          event.Reason,
		RequestedScopes: event.RequestedScopes,
		Signature:       event.Signature,
		CreatedAt:       event.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List retrieves audit events newest first with pagination and optional
// time-based filtering. Both boundaries are inclusive.
func (r *MongoDBAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	filter := bson.M{}
	createdAt := bson.M{}
	if createdAtFrom != nil {
		createdAt["$gte"] = *createdAtFrom
	}
	if createdAtTo != nil {
		createdAt["$lte"] = *createdAtTo
	}
	if len(createdAt) > 0 {
		filter["created_at"] = createdAt
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	events := make([]*auditDomain.AuditEvent, 0)
	for cursor.Next(ctx) {
		var doc auditEventDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode audit event")
		}

		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse audit event id")
		}

		events = append(events, &auditDomain.AuditEvent{
			ID:              id,
			TenantID:        doc.TenantID,
			Action:          auditDomain.Action(doc.Action),
			Outcome:         auditDomain.Outcome(doc.Outcome),
			Reason:          doc.Reason,
			RequestedScopes: doc.RequestedScopes,
			Signature:       doc.Signature,
			CreatedAt:       doc.CreatedAt,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// DeleteOlderThan removes audit events created before the given timestamp and
// returns the number of documents removed.
func (r *MongoDBAuditEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	return result.DeletedCount, nil
}
