package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
	secretsDomain "github.com/tenantsec/tenantgate/internal/secrets/domain"
)

// SecretRecordCollection is the dedicated collection holding one document per
// tenant. It is never exposed through the general tenant-scoped data access
// facade.
const SecretRecordCollection = "tenant_secret_records"

// MongoDBSecretRecordRepository implements SecretRecord persistence for MongoDB.
//
// Documents use the canonical wire shape: blob fields are base64 strings of
// nonce || ciphertext || tag, keyed by tenant id in _id.
type MongoDBSecretRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoDBSecretRecordRepository creates a repository on the dedicated
// secret collection of the given database.
func NewMongoDBSecretRecordRepository(db *mongo.Database) *MongoDBSecretRecordRepository {
	return &MongoDBSecretRecordRepository{collection: db.Collection(SecretRecordCollection)}
}

// secretRecordDocument is the BSON document shape for a SecretRecord.
type secretRecordDocument struct {
	TenantID                string     `bson:"_id"`
	EncryptedSecret         string     `bson:"encrypted_secret"`
	EncryptedDek            string     `bson:"encrypted_dek"`
	Algorithm               string     `bson:"algorithm"`
	PreviousEncryptedSecret *string    `bson:"previous_encrypted_secret,omitempty"`
	PreviousEncryptedDek    *string    `bson:"previous_encrypted_dek,omitempty"`
	PreviousExpiresAt       *time.Time `bson:"previous_expires_at,omitempty"`
	CreatedAt               time.Time  `bson:"created_at"`
	UpdatedAt               time.Time  `bson:"updated_at"`
	RotationCount           uint       `bson:"rotation_count"`
}

// Get retrieves the secret record for a tenant.
// Returns ErrRecordNotFound when no document exists and ErrStorage on I/O failure.
func (r *MongoDBSecretRecordRepository) Get(
	ctx context.Context,
	tenantID string,
) (*secretsDomain.SecretRecord, error) {
	var doc secretRecordDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, secretsDomain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get secret record: %w: %v", apperrors.ErrStorage, err)
	}

	return docToRecord(&doc)
}

// InsertIfAbsent atomically inserts a document unless one already exists,
// relying on the unique _id index. Returns true when this call created the
// document; a duplicate key outcome maps to false without error.
func (r *MongoDBSecretRecordRepository) InsertIfAbsent(
	ctx context.Context,
	record *secretsDomain.SecretRecord,
) (bool, error) {
	_, err := r.collection.InsertOne(ctx, recordToDoc(record))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert secret record: %w: %v", apperrors.ErrStorage, err)
	}
	return true, nil
}

// Replace overwrites the full document for a tenant in a single atomic write.
// Returns ErrRecordNotFound when the tenant has no document.
func (r *MongoDBSecretRecordRepository) Replace(
	ctx context.Context,
	record *secretsDomain.SecretRecord,
) error {
	result, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": record.TenantID},
		recordToDoc(record),
	)
	if err != nil {
		return fmt.Errorf("failed to replace secret record: %w: %v", apperrors.ErrStorage, err)
	}
	if result.MatchedCount == 0 {
		return secretsDomain.ErrRecordNotFound
	}
	return nil
}

// recordToDoc maps a domain record to its BSON document shape.
func recordToDoc(record *secretsDomain.SecretRecord) *secretRecordDocument {
	return &secretRecordDocument{
		TenantID:                record.TenantID,
		EncryptedSecret:         record.EncryptedSecret.String(),
		EncryptedDek:            record.EncryptedDek.String(),
		Algorithm:               string(record.Algorithm),
		PreviousEncryptedSecret: nullableBlobString(record.PreviousEncryptedSecret),
		PreviousEncryptedDek:    nullableBlobString(record.PreviousEncryptedDek),
		PreviousExpiresAt:       record.PreviousExpiresAt,
		CreatedAt:               record.CreatedAt,
		UpdatedAt:               record.UpdatedAt,
		RotationCount:           record.RotationCount,
	}
}

// docToRecord maps a BSON document back to the domain record.
func docToRecord(doc *secretRecordDocument) (*secretsDomain.SecretRecord, error) {
	record := &secretsDomain.SecretRecord{
		TenantID:          doc.TenantID,
		Algorithm:         cryptoDomain.Algorithm(doc.Algorithm),
		PreviousExpiresAt: doc.PreviousExpiresAt,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
		RotationCount:     doc.RotationCount,
	}

	var err error
	if record.EncryptedSecret, err = cryptoDomain.NewEncryptedBlob(doc.EncryptedSecret); err != nil {
		return nil, err
	}
	if record.EncryptedDek, err = cryptoDomain.NewEncryptedBlob(doc.EncryptedDek); err != nil {
		return nil, err
	}
	if record.PreviousEncryptedSecret, err = nullableBlobFromString(doc.PreviousEncryptedSecret); err != nil {
		return nil, err
	}
	if record.PreviousEncryptedDek, err = nullableBlobFromString(doc.PreviousEncryptedDek); err != nil {
		return nil, err
	}

	return record, nil
}

// nullableBlobString serializes an optional blob for an optional document field.
func nullableBlobString(blob *cryptoDomain.EncryptedBlob) *string {
	if blob == nil {
		return nil
	}
	s := blob.String()
	return &s
}

// nullableBlobFromString parses an optional blob from an optional document field.
func nullableBlobFromString(encoded *string) (*cryptoDomain.EncryptedBlob, error) {
	if encoded == nil {
		return nil, nil
	}
	blob, err := cryptoDomain.NewEncryptedBlob(*encoded)
	if err != nil {
		return nil, err
	}
	return &blob, nil
}
