package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

// ScopeDeclarationCollection holds one declaration document per tenant.
const ScopeDeclarationCollection = "tenant_scope_declarations"

// MongoDBScopeDeclarationRepository implements ScopeDeclaration persistence for MongoDB.
type MongoDBScopeDeclarationRepository struct {
	collection *mongo.Collection
}

// NewMongoDBScopeDeclarationRepository creates a repository on the declaration
// collection of the given database.
func NewMongoDBScopeDeclarationRepository(db *mongo.Database) *MongoDBScopeDeclarationRepository {
	return &MongoDBScopeDeclarationRepository{collection: db.Collection(ScopeDeclarationCollection)}
}

// scopeDeclarationDocument is the BSON document shape for a ScopeDeclaration.
type scopeDeclarationDocument struct {
	TenantID   string    `bson:"_id"`
	ReadScopes []string  `bson:"read_scopes"`
	WriteScope string    `bson:"write_scope"`
	Policy     string    `bson:"policy"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// Get retrieves the scope declaration for a tenant.
func (r *MongoDBScopeDeclarationRepository) Get(
	ctx context.Context,
	tenantID string,
) (*accessDomain.ScopeDeclaration, error) {
	var doc scopeDeclarationDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accessDomain.ErrScopeDeclarationNotFound
		}
		return nil, fmt.Errorf("failed to get scope declaration: %w: %v", apperrors.ErrStorage, err)
	}

	policy, err := accessDomain.ParsePolicy(doc.Policy)
	if err != nil {
		return nil, err
	}

	return &accessDomain.ScopeDeclaration{
		TenantID:   doc.TenantID,
		ReadScopes: doc.ReadScopes,
		WriteScope: doc.WriteScope,
		Policy:     policy,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// Upsert creates or replaces the scope declaration for a tenant.
func (r *MongoDBScopeDeclarationRepository) Upsert(
	ctx context.Context,
	declaration *accessDomain.ScopeDeclaration,
) error {
	doc := scopeDeclarationDocument{
		TenantID:   declaration.TenantID,
		ReadScopes: declaration.ReadScopes,
		WriteScope: declaration.WriteScope,
		Policy:     string(declaration.Policy),
		CreatedAt:  declaration.CreatedAt,
		UpdatedAt:  declaration.UpdatedAt,
	}

	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": declaration.TenantID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert scope declaration: %w: %v", apperrors.ErrStorage, err)
	}
	return nil
}
