package repository

import (
	"context"
	"sync"

	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
)

// InMemoryScopeDeclarationRepository implements ScopeDeclaration persistence
// in process memory for unit tests and local development.
type InMemoryScopeDeclarationRepository struct {
	mu           sync.Mutex
	declarations map[string]accessDomain.ScopeDeclaration
}

// NewInMemoryScopeDeclarationRepository creates an empty in-memory repository.
func NewInMemoryScopeDeclarationRepository() *InMemoryScopeDeclarationRepository {
	return &InMemoryScopeDeclarationRepository{
		declarations: make(map[string]accessDomain.ScopeDeclaration),
	}
}

// Get retrieves the scope declaration for a tenant.
func (i *InMemoryScopeDeclarationRepository) Get(
	_ context.Context,
	tenantID string,
) (*accessDomain.ScopeDeclaration, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	declaration, ok := i.declarations[tenantID]
	if !ok {
		return nil, accessDomain.ErrScopeDeclarationNotFound
	}
	return &declaration, nil
}

// Upsert creates or replaces the scope declaration for a tenant.
func (i *InMemoryScopeDeclarationRepository) Upsert(
	_ context.Context,
	declaration *accessDomain.ScopeDeclaration,
) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.declarations[declaration.TenantID] = *declaration
	return nil
}
