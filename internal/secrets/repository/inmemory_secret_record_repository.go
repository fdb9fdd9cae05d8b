package repository

import (
	"context"
	"sync"

	secretsDomain "github.com/tenantsec/tenantgate/internal/secrets/domain"
)

// InMemorySecretRecordRepository implements SecretRecord persistence in
// process memory. It backs unit tests and local development; the mutex gives
// it the same single-writer-wins semantics the database backends provide.
type InMemorySecretRecordRepository struct {
	mu      sync.Mutex
	records map[string]secretsDomain.SecretRecord
}

// NewInMemorySecretRecordRepository creates an empty in-memory repository.
func NewInMemorySecretRecordRepository() *InMemorySecretRecordRepository {
	return &InMemorySecretRecordRepository{
		records: make(map[string]secretsDomain.SecretRecord),
	}
}

// Get retrieves the secret record for a tenant.
func (i *InMemorySecretRecordRepository) Get(
	_ context.Context,
	tenantID string,
) (*secretsDomain.SecretRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	record, ok := i.records[tenantID]
	if !ok {
		return nil, secretsDomain.ErrRecordNotFound
	}
	return &record, nil
}

// InsertIfAbsent stores the record unless one already exists for the tenant.
func (i *InMemorySecretRecordRepository) InsertIfAbsent(
	_ context.Context,
	record *secretsDomain.SecretRecord,
) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.records[record.TenantID]; ok {
		return false, nil
	}
	i.records[record.TenantID] = *record
	return true, nil
}

// Replace overwrites the record for a tenant.
func (i *InMemorySecretRecordRepository) Replace(
	_ context.Context,
	record *secretsDomain.SecretRecord,
) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.records[record.TenantID]; !ok {
		return secretsDomain.ErrRecordNotFound
	}
	i.records[record.TenantID] = *record
	return nil
}
