package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
)

// InMemoryAuditEventRepository implements AuditEvent persistence in process
// memory for unit tests.
type InMemoryAuditEventRepository struct {
	mu     sync.Mutex
	events []auditDomain.AuditEvent
}

// NewInMemoryAuditEventRepository creates an empty in-memory repository.
func NewInMemoryAuditEventRepository() *InMemoryAuditEventRepository {
	return &InMemoryAuditEventRepository{}
}

// Create appends an event.
func (i *InMemoryAuditEventRepository) Create(_ context.Context, event *auditDomain.AuditEvent) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.events = append(i.events, *event)
	return nil
}

// List retrieves events newest first with pagination and optional time filtering.
func (i *InMemoryAuditEventRepository) List(
	_ context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	filtered := make([]*auditDomain.AuditEvent, 0)
	for idx := range i.events {
		event := i.events[idx]
		if createdAtFrom != nil && event.CreatedAt.Before(*createdAtFrom) {
			continue
		}
		if createdAtTo != nil && event.CreatedAt.After(*createdAtTo) {
			continue
		}
		filtered = append(filtered, &event)
	}

	slices.Reverse(filtered)

	if offset >= len(filtered) {
		return []*auditDomain.AuditEvent{}, nil
	}
	filtered = filtered[offset:]
	if limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// DeleteOlderThan removes events created before the given timestamp.
func (i *InMemoryAuditEventRepository) DeleteOlderThan(
	_ context.Context,
	before time.Time,
) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	kept := i.events[:0]
	var deleted int64
	for _, event := range i.events {
		if event.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, event)
	}
	i.events = kept
	return deleted, nil
}
