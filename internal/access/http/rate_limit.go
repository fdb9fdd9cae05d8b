// Package http provides HTTP handlers for authorization decisions.
package http

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TenantRateLimiter holds per-tenant rate limiters with automatic cleanup.
//
// The authorize endpoint is unauthenticated until the decision is made, so
// limiting is keyed by the claimed tenant id: a caller hammering one tenant's
// secret cannot exhaust the budget of other tenants, and brute forcing across
// many tenants still pays per request through the handler.
type TenantRateLimiter struct {
	limiters sync.Map // map[string]*tenantLimiterEntry (tenant id -> limiter)
	rps      float64
	burst    int
}

// tenantLimiterEntry holds a rate limiter and last access time for cleanup.
type tenantLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// NewTenantRateLimiter creates a rate limiter store using the token bucket
// algorithm with the given per-tenant rate and burst capacity. A background
// goroutine removes limiters idle for longer than ten minutes.
func NewTenantRateLimiter(rps float64, burst int) *TenantRateLimiter {
	store := &TenantRateLimiter{
		rps:   rps,
		burst: burst,
	}

	go store.cleanupStale(context.Background(), 5*time.Minute)

	return store
}

// Allow reports whether a request for the tenant is within its rate budget.
// When the budget is exhausted it returns the suggested Retry-After delay in
// seconds.
func (s *TenantRateLimiter) Allow(tenantID string) (allowed bool, retryAfter int) {
	limiter := s.getLimiter(tenantID)

	if limiter.Allow() {
		return true, 0
	}

	reservation := limiter.Reserve()
	retryAfter = int(reservation.Delay().Seconds())
	reservation.Cancel()

	return false, retryAfter
}

// getLimiter retrieves or creates a rate limiter for a tenant.
func (s *TenantRateLimiter) getLimiter(tenantID string) *rate.Limiter {
	if val, ok := s.limiters.Load(tenantID); ok {
		entry := val.(*tenantLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &tenantLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}

	actual, _ := s.limiters.LoadOrStore(tenantID, entry)
	return actual.(*tenantLimiterEntry).limiter
}

// cleanupStale removes rate limiters that haven't been accessed recently.
// Runs periodically to prevent unbounded memory growth.
func (s *TenantRateLimiter) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			s.limiters.Range(func(key, val any) bool {
				entry := val.(*tenantLimiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(cutoff)
				entry.mu.Unlock()
				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
