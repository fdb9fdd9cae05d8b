// Package domain defines cross-tenant access authorization models and business logic.
//
// A tenant declares at registration which other tenants' partitions it may
// read. Authorization is an exact set-containment check against that
// declaration; there is no wildcard or prefix matching, and a tenant can
// always read its own partition.
package domain

import (
	"fmt"
	"slices"
	"time"
)

// Policy controls how a tenant's scope declaration is interpreted.
type Policy string

const (
	// PolicyExplicit authorizes exactly the declared read scopes.
	PolicyExplicit Policy = "explicit"

	// PolicyDenyAll overrides the declared read scopes entirely: only the
	// tenant's own partition is ever authorized. Checked before anything else.
	PolicyDenyAll Policy = "deny_all"
)

// ParsePolicy converts a stored or user-supplied policy string, with the
// empty string defaulting to explicit.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case PolicyExplicit, PolicyDenyAll:
		return Policy(value), nil
	case "":
		return PolicyExplicit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, value)
	}
}

// Reason explains a denied authorization decision.
type Reason string

const (
	// ReasonNone is set on authorized decisions.
	ReasonNone Reason = ""

	// ReasonInvalidToken covers a missing or wrong tenant token. Internal
	// verification failures also surface as this reason so callers cannot
	// distinguish them from a policy failure.
	ReasonInvalidToken Reason = "invalid_token"

	// ReasonScopeNotAuthorized covers requested scopes outside the declared set.
	ReasonScopeNotAuthorized Reason = "scope_not_authorized"

	// ReasonDeniedByPolicy covers cross-tenant requests under a deny_all policy.
	ReasonDeniedByPolicy Reason = "denied_by_policy"
)

// ScopeDeclaration records which tenant partitions a tenant may read.
// The declaration is tenant configuration, not secret material.
type ScopeDeclaration struct {
	TenantID   string
	ReadScopes []string // declared cross-tenant read scopes; own tenant id is always implied
	WriteScope string   // defaults to TenantID
	Policy     Policy
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuthorizationDecision is the only value returned across the access gate
// boundary. It never carries secret material.
type AuthorizationDecision struct {
	Authorized         bool
	TenantID           string
	ResolvedReadScopes []string
	Reason             Reason
}

// NewScopeDeclaration creates a declaration with defaults applied: the write
// scope falls back to the tenant's own partition and the policy to explicit.
func NewScopeDeclaration(tenantID string, readScopes []string, writeScope string, policy Policy) *ScopeDeclaration {
	if writeScope == "" {
		writeScope = tenantID
	}
	if policy == "" {
		policy = PolicyExplicit
	}
	now := time.Now().UTC()
	return &ScopeDeclaration{
		TenantID:   tenantID,
		ReadScopes: readScopes,
		WriteScope: writeScope,
		Policy:     policy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// allowedScopes returns the effective read set: declared scopes plus the
// tenant's own partition, deduplicated and sorted for stable output.
func (s *ScopeDeclaration) allowedScopes() []string {
	allowed := make([]string, 0, len(s.ReadScopes)+1)
	allowed = append(allowed, s.ReadScopes...)
	if !slices.Contains(allowed, s.TenantID) {
		allowed = append(allowed, s.TenantID)
	}
	slices.Sort(allowed)
	return slices.Compact(allowed)
}

// Validate decides whether the requested scopes are authorized under this
// declaration.
//
// A nil requested set means "use the default": the full declared read set plus
// the tenant's own partition. An empty non-nil set is valid and distinct: it
// resolves to the tenant's own partition only. Any other set is authorized iff
// it is exactly contained in the declared scopes plus the tenant's own
// partition.
func (s *ScopeDeclaration) Validate(requested []string) AuthorizationDecision {
	if s.Policy == PolicyDenyAll {
		return s.validateDenyAll(requested)
	}

	allowed := s.allowedScopes()

	if requested == nil {
		return AuthorizationDecision{
			Authorized:         true,
			TenantID:           s.TenantID,
			ResolvedReadScopes: allowed,
		}
	}

	for _, scope := range requested {
		if !slices.Contains(allowed, scope) {
			return AuthorizationDecision{
				Authorized:         false,
				TenantID:           s.TenantID,
				ResolvedReadScopes: normalizeScopes(s.TenantID, requested),
				Reason:             ReasonScopeNotAuthorized,
			}
		}
	}

	return AuthorizationDecision{
		Authorized:         true,
		TenantID:           s.TenantID,
		ResolvedReadScopes: normalizeScopes(s.TenantID, requested),
	}
}

// validateDenyAll handles the hard override: only the tenant's own partition
// is ever authorized, regardless of what the declaration lists.
func (s *ScopeDeclaration) validateDenyAll(requested []string) AuthorizationDecision {
	own := []string{s.TenantID}

	if requested == nil {
		return AuthorizationDecision{
			Authorized:         true,
			TenantID:           s.TenantID,
			ResolvedReadScopes: own,
		}
	}

	for _, scope := range requested {
		if scope != s.TenantID {
			return AuthorizationDecision{
				Authorized:         false,
				TenantID:           s.TenantID,
				ResolvedReadScopes: normalizeScopes(s.TenantID, requested),
				Reason:             ReasonDeniedByPolicy,
			}
		}
	}

	return AuthorizationDecision{
		Authorized: true,
		TenantID:   s.TenantID,
		// Empty and {tenant_id} requests both resolve to own partition only.
		ResolvedReadScopes: own,
	}
}

// normalizeScopes returns the requested scopes deduplicated and sorted, with
// an empty request resolving to the tenant's own partition.
func normalizeScopes(tenantID string, requested []string) []string {
	if len(requested) == 0 {
		return []string{tenantID}
	}
	resolved := slices.Clone(requested)
	slices.Sort(resolved)
	return slices.Compact(resolved)
}
