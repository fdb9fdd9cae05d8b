package dto

import (
	accessDomain "github.com/tenantsec/tenantgate/internal/access/domain"
)

// AuthorizeResponse represents an authorization decision in API responses.
type AuthorizeResponse struct {
	Authorized         bool     `json:"authorized"`
	TenantID           string   `json:"tenant_id"`
	ResolvedReadScopes []string `json:"resolved_read_scopes"`
	Reason             string   `json:"reason,omitempty"`
}

// MapDecisionToResponse converts a domain decision to an API response.
func MapDecisionToResponse(decision accessDomain.AuthorizationDecision) AuthorizeResponse {
	return AuthorizeResponse{
		Authorized:         decision.Authorized,
		TenantID:           decision.TenantID,
		ResolvedReadScopes: decision.ResolvedReadScopes,
		Reason:             string(decision.Reason),
	}
}
