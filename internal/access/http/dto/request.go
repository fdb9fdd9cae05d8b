// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/tenantsec/tenantgate/internal/validation"
)

// AuthorizeRequest contains the parameters for an authorization decision.
//
// RequestedScopes distinguishes absent from empty: a missing field (nil)
// requests the tenant's declared default, an explicit empty list requests
// the tenant's own partition only.
type AuthorizeRequest struct {
	TenantID        string   `json:"tenant_id" binding:"required"`
	Token           string   `json:"token"`
	RequestedScopes []string `json:"requested_scopes"`
}

// Validate checks if the authorize request is valid.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TenantID,
			validation.Required,
			validation.Length(1, 128),
			customValidation.TenantID,
		),
		validation.Field(&r.RequestedScopes,
			validation.Each(
				validation.Required,
				validation.Length(1, 128),
				customValidation.TenantID,
			),
		),
	)
}
