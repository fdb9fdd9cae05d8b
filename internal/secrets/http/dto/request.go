// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/tenantsec/tenantgate/internal/validation"
)

// RegisterTenantRequest contains the parameters for registering a tenant.
// When Secret is empty the server generates one and returns it once in the
// response. ReadScopes, WriteScope and Policy describe the tenant's scope
// declaration; empty values fall back to own-partition defaults.
type RegisterTenantRequest struct {
	TenantID   string   `json:"tenant_id" binding:"required"`
	Secret     string   `json:"secret"`
	ReadScopes []string `json:"read_scopes"`
	WriteScope string   `json:"write_scope"`
	Policy     string   `json:"policy"`
}

// Validate checks if the register tenant request is valid.
func (r *RegisterTenantRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TenantID,
			validation.Required,
			validation.Length(1, 128),
			customValidation.TenantID,
		),
		validation.Field(&r.Secret,
			validation.Length(1, 4096),
		),
		validation.Field(&r.ReadScopes,
			validation.Each(
				validation.Required,
				validation.Length(1, 128),
				customValidation.TenantID,
			),
		),
		validation.Field(&r.WriteScope,
			validation.Length(1, 128),
			customValidation.TenantID,
		),
		validation.Field(&r.Policy,
			validation.In("", "explicit", "deny_all"),
		),
	)
}
