package dto

// RegisterTenantResponse reports the outcome of a tenant registration.
// SECURITY: Secret carries generated plaintext and is only set when the
// server generated the secret during this registration. It is never
// retrievable through this endpoint again.
type RegisterTenantResponse struct {
	TenantID string `json:"tenant_id"`
	Created  bool   `json:"created"`
	Secret   string `json:"secret,omitempty"`
}

// RotateSecretResponse carries the freshly generated secret after rotation.
// SECURITY: This is the only time the new plaintext is returned.
type RotateSecretResponse struct {
	TenantID string `json:"tenant_id"`
	Secret   string `json:"secret"`
}

// TenantSecretResponse carries the decrypted secret for operator break-glass
// reads.
type TenantSecretResponse struct {
	TenantID string `json:"tenant_id"`
	Secret   string `json:"secret"`
}
