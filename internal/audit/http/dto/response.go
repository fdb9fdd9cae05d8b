// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"
	"time"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
)

// AuditEventResponse represents an audit event in API responses.
// The signature is base64-encoded so events can be archived and re-verified
// offline.
type AuditEventResponse struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	Action          string    `json:"action"`
	Outcome         string    `json:"outcome"`
	Reason          string    `json:"reason,omitempty"`
	RequestedScopes []string  `json:"requested_scopes,omitempty"`
	Signature       string    `json:"signature"`
	CreatedAt       time.Time `json:"created_at"`
}

// MapAuditEventToResponse converts a domain audit event to an API response.
func MapAuditEventToResponse(event *auditDomain.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:              event.ID.String(),
		TenantID:        event.TenantID,
		Action:          string(event.Action),
		Outcome:         string(event.Outcome),
		Reason:          event.Reason,
		RequestedScopes: event.RequestedScopes,
		Signature:       base64.StdEncoding.EncodeToString(event.Signature),
		CreatedAt:       event.CreatedAt,
	}
}

// ListAuditEventsResponse represents a paginated list of audit events in API responses.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapAuditEventsToListResponse converts a slice of domain audit events to a list API response.
func MapAuditEventsToListResponse(events []*auditDomain.AuditEvent) ListAuditEventsResponse {
	eventResponses := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		eventResponses = append(eventResponses, MapAuditEventToResponse(event))
	}
	return ListAuditEventsResponse{
		Data: eventResponses,
	}
}
