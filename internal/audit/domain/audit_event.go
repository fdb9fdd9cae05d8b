// Package domain defines the audit trail models for authorization decisions.
//
// Every access gate branch emits an event: tenant id, action, outcome,
// requested scopes. Events never carry token or secret material. Each event is
// HMAC-signed so tampering with the stored trail is detectable.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the operation an audit event records.
type Action string

const (
	ActionAuthorize Action = "authorize"
	ActionRegister  Action = "register"
	ActionRotate    Action = "rotate"
)

// Outcome is the result of the audited operation.
type Outcome string

const (
	OutcomeAuthorized Outcome = "authorized"
	OutcomeDenied     Outcome = "denied"
	OutcomeCreated    Outcome = "created"
	OutcomeExists     Outcome = "exists"
	OutcomeRotated    Outcome = "rotated"
	OutcomeError      Outcome = "error"
)

// AuditEvent records one authorization or lifecycle decision.
type AuditEvent struct {
	ID              uuid.UUID
	TenantID        string
	Action          Action
	Outcome         Outcome
	Reason          string
	RequestedScopes []string
	Signature       []byte
	CreatedAt       time.Time
}
