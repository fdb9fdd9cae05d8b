// Package service provides HMAC signing for audit events.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/tenantsec/tenantgate/internal/audit/domain"
	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
)

// AuditSigner signs and verifies audit events.
type AuditSigner interface {
	Sign(masterKey *cryptoDomain.MasterKey, event *auditDomain.AuditEvent) ([]byte, error)
	Verify(masterKey *cryptoDomain.MasterKey, event *auditDomain.AuditEvent) error
}

type auditSigner struct{}

// NewAuditSigner creates an HMAC-based audit event signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// master key, separating signing key usage from encryption key usage.
// Info parameter is versioned for future algorithm changes.
func (a *auditSigner) deriveSigningKey(masterKey *cryptoDomain.MasterKey) ([]byte, error) {
	info := []byte("audit-event-signing-v1")
	reader := hkdf.New(sha256.New, masterKey.Bytes(), nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}
	return signingKey, nil
}

// canonicalizeEvent converts an event to a canonical byte representation.
// Variable-length fields are length-prefixed to prevent ambiguity.
func (a *auditSigner) canonicalizeEvent(event *auditDomain.AuditEvent) []byte {
	buf := make([]byte, 0, 256)

	buf = append(buf, event.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.TenantID))
	buf = appendLengthPrefixed(buf, []byte(event.Action))
	buf = appendLengthPrefixed(buf, []byte(event.Outcome))
	buf = appendLengthPrefixed(buf, []byte(event.Reason))

	scopeCount := make([]byte, 4)
	binary.BigEndian.PutUint32(scopeCount, uint32(len(event.RequestedScopes)))
	buf = append(buf, scopeCount...)
	for _, scope := range event.RequestedScopes {
		buf = appendLengthPrefixed(buf, []byte(scope))
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(event.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates an HMAC-SHA256 signature for the audit event.
func (a *auditSigner) Sign(
	masterKey *cryptoDomain.MasterKey,
	event *auditDomain.AuditEvent,
) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(a.canonicalizeEvent(event))
	return mac.Sum(nil), nil
}

// Verify checks the event signature, returning ErrSignatureInvalid on tamper.
func (a *auditSigner) Verify(
	masterKey *cryptoDomain.MasterKey,
	event *auditDomain.AuditEvent,
) error {
	expected, err := a.Sign(masterKey, event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(event.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}
