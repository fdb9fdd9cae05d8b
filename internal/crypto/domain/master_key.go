package domain

import (
	"encoding/base64"
	"fmt"
)

// MasterKey represents the process-wide cryptographic master key used to wrap
// per-tenant Data Encryption Keys (DEKs).
//
// The master key is the root of the envelope encryption hierarchy. It is
// sourced once at process start (environment variable or KMS), held in memory
// for the process lifetime, and never persisted or logged by this subsystem.
// Rotating it requires re-wrapping every stored DEK, a manual single-writer
// procedure outside this package.
//
// The key is injected into components that need it at construction time.
// There is no process-wide mutable singleton.
type MasterKey struct {
	key []byte
}

// NewMasterKey creates a MasterKey from raw key material.
// The key must be exactly 32 bytes (256 bits); the bytes are copied.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf(
			"%w: master key must be %d bytes, got %d",
			ErrInvalidMasterKey,
			KeySize,
			len(key),
		)
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &MasterKey{key: k}, nil
}

// ParseMasterKey creates a MasterKey from its base64-encoded configuration form.
//
// Returns ErrMasterKeyNotSet for an empty input and ErrInvalidMasterKey when
// the value is not base64 or does not decode to exactly 32 bytes. The temporary
// decoded bytes are zeroed after being copied into the key.
func ParseMasterKey(encoded string) (*MasterKey, error) {
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKey, err)
	}
	defer Zero(raw)

	return NewMasterKey(raw)
}

// Bytes returns the raw 32-byte key material.
// Callers must never log or persist the returned slice.
func (m *MasterKey) Bytes() []byte {
	return m.key
}

// Close securely clears the key material from memory.
// Call during process shutdown; the MasterKey is unusable afterwards.
func (m *MasterKey) Close() {
	Zero(m.key)
	m.key = nil
}
