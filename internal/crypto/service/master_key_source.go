package service

import (
	"context"
	"os"
	"sync"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
)

// EnvMasterKeySource sources the master key from an environment variable
// holding a base64-encoded 32-byte value. The parsed key is cached after the
// first successful read, so the environment is consulted at most once per
// process lifetime.
//
// Intended for development and single-node deployments. Production
// deployments should prefer KMSMasterKeySource so the plaintext master key
// never appears in process environment.
type EnvMasterKeySource struct {
	varName string

	mu     sync.RWMutex
	cached *cryptoDomain.MasterKey
}

// NewEnvMasterKeySource creates a source reading the given environment variable.
func NewEnvMasterKeySource(varName string) *EnvMasterKeySource {
	return &EnvMasterKeySource{varName: varName}
}

// Get returns the master key, parsing it from the environment on first use.
// Returns ErrMasterKeyNotSet when the variable is unset or empty and
// ErrInvalidMasterKey when the value is malformed.
func (s *EnvMasterKeySource) Get(_ context.Context) (*cryptoDomain.MasterKey, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}

	key, err := cryptoDomain.ParseMasterKey(os.Getenv(s.varName))
	if err != nil {
		return nil, err
	}
	s.cached = key
	return key, nil
}

// StaticMasterKeySource returns a fixed in-memory master key.
// Used in tests so crypto logic never branches on the environment.
type StaticMasterKeySource struct {
	key *cryptoDomain.MasterKey
}

// NewStaticMasterKeySource creates a source returning the given key.
func NewStaticMasterKeySource(key *cryptoDomain.MasterKey) *StaticMasterKeySource {
	return &StaticMasterKeySource{key: key}
}

// Get returns the fixed key.
func (s *StaticMasterKeySource) Get(_ context.Context) (*cryptoDomain.MasterKey, error) {
	if s.key == nil {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}
	return s.key, nil
}
