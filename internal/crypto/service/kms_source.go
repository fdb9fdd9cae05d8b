package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"gocloud.dev/secrets"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
	apperrors "github.com/tenantsec/tenantgate/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSMasterKeySource sources the master key by decrypting a wrapped key blob
// with a cloud KMS via gocloud.dev/secrets.
//
// The wrapped key (base64 of the KMS-encrypted 32-byte master key) lives in
// configuration; the plaintext master key only ever exists in process memory.
// The decrypted key is cached after the first call and concurrent first calls
// share a single KMS round trip.
// Supported key URIs: gcpkms://, awskms://, azurekeyvault://, hashivault://,
// base64key:// (local testing).
type KMSMasterKeySource struct {
	keyURI     string
	wrappedKey string

	group  singleflight.Group
	mu     sync.RWMutex
	cached *cryptoDomain.MasterKey
}

// NewKMSMasterKeySource creates a source for the given KMS key URI and
// base64-encoded wrapped master key.
func NewKMSMasterKeySource(keyURI, wrappedKey string) *KMSMasterKeySource {
	return &KMSMasterKeySource{
		keyURI:     keyURI,
		wrappedKey: wrappedKey,
	}
}

// Get returns the master key, decrypting the wrapped blob through the KMS on
// first use. All failures are configuration errors: the process must not serve
// traffic without a usable master key.
func (s *KMSMasterKeySource) Get(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	result, err, _ := s.group.Do("master-key", func() (interface{}, error) {
		key, err := s.decrypt(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cached = key
		s.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*cryptoDomain.MasterKey), nil
}

// decrypt opens the KMS keeper, decrypts the wrapped master key, and validates it.
func (s *KMSMasterKeySource) decrypt(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	if s.keyURI == "" || s.wrappedKey == "" {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}

	wrapped, err := base64.StdEncoding.DecodeString(s.wrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidMasterKey, err)
	}

	keeper, err := secrets.OpenKeeper(ctx, s.keyURI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, fmt.Sprintf("failed to open KMS keeper: %v", err))
	}
	defer func() {
		_ = keeper.Close()
	}()

	raw, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, fmt.Sprintf("failed to decrypt master key: %v", err))
	}
	defer cryptoDomain.Zero(raw)

	return cryptoDomain.NewMasterKey(raw)
}
