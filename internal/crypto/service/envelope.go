package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
)

// EnvelopeService implements the Envelope interface for two-tier envelope encryption.
//
// The service manages the lifecycle of per-tenant Data Encryption Keys (DEKs):
//   - DEKs are wrapped (encrypted) under the process master key
//   - Tenant secrets are encrypted with DEKs
//
// The plaintext DEK exists only transiently between unwrap and use; callers
// are responsible for zeroing it afterwards. The service uses AEADManager to
// create cipher instances, following dependency injection principles.
type EnvelopeService struct {
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewEnvelope creates a new EnvelopeService using the provided AEADManager
// and algorithm for all wrap/seal operations.
func NewEnvelope(aeadManager AEADManager, alg cryptoDomain.Algorithm) *EnvelopeService {
	return &EnvelopeService{
		aeadManager: aeadManager,
		algorithm:   alg,
	}
}

// GenerateDek generates a fresh random 32-byte Data Encryption Key
// using a cryptographically secure random source.
func (e *EnvelopeService) GenerateDek() ([]byte, error) {
	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("failed to generate DEK: %w", err)
	}
	return dek, nil
}

// Wrap encrypts a DEK under the master key.
//
// The wrapped DEK can be safely persisted alongside the data it protects.
func (e *EnvelopeService) Wrap(
	dek []byte,
	masterKey *cryptoDomain.MasterKey,
) (cryptoDomain.EncryptedBlob, error) {
	aead, err := e.aeadManager.CreateCipher(masterKey.Bytes(), e.algorithm)
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, err
	}

	ciphertext, nonce, err := aead.Encrypt(dek, nil)
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, fmt.Errorf("failed to wrap DEK: %w", err)
	}

	return cryptoDomain.EncryptedBlob{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Unwrap decrypts a DEK under the master key.
//
// Returns ErrDecryptionFailed on authentication failure, propagated unchanged
// to the caller. The master key is never logged and no default is returned.
// The returned DEK should be zeroed by the caller after use.
func (e *EnvelopeService) Unwrap(
	blob cryptoDomain.EncryptedBlob,
	masterKey *cryptoDomain.MasterKey,
) ([]byte, error) {
	aead, err := e.aeadManager.CreateCipher(masterKey.Bytes(), e.algorithm)
	if err != nil {
		return nil, err
	}

	dek, err := aead.Decrypt(blob.Ciphertext, blob.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return dek, nil
}

// Seal encrypts a plaintext payload under a DEK.
func (e *EnvelopeService) Seal(dek, plaintext []byte) (cryptoDomain.EncryptedBlob, error) {
	aead, err := e.aeadManager.CreateCipher(dek, e.algorithm)
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, err
	}

	ciphertext, nonce, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return cryptoDomain.EncryptedBlob{}, fmt.Errorf("failed to seal payload: %w", err)
	}

	return cryptoDomain.EncryptedBlob{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Open decrypts a payload blob under a DEK.
//
// Returns ErrDecryptionFailed on any authentication failure; no partial
// plaintext is ever returned.
func (e *EnvelopeService) Open(dek []byte, blob cryptoDomain.EncryptedBlob) ([]byte, error) {
	aead, err := e.aeadManager.CreateCipher(dek, e.algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(blob.Ciphertext, blob.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}
