// Package service provides cryptographic services for envelope encryption.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), DEK envelope
// wrapping under the master key, and master key sourcing.
package service

import (
	"context"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Envelope defines the interface for the per-tenant DEK lifecycle:
// generate, wrap under the master key, unwrap under the master key,
// and encrypt/decrypt payloads under a DEK.
type Envelope interface {
	// GenerateDek generates a fresh 32-byte Data Encryption Key.
	GenerateDek() ([]byte, error)

	// Wrap encrypts a DEK under the master key.
	Wrap(dek []byte, masterKey *cryptoDomain.MasterKey) (cryptoDomain.EncryptedBlob, error)

	// Unwrap decrypts a DEK under the master key. Propagates the crypto error
	// unchanged on authentication failure; never logs the key or returns a default.
	Unwrap(blob cryptoDomain.EncryptedBlob, masterKey *cryptoDomain.MasterKey) ([]byte, error)

	// Seal encrypts a plaintext payload under a DEK.
	Seal(dek, plaintext []byte) (cryptoDomain.EncryptedBlob, error)

	// Open decrypts a payload blob under a DEK.
	Open(dek []byte, blob cryptoDomain.EncryptedBlob) ([]byte, error)
}

// MasterKeySource defines the capability interface for sourcing the process
// master key. Implementations read from the environment or a KMS; a static
// in-memory implementation exists for tests. The Get result is cached by the
// DI container so the source is consulted at most once per process.
type MasterKeySource interface {
	// Get returns the 32-byte master key, or a configuration error when the
	// key is missing or malformed.
	Get(ctx context.Context) (*cryptoDomain.MasterKey, error)
}
