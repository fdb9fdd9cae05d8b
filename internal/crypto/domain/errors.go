package domain

import (
	"github.com/tenantsec/tenantgate/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305)
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// All keys (master key and DEKs) must be exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Ciphertext has been tampered with (authentication failure)
	//   - Invalid nonce provided
	//   - Corrupted encrypted data
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers. No partial plaintext is
	// ever returned alongside this error.
	ErrDecryptionFailed = errors.Wrap(errors.ErrCrypto, "decryption failed")

	// ErrMalformedBlob indicates an encrypted blob is too short to contain a
	// nonce and an authentication tag, or is not valid base64.
	ErrMalformedBlob = errors.Wrap(errors.ErrCrypto, "malformed encrypted blob")

	// ErrMasterKeyNotSet indicates no master key was provided via the
	// configured source. Fatal at startup.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrConfiguration, "master key not found")

	// ErrInvalidMasterKey indicates the master key is not valid base64 or does
	// not decode to exactly 32 bytes. Fatal at startup.
	ErrInvalidMasterKey = errors.Wrap(errors.ErrConfiguration, "invalid master key")
)
