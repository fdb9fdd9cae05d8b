// Package domain defines the core cryptographic domain models for envelope encryption.
//
// It implements a two-tier key hierarchy: Master Key → DEK → Data. Each tenant
// secret is encrypted with its own Data Encryption Key, and the DEK is wrapped
// under the process-wide master key. Supports AESGCM and ChaCha20 algorithms
// with 256-bit keys.
package domain

import (
	"encoding/base64"
	"fmt"
)

// EncryptedBlob represents the output of an AEAD encryption operation.
//
// The Ciphertext field carries the encrypted payload with the 16-byte
// authentication tag appended, matching the output of crypto/cipher AEAD Seal.
// The persisted wire form is base64(nonce || ciphertext || tag).
//
// Fields:
//   - Nonce: The 12-byte nonce generated for this encryption
//   - Ciphertext: Encrypted payload with authentication tag appended
type EncryptedBlob struct {
	Nonce      []byte
	Ciphertext []byte
}

// Bytes serializes the blob to its binary wire form: nonce || ciphertext || tag.
func (eb EncryptedBlob) Bytes() []byte {
	out := make([]byte, 0, len(eb.Nonce)+len(eb.Ciphertext))
	out = append(out, eb.Nonce...)
	out = append(out, eb.Ciphertext...)
	return out
}

// String serializes the blob to its persisted form: base64(nonce || ciphertext || tag).
func (eb EncryptedBlob) String() string {
	return base64.StdEncoding.EncodeToString(eb.Bytes())
}

// NewEncryptedBlobFromBytes parses the binary wire form nonce || ciphertext || tag.
//
// Returns ErrMalformedBlob if the input is too short to contain a nonce and an
// authentication tag. Tag verification itself happens at decryption time.
func NewEncryptedBlobFromBytes(raw []byte) (EncryptedBlob, error) {
	if len(raw) < NonceSize+TagSize {
		return EncryptedBlob{}, fmt.Errorf(
			"%w: need at least %d bytes, got %d",
			ErrMalformedBlob,
			NonceSize+TagSize,
			len(raw),
		)
	}

	nonce := make([]byte, NonceSize)
	copy(nonce, raw[:NonceSize])
	ciphertext := make([]byte, len(raw)-NonceSize)
	copy(ciphertext, raw[NonceSize:])

	return EncryptedBlob{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// NewEncryptedBlob parses the persisted base64 form produced by String.
func NewEncryptedBlob(encoded string) (EncryptedBlob, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return EncryptedBlob{}, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	return NewEncryptedBlobFromBytes(raw)
}
