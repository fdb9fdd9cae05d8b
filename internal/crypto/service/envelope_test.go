package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/tenantsec/tenantgate/internal/crypto/domain"
)

func testMasterKey(t *testing.T) *cryptoDomain.MasterKey {
	t.Helper()
	raw := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	mk, err := cryptoDomain.NewMasterKey(raw)
	require.NoError(t, err)
	return mk
}

func TestEnvelopeService_GenerateDek(t *testing.T) {
	envelope := NewEnvelope(NewAEADManager(), cryptoDomain.AESGCM)

	dek1, err := envelope.GenerateDek()
	require.NoError(t, err)
	assert.Len(t, dek1, cryptoDomain.KeySize)

	dek2, err := envelope.GenerateDek()
	require.NoError(t, err)
	assert.NotEqual(t, dek1, dek2)
}

func TestEnvelopeService_WrapUnwrapRoundTrip(t *testing.T) {
	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			envelope := NewEnvelope(NewAEADManager(), alg)
			masterKey := testMasterKey(t)

			dek, err := envelope.GenerateDek()
			require.NoError(t, err)

			blob, err := envelope.Wrap(dek, masterKey)
			require.NoError(t, err)
			assert.Len(t, blob.Nonce, cryptoDomain.NonceSize)
			assert.NotContains(t, string(blob.Ciphertext), string(dek))

			unwrapped, err := envelope.Unwrap(blob, masterKey)
			require.NoError(t, err)
			assert.Equal(t, dek, unwrapped)
		})
	}
}

func TestEnvelopeService_UnwrapWithWrongMasterKey(t *testing.T) {
	envelope := NewEnvelope(NewAEADManager(), cryptoDomain.AESGCM)

	dek, err := envelope.GenerateDek()
	require.NoError(t, err)

	blob, err := envelope.Wrap(dek, testMasterKey(t))
	require.NoError(t, err)

	unwrapped, err := envelope.Unwrap(blob, testMasterKey(t))
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	assert.Nil(t, unwrapped)
}

func TestEnvelopeService_SealOpenRoundTrip(t *testing.T) {
	envelope := NewEnvelope(NewAEADManager(), cryptoDomain.AESGCM)

	dek, err := envelope.GenerateDek()
	require.NoError(t, err)

	secret := []byte("tenant-token-value")
	blob, err := envelope.Seal(dek, secret)
	require.NoError(t, err)

	opened, err := envelope.Open(dek, blob)
	require.NoError(t, err)
	assert.Equal(t, secret, opened)
}

// Flipping any single bit in a stored blob must cause decryption to fail
// closed, never to return altered plaintext.
func TestEnvelopeService_TamperDetection(t *testing.T) {
	envelope := NewEnvelope(NewAEADManager(), cryptoDomain.AESGCM)
	masterKey := testMasterKey(t)

	dek, err := envelope.GenerateDek()
	require.NoError(t, err)

	t.Run("tampered wrapped dek", func(t *testing.T) {
		blob, err := envelope.Wrap(dek, masterKey)
		require.NoError(t, err)

		for i := range blob.Ciphertext {
			for bit := range 8 {
				tampered := cryptoDomain.EncryptedBlob{
					Nonce:      blob.Nonce,
					Ciphertext: append([]byte(nil), blob.Ciphertext...),
				}
				tampered.Ciphertext[i] ^= 1 << bit

				_, err := envelope.Unwrap(tampered, masterKey)
				require.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			}
		}
	})

	t.Run("tampered nonce", func(t *testing.T) {
		blob, err := envelope.Seal(dek, []byte("payload"))
		require.NoError(t, err)

		tampered := cryptoDomain.EncryptedBlob{
			Nonce:      append([]byte(nil), blob.Nonce...),
			Ciphertext: blob.Ciphertext,
		}
		tampered.Nonce[0] ^= 0x01

		_, err = envelope.Open(dek, tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered tag", func(t *testing.T) {
		blob, err := envelope.Seal(dek, []byte("payload"))
		require.NoError(t, err)

		tampered := cryptoDomain.EncryptedBlob{
			Nonce:      blob.Nonce,
			Ciphertext: append([]byte(nil), blob.Ciphertext...),
		}
		tampered.Ciphertext[len(tampered.Ciphertext)-1] ^= 0x80

		_, err = envelope.Open(dek, tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestEnvelopeService_OpenWithWrongDek(t *testing.T) {
	envelope := NewEnvelope(NewAEADManager(), cryptoDomain.AESGCM)

	dek, err := envelope.GenerateDek()
	require.NoError(t, err)

	blob, err := envelope.Seal(dek, []byte("payload"))
	require.NoError(t, err)

	otherDek, err := envelope.GenerateDek()
	require.NoError(t, err)

	_, err = envelope.Open(otherDek, blob)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
}
