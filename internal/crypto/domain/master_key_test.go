package domain

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterKey(t *testing.T) {
	t.Run("valid 32-byte key", func(t *testing.T) {
		raw := make([]byte, KeySize)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		mk, err := NewMasterKey(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, mk.Bytes())
	})

	t.Run("copies key material", func(t *testing.T) {
		raw := make([]byte, KeySize)
		mk, err := NewMasterKey(raw)
		require.NoError(t, err)

		raw[0] = 0xFF
		assert.Equal(t, byte(0x00), mk.Bytes()[0])
	})

	tests := []struct {
		name string
		size int
	}{
		{"too short", 16},
		{"too long", 64},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMasterKey(make([]byte, tt.size))
			assert.ErrorIs(t, err, ErrInvalidMasterKey)
		})
	}
}

func TestParseMasterKey(t *testing.T) {
	t.Run("valid base64 key", func(t *testing.T) {
		raw := make([]byte, KeySize)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		mk, err := ParseMasterKey(base64.StdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, mk.Bytes())
	})

	t.Run("empty value", func(t *testing.T) {
		_, err := ParseMasterKey("")
		assert.ErrorIs(t, err, ErrMasterKeyNotSet)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := ParseMasterKey("not-base64")
		assert.ErrorIs(t, err, ErrInvalidMasterKey)
	})

	t.Run("wrong decoded length", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString(make([]byte, 16))
		_, err := ParseMasterKey(short)
		assert.ErrorIs(t, err, ErrInvalidMasterKey)
	})
}

func TestMasterKey_Close(t *testing.T) {
	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}

	mk, err := NewMasterKey(raw)
	require.NoError(t, err)

	mk.Close()
	assert.Nil(t, mk.Bytes())
}

func TestZero(t *testing.T) {
	t.Run("zeroes all bytes", func(t *testing.T) {
		b := []byte{0x01, 0x02, 0x03}
		Zero(b)
		assert.Equal(t, []byte{0x00, 0x00, 0x00}, b)
	})

	t.Run("nil slice is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() { Zero(nil) })
	})
}
