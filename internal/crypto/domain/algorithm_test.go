package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithm_Params(t *testing.T) {
	t.Run("aes256gcm", func(t *testing.T) {
		params, err := AES256GCM.Params()
		require.NoError(t, err)

		assert.Equal(t, "aes-256-gcm", params.CipherName)
		assert.Equal(t, 12, params.IVLength)
		assert.Equal(t, 16, params.AuthTagLength)
	})

	t.Run("chacha20poly1305", func(t *testing.T) {
		params, err := ChaCha20Poly1305.Params()
		require.NoError(t, err)

		assert.Equal(t, "chacha20-poly1305", params.CipherName)
		assert.Equal(t, 12, params.IVLength)
		assert.Equal(t, 16, params.AuthTagLength)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := Algorithm("des3").Params()
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("identifiers are case-sensitive", func(t *testing.T) {
		_, err := Algorithm("AES256GCM").Params()
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})
}

func TestAlgorithm_Valid(t *testing.T) {
	assert.True(t, AES256GCM.Valid())
	assert.True(t, ChaCha20Poly1305.Valid())
	assert.False(t, Algorithm("").Valid())
	assert.False(t, Algorithm("rot13").Valid())
}
