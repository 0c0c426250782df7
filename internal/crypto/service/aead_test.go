package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

func TestNewAEAD(t *testing.T) {
	validKey := make([]byte, 32)
	_, err := rand.Read(validKey)
	require.NoError(t, err)

	t.Run("create AES-256-GCM cipher", func(t *testing.T) {
		aead, err := NewAEAD(validKey, cryptoDomain.AES256GCM)
		require.NoError(t, err)

		_, ok := aead.(*AESGCMCipher)
		assert.True(t, ok, "cipher should be of type *AESGCMCipher")
	})

	t.Run("create ChaCha20-Poly1305 cipher", func(t *testing.T) {
		aead, err := NewAEAD(validKey, cryptoDomain.ChaCha20Poly1305)
		require.NoError(t, err)

		_, ok := aead.(*ChaCha20Poly1305Cipher)
		assert.True(t, ok, "cipher should be of type *ChaCha20Poly1305Cipher")
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := NewAEAD(validKey, cryptoDomain.Algorithm("unsupported"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("invalid key sizes", func(t *testing.T) {
		for _, size := range []int{0, 16, 31, 33, 64} {
			_, err := NewAEAD(make([]byte, size), cryptoDomain.AES256GCM)
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize, "key size %d", size)
		}

		_, err := NewAEAD(nil, cryptoDomain.AES256GCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestAEAD_EncryptDecrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AES256GCM, cryptoDomain.ChaCha20Poly1305} {
		t.Run(string(alg), func(t *testing.T) {
			aead, err := NewAEAD(key, alg)
			require.NoError(t, err)

			params, err := alg.Params()
			require.NoError(t, err)

			t.Run("round trip", func(t *testing.T) {
				plaintext := []byte("secret message")

				ciphertext, iv, tag, err := aead.Encrypt(plaintext)
				require.NoError(t, err)
				assert.Len(t, iv, params.IVLength)
				assert.Len(t, tag, params.AuthTagLength)
				assert.Len(t, ciphertext, len(plaintext))

				decrypted, err := aead.Decrypt(ciphertext, iv, tag)
				require.NoError(t, err)
				assert.Equal(t, plaintext, decrypted)
			})

			t.Run("empty plaintext", func(t *testing.T) {
				ciphertext, iv, tag, err := aead.Encrypt(nil)
				require.NoError(t, err)
				assert.Empty(t, ciphertext)
				assert.Len(t, tag, params.AuthTagLength)

				decrypted, err := aead.Decrypt(ciphertext, iv, tag)
				require.NoError(t, err)
				assert.Empty(t, decrypted)
			})

			t.Run("fresh iv per call", func(t *testing.T) {
				_, iv1, _, err := aead.Encrypt([]byte("same input"))
				require.NoError(t, err)
				_, iv2, _, err := aead.Encrypt([]byte("same input"))
				require.NoError(t, err)
				assert.NotEqual(t, iv1, iv2)
			})

			t.Run("tampered ciphertext is rejected", func(t *testing.T) {
				ciphertext, iv, tag, err := aead.Encrypt([]byte("authentic data"))
				require.NoError(t, err)

				ciphertext[0] ^= 0x01
				_, err = aead.Decrypt(ciphertext, iv, tag)
				assert.Error(t, err)
			})

			t.Run("tampered tag is rejected", func(t *testing.T) {
				ciphertext, iv, tag, err := aead.Encrypt([]byte("authentic data"))
				require.NoError(t, err)

				tag[len(tag)-1] ^= 0x80
				_, err = aead.Decrypt(ciphertext, iv, tag)
				assert.Error(t, err)
			})
		})
	}
}
