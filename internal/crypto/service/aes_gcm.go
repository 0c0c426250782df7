package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// AES-GCM provides authenticated encryption, combining the confidentiality of
// AES with the authenticity of GMAC. This implementation uses a 256-bit key,
// a 12-byte IV generated randomly per encryption, and a 16-byte authentication
// tag returned separately from the ciphertext so the envelope format can store
// them as distinct fields.
//
// The cipher instance is stateless and safe for concurrent use from multiple
// goroutines; each encryption generates its own IV independently.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
// The key must be exactly 32 bytes; returns ErrInvalidKeySize otherwise.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext under a freshly generated random IV.
//
// IV uniqueness is a correctness requirement, not an optimization: reusing an
// IV under the same key breaks the confidentiality guarantees of GCM. The
// returned ciphertext excludes the authentication tag, which is returned as
// the third value.
func (a *AESGCMCipher) Encrypt(plaintext []byte) (ciphertext, iv, tag []byte, err error) {
	iv = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := a.aead.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - a.aead.Overhead()
	return sealed[:split], iv, sealed[split:], nil
}

// Decrypt decrypts ciphertext using the provided IV and authentication tag.
// Verifies the tag before returning plaintext; any modification to the
// ciphertext or tag causes an error and no plaintext is returned.
func (a *AESGCMCipher) Decrypt(ciphertext, iv, tag []byte) ([]byte, error) {
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
