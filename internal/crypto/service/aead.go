package service

import (
	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

// NewAEAD creates an AEAD cipher instance for the given algorithm.
//
// The algorithm set is closed, so this switch is exhaustive over the supported
// variants; anything else fails with ErrUnsupportedAlgorithm. Returns
// ErrInvalidKeySize if the key is not 32 bytes.
func NewAEAD(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AES256GCM:
		return NewAESGCM(key)
	case cryptoDomain.ChaCha20Poly1305:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
