// Package service provides cryptographic services for versioned envelope
// encryption. Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), key
// resolution from configuration or a KMS, and the envelope encryptor.
package service

import (
	"context"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data
// with the authentication tag carried separately, as the envelope format stores
// IV, tag and ciphertext as distinct fields.
type AEAD interface {
	// Encrypt encrypts plaintext and returns the ciphertext, a freshly
	// generated random IV and the authentication tag.
	Encrypt(plaintext []byte) (ciphertext, iv, tag []byte, err error)

	// Decrypt decrypts ciphertext using the provided IV and authentication tag.
	// Fails if the tag does not verify.
	Decrypt(ciphertext, iv, tag []byte) ([]byte, error)
}

// KeyResolver resolves the symmetric key for a given key version.
//
// Implementations re-read their backing source on every call, so key rotation
// takes effect without a process restart. Every resolved key must be exactly
// 32 bytes; anything else is a configuration error at the point of use.
type KeyResolver interface {
	// Resolve returns the 32-byte key for the given version.
	Resolve(ctx context.Context, version uint) ([]byte, error)
}

// KMSKeeper decrypts wrapped key material via an external KMS.
// *secrets.Keeper from gocloud.dev implements this interface.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
