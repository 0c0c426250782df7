package domain

import (
	"github.com/skilder/keyvault/internal/errors"
)

// Envelope encryption error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrKeyNotSet indicates the encryption key for the requested version is
	// not configured. The wrapping layer names the missing variable.
	ErrKeyNotSet = errors.Wrap(errors.ErrConfiguration, "encryption key not set")

	// ErrInvalidKeyEncoding indicates the configured key material is not valid hex.
	ErrInvalidKeyEncoding = errors.Wrap(errors.ErrConfiguration, "invalid encryption key encoding")

	// ErrInvalidKeySize indicates the configured key does not decode to exactly
	// 32 bytes. Every key, regardless of version, must be 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrConfiguration, "invalid encryption key size")

	// ErrUnsupportedAlgorithm indicates an algorithm identifier outside the
	// supported set, either from a caller or embedded in a stored envelope.
	// The latter usually means newer-written data read by older code.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidEnvelopeFormat indicates the envelope does not parse into the
	// expected fields, or a decoded field has the wrong byte length.
	ErrInvalidEnvelopeFormat = errors.Wrap(errors.ErrInvalidInput, "invalid envelope format")

	// ErrAuthenticationFailed indicates AEAD tag verification failed. Covers
	// both tampering and a wrong key for the claimed version. Never downgraded
	// to returning garbage plaintext.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrInvalidInput, "authentication failed")
)
