// Package domain defines the core domain models for managed API keys.
// API key values are encrypted at rest with versioned envelope encryption and
// can be re-encrypted in place when the active key version or algorithm changes.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

// APIKey represents a stored third-party API key.
type APIKey struct {
	// ID is the unique identifier for this API key.
	ID uuid.UUID
	// Name is the human-readable label for the key (unique among active keys).
	Name string
	// Provider identifies the upstream service the key belongs to (e.g., "openai").
	Provider string
	// EncryptedValue holds the envelope-encrypted key material.
	EncryptedValue string
	// SecretHash is an Argon2id hash of the plaintext value, used to verify a
	// candidate key without decrypting the stored one.
	SecretHash string
	// MaskedValue is a display-safe preview of the plaintext, computed once at
	// creation time.
	MaskedValue string
	// KeyVersion is the encryption key version the value is currently stored under.
	KeyVersion uint
	// Algorithm is the AEAD algorithm the value is currently stored under.
	Algorithm cryptoDomain.Algorithm
	// CreatedAt is the UTC timestamp when the key was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last modification (including re-encryption).
	UpdatedAt time.Time
	// DeletedAt marks when this key was soft-deleted (nil if active).
	DeletedAt *time.Time
}
