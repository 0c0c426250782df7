// Package usecase implements business logic orchestration for managed API keys.
// Use cases coordinate envelope encryption, hashing, and persistence so that
// key material is stored encrypted and only decrypted on explicit reveal.
package usecase

import (
	"context"

	"github.com/google/uuid"

	apikeysDomain "github.com/skilder/keyvault/internal/apikeys/domain"
	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

// APIKeyRepository defines the interface for APIKey persistence operations.
type APIKeyRepository interface {
	Create(ctx context.Context, key *apikeysDomain.APIKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*apikeysDomain.APIKey, error)
	GetByName(ctx context.Context, name string) (*apikeysDomain.APIKey, error)
	List(ctx context.Context, offset, limit int) ([]*apikeysDomain.APIKey, error)
	ListStale(
		ctx context.Context,
		version uint,
		algorithm cryptoDomain.Algorithm,
		limit int,
	) ([]*apikeysDomain.APIKey, error)
	CountStale(
		ctx context.Context,
		version uint,
		algorithm cryptoDomain.Algorithm,
	) (int, error)
	UpdateEnvelope(
		ctx context.Context,
		id uuid.UUID,
		envelope string,
		version uint,
		algorithm cryptoDomain.Algorithm,
	) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Encryptor defines the envelope encryption operations the use case depends on.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, envelope string) (string, error)
	ReEncrypt(ctx context.Context, envelope string) (string, error)
	NeedsMigration(envelope string) (bool, error)
	CurrentVersion() uint
	CurrentAlgorithm() cryptoDomain.Algorithm
}

// APIKeyUseCase defines the interface for API key management business logic.
type APIKeyUseCase interface {
	// Create encrypts and stores a new API key, returning its metadata.
	Create(ctx context.Context, name, provider, value string) (*apikeysDomain.APIKey, error)
	// Get returns key metadata including the masked value, never the plaintext.
	Get(ctx context.Context, id uuid.UUID) (*apikeysDomain.APIKey, error)
	// Reveal decrypts and returns the plaintext value. Envelopes stored under a
	// stale key version or algorithm are re-encrypted in place on the way out.
	Reveal(ctx context.Context, id uuid.UUID) (string, error)
	// Verify reports whether the candidate matches the stored key without
	// decrypting the stored envelope.
	Verify(ctx context.Context, id uuid.UUID, candidate string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*apikeysDomain.APIKey, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// MigrateBatch re-encrypts up to batchSize stale envelopes under the current
	// key version and algorithm. Returns the number of keys migrated.
	MigrateBatch(ctx context.Context, batchSize int) (int, error)
	// CountStale returns how many stored keys still carry an envelope produced
	// under an older key version or algorithm.
	CountStale(ctx context.Context) (int, error)
}
