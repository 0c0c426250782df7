package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apikeysDomain "github.com/skilder/keyvault/internal/apikeys/domain"
	apikeysService "github.com/skilder/keyvault/internal/apikeys/service"
	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
	"github.com/skilder/keyvault/internal/database"
	apperrors "github.com/skilder/keyvault/internal/errors"
)

// apiKeyUseCase implements the APIKeyUseCase interface.
type apiKeyUseCase struct {
	txManager   database.TxManager
	repo        APIKeyRepository
	encryptor   Encryptor
	hashService apikeysService.HashService
	logger      *slog.Logger
}

// Create encrypts and stores a new API key.
func (a *apiKeyUseCase) Create(
	ctx context.Context,
	name, provider, value string,
) (*apikeysDomain.APIKey, error) {
	// Reject duplicate names among active keys
	existing, err := a.repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apikeysDomain.ErrAPIKeyNameTaken
	}

	envelope, err := a.encryptor.Encrypt(ctx, value)
	if err != nil {
		return nil, err
	}

	secretHash, err := a.hashService.Hash(value)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	key := &apikeysDomain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           name,
		Provider:       provider,
		EncryptedValue: envelope,
		SecretHash:     secretHash,
		MaskedValue:    cryptoDomain.MaskAPIKey(value),
		KeyVersion:     a.encryptor.CurrentVersion(),
		Algorithm:      a.encryptor.CurrentAlgorithm(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.repo.Create(ctx, key); err != nil {
		return nil, err
	}

	return key, nil
}

// Get retrieves API key metadata by its identifier.
func (a *apiKeyUseCase) Get(ctx context.Context, id uuid.UUID) (*apikeysDomain.APIKey, error) {
	key, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apikeysDomain.ErrAPIKeyNotFound
		}
		return nil, err
	}
	return key, nil
}

// Reveal decrypts and returns the plaintext API key value.
//
// When the stored envelope is stale it is re-encrypted under the current key
// version and algorithm before returning. A failed rotation does not fail the
// reveal; the next reveal or migration batch retries it.
func (a *apiKeyUseCase) Reveal(ctx context.Context, id uuid.UUID) (string, error) {
	key, err := a.Get(ctx, id)
	if err != nil {
		return "", err
	}

	plaintext, err := a.encryptor.Decrypt(ctx, key.EncryptedValue)
	if err != nil {
		return "", err
	}

	if stale, err := a.encryptor.NeedsMigration(key.EncryptedValue); err == nil && stale {
		if rotateErr := a.rotateEnvelope(ctx, key); rotateErr != nil {
			a.logger.Warn("api key envelope rotation failed",
				slog.String("api_key_id", key.ID.String()),
				slog.Any("error", rotateErr),
			)
		}
	}

	return plaintext, nil
}

// rotateEnvelope re-encrypts a stale envelope and persists it.
func (a *apiKeyUseCase) rotateEnvelope(ctx context.Context, key *apikeysDomain.APIKey) error {
	envelope, err := a.encryptor.ReEncrypt(ctx, key.EncryptedValue)
	if err != nil {
		return err
	}

	return a.repo.UpdateEnvelope(
		ctx,
		key.ID,
		envelope,
		a.encryptor.CurrentVersion(),
		a.encryptor.CurrentAlgorithm(),
	)
}

// Verify reports whether the candidate matches the stored key.
func (a *apiKeyUseCase) Verify(ctx context.Context, id uuid.UUID, candidate string) (bool, error) {
	key, err := a.Get(ctx, id)
	if err != nil {
		return false, err
	}

	return a.hashService.Verify(candidate, key.SecretHash), nil
}

// List retrieves API key metadata ordered by creation time with pagination.
func (a *apiKeyUseCase) List(ctx context.Context, offset, limit int) ([]*apikeysDomain.APIKey, error) {
	return a.repo.List(ctx, offset, limit)
}

// Delete performs a soft delete on an API key.
func (a *apiKeyUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	err := a.repo.Delete(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apikeysDomain.ErrAPIKeyNotFound
	}
	return err
}

// MigrateBatch re-encrypts up to batchSize stale envelopes.
func (a *apiKeyUseCase) MigrateBatch(ctx context.Context, batchSize int) (int, error) {
	stale, err := a.repo.ListStale(
		ctx,
		a.encryptor.CurrentVersion(),
		a.encryptor.CurrentAlgorithm(),
		batchSize,
	)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, key := range stale {
		err := a.txManager.WithTx(ctx, func(txCtx context.Context) error {
			return a.rotateEnvelope(txCtx, key)
		})
		if err != nil {
			// Keep going; a single bad envelope should not block the batch.
			a.logger.Warn("api key migration failed",
				slog.String("api_key_id", key.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		migrated++
	}

	return migrated, nil
}

// CountStale reports how many stored keys still need envelope migration.
func (a *apiKeyUseCase) CountStale(ctx context.Context) (int, error) {
	return a.repo.CountStale(
		ctx,
		a.encryptor.CurrentVersion(),
		a.encryptor.CurrentAlgorithm(),
	)
}

// NewAPIKeyUseCase creates a new API key use case instance with the provided dependencies.
func NewAPIKeyUseCase(
	txManager database.TxManager,
	repo APIKeyRepository,
	encryptor Encryptor,
	hashService apikeysService.HashService,
	logger *slog.Logger,
) APIKeyUseCase {
	return &apiKeyUseCase{
		txManager:   txManager,
		repo:        repo,
		encryptor:   encryptor,
		hashService: hashService,
		logger:      logger,
	}
}
