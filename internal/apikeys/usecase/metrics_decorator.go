package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apikeysDomain "github.com/skilder/keyvault/internal/apikeys/domain"
	"github.com/skilder/keyvault/internal/metrics"
)

// apiKeyUseCaseWithMetrics decorates APIKeyUseCase with metrics instrumentation.
type apiKeyUseCaseWithMetrics struct {
	next    APIKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewAPIKeyUseCaseWithMetrics wraps an APIKeyUseCase with metrics recording.
func NewAPIKeyUseCaseWithMetrics(useCase APIKeyUseCase, m metrics.BusinessMetrics) APIKeyUseCase {
	return &apiKeyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits operation count and duration metrics for a completed call.
func (a *apiKeyUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "apikeys", operation, status)
	a.metrics.RecordDuration(ctx, "apikeys", operation, time.Since(start), status)
}

// Create records metrics for API key creation operations.
func (a *apiKeyUseCaseWithMetrics) Create(
	ctx context.Context,
	name, provider, value string,
) (*apikeysDomain.APIKey, error) {
	start := time.Now()
	key, err := a.next.Create(ctx, name, provider, value)
	a.record(ctx, "api_key_create", start, err)
	return key, err
}

// Get records metrics for API key metadata retrieval operations.
func (a *apiKeyUseCaseWithMetrics) Get(
	ctx context.Context,
	id uuid.UUID,
) (*apikeysDomain.APIKey, error) {
	start := time.Now()
	key, err := a.next.Get(ctx, id)
	a.record(ctx, "api_key_get", start, err)
	return key, err
}

// Reveal records metrics for API key reveal operations.
func (a *apiKeyUseCaseWithMetrics) Reveal(ctx context.Context, id uuid.UUID) (string, error) {
	start := time.Now()
	value, err := a.next.Reveal(ctx, id)
	a.record(ctx, "api_key_reveal", start, err)
	return value, err
}

// Verify records metrics for API key verification operations.
func (a *apiKeyUseCaseWithMetrics) Verify(
	ctx context.Context,
	id uuid.UUID,
	candidate string,
) (bool, error) {
	start := time.Now()
	ok, err := a.next.Verify(ctx, id, candidate)
	a.record(ctx, "api_key_verify", start, err)
	return ok, err
}

// List records metrics for API key listing operations.
func (a *apiKeyUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*apikeysDomain.APIKey, error) {
	start := time.Now()
	keys, err := a.next.List(ctx, offset, limit)
	a.record(ctx, "api_key_list", start, err)
	return keys, err
}

// Delete records metrics for API key deletion operations.
func (a *apiKeyUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := a.next.Delete(ctx, id)
	a.record(ctx, "api_key_delete", start, err)
	return err
}

// MigrateBatch records metrics for envelope migration batches.
func (a *apiKeyUseCaseWithMetrics) MigrateBatch(ctx context.Context, batchSize int) (int, error) {
	start := time.Now()
	migrated, err := a.next.MigrateBatch(ctx, batchSize)
	a.record(ctx, "api_key_migrate_batch", start, err)
	return migrated, err
}

// CountStale records metrics for stale envelope counting.
func (a *apiKeyUseCaseWithMetrics) CountStale(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := a.next.CountStale(ctx)
	a.record(ctx, "api_key_count_stale", start, err)
	return count, err
}
