package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apikeysDomain "github.com/skilder/keyvault/internal/apikeys/domain"
)

// mockAPIKeyUseCase is a testify mock for the API key use case.
type mockAPIKeyUseCase struct {
	mock.Mock
}

func (m *mockAPIKeyUseCase) Create(
	ctx context.Context,
	name, provider, value string,
) (*apikeysDomain.APIKey, error) {
	args := m.Called(ctx, name, provider, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeysDomain.APIKey), args.Error(1)
}

func (m *mockAPIKeyUseCase) Get(ctx context.Context, id uuid.UUID) (*apikeysDomain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikeysDomain.APIKey), args.Error(1)
}

func (m *mockAPIKeyUseCase) Reveal(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockAPIKeyUseCase) Verify(ctx context.Context, id uuid.UUID, candidate string) (bool, error) {
	args := m.Called(ctx, id, candidate)
	return args.Bool(0), args.Error(1)
}

func (m *mockAPIKeyUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*apikeysDomain.APIKey, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apikeysDomain.APIKey), args.Error(1)
}

func (m *mockAPIKeyUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAPIKeyUseCase) MigrateBatch(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

func (m *mockAPIKeyUseCase) CountStale(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestRunMigrateEnvelopes(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("migrates until no stale envelopes remain", func(t *testing.T) {
		useCase := &mockAPIKeyUseCase{}
		useCase.On("MigrateBatch", ctx, 100).Return(100, nil).Once()
		useCase.On("MigrateBatch", ctx, 100).Return(37, nil).Once()
		useCase.On("MigrateBatch", ctx, 100).Return(0, nil).Once()
		useCase.On("CountStale", ctx).Return(0, nil).Once()

		err := RunMigrateEnvelopes(ctx, useCase, logger, 100, false)
		require.NoError(t, err)
		useCase.AssertExpectations(t)
	})

	t.Run("nothing to migrate", func(t *testing.T) {
		useCase := &mockAPIKeyUseCase{}
		useCase.On("MigrateBatch", ctx, 50).Return(0, nil).Once()
		useCase.On("CountStale", ctx).Return(0, nil).Once()

		err := RunMigrateEnvelopes(ctx, useCase, logger, 50, false)
		require.NoError(t, err)
		useCase.AssertExpectations(t)
	})

	t.Run("reports envelopes left stale by rotation failures", func(t *testing.T) {
		useCase := &mockAPIKeyUseCase{}
		useCase.On("MigrateBatch", ctx, 100).Return(0, nil).Once()
		useCase.On("CountStale", ctx).Return(3, nil).Once()

		err := RunMigrateEnvelopes(ctx, useCase, logger, 100, false)
		require.Error(t, err)
		require.Contains(t, err.Error(), "3 stale envelopes remain")
		useCase.AssertExpectations(t)
	})

	t.Run("batch error aborts", func(t *testing.T) {
		useCase := &mockAPIKeyUseCase{}
		useCase.On("MigrateBatch", ctx, 100).Return(0, errors.New("db down")).Once()

		err := RunMigrateEnvelopes(ctx, useCase, logger, 100, false)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to migrate envelope batch")
		useCase.AssertExpectations(t)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		useCase := &mockAPIKeyUseCase{}

		err := RunMigrateEnvelopes(ctx, useCase, logger, 0, false)
		require.Error(t, err)
		require.Contains(t, err.Error(), "batch size must be at least 1")
	})

	t.Run("dry run only counts", func(t *testing.T) {
		useCase := &mockAPIKeyUseCase{}
		useCase.On("CountStale", ctx).Return(42, nil).Once()

		err := RunMigrateEnvelopes(ctx, useCase, logger, 100, true)
		require.NoError(t, err)
		useCase.AssertExpectations(t)
		useCase.AssertNotCalled(t, "MigrateBatch", mock.Anything, mock.Anything)
	})

	t.Run("dry run count error", func(t *testing.T) {
		useCase := &mockAPIKeyUseCase{}
		useCase.On("CountStale", ctx).Return(0, errors.New("db down")).Once()

		err := RunMigrateEnvelopes(ctx, useCase, logger, 100, true)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to count stale envelopes")
	})
}
