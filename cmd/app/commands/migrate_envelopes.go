package commands

import (
	"context"
	"fmt"
	"log/slog"

	apikeysUseCase "github.com/skilder/keyvault/internal/apikeys/usecase"
)

// RunMigrateEnvelopes re-encrypts all stored API keys whose envelopes were
// produced under an older key version or algorithm. Keys are processed in
// batches until no stale envelopes remain. Individual failures are logged and
// skipped; the command only fails on batch-level errors.
//
// With dryRun set, only the number of stale envelopes is reported and nothing
// is rewritten.
func RunMigrateEnvelopes(
	ctx context.Context,
	useCase apikeysUseCase.APIKeyUseCase,
	logger *slog.Logger,
	batchSize int,
	dryRun bool,
) error {
	if batchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", batchSize)
	}

	if dryRun {
		stale, err := useCase.CountStale(ctx)
		if err != nil {
			return fmt.Errorf("failed to count stale envelopes: %w", err)
		}
		logger.Info("envelope migration dry run", slog.Int("stale_envelopes", stale))
		return nil
	}

	logger.Info("starting envelope migration", slog.Int("batch_size", batchSize))

	total := 0
	for {
		migrated, err := useCase.MigrateBatch(ctx, batchSize)
		if err != nil {
			return fmt.Errorf("failed to migrate envelope batch: %w", err)
		}
		if migrated == 0 {
			break
		}

		total += migrated
		logger.Info("envelope batch migrated",
			slog.Int("batch_migrated", migrated),
			slog.Int("total_migrated", total),
		)
	}

	// The loop exits when a batch migrates nothing, which also happens when
	// every key in it failed rotation. Recount so partial failures surface.
	remaining, err := useCase.CountStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to count stale envelopes: %w", err)
	}
	if remaining > 0 {
		logger.Warn("envelope migration incomplete",
			slog.Int("total_migrated", total),
			slog.Int("stale_remaining", remaining),
		)
		return fmt.Errorf("envelope migration incomplete: %d stale envelopes remain", remaining)
	}

	logger.Info("envelope migration completed", slog.Int("total_migrated", total))
	return nil
}
