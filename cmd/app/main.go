// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/skilder/keyvault/cmd/app/commands"
	"github.com/skilder/keyvault/internal/app"
	"github.com/skilder/keyvault/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "keyvault",
		Usage:   "API key vault with versioned envelope encryption",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(
						container.Logger(),
						cfg.DBDriver,
						cfg.DBConnectionString,
					)
				},
			},
			{
				Name:  "generate-key",
				Usage: "Generate a new hex-encoded 32-byte encryption key",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunGenerateKey(container.Logger(), os.Stdout)
				},
			},
			{
				Name:  "migrate-envelopes",
				Usage: "Re-encrypt stored API keys under the current key version and algorithm",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "batch-size",
						Aliases: []string{"b"},
						Value:   0,
						Usage:   "Number of keys per batch (defaults to MIGRATION_BATCH_SIZE)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report the number of stale envelopes without re-encrypting",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					defer closeContainer(container, logger)

					useCase, err := container.APIKeyUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize api key use case: %w", err)
					}

					batchSize := int(cmd.Int("batch-size"))
					if batchSize == 0 {
						batchSize = cfg.MigrationBatchSize
					}

					return commands.RunMigrateEnvelopes(
						ctx,
						useCase,
						logger,
						batchSize,
						cmd.Bool("dry-run"),
					)
				},
			},
			{
				Name:      "inspect-envelope",
				Usage:     "Report an envelope's key version, algorithm and format without decrypting",
				ArgsUsage: "<envelope>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one envelope argument")
					}

					cfg := config.Load()
					container := app.NewContainer(cfg)
					defer closeContainer(container, container.Logger())

					encryptor, err := container.Encryptor()
					if err != nil {
						return fmt.Errorf("failed to initialize encryptor: %w", err)
					}

					return commands.RunInspectEnvelope(encryptor, os.Stdout, cmd.Args().First())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// closeContainer shuts down container resources and logs failures.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}
