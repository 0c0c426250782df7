// Package repository implements data persistence for managed API keys.
// Repositories support both PostgreSQL and MySQL with soft deletion and
// in-place envelope rotation.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apikeysDomain "github.com/skilder/keyvault/internal/apikeys/domain"
	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
	"github.com/skilder/keyvault/internal/database"
	apperrors "github.com/skilder/keyvault/internal/errors"
)

// PostgreSQLAPIKeyRepository implements APIKey persistence for PostgreSQL databases.
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new API key into the PostgreSQL database.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, key *apikeysDomain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO api_keys (id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.Name,
		key.Provider,
		key.EncryptedValue,
		key.SecretHash,
		key.MaskedValue,
		key.KeyVersion,
		string(key.Algorithm),
		key.CreatedAt,
		key.UpdatedAt,
		key.DeletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create api key")
	}
	return nil
}

// GetByID retrieves an active API key by its identifier.
func (p *PostgreSQLAPIKeyRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE id = $1 AND deleted_at IS NULL
			  LIMIT 1`

	return scanAPIKey(querier.QueryRowContext(ctx, query, id), "failed to get api key by id")
}

// GetByName retrieves an active API key by its name.
func (p *PostgreSQLAPIKeyRepository) GetByName(
	ctx context.Context,
	name string,
) (*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE name = $1 AND deleted_at IS NULL
			  LIMIT 1`

	return scanAPIKey(querier.QueryRowContext(ctx, query, name), "failed to get api key by name")
}

// List retrieves active API keys ordered by creation time with pagination.
func (p *PostgreSQLAPIKeyRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE deleted_at IS NULL
			  ORDER BY created_at ASC
			  OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer rows.Close()

	return collectAPIKeys(rows, "failed to list api keys")
}

// ListStale retrieves active API keys whose envelopes are not stored under the
// given key version and algorithm.
func (p *PostgreSQLAPIKeyRepository) ListStale(
	ctx context.Context,
	version uint,
	algorithm cryptoDomain.Algorithm,
	limit int,
) ([]*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE deleted_at IS NULL AND (key_version <> $1 OR algorithm <> $2)
			  ORDER BY created_at ASC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, version, string(algorithm), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale api keys")
	}
	defer rows.Close()

	return collectAPIKeys(rows, "failed to list stale api keys")
}

// CountStale counts active API keys whose envelopes are not stored under the
// given key version and algorithm.
func (p *PostgreSQLAPIKeyRepository) CountStale(
	ctx context.Context,
	version uint,
	algorithm cryptoDomain.Algorithm,
) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM api_keys
			  WHERE deleted_at IS NULL AND (key_version <> $1 OR algorithm <> $2)`

	var count int
	err := querier.QueryRowContext(ctx, query, version, string(algorithm)).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count stale api keys")
	}

	return count, nil
}

// UpdateEnvelope replaces the stored envelope after re-encryption.
func (p *PostgreSQLAPIKeyRepository) UpdateEnvelope(
	ctx context.Context,
	id uuid.UUID,
	envelope string,
	version uint,
	algorithm cryptoDomain.Algorithm,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys
			  SET encrypted_value = $1, key_version = $2, algorithm = $3, updated_at = $4
			  WHERE id = $5 AND deleted_at IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		envelope,
		version,
		string(algorithm),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key envelope")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key envelope")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete performs a soft delete on an API key by setting the DeletedAt timestamp.
func (p *PostgreSQLAPIKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys
			  SET deleted_at = $1
			  WHERE id = $2 AND deleted_at IS NULL`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete api key")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete api key")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL APIKey repository instance.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}

// scanAPIKey scans a single row into an APIKey, mapping sql.ErrNoRows to ErrNotFound.
func scanAPIKey(row *sql.Row, wrapMsg string) (*apikeysDomain.APIKey, error) {
	var key apikeysDomain.APIKey
	var algorithm string

	err := row.Scan(
		&key.ID,
		&key.Name,
		&key.Provider,
		&key.EncryptedValue,
		&key.SecretHash,
		&key.MaskedValue,
		&key.KeyVersion,
		&algorithm,
		&key.CreatedAt,
		&key.UpdatedAt,
		&key.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	key.Algorithm = cryptoDomain.Algorithm(algorithm)
	return &key, nil
}

// collectAPIKeys drains rows into a slice of APIKeys.
func collectAPIKeys(rows *sql.Rows, wrapMsg string) ([]*apikeysDomain.APIKey, error) {
	var keys []*apikeysDomain.APIKey
	for rows.Next() {
		var key apikeysDomain.APIKey
		var algorithm string

		err := rows.Scan(
			&key.ID,
			&key.Name,
			&key.Provider,
			&key.EncryptedValue,
			&key.SecretHash,
			&key.MaskedValue,
			&key.KeyVersion,
			&algorithm,
			&key.CreatedAt,
			&key.UpdatedAt,
			&key.DeletedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, wrapMsg)
		}

		key.Algorithm = cryptoDomain.Algorithm(algorithm)
		keys = append(keys, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	return keys, nil
}
