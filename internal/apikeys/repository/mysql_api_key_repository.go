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

// MySQLAPIKeyRepository implements APIKey persistence for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new API key into the MySQL database.
func (m *MySQLAPIKeyRepository) Create(ctx context.Context, key *apikeysDomain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO api_keys (id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLAPIKeyRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE id = ? AND deleted_at IS NULL
			  LIMIT 1`

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal api key id")
	}

	return scanMySQLAPIKey(querier.QueryRowContext(ctx, query, binaryID), "failed to get api key by id")
}

// GetByName retrieves an active API key by its name.
func (m *MySQLAPIKeyRepository) GetByName(
	ctx context.Context,
	name string,
) (*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE name = ? AND deleted_at IS NULL
			  LIMIT 1`

	return scanMySQLAPIKey(querier.QueryRowContext(ctx, query, name), "failed to get api key by name")
}

// List retrieves active API keys ordered by creation time with pagination.
func (m *MySQLAPIKeyRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE deleted_at IS NULL
			  ORDER BY created_at ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer rows.Close()

	return collectMySQLAPIKeys(rows, "failed to list api keys")
}

// ListStale retrieves active API keys whose envelopes are not stored under the
// given key version and algorithm.
func (m *MySQLAPIKeyRepository) ListStale(
	ctx context.Context,
	version uint,
	algorithm cryptoDomain.Algorithm,
	limit int,
) ([]*apikeysDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, provider, encrypted_value, secret_hash, masked_value,
			  key_version, algorithm, created_at, updated_at, deleted_at
			  FROM api_keys
			  WHERE deleted_at IS NULL AND (key_version <> ? OR algorithm <> ?)
			  ORDER BY created_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, version, string(algorithm), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale api keys")
	}
	defer rows.Close()

	return collectMySQLAPIKeys(rows, "failed to list stale api keys")
}

// CountStale counts active API keys whose envelopes are not stored under the
// given key version and algorithm.
func (m *MySQLAPIKeyRepository) CountStale(
	ctx context.Context,
	version uint,
	algorithm cryptoDomain.Algorithm,
) (int, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM api_keys
			  WHERE deleted_at IS NULL AND (key_version <> ? OR algorithm <> ?)`

	var count int
	err := querier.QueryRowContext(ctx, query, version, string(algorithm)).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count stale api keys")
	}

	return count, nil
}

// UpdateEnvelope replaces the stored envelope after re-encryption.
func (m *MySQLAPIKeyRepository) UpdateEnvelope(
	ctx context.Context,
	id uuid.UUID,
	envelope string,
	version uint,
	algorithm cryptoDomain.Algorithm,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE api_keys
			  SET encrypted_value = ?, key_version = ?, algorithm = ?, updated_at = ?
			  WHERE id = ? AND deleted_at IS NULL`

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		envelope,
		version,
		string(algorithm),
		time.Now().UTC(),
		binaryID,
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
func (m *MySQLAPIKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE api_keys
			  SET deleted_at = ?
			  WHERE id = ? AND deleted_at IS NULL`

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), binaryID)
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

// NewMySQLAPIKeyRepository creates a new MySQL APIKey repository instance.
func NewMySQLAPIKeyRepository(db *sql.DB) *MySQLAPIKeyRepository {
	return &MySQLAPIKeyRepository{db: db}
}

// scanMySQLAPIKey scans a single row into an APIKey, mapping sql.ErrNoRows to ErrNotFound.
func scanMySQLAPIKey(row *sql.Row, wrapMsg string) (*apikeysDomain.APIKey, error) {
	var key apikeysDomain.APIKey
	var id []byte
	var algorithm string

	err := row.Scan(
		&id,
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

	if err := key.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
	}

	key.Algorithm = cryptoDomain.Algorithm(algorithm)
	return &key, nil
}

// collectMySQLAPIKeys drains rows into a slice of APIKeys.
func collectMySQLAPIKeys(rows *sql.Rows, wrapMsg string) ([]*apikeysDomain.APIKey, error) {
	var keys []*apikeysDomain.APIKey
	for rows.Next() {
		var key apikeysDomain.APIKey
		var id []byte
		var algorithm string

		err := rows.Scan(
			&id,
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

		if err := key.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
		}

		key.Algorithm = cryptoDomain.Algorithm(algorithm)
		keys = append(keys, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	return keys, nil
}
