package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apikeysDomain "github.com/skilder/keyvault/internal/apikeys/domain"
	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
	apperrors "github.com/skilder/keyvault/internal/errors"
)

var apiKeyColumns = []string{
	"id", "name", "provider", "encrypted_value", "secret_hash", "masked_value",
	"key_version", "algorithm", "created_at", "updated_at", "deleted_at",
}

func testAPIKey(t *testing.T) *apikeysDomain.APIKey {
	t.Helper()
	now := time.Now().UTC()
	return &apikeysDomain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           "payments-openai",
		Provider:       "openai",
		EncryptedValue: "v2.aes256gcm:aa:bb:cc",
		SecretHash:     "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		MaskedValue:    "sk-...cdef",
		KeyVersion:     2,
		Algorithm:      cryptoDomain.AES256GCM,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func apiKeyRow(key *apikeysDomain.APIKey) *sqlmock.Rows {
	return sqlmock.NewRows(apiKeyColumns).AddRow(
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
}

func TestPostgreSQLAPIKeyRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)
	key := testAPIKey(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO api_keys")).
		WithArgs(
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
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), key)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)
	key := testAPIKey(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM api_keys")).
			WithArgs(key.ID).
			WillReturnRows(apiKeyRow(key))

		got, err := repo.GetByID(context.Background(), key.ID)
		require.NoError(t, err)
		assert.Equal(t, key.ID, got.ID)
		assert.Equal(t, key.Name, got.Name)
		assert.Equal(t, key.EncryptedValue, got.EncryptedValue)
		assert.Equal(t, cryptoDomain.AES256GCM, got.Algorithm)
		assert.Equal(t, uint(2), got.KeyVersion)
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.Must(uuid.NewV7())
		mock.ExpectQuery(regexp.QuoteMeta("FROM api_keys")).
			WithArgs(missing).
			WillReturnRows(sqlmock.NewRows(apiKeyColumns))

		got, err := repo.GetByID(context.Background(), missing)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_GetByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)
	key := testAPIKey(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE name = $1 AND deleted_at IS NULL")).
		WithArgs(key.Name).
		WillReturnRows(apiKeyRow(key))

	got, err := repo.GetByName(context.Background(), key.Name)
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)
	first := testAPIKey(t)
	second := testAPIKey(t)
	second.Name = "billing-anthropic"
	second.Provider = "anthropic"

	rows := apiKeyRow(first).AddRow(
		second.ID, second.Name, second.Provider, second.EncryptedValue, second.SecretHash,
		second.MaskedValue, second.KeyVersion, string(second.Algorithm),
		second.CreatedAt, second.UpdatedAt, second.DeletedAt,
	)

	mock.ExpectQuery(regexp.QuoteMeta("OFFSET $1 LIMIT $2")).
		WithArgs(0, 50).
		WillReturnRows(rows)

	keys, err := repo.List(context.Background(), 0, 50)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "payments-openai", keys[0].Name)
	assert.Equal(t, "billing-anthropic", keys[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_ListStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)
	stale := testAPIKey(t)
	stale.KeyVersion = 1
	stale.EncryptedValue = "v1.aes256gcm:aa:bb:cc"

	mock.ExpectQuery(regexp.QuoteMeta("key_version <> $1 OR algorithm <> $2")).
		WithArgs(uint(2), "aes256gcm", 100).
		WillReturnRows(apiKeyRow(stale))

	keys, err := repo.ListStale(context.Background(), 2, cryptoDomain.AES256GCM, 100)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, uint(1), keys[0].KeyVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_CountStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM api_keys")).
		WithArgs(uint(2), "aes256gcm").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountStale(context.Background(), 2, cryptoDomain.AES256GCM)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_UpdateEnvelope(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)
	key := testAPIKey(t)

	t.Run("updates the envelope", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE api_keys")).
			WithArgs("v2.aes256gcm:dd:ee:ff", uint(2), "aes256gcm", sqlmock.AnyArg(), key.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateEnvelope(
			context.Background(),
			key.ID,
			"v2.aes256gcm:dd:ee:ff",
			2,
			cryptoDomain.AES256GCM,
		)
		require.NoError(t, err)
	})

	t.Run("missing key is not found", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE api_keys")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateEnvelope(
			context.Background(),
			uuid.Must(uuid.NewV7()),
			"v2.aes256gcm:dd:ee:ff",
			2,
			cryptoDomain.AES256GCM,
		)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAPIKeyRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLAPIKeyRepository(db)
	key := testAPIKey(t)

	t.Run("soft deletes", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET deleted_at = $1")).
			WithArgs(sqlmock.AnyArg(), key.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), key.ID)
		require.NoError(t, err)
	})

	t.Run("already deleted key is not found", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("SET deleted_at = $1")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), key.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
