package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
	cryptoService "github.com/skilder/keyvault/internal/crypto/service"
)

func newTestEncryptor(t *testing.T) *cryptoService.Encryptor {
	t.Helper()

	keys := map[uint][]byte{
		1: make([]byte, 32),
		2: make([]byte, 32),
	}
	for version := range keys {
		_, err := rand.Read(keys[version])
		require.NoError(t, err)
	}

	encryptor, err := cryptoService.NewEncryptor(
		cryptoService.NewStaticKeyResolver(keys), 2, cryptoDomain.AES256GCM,
	)
	require.NoError(t, err)
	return encryptor
}

func TestRunInspectEnvelope(t *testing.T) {
	encryptor := newTestEncryptor(t)

	t.Run("current envelope", func(t *testing.T) {
		envelope, err := encryptor.Encrypt(context.Background(), "hello")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, RunInspectEnvelope(encryptor, &buf, envelope))

		output := buf.String()
		require.Contains(t, output, "key_version: 2")
		require.Contains(t, output, "algorithm: aes256gcm")
		require.Contains(t, output, "format: current")
		require.Contains(t, output, "needs_migration: false")
	})

	t.Run("stale envelope", func(t *testing.T) {
		envelope, err := encryptor.EncryptWith(context.Background(), "hello", 1, cryptoDomain.AES256GCM)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, RunInspectEnvelope(encryptor, &buf, envelope))

		output := buf.String()
		require.Contains(t, output, "key_version: 1")
		require.Contains(t, output, "needs_migration: true")
	})

	t.Run("malformed envelope", func(t *testing.T) {
		var buf bytes.Buffer
		err := RunInspectEnvelope(encryptor, &buf, "not-an-envelope")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse envelope")
	})
}
