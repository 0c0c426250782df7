package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

// RunGenerateKey generates a new random 32-byte encryption key and writes it
// hex-encoded to the writer. The output is suitable for the ENCRYPTION_KEY and
// ENCRYPTION_KEY_V{N} environment variables.
func RunGenerateKey(logger *slog.Logger, writer io.Writer) error {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate key material: %w", err)
	}
	defer cryptoDomain.Zero(key)

	if _, err := fmt.Fprintln(writer, hex.EncodeToString(key)); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	logger.Info("encryption key generated", slog.Int("size_bytes", cryptoDomain.KeySize))
	return nil
}
