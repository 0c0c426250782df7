package commands

import (
	"fmt"
	"io"

	cryptoService "github.com/skilder/keyvault/internal/crypto/service"
)

// RunInspectEnvelope parses an envelope string without decrypting it and
// writes its key version, algorithm, wire format and migration status.
func RunInspectEnvelope(encryptor *cryptoService.Encryptor, writer io.Writer, envelope string) error {
	parsed, err := encryptor.Inspect(envelope)
	if err != nil {
		return fmt.Errorf("failed to parse envelope: %w", err)
	}

	needsMigration := parsed.NeedsMigration(encryptor.CurrentVersion(), encryptor.CurrentAlgorithm())

	fmt.Fprintf(writer, "key_version: %d\n", parsed.KeyVersion)
	fmt.Fprintf(writer, "algorithm: %s\n", parsed.Algorithm)
	fmt.Fprintf(writer, "format: %s\n", parsed.Format)
	fmt.Fprintf(writer, "needs_migration: %t\n", needsMigration)

	return nil
}
