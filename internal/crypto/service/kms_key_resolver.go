package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Environment variable names for KMS-wrapped key material.
const (
	// EncryptionKeyCiphertextEnv holds the current key encrypted by the KMS,
	// base64-encoded.
	EncryptionKeyCiphertextEnv = "ENCRYPTION_KEY_CIPHERTEXT"
	// encryptionKeyCiphertextVersionEnvFormat builds per-version override
	// variables (ENCRYPTION_KEY_CIPHERTEXT_V1, ...).
	encryptionKeyCiphertextVersionEnvFormat = "ENCRYPTION_KEY_CIPHERTEXT_V%d"
)

// OpenKMSKeeper opens a secrets keeper for the configured KMS provider using
// the key URI. Supports gcpkms://, awskms://, azurekeyvault://, hashivault://
// and base64key:// URIs.
func OpenKMSKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// KMSKeyResolver resolves symmetric keys that are stored wrapped by a KMS.
//
// Instead of holding raw 32-byte keys, the environment holds KMS-encrypted
// ciphertexts (ENCRYPTION_KEY_CIPHERTEXT, ENCRYPTION_KEY_CIPHERTEXT_V{N},
// base64-encoded). Each Resolve call re-reads the environment and asks the
// keeper to unwrap the ciphertext, so rotation of the wrapped material takes
// effect without restart. The unwrapped key must still be exactly 32 bytes.
type KMSKeyResolver struct {
	keeper KMSKeeper
}

// NewKMSKeyResolver creates a key resolver that unwraps key material through
// the given KMS keeper.
func NewKMSKeyResolver(keeper KMSKeeper) *KMSKeyResolver {
	return &KMSKeyResolver{keeper: keeper}
}

// Resolve unwraps and returns the 32-byte key for the given version.
func (r *KMSKeyResolver) Resolve(ctx context.Context, version uint) ([]byte, error) {
	name := fmt.Sprintf(encryptionKeyCiphertextVersionEnvFormat, version)
	raw := os.Getenv(name)
	if raw == "" {
		name = EncryptionKeyCiphertextEnv
		raw = os.Getenv(name)
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: %s environment variable is not set", cryptoDomain.ErrKeyNotSet, name)
	}

	wrapped, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: %s is not valid base64: %v",
			cryptoDomain.ErrInvalidKeyEncoding,
			name,
			err,
		)
	}

	key, err := r.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap key %s via KMS: %w", name, err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, fmt.Errorf(
			"%w: %s must unwrap to %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize,
			name,
			cryptoDomain.KeySize,
			len(key),
		)
	}

	return key, nil
}
