package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

// Environment variable names for key material.
const (
	// EncryptionKeyEnv holds the default/current key as 64 hex characters.
	EncryptionKeyEnv = "ENCRYPTION_KEY"
	// encryptionKeyVersionEnvFormat builds per-version override variables
	// (ENCRYPTION_KEY_V1, ENCRYPTION_KEY_V2, ...).
	encryptionKeyVersionEnvFormat = "ENCRYPTION_KEY_V%d"
)

// EnvKeyResolver resolves symmetric keys from environment variables.
//
// Resolution for version N reads ENCRYPTION_KEY_V{N} and falls back to
// ENCRYPTION_KEY when the per-version variable is absent. The environment is
// re-read on every call, so operators can rotate keys without restarting the
// process. Missing or malformed keys are configuration errors surfaced at the
// point of use.
type EnvKeyResolver struct{}

// NewEnvKeyResolver creates a key resolver backed by environment variables.
func NewEnvKeyResolver() *EnvKeyResolver {
	return &EnvKeyResolver{}
}

// Resolve returns the 32-byte key for the given version.
//
// Returns ErrKeyNotSet naming the missing variable, ErrInvalidKeyEncoding if
// the value is not hex, or ErrInvalidKeySize if it does not decode to exactly
// 32 bytes.
func (r *EnvKeyResolver) Resolve(_ context.Context, version uint) ([]byte, error) {
	name := fmt.Sprintf(encryptionKeyVersionEnvFormat, version)
	raw := os.Getenv(name)
	if raw == "" {
		name = EncryptionKeyEnv
		raw = os.Getenv(name)
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: %s environment variable is not set", cryptoDomain.ErrKeyNotSet, name)
	}

	return decodeKey(name, raw)
}

// decodeKey hex-decodes key material and enforces the 32-byte invariant.
func decodeKey(name, raw string) ([]byte, error) {
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid hex: %v", cryptoDomain.ErrInvalidKeyEncoding, name, err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, fmt.Errorf(
			"%w: %s must decode to %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize,
			name,
			cryptoDomain.KeySize,
			len(key),
		)
	}
	return key, nil
}

// StaticKeyResolver resolves keys from a fixed in-memory map.
//
// Intended for tests and for callers that manage key material themselves
// instead of using process environment variables.
type StaticKeyResolver struct {
	keys map[uint][]byte
}

// NewStaticKeyResolver creates a resolver over a fixed version-to-key map.
// Keys are validated lazily on Resolve, matching the environment resolver.
func NewStaticKeyResolver(keys map[uint][]byte) *StaticKeyResolver {
	return &StaticKeyResolver{keys: keys}
}

// Resolve returns a copy of the key for the given version.
func (r *StaticKeyResolver) Resolve(_ context.Context, version uint) ([]byte, error) {
	key, ok := r.keys[version]
	if !ok {
		return nil, fmt.Errorf("%w: no key configured for version %d", cryptoDomain.ErrKeyNotSet, version)
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, fmt.Errorf(
			"%w: key for version %d must be %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize,
			version,
			cryptoDomain.KeySize,
			len(key),
		)
	}

	// Copy so callers can zero the returned slice without destroying the map entry.
	out := make([]byte, len(key))
	copy(out, key)
	return out, nil
}
