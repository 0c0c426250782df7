// Package service provides supporting services for API key management.
package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/skilder/keyvault/internal/errors"
)

// hashService hashes API key values with Argon2id so that a candidate key can
// be checked without decrypting the stored one.
type hashService struct {
	hasher *pwdhash.PasswordHasher
}

// Hash hashes a plaintext API key value using Argon2id.
func (s *hashService) Hash(value string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(value))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash api key value")
	}
	return hashed, nil
}

// Verify performs a constant-time comparison between a candidate value and a stored hash.
func (s *hashService) Verify(value string, hash string) bool {
	ok, err := s.hasher.Verify([]byte(value), hash)
	if err != nil {
		return false
	}
	return ok
}

// NewHashService creates a hash service using Argon2id with the Moderate policy.
func NewHashService() HashService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &hashService{hasher: hasher}
}
