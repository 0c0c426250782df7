package service

// HashService defines hashing operations for API key values.
type HashService interface {
	// Hash hashes a plaintext API key value.
	Hash(value string) (string, error)
	// Verify reports whether the candidate value matches the stored hash.
	Verify(value string, hash string) bool
}
