package dto

import (
	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
)

// EncryptResponse carries the produced envelope and the key material it was
// sealed with.
type EncryptResponse struct {
	Envelope   string `json:"envelope"`
	KeyVersion uint   `json:"key_version"`
	Algorithm  string `json:"algorithm"`
}

// DecryptResponse carries the recovered plaintext.
type DecryptResponse struct {
	Plaintext string `json:"plaintext"`
}

// ReEncryptResponse carries the rewrapped envelope.
type ReEncryptResponse struct {
	Envelope   string `json:"envelope"`
	KeyVersion uint   `json:"key_version"`
	Algorithm  string `json:"algorithm"`
}

// InspectResponse reports envelope metadata without exposing plaintext.
type InspectResponse struct {
	KeyVersion     uint   `json:"key_version"`
	Algorithm      string `json:"algorithm"`
	Format         string `json:"format"`
	NeedsMigration bool   `json:"needs_migration"`
}

// MaskResponse carries the display-safe form of an API key value.
type MaskResponse struct {
	Masked string `json:"masked"`
}

// MapEnvelopeToInspectResponse converts a parsed envelope to its response representation.
func MapEnvelopeToInspectResponse(envelope cryptoDomain.Envelope, needsMigration bool) InspectResponse {
	return InspectResponse{
		KeyVersion:     envelope.KeyVersion,
		Algorithm:      string(envelope.Algorithm),
		Format:         envelope.Format.String(),
		NeedsMigration: needsMigration,
	}
}
