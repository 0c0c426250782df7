// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	apikeysDomain "github.com/skilder/keyvault/internal/apikeys/domain"
)

// APIKeyResponse represents an API key in API responses.
// The plaintext value is never included; MaskedValue is the display-safe preview.
type APIKeyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Provider    string    `json:"provider"`
	MaskedValue string    `json:"masked_value"`
	KeyVersion  uint      `json:"key_version"`
	Algorithm   string    `json:"algorithm"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RevealAPIKeyResponse carries a decrypted key value.
// SECURITY: Must be transmitted over HTTPS in production.
type RevealAPIKeyResponse struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// VerifyAPIKeyResponse reports the result of a verification check.
type VerifyAPIKeyResponse struct {
	Valid bool `json:"valid"`
}

// ListAPIKeysResponse represents a paginated list of API keys in API responses.
type ListAPIKeysResponse struct {
	Data []APIKeyResponse `json:"data"`
}

// MapAPIKeyToResponse converts a domain API key to an API response.
func MapAPIKeyToResponse(key *apikeysDomain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:          key.ID.String(),
		Name:        key.Name,
		Provider:    key.Provider,
		MaskedValue: key.MaskedValue,
		KeyVersion:  key.KeyVersion,
		Algorithm:   string(key.Algorithm),
		CreatedAt:   key.CreatedAt,
		UpdatedAt:   key.UpdatedAt,
	}
}

// MapAPIKeysToListResponse converts a slice of domain API keys to a list response.
func MapAPIKeysToListResponse(keys []*apikeysDomain.APIKey) ListAPIKeysResponse {
	data := make([]APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		data = append(data, MapAPIKeyToResponse(key))
	}

	return ListAPIKeysResponse{
		Data: data,
	}
}
