// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
)

// EncryptRequest contains the plaintext to encrypt. An empty plaintext is
// valid; the envelope of an empty string still authenticates it.
type EncryptRequest struct {
	Plaintext string `json:"plaintext"`
}

// DecryptRequest contains an envelope string in any supported wire form.
type DecryptRequest struct {
	Envelope string `json:"envelope"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Envelope, validation.Required),
	)
}

// ReEncryptRequest contains an envelope to rewrap under the current key
// version and algorithm.
type ReEncryptRequest struct {
	Envelope string `json:"envelope"`
}

// Validate checks if the re-encrypt request is valid.
func (r *ReEncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Envelope, validation.Required),
	)
}

// InspectRequest contains an envelope to parse without decrypting.
type InspectRequest struct {
	Envelope string `json:"envelope"`
}

// Validate checks if the inspect request is valid.
func (r *InspectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Envelope, validation.Required),
	)
}

// MaskRequest contains a plaintext API key value to mask for display.
type MaskRequest struct {
	Value string `json:"value"`
}

// Validate checks if the mask request is valid.
func (r *MaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.Required),
	)
}
