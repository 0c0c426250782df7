// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/skilder/keyvault/internal/validation"
)

// CreateAPIKeyRequest contains the parameters for storing a new API key.
type CreateAPIKeyRequest struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Value    string `json:"value"`
}

// Validate checks if the create API key request is valid.
func (r *CreateAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 255),
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
		validation.Field(&r.Provider,
			validation.Required,
			validation.Length(1, 255),
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
		validation.Field(&r.Value,
			validation.Required,
			validation.Length(1, 0),
		),
	)
}

// VerifyAPIKeyRequest contains a candidate value to check against a stored key.
type VerifyAPIKeyRequest struct {
	Value string `json:"value"`
}

// Validate checks if the verify API key request is valid.
func (r *VerifyAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value,
			validation.Required,
			validation.Length(1, 0),
		),
	)
}
