package domain

import (
	"github.com/skilder/keyvault/internal/errors"
)

// API key specific error definitions.
var (
	// ErrAPIKeyNotFound indicates no active API key exists with the given identifier.
	ErrAPIKeyNotFound = errors.Wrap(errors.ErrNotFound, "api key not found")

	// ErrAPIKeyNameTaken indicates an active API key already uses the given name.
	ErrAPIKeyNameTaken = errors.Wrap(errors.ErrConflict, "api key name already in use")
)
