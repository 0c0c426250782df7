// Package http provides HTTP handlers for API key management operations.
// Key values are encrypted at rest and only returned by the explicit reveal endpoint.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skilder/keyvault/internal/apikeys/http/dto"
	apikeysUseCase "github.com/skilder/keyvault/internal/apikeys/usecase"
	"github.com/skilder/keyvault/internal/httputil"
	customValidation "github.com/skilder/keyvault/internal/validation"
)

// APIKeyHandler handles HTTP requests for API key management operations.
type APIKeyHandler struct {
	useCase apikeysUseCase.APIKeyUseCase
	logger  *slog.Logger
}

// NewAPIKeyHandler creates a new API key handler with required dependencies.
func NewAPIKeyHandler(useCase apikeysUseCase.APIKeyUseCase, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// parseID extracts and validates the :id URL parameter.
func (h *APIKeyHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// CreateHandler stores a new encrypted API key.
// POST /v1/keys
// Returns 201 Created with key metadata (the plaintext is never echoed back).
func (h *APIKeyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateAPIKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := h.useCase.Create(c.Request.Context(), req.Name, req.Provider, req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAPIKeyToResponse(key))
}

// GetHandler retrieves API key metadata by its identifier.
// GET /v1/keys/:id
// Returns 200 OK with key metadata including the masked value.
func (h *APIKeyHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	key, err := h.useCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeyToResponse(key))
}

// RevealHandler decrypts and returns the plaintext key value.
// POST /v1/keys/:id/reveal
// Returns 200 OK with the decrypted value.
func (h *APIKeyHandler) RevealHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	value, err := h.useCase.Reveal(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevealAPIKeyResponse{
		ID:    id.String(),
		Value: value,
	})
}

// VerifyHandler checks a candidate value against the stored key without decrypting it.
// POST /v1/keys/:id/verify
// Returns 200 OK with the verification result.
func (h *APIKeyHandler) VerifyHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.VerifyAPIKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	valid, err := h.useCase.Verify(c.Request.Context(), id, req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyAPIKeyResponse{Valid: valid})
}

// ListHandler retrieves API keys with pagination support.
// GET /v1/keys?offset=0&limit=50
// Returns 200 OK with paginated key metadata.
func (h *APIKeyHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	keys, err := h.useCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIKeysToListResponse(keys))
}

// DeleteHandler soft deletes an API key by its identifier.
// DELETE /v1/keys/:id
// Returns 204 No Content.
func (h *APIKeyHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.useCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
