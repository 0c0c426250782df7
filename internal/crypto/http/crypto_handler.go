// Package http provides HTTP handlers for direct envelope encryption operations.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
	"github.com/skilder/keyvault/internal/crypto/http/dto"
	"github.com/skilder/keyvault/internal/httputil"
	customValidation "github.com/skilder/keyvault/internal/validation"
)

// Encryptor defines the envelope operations the handler exposes.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, envelope string) (string, error)
	ReEncrypt(ctx context.Context, envelope string) (string, error)
	NeedsMigration(envelope string) (bool, error)
	Inspect(envelope string) (cryptoDomain.Envelope, error)
	CurrentVersion() uint
	CurrentAlgorithm() cryptoDomain.Algorithm
}

// CryptoHandler handles HTTP requests for envelope encryption operations.
type CryptoHandler struct {
	encryptor Encryptor
	logger    *slog.Logger
}

// NewCryptoHandler creates a new crypto handler with required dependencies.
func NewCryptoHandler(encryptor Encryptor, logger *slog.Logger) *CryptoHandler {
	return &CryptoHandler{
		encryptor: encryptor,
		logger:    logger,
	}
}

// EncryptHandler seals a plaintext under the current key version.
// POST /v1/crypto/encrypt
// Returns 200 OK with the envelope string.
func (h *CryptoHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	envelope, err := h.encryptor.Encrypt(c.Request.Context(), req.Plaintext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EncryptResponse{
		Envelope:   envelope,
		KeyVersion: h.encryptor.CurrentVersion(),
		Algorithm:  string(h.encryptor.CurrentAlgorithm()),
	})
}

// DecryptHandler opens an envelope in any supported wire form.
// POST /v1/crypto/decrypt
// Returns 200 OK with the plaintext.
func (h *CryptoHandler) DecryptHandler(c *gin.Context) {
	var req dto.DecryptRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, err := h.encryptor.Decrypt(c.Request.Context(), req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DecryptResponse{Plaintext: plaintext})
}

// ReEncryptHandler rewraps an envelope under the current key version and algorithm.
// POST /v1/crypto/re-encrypt
// Returns 200 OK with the new envelope.
func (h *CryptoHandler) ReEncryptHandler(c *gin.Context) {
	var req dto.ReEncryptRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	envelope, err := h.encryptor.ReEncrypt(c.Request.Context(), req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ReEncryptResponse{
		Envelope:   envelope,
		KeyVersion: h.encryptor.CurrentVersion(),
		Algorithm:  string(h.encryptor.CurrentAlgorithm()),
	})
}

// InspectHandler reports envelope metadata without decrypting.
// POST /v1/crypto/inspect
// Returns 200 OK with version, algorithm, format and migration status.
func (h *CryptoHandler) InspectHandler(c *gin.Context) {
	var req dto.InspectRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	envelope, err := h.encryptor.Inspect(req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	needsMigration, err := h.encryptor.NeedsMigration(req.Envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEnvelopeToInspectResponse(envelope, needsMigration))
}

// MaskHandler returns the display-safe form of an API key value.
// POST /v1/crypto/mask
// Returns 200 OK with the masked value.
func (h *CryptoHandler) MaskHandler(c *gin.Context) {
	var req dto.MaskRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MaskResponse{Masked: cryptoDomain.MaskAPIKey(req.Value)})
}
