package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/skilder/keyvault/internal/crypto/domain"
	cryptoHTTP "github.com/skilder/keyvault/internal/crypto/http"
	cryptoService "github.com/skilder/keyvault/internal/crypto/service"
)

// cryptoComponents holds the encryption components and their init guards.
type cryptoComponents struct {
	kmsKeeper   cryptoService.KMSKeeper
	keyResolver cryptoService.KeyResolver
	encryptor   *cryptoService.Encryptor
	handler     *cryptoHTTP.CryptoHandler

	keyResolverInit sync.Once
	encryptorInit   sync.Once
	handlerInit     sync.Once
}

// KeyResolver returns the key resolver. When a KMS key URI is configured, keys
// are unwrapped through the KMS; otherwise they are read from environment
// variables.
func (c *Container) KeyResolver() (cryptoService.KeyResolver, error) {
	var err error
	c.crypto.keyResolverInit.Do(func() {
		c.crypto.keyResolver, err = c.initKeyResolver()
		if err != nil {
			c.initErrors["keyResolver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyResolver"]; exists {
		return nil, storedErr
	}
	return c.crypto.keyResolver, nil
}

// Encryptor returns the envelope encryptor.
func (c *Container) Encryptor() (*cryptoService.Encryptor, error) {
	var err error
	c.crypto.encryptorInit.Do(func() {
		c.crypto.encryptor, err = c.initEncryptor()
		if err != nil {
			c.initErrors["encryptor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptor"]; exists {
		return nil, storedErr
	}
	return c.crypto.encryptor, nil
}

// CryptoHandler returns the crypto HTTP handler.
func (c *Container) CryptoHandler() (*cryptoHTTP.CryptoHandler, error) {
	var err error
	c.crypto.handlerInit.Do(func() {
		var encryptor *cryptoService.Encryptor
		encryptor, err = c.Encryptor()
		if err != nil {
			c.initErrors["cryptoHandler"] = err
			return
		}
		c.crypto.handler = cryptoHTTP.NewCryptoHandler(encryptor, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cryptoHandler"]; exists {
		return nil, storedErr
	}
	return c.crypto.handler, nil
}

// initKeyResolver creates the key resolver based on configuration.
func (c *Container) initKeyResolver() (cryptoService.KeyResolver, error) {
	if c.config.EncryptionKMSKeyURI == "" {
		return cryptoService.NewEnvKeyResolver(), nil
	}

	keeper, err := cryptoService.OpenKMSKeeper(context.Background(), c.config.EncryptionKMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	c.crypto.kmsKeeper = keeper

	return cryptoService.NewKMSKeyResolver(keeper), nil
}

// initEncryptor creates the envelope encryptor with its key resolver.
func (c *Container) initEncryptor() (*cryptoService.Encryptor, error) {
	resolver, err := c.KeyResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key resolver for encryptor: %w", err)
	}

	if c.config.EncryptionCurrentKeyVersion < 1 {
		return nil, fmt.Errorf(
			"invalid encryption current key version: %d",
			c.config.EncryptionCurrentKeyVersion,
		)
	}

	encryptor, err := cryptoService.NewEncryptor(
		resolver,
		uint(c.config.EncryptionCurrentKeyVersion),
		cryptoDomain.Algorithm(c.config.EncryptionCurrentAlgorithm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	return encryptor, nil
}
