package app

import (
	"fmt"
	"sync"

	apikeysHTTP "github.com/skilder/keyvault/internal/apikeys/http"
	apikeysRepository "github.com/skilder/keyvault/internal/apikeys/repository"
	apikeysService "github.com/skilder/keyvault/internal/apikeys/service"
	apikeysUseCase "github.com/skilder/keyvault/internal/apikeys/usecase"
)

// apiKeyComponents holds the API key components and their init guards.
type apiKeyComponents struct {
	repository  apikeysUseCase.APIKeyRepository
	hashService apikeysService.HashService
	useCase     apikeysUseCase.APIKeyUseCase
	handler     *apikeysHTTP.APIKeyHandler

	repositoryInit  sync.Once
	hashServiceInit sync.Once
	useCaseInit     sync.Once
	handlerInit     sync.Once
}

// APIKeyRepository returns the API key repository for the configured database driver.
func (c *Container) APIKeyRepository() (apikeysUseCase.APIKeyRepository, error) {
	var err error
	c.apiKeys.repositoryInit.Do(func() {
		c.apiKeys.repository, err = c.initAPIKeyRepository()
		if err != nil {
			c.initErrors["apiKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.apiKeys.repository, nil
}

// HashService returns the API key hashing service.
func (c *Container) HashService() apikeysService.HashService {
	c.apiKeys.hashServiceInit.Do(func() {
		c.apiKeys.hashService = apikeysService.NewHashService()
	})
	return c.apiKeys.hashService
}

// APIKeyUseCase returns the API key use case wrapped with metrics recording.
func (c *Container) APIKeyUseCase() (apikeysUseCase.APIKeyUseCase, error) {
	var err error
	c.apiKeys.useCaseInit.Do(func() {
		c.apiKeys.useCase, err = c.initAPIKeyUseCase()
		if err != nil {
			c.initErrors["apiKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.apiKeys.useCase, nil
}

// APIKeyHandler returns the API key HTTP handler.
func (c *Container) APIKeyHandler() (*apikeysHTTP.APIKeyHandler, error) {
	var err error
	c.apiKeys.handlerInit.Do(func() {
		var useCase apikeysUseCase.APIKeyUseCase
		useCase, err = c.APIKeyUseCase()
		if err != nil {
			c.initErrors["apiKeyHandler"] = err
			return
		}
		c.apiKeys.handler = apikeysHTTP.NewAPIKeyHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyHandler"]; exists {
		return nil, storedErr
	}
	return c.apiKeys.handler, nil
}

// initAPIKeyRepository creates the API key repository instance.
func (c *Container) initAPIKeyRepository() (apikeysUseCase.APIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return apikeysRepository.NewMySQLAPIKeyRepository(db), nil
	case "postgres":
		return apikeysRepository.NewPostgreSQLAPIKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAPIKeyUseCase creates the API key use case with all its dependencies.
func (c *Container) initAPIKeyUseCase() (apikeysUseCase.APIKeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for api key use case: %w", err)
	}

	repo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository for api key use case: %w", err)
	}

	encryptor, err := c.Encryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryptor for api key use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for api key use case: %w", err)
	}

	useCase := apikeysUseCase.NewAPIKeyUseCase(
		txManager,
		repo,
		encryptor,
		c.HashService(),
		c.Logger(),
	)

	return apikeysUseCase.NewAPIKeyUseCaseWithMetrics(useCase, businessMetrics), nil
}
