package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	otelmetric "go.opentelemetry.io/otel/metric"

	apikeysHTTP "github.com/skilder/keyvault/internal/apikeys/http"
	cryptoHTTP "github.com/skilder/keyvault/internal/crypto/http"
	"github.com/skilder/keyvault/internal/metrics"
)

// Server represents the HTTP server.
type Server struct {
	server        *http.Server
	router        *gin.Engine
	db            *sql.DB
	logger        *slog.Logger
	stopRateLimit func()
}

// RouterConfig holds the handlers and middleware settings for route setup.
type RouterConfig struct {
	APIKeyHandler *apikeysHTTP.APIKeyHandler
	CryptoHandler *cryptoHTTP.CryptoHandler

	MeterProvider    otelmetric.MeterProvider
	MetricsNamespace string

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewServer creates a new HTTP server. The database connection is used by the
// readiness endpoint; routes are registered by SetupRouter.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin router and registers all application routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	// Rate limiting only guards the endpoints that touch plaintext secrets;
	// metadata reads stay unthrottled.
	var rateLimit gin.HandlerFunc
	if cfg.RateLimitEnabled {
		rateLimit, s.stopRateLimit = RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	if cfg.APIKeyHandler != nil {
		keys := v1.Group("/keys")
		keys.POST("", cfg.APIKeyHandler.CreateHandler)
		keys.GET("", cfg.APIKeyHandler.ListHandler)
		keys.GET("/:id", cfg.APIKeyHandler.GetHandler)
		keys.POST("/:id/verify", cfg.APIKeyHandler.VerifyHandler)
		keys.DELETE("/:id", cfg.APIKeyHandler.DeleteHandler)

		if rateLimit != nil {
			keys.POST("/:id/reveal", rateLimit, cfg.APIKeyHandler.RevealHandler)
		} else {
			keys.POST("/:id/reveal", cfg.APIKeyHandler.RevealHandler)
		}
	}

	if cfg.CryptoHandler != nil {
		crypto := v1.Group("/crypto")
		if rateLimit != nil {
			crypto.Use(rateLimit)
		}
		crypto.POST("/encrypt", cfg.CryptoHandler.EncryptHandler)
		crypto.POST("/decrypt", cfg.CryptoHandler.DecryptHandler)
		crypto.POST("/re-encrypt", cfg.CryptoHandler.ReEncryptHandler)
		crypto.POST("/inspect", cfg.CryptoHandler.InspectHandler)
		crypto.POST("/mask", cfg.CryptoHandler.MaskHandler)
	}

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking the
// database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server and stops the rate limiter's
// cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.stopRateLimit != nil {
		s.stopRateLimit()
	}
	return s.server.Shutdown(ctx)
}
