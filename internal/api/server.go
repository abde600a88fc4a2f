package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tumorboard-evidence-service/internal/domain"
)

// EvidenceFetcher is the client contract the API server depends on.
type EvidenceFetcher interface {
	FetchEvidence(ctx context.Context, gene, variant string) (*domain.Evidence, error)
	GetVariant(ctx context.Context, variantID string) (map[string]interface{}, error)
}

// Server represents the HTTP server
type Server struct {
	config  *domain.ServerConfig
	fetcher EvidenceFetcher
	logger  *logrus.Logger
	router  *gin.Engine
	server  *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *domain.Config, fetcher EvidenceFetcher, logger *logrus.Logger) *Server {
	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	server := &Server{
		config:  &cfg.Server,
		fetcher: fetcher,
		logger:  logger,
		router:  router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/evidence", s.handleFetchEvidence)
		v1.GET("/variant/:id", s.handleGetVariant)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleFetchEvidence fetches aggregated variant evidence for a gene/variant
// pair supplied in the request body.
func (s *Server) handleFetchEvidence(c *gin.Context) {
	var input domain.VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.NewAPIError(domain.ErrInvalidInput, err.Error()),
		})
		return
	}

	evidence, err := s.fetcher.FetchEvidence(c.Request.Context(), input.Gene, input.Variant)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"gene":       input.Gene,
			"variant":    input.Variant,
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		}).Error("Evidence fetch failed")

		c.JSON(http.StatusBadGateway, gin.H{"error": err})
		return
	}

	c.JSON(http.StatusOK, evidence)
}

// handleGetVariant proxies a direct variant lookup by ID.
func (s *Server) handleGetVariant(c *gin.Context) {
	variantID := c.Param("id")

	data, err := s.fetcher.GetVariant(c.Request.Context(), variantID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"variant_id": variantID,
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		}).Error("Variant lookup failed")

		c.JSON(http.StatusBadGateway, gin.H{"error": err})
		return
	}

	c.JSON(http.StatusOK, data)
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
