// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/library-catalog/internal/cache"
	"github.com/jdfalk/library-catalog/internal/config"
	"github.com/jdfalk/library-catalog/internal/metadata"
	"github.com/jdfalk/library-catalog/internal/metrics"
	"github.com/jdfalk/library-catalog/internal/server/middleware"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Resolver is the part of the resolution pipeline the HTTP API needs.
type Resolver interface {
	Resolve(ctx context.Context, raw string) *metadata.BookMetadata
	SearchByTitle(ctx context.Context, title string) *metadata.BookMetadata
	Sources() []string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	resolver   Resolver
	store      cache.Store
	limiter    *middleware.IPRateLimiter
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new server instance around a resolver and its cache.
func NewServer(res Resolver, store cache.Store) *Server {
	cfg := config.Current()
	router := gin.New()

	// Set up middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(RequestLogging())
	router.Use(middleware.MaxRequestBodySize(middleware.DefaultBodyLimit))

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:   router,
		resolver: res,
		store:    store,
		limiter:  middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
	}

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[INFO] Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Println("[INFO] Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("[INFO] Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	api.GET("/health", s.healthCheck)
	api.GET("/isbn/normalize", s.normalizeIdentifier)

	lookups := api.Group("/metadata")
	lookups.Use(s.limiter.Middleware())
	lookups.POST("/resolve", s.resolveMetadata)
	lookups.GET("/search", s.searchMetadata)

	maintenance := api.Group("/cache")
	maintenance.Use(middleware.BasicAuth())
	maintenance.GET("/stats", s.cacheStats)
	maintenance.POST("/clear-expired", s.clearExpired)
	maintenance.DELETE("", s.clearAll)
}
