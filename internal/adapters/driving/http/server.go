package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// DefaultMaxUploadBytes caps multipart uploads when no limit is configured
const DefaultMaxUploadBytes = 50 << 20

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the driving ports the server exposes
type Services struct {
	Auth        driving.AuthService
	Documents   driving.DocumentService
	Versions    driving.VersionService
	Annotations driving.AnnotationService
	Search      driving.SearchService
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	maxUploadBytes int64

	// Services
	authService       driving.AuthService
	documentService   driving.DocumentService
	versionService    driving.VersionService
	annotationService driving.AnnotationService
	searchService     driving.SearchService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	MaxUploadBytes int64
	CORSOrigins    []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		Version:        "dev",
		MaxUploadBytes: DefaultMaxUploadBytes,
		CORSOrigins:    []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	svc Services,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		logger:            cfg.Logger,
		maxUploadBytes:    cfg.MaxUploadBytes,
		authService:       svc.Auth,
		documentService:   svc.Documents,
		versionService:    svc.Versions,
		annotationService: svc.Annotations,
		searchService:     svc.Search,
		db:                db,
		redisClient:       redisClient,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.wrap(cfg),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// wrap applies CORS, panic recovery and request logging around the router
func (s *Server) wrap(cfg Config) http.Handler {
	var handler http.Handler = s.router
	handler = NewLoggingMiddleware(s.logger).Handler(handler)
	handler = NewRecoveryMiddleware(s.logger).Handler(handler)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler(handler)
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}
	// handle registers a route with and without its trailing slash.
	// {$} keeps the slash form from matching everything below it.
	handle := func(method, path string, h http.Handler) {
		base := strings.TrimSuffix(path, "/")
		s.router.Handle(method+" "+base, h)
		s.router.Handle(method+" "+base+"/{$}", h)
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwagger)

	// Auth endpoints (public)
	handle("POST", "/auth/register/", http.HandlerFunc(s.handleRegister))
	handle("POST", "/auth/login/", http.HandlerFunc(s.handleLogin))
	handle("POST", "/auth/logout/", protected(s.handleLogout))

	// Documents
	handle("GET", "/documents/", protected(s.handleListDocuments))
	handle("POST", "/documents/", protected(s.handleCreateDocument))
	handle("GET", "/documents/{id}/", protected(s.handleGetDocument))
	handle("PUT", "/documents/{id}/", protected(s.handleUpdateDocument))
	handle("PATCH", "/documents/{id}/", protected(s.handleUpdateDocument))
	handle("DELETE", "/documents/{id}/", protected(s.handleDeleteDocument))
	handle("GET", "/documents/{id}/file", protected(s.handleDocumentFile))
	handle("GET", "/documents/{id}/search", protected(s.handleSearch))

	// Versions of a document
	handle("GET", "/documents/{id}/version-list", protected(s.handleListVersions))
	handle("POST", "/documents/{id}/version-create", protected(s.handleCreateVersion))
	handle("GET", "/documents/{id}/versions/", protected(s.handleListVersions))
	handle("POST", "/documents/{id}/versions/", protected(s.handleCreateVersion))
	handle("GET", "/documents/{id}/versions/{vid}/", protected(s.handleGetVersion))
	handle("DELETE", "/documents/{id}/versions/{vid}/", protected(s.handleDeleteVersion))
	handle("GET", "/documents/{id}/versions/{vid}/file", protected(s.handleVersionFile))

	// Annotations of a document
	handle("GET", "/documents/{id}/annotations/", protected(s.handleListAnnotations))
	handle("POST", "/documents/{id}/annotations/", protected(s.handleCreateAnnotation))
	handle("POST", "/documents/{id}/create-annotation", protected(s.handleCreateAnnotation))
	handle("GET", "/documents/{id}/annotations/{aid}/", protected(s.handleGetAnnotation))
	handle("PUT", "/documents/{id}/annotations/{aid}/", protected(s.handleReplaceAnnotation))
	handle("PATCH", "/documents/{id}/annotations/{aid}/", protected(s.handlePatchAnnotation))
	handle("DELETE", "/documents/{id}/annotations/{aid}/", protected(s.handleDeleteAnnotation))

	// Top-level listings across all of the caller's documents
	handle("GET", "/versions/", protected(s.handleListAllVersions))
	handle("GET", "/versions/{vid}/", protected(s.handleGetVersion))
	handle("DELETE", "/versions/{vid}/", protected(s.handleDeleteVersion))
	handle("GET", "/versions/{vid}/file", protected(s.handleVersionFile))
	handle("GET", "/annotations/", protected(s.handleListAllAnnotations))
	handle("GET", "/annotations/{aid}/", protected(s.handleGetAnnotation))
	handle("PUT", "/annotations/{aid}/", protected(s.handleReplaceAnnotation))
	handle("PATCH", "/annotations/{aid}/", protected(s.handlePatchAnnotation))
	handle("DELETE", "/annotations/{aid}/", protected(s.handleDeleteAnnotation))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
