package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/voyagio/mcp-tenant-server/internal/config"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
	"github.com/voyagio/mcp-tenant-server/internal/transport/internal/handlers"
	transporthttp "github.com/voyagio/mcp-tenant-server/internal/transport/internal/http"
	"github.com/voyagio/mcp-tenant-server/internal/transport/internal/middleware"
)

// TokenVerifier classifies the Authorization header of an incoming request
// into an AuthContext. Satisfied by jwtauth.Verifier.
type TokenVerifier = handlers.TokenVerifier

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and uses the provided router.
func NewServer(cfg *config.Config, router Router) Server {
	return transporthttp.NewServer(cfg, router)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewErrorResponder creates an error responder. Every error body it writes
// is a JSON-RPC-shaped envelope.
// If logger is nil, it uses the default slog logger.
func NewErrorResponder(logger *slog.Logger) ErrorResponder {
	return transporthttp.NewErrorResponder(logger)
}

// NewMCPHandler creates the /mcp endpoint handler: the per-request pipeline
// from body limit through token classification to dispatch and emission.
func NewMCPHandler(cfg handlers.MCPConfig) http.Handler {
	return handlers.NewMCPHandler(cfg)
}

// NewHealthHandler creates the health check handler.
// It reports process metadata and bypasses authentication.
func NewHealthHandler(info mcp.ServerInfo) http.Handler {
	return handlers.NewHealthHandler(info)
}

// NewLoggingMiddleware creates request logging middleware.
// It logs HTTP request details with a uuid correlation id.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// It recovers from panics and returns a 500 error to the client.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// NewCORSMiddleware creates the CORS layer: any origin, the full method
// list, and the Content-Type/Authorization headers. Preflight OPTIONS
// requests are answered here and never reach the endpoint handlers.
func NewCORSMiddleware() Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodDelete,
			http.MethodPut, http.MethodPatch,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// Verifier classifies bearer tokens into AuthContexts.
	Verifier TokenVerifier

	// Catalog is the full candidate tool/resource/prompt set, filtered
	// per request by the caller's AuthContext.
	Catalog mcp.Catalog

	// ServerInfo is the identity reported on initialize and /health.
	ServerInfo mcp.ServerInfo

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewTransportServices creates all transport layer services from the configuration.
// This is a convenience function for dependency injection that wires up the complete
// HTTP transport layer with routing, middleware, and handlers.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Verifier == nil {
		return nil, nil, fmt.Errorf("verifier cannot be nil")
	}

	responder := NewErrorResponder(cfg.Logger)

	// Create middleware
	recoveryMiddleware := NewRecoveryMiddleware(responder, cfg.Logger)
	corsMiddleware := NewCORSMiddleware()
	loggingMiddleware := NewLoggingMiddleware(cfg.Logger)

	// Create handlers
	mcpHandler := NewMCPHandler(handlers.MCPConfig{
		Verifier:     cfg.Verifier,
		Catalog:      cfg.Catalog,
		Info:         cfg.ServerInfo,
		Responder:    responder,
		MaxBodyBytes: cfg.ServerConfig.MaxBodyBytes,
		Logger:       cfg.Logger,
	})
	healthHandler := NewHealthHandler(cfg.ServerInfo)

	// Create router
	router := NewRouter()

	// Apply global middleware
	router.Use(recoveryMiddleware, corsMiddleware, loggingMiddleware)

	// Register routes. /mcp is registered without a method so the handler
	// itself can answer GET/DELETE with 405 and an Allow: POST header.
	router.Handle("/health", healthHandler)
	router.Handle("/mcp", mcpHandler)

	// Create server
	server := NewServer(cfg.ServerConfig, router)

	return server, router, nil
}
