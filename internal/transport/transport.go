package transport

import (
	"github.com/voyagio/mcp-tenant-server/internal/transport/transportcore"
)

// Re-export types from transportcore for backward compatibility.
// This allows external packages to import transport without creating cycles.

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router = transportcore.Router

// ErrorResponder writes the transport-level error bodies used outside the
// JSON-RPC response channel: 401 auth failures, 405 wrong verb, 413
// oversize body, and 500.
type ErrorResponder = transportcore.ErrorResponder
