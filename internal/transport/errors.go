package transport

import (
	"github.com/voyagio/mcp-tenant-server/internal/transport/transportcore"
)

// Re-export errors from transportcore for backward compatibility.
// This allows external packages to import transport without creating cycles.
var (
	// ErrMethodNotAllowed indicates the HTTP method is not allowed for the endpoint.
	ErrMethodNotAllowed = transportcore.ErrMethodNotAllowed

	// ErrBodyTooLarge indicates the request body exceeded the configured limit.
	ErrBodyTooLarge = transportcore.ErrBodyTooLarge

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = transportcore.ErrServerClosed
)
