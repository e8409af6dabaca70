package mcp

import "errors"

// Sentinel errors for MCP protocol-level conditions. These never cross the
// HTTP boundary directly; the transport and dispatcher map them to
// JSON-RPC error codes and, where relevant, HTTP status.
var (
	// ErrInvalidRequest indicates the JSON-RPC envelope is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrToolNotFound indicates the requested tool does not exist, or
	// exists but is not visible to the current caller. These two cases
	// are deliberately indistinguishable to the client.
	ErrToolNotFound = errors.New("tool not found")

	// ErrResourceNotFound indicates the requested resource does not
	// exist, or exists but is not visible to the current caller.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrPromptNotFound indicates the requested prompt does not exist,
	// or exists but is not visible to the current caller.
	ErrPromptNotFound = errors.New("prompt not found")
)
