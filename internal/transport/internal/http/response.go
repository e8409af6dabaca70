package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/voyagio/mcp-tenant-server/internal/mcp"
	"github.com/voyagio/mcp-tenant-server/internal/transport/transportcore"
)

// errorResponder implements transportcore.ErrorResponder. Every body it
// writes is a JSON-RPC-shaped error envelope so clients can run a single
// decode path for both in-band (200) and transport-level failures.
type errorResponder struct {
	logger *slog.Logger
}

// NewErrorResponder creates an error responder. If logger is nil, it uses
// the default slog logger.
func NewErrorResponder(logger *slog.Logger) transportcore.ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &errorResponder{logger: logger}
}

// Unauthorized sends a 401 response carrying the verifier's stable
// machine-readable reason alongside a human-readable message.
func (e *errorResponder) Unauthorized(w http.ResponseWriter, reason, message string) {
	e.logger.Warn("unauthorized request", "reason", reason)

	e.writeError(w, http.StatusUnauthorized, mcp.CodeAuthError, message, map[string]any{
		"reason": reason,
	})
}

// MethodNotAllowed sends a 405 with the given Allow header value. Used for
// GET/DELETE on /mcp: this server is stateless and has no resumable SSE
// sessions to serve on GET, nor sessions to delete.
func (e *errorResponder) MethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	e.writeError(w, http.StatusMethodNotAllowed, mcp.CodeInvalidRequest,
		"method not allowed", map[string]any{"allow": allow})
}

// PayloadTooLarge sends a 413 for an oversize request body, before any JSON
// parsing has been attempted.
func (e *errorResponder) PayloadTooLarge(w http.ResponseWriter) {
	e.writeError(w, http.StatusRequestEntityTooLarge, mcp.CodeInvalidRequest,
		"request body too large", nil)
}

// BadRequest sends a 400 for a request that failed before reaching the
// JSON-RPC layer (e.g. an unreadable body).
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	e.logger.Warn("bad request", "error", err)

	message := "invalid request"
	if err != nil {
		message = err.Error()
	}
	e.writeError(w, http.StatusBadRequest, mcp.CodeInvalidRequest, message, nil)
}

// InternalError sends a 500 with the generic internal-server-error envelope.
// The underlying error is logged, never surfaced to the client.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	e.logger.Error("internal server error", "error", err)

	e.writeError(w, http.StatusInternalServerError, mcp.CodeInternalError,
		"internal-server-error", nil)
}

func (e *errorResponder) writeError(w http.ResponseWriter, status, code int, message string, data any) {
	resp := &mcp.Response{
		JSONRPC: mcp.JSONRPCVersion,
		Error:   mcp.NewError(code, message, data),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		e.logger.Error("failed to encode error response", "error", err)
	}
}
