package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
	domainerrors "github.com/voyagio/mcp-tenant-server/internal/errors"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
	"github.com/voyagio/mcp-tenant-server/internal/transport/transportcore"
)

// TokenVerifier classifies the Authorization header of an incoming request
// into an AuthContext. Implemented by jwtauth.Verifier; tests substitute a
// fake.
type TokenVerifier interface {
	VerifyHeader(ctx context.Context, header string) *authctx.AuthContext
}

// MCPConfig carries everything the /mcp endpoint handler needs.
type MCPConfig struct {
	// Verifier classifies bearer tokens. Required.
	Verifier TokenVerifier

	// Catalog is the full candidate descriptor set; it is filtered down
	// per request by the caller's AuthContext.
	Catalog mcp.Catalog

	// Info is the server identity reported on initialize.
	Info mcp.ServerInfo

	// Responder writes transport-level error bodies. Required.
	Responder transportcore.ErrorResponder

	// MaxBodyBytes bounds the request body; bodies over it are rejected
	// with 413 before parsing. Defaults to 1 MiB.
	MaxBodyBytes int64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// mcpHandler is the single-endpoint request pipeline for POST /mcp: body
// limit, envelope parse, token classification, auth preflight, per-request
// dispatcher construction, dispatch, and JSON-or-SSE emission.
type mcpHandler struct {
	verifier  TokenVerifier
	catalog   mcp.Catalog
	info      mcp.ServerInfo
	responder transportcore.ErrorResponder
	maxBody   int64
	logger    *slog.Logger
}

// NewMCPHandler creates the handler for the /mcp endpoint.
func NewMCPHandler(cfg MCPConfig) http.Handler {
	if cfg.Verifier == nil {
		panic("verifier cannot be nil")
	}
	if cfg.Responder == nil {
		panic("responder cannot be nil")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &mcpHandler{
		verifier:  cfg.Verifier,
		catalog:   cfg.Catalog,
		info:      cfg.Info,
		responder: cfg.Responder,
		maxBody:   cfg.MaxBodyBytes,
		logger:    cfg.Logger,
	}
}

// ServeHTTP processes one JSON-RPC envelope. POST is the only productive
// verb: GET and DELETE get 405, since a stateless server has no resumable
// stream to reattach on GET and no session to delete.
func (h *mcpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.responder.MethodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.responder.PayloadTooLarge(w)
			return
		}
		h.responder.BadRequest(w, err)
		return
	}
	defer func() {
		if closeErr := r.Body.Close(); closeErr != nil {
			h.logger.Warn("failed to close request body", "error", closeErr)
		}
	}()

	env, err := mcp.ParseEnvelope(body)
	if err != nil {
		h.writeSingle(w, errorFrame(nil, mcp.CodeParseError, "parse error", err.Error()))
		return
	}
	if len(env.Requests) == 0 {
		h.writeSingle(w, errorFrame(nil, mcp.CodeInvalidRequest, "empty batch", nil))
		return
	}

	ac := h.verifier.VerifyHeader(r.Context(), r.Header.Get("Authorization"))

	if reason := authPreflight(env, ac); reason != "" {
		h.responder.Unauthorized(w, reason, authMessage(reason))
		return
	}

	dispatcher, err := mcp.NewDispatcherForRequest(ac, h.catalog, h.info)
	if err != nil {
		h.responder.InternalError(w, err)
		return
	}

	responses := make([]*mcp.Response, 0, len(env.Requests))
	for _, req := range env.Requests {
		if r.Context().Err() != nil {
			// Client is gone; drop the rest of the batch.
			return
		}
		resp, err := dispatcher.HandleRequest(r.Context(), req)
		if err != nil {
			h.logger.Error("dispatch failed", "method", req.Method, "error", err)
			resp = errorFrame(req.ID, mcp.CodeInternalError, "internal error", nil)
		}
		if resp != nil {
			responses = append(responses, resp)
		}
	}

	// A notification-only envelope produces no response frames.
	if len(responses) == 0 {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if acceptsSSE(r) {
		h.writeSSE(w, r, responses)
		return
	}
	h.writeJSON(w, env.Batch, responses)
}

// signedRejections classify a token that claimed a verifiable signature but
// failed verification. These hard-fail every non-public request with 401.
// The anonymous-tolerable classifications (missing, bad format, empty,
// malformed, unsigned) instead fall through to dispatch on tools/call, where
// registry visibility reports protected tools as not found without
// acknowledging they exist.
var signedRejections = map[string]bool{
	domainerrors.ReasonTokenExpired:  true,
	domainerrors.ReasonNotYetValid:   true,
	domainerrors.ReasonInvalidSig:    true,
	domainerrors.ReasonWrongIssuer:   true,
	domainerrors.ReasonWrongAudience: true,
	domainerrors.ReasonUnknownKey:    true,
	domainerrors.ReasonTokenInvalid:  true,
}

// authPreflight decides whether the envelope may be dispatched under ac.
// Returns the verifier's reason when any request requires verification the
// caller doesn't have; the whole envelope fails fast with 401 in that case.
func authPreflight(env *mcp.Envelope, ac *authctx.AuthContext) string {
	if ac == nil {
		return domainerrors.ReasonMissingToken
	}
	if ac.Verified {
		return ""
	}

	for _, req := range env.Requests {
		if req == nil {
			continue
		}
		if mcp.IsPublicMethod(req.Method, req.Params) {
			continue
		}
		if req.Method == "tools/call" && !signedRejections[ac.Reason] {
			// Dispatch anyway: the per-request registry contains no
			// protected tools for this caller, so the lookup answers
			// tool-not-found rather than leaking that the name exists.
			continue
		}
		return ac.Reason
	}
	return ""
}

// authMessage pairs each stable reason code with its human-readable message.
func authMessage(reason string) string {
	switch reason {
	case domainerrors.ReasonMissingToken:
		return "authorization header is required"
	case domainerrors.ReasonBadAuthFormat:
		return "authorization header must use the Bearer scheme"
	case domainerrors.ReasonEmptyToken:
		return "bearer token is empty"
	case domainerrors.ReasonMalformed:
		return "token could not be decoded"
	case domainerrors.ReasonUnsignedNotOK:
		return "unsigned tokens are not accepted for this method"
	case domainerrors.ReasonTokenExpired:
		return "token is expired"
	case domainerrors.ReasonNotYetValid:
		return "token is not yet valid"
	case domainerrors.ReasonWrongIssuer:
		return "token issuer does not match this server"
	case domainerrors.ReasonWrongAudience:
		return "token audience does not match this server"
	case domainerrors.ReasonInvalidSig:
		return "token signature is invalid"
	case domainerrors.ReasonUnknownKey:
		return "token signing key is unknown"
	default:
		return "token verification failed"
	}
}

// acceptsSSE reports whether the client advertised Server-Sent-Events.
func acceptsSSE(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// writeJSON emits responses as a single application/json body: a lone object
// for a non-batch request, an array for a batch.
func (h *mcpHandler) writeJSON(w http.ResponseWriter, batch bool, responses []*mcp.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	var payload any
	if batch {
		payload = responses
	} else {
		payload = responses[0]
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON-RPC response", "error", err)
	}
}

// writeSSE emits each response as one unnamed SSE frame, flushing between
// frames, and closes the stream when the batch is exhausted. A client
// disconnect mid-stream just stops emission; r.Context() carries the
// cancellation to any remaining work.
func (h *mcpHandler) writeSSE(w http.ResponseWriter, r *http.Request, responses []*mcp.Response) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeJSON(w, len(responses) > 1, responses)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, resp := range responses {
		if r.Context().Err() != nil {
			return
		}
		data, err := json.Marshal(resp)
		if err != nil {
			h.logger.Error("failed to encode SSE frame", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (h *mcpHandler) writeSingle(w http.ResponseWriter, resp *mcp.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode JSON-RPC response", "error", err)
	}
}

func errorFrame(id any, code int, message string, data any) *mcp.Response {
	return &mcp.Response{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      id,
		Error:   mcp.NewError(code, message, data),
	}
}
