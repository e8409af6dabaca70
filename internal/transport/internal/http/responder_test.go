package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voyagio/mcp-tenant-server/internal/mcp"
)

// decodeErrorBody decodes a responder body into its JSON-RPC error envelope.
func decodeErrorBody(t *testing.T, body string) *mcp.Response {
	t.Helper()

	var resp mcp.Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("failed to decode error body %q: %v", body, err)
	}
	if resp.Error == nil {
		t.Fatalf("error body %q has no error object", body)
	}
	return &resp
}

func TestResponder_Unauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reason  string
		message string
	}{
		{
			name:    "expired token",
			reason:  "token-expired",
			message: "token is expired",
		},
		{
			name:    "missing token",
			reason:  "missing-token",
			message: "authorization header is required",
		},
		{
			name:    "unsigned token",
			reason:  "unsigned-token-not-accepted",
			message: "unsigned tokens are not accepted for this method",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			responder := NewErrorResponder(nil)
			w := httptest.NewRecorder()

			responder.Unauthorized(w, tt.reason, tt.message)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Unauthorized() status = %v, want 401", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
				t.Errorf("Unauthorized() Content-Type = %v, want application/json", ct)
			}

			resp := decodeErrorBody(t, w.Body.String())
			if resp.Error.Code != mcp.CodeAuthError {
				t.Errorf("Unauthorized() error code = %v, want %v", resp.Error.Code, mcp.CodeAuthError)
			}
			if resp.Error.Message != tt.message {
				t.Errorf("Unauthorized() message = %q, want %q", resp.Error.Message, tt.message)
			}

			data, ok := resp.Error.Data.(map[string]any)
			if !ok {
				t.Fatalf("Unauthorized() data = %T, want object", resp.Error.Data)
			}
			if data["reason"] != tt.reason {
				t.Errorf("Unauthorized() reason = %v, want %v", data["reason"], tt.reason)
			}
		})
	}
}

func TestResponder_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	responder := NewErrorResponder(nil)
	w := httptest.NewRecorder()

	responder.MethodNotAllowed(w, http.MethodPost)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed() status = %v, want 405", w.Code)
	}
	if allow := w.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("MethodNotAllowed() Allow = %q, want %q", allow, http.MethodPost)
	}

	resp := decodeErrorBody(t, w.Body.String())
	if resp.Error.Code != mcp.CodeInvalidRequest {
		t.Errorf("MethodNotAllowed() error code = %v, want %v", resp.Error.Code, mcp.CodeInvalidRequest)
	}
}

func TestResponder_PayloadTooLarge(t *testing.T) {
	t.Parallel()

	responder := NewErrorResponder(nil)
	w := httptest.NewRecorder()

	responder.PayloadTooLarge(w)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("PayloadTooLarge() status = %v, want 413", w.Code)
	}

	resp := decodeErrorBody(t, w.Body.String())
	if !strings.Contains(resp.Error.Message, "too large") {
		t.Errorf("PayloadTooLarge() message = %q, want mention of size", resp.Error.Message)
	}
}

func TestResponder_BadRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{
			name:        "with error",
			err:         errors.New("unreadable body"),
			wantMessage: "unreadable body",
		},
		{
			name:        "nil error",
			err:         nil,
			wantMessage: "invalid request",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			responder := NewErrorResponder(nil)
			w := httptest.NewRecorder()

			responder.BadRequest(w, tt.err)

			if w.Code != http.StatusBadRequest {
				t.Errorf("BadRequest() status = %v, want 400", w.Code)
			}

			resp := decodeErrorBody(t, w.Body.String())
			if resp.Error.Message != tt.wantMessage {
				t.Errorf("BadRequest() message = %q, want %q", resp.Error.Message, tt.wantMessage)
			}
		})
	}
}

func TestResponder_InternalError(t *testing.T) {
	t.Parallel()

	responder := NewErrorResponder(nil)
	w := httptest.NewRecorder()

	responder.InternalError(w, errors.New("database on fire"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("InternalError() status = %v, want 500", w.Code)
	}

	resp := decodeErrorBody(t, w.Body.String())
	if resp.Error.Code != mcp.CodeInternalError {
		t.Errorf("InternalError() error code = %v, want %v", resp.Error.Code, mcp.CodeInternalError)
	}
	if resp.Error.Message != "internal-server-error" {
		t.Errorf("InternalError() message = %q, want internal-server-error", resp.Error.Message)
	}
	// The underlying error is logged, never echoed to the client.
	if strings.Contains(w.Body.String(), "database on fire") {
		t.Error("InternalError() leaked the underlying error to the client")
	}
}
