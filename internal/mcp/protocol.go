package mcp

import (
	"encoding/json"
	"fmt"
)

// Request is a single JSON-RPC 2.0 request or notification. A Request with
// no ID is a notification: the dispatcher processes it but the transport
// must not emit a response frame for it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether r carries no id, per JSON-RPC 2.0
// notification semantics.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Validate checks the structural shape of a JSON-RPC request.
func (r *Request) Validate() error {
	if r.JSONRPC != JSONRPCVersion {
		return ErrInvalidRequest
	}
	if r.Method == "" {
		return ErrInvalidRequest
	}
	return nil
}

// Response is a single JSON-RPC 2.0 response. Exactly one of Result/Error is
// set.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// IsError reports whether resp carries a JSON-RPC error.
func (resp *Response) IsError() bool {
	return resp.Error != nil
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	// Cause is the underlying Go error, not serialized.
	Cause error `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("jsonrpc error %d: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an *Error.
func NewError(code int, message string, data any) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

func errorResponse(id any, code int, message string, data any) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: NewError(code, message, data)}
}

func successResponse(id any, result any) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// Envelope is one parsed inbound POST /mcp body: either a single request or
// a JSON-RPC batch (array). Batch is false for a lone object.
type Envelope struct {
	Requests []*Request
	Batch    bool
}

// ParseEnvelope parses a raw JSON-RPC body, which may be a single object or
// a batch array.
func ParseEnvelope(body []byte) (*Envelope, error) {
	trimmed := trimLeadingSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var reqs []*Request
		if err := json.Unmarshal(body, &reqs); err != nil {
			return nil, err
		}
		return &Envelope{Requests: reqs, Batch: true}, nil
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	return &Envelope{Requests: []*Request{&req}, Batch: false}, nil
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}
		break
	}
	return b[i:]
}

// toolCallParams is the mandatory shape of tools/call params.
type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// publicToolNames are tools invocable by tools/call without a verified
// AuthContext. Membership here does not bypass schema validation; it only
// exempts the call from the verified-required gate. whoami is public by
// design; list_prompts/get_prompt are the fallback prompt-access tools
// (see package prompts) and are public so they can report the catalog to
// anonymous callers in deployments that register them.
var publicToolNames = map[string]bool{
	"whoami":       true,
	"list_prompts": true,
	"get_prompt":   true,
}

// IsPublicMethod decides whether method (with the given raw params, if any)
// belongs to the public method set the pipeline lets through without a
// verified token. tools/call is public only for the specific tool named in
// params, not for the method in general, so this takes the parsed request
// shape rather than a static string set.
func IsPublicMethod(method string, params json.RawMessage) bool {
	switch method {
	case "initialize", "notifications/initialized", "tools/list":
		return true
	case "tools/call":
		var p toolCallParams
		if len(params) == 0 {
			return false
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return false
		}
		return publicToolNames[p.Name]
	default:
		return false
	}
}
