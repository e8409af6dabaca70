// Package mcp implements the server side of the Model Context Protocol: a
// JSON-RPC 2.0 vocabulary for tool invocation, resource reading, and prompt
// expansion. A Dispatcher is constructed fresh for every HTTP request,
// bound to that request's authctx.AuthContext and a Registry already
// filtered to the tools/resources/prompts that caller may see — no
// dispatcher instance is ever reused across two different callers.
package mcp

// ProtocolVersion is the MCP protocol version this implementation speaks.
const ProtocolVersion = "2024-11-05"

// JSONRPCVersion is the JSON-RPC version used by every envelope.
const JSONRPCVersion = "2.0"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// MCP-specific error codes, in the server-defined range.
const (
	CodeAuthError        = -32001
	CodeResourceNotFound = -32002
	CodeToolNotFound     = -32003
)

// Visibility controls whether a tool, resource, or prompt is registered for
// an anonymous (unverified) caller.
type Visibility int

const (
	// VisibilityAuthenticated is the default: only registered when the
	// caller's AuthContext is Verified.
	VisibilityAuthenticated Visibility = iota
	// VisibilityPublic is always registered, regardless of verification.
	VisibilityPublic
)

// ContentPart is one piece of a ToolResult's content sequence.
type ContentPart struct {
	Type string `json:"type"` // "text" or "image"

	// Text holds the part's text when Type == "text".
	Text string `json:"text,omitempty"`

	// MimeType and DataBase64 hold an inline image when Type == "image".
	MimeType   string `json:"mimeType,omitempty"`
	DataBase64 string `json:"data,omitempty"`
}

// TextContent builds a single text ContentPart.
func TextContent(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImageContent builds a single image ContentPart.
func ImageContent(mimeType, dataBase64 string) ContentPart {
	return ContentPart{Type: "image", MimeType: mimeType, DataBase64: dataBase64}
}

// ToolResult is what a tool handler returns. IsError distinguishes a
// business-level failure (e.g. a declined booking) from success; it is
// never used for protocol-level failures, which travel as JSON-RPC errors
// instead. A successful ToolResult's Content is never empty.
type ToolResult struct {
	IsError bool          `json:"isError"`
	Content []ContentPart `json:"content"`
}

// ErrorResult builds a ToolResult reporting a business-level failure.
func ErrorResult(message string) *ToolResult {
	return &ToolResult{IsError: true, Content: []ContentPart{TextContent(message)}}
}

// TextResult builds a successful ToolResult carrying a single text part.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentPart{TextContent(text)}}
}

// ResourceContentPayload is the body of a read resource, independent of the
// JSON-RPC envelope that carries it.
type ResourceContentPayload struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// PromptArgument describes one named input a prompt template accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// PromptMessage is one rendered message in a prompt's expansion.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content ContentPart `json:"content"`
}

// ToolDefinition, ResourceDefinition and PromptDefinition are the subset of a
// descriptor the client sees via tools/list, resources/list, or prompts/list;
// each descriptor's definition method builds them for the wire layer to marshal.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type ResourceDefinition struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type PromptDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}
