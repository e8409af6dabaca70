package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
)

// ServerInfo is the static identity the server reports on initialize.
type ServerInfo struct {
	Name    string
	Version string
}

// capabilitiesResult advertises which top-level method families this server
// implements.
type capabilitiesResult struct {
	Tools     *struct{} `json:"tools,omitempty"`
	Resources *struct{} `json:"resources,omitempty"`
	Prompts   *struct{} `json:"prompts,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string `json:"protocolVersion"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
	Capabilities capabilitiesResult `json:"capabilities"`
}

type toolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

type toolsCallResult struct {
	IsError bool          `json:"isError"`
	Content []ContentPart `json:"content"`
}

type resourcesListResult struct {
	Resources []ResourceDefinition `json:"resources"`
}

type resourcesReadResult struct {
	Contents []ResourceContentPayload `json:"contents"`
}

type resourcesReadParams struct {
	URI string `json:"uri"`
}

type promptsListResult struct {
	Prompts []PromptDefinition `json:"prompts"`
}

type promptsGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

type promptsGetResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// Dispatcher routes JSON-RPC requests to the registry bound to one request's
// AuthContext. It is constructed fresh per HTTP request and never shared
// across two callers; its whole life is constructed, connected to a
// transport, closed.
type Dispatcher struct {
	ac          *authctx.AuthContext
	registry    *Registry
	info        ServerInfo
	initialized bool
}

// NewDispatcher builds a Dispatcher bound to ac and reg. Both must already
// reflect the caller this request is for.
func NewDispatcher(ac *authctx.AuthContext, reg *Registry, info ServerInfo) *Dispatcher {
	return &Dispatcher{ac: ac, registry: reg, info: info}
}

// HandleRequest routes a single JSON-RPC request. Returns a nil *Response
// (and nil error) for a notification, per JSON-RPC 2.0 semantics — the
// transport must not emit a frame for it.
func (d *Dispatcher) HandleRequest(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return errorResponse(nil, CodeInvalidRequest, "request cannot be nil", nil), nil
	}
	if err := req.Validate(); err != nil {
		return errorResponse(req.ID, CodeInvalidRequest, "invalid request", err.Error()), nil
	}

	switch req.Method {
	case "initialize":
		return d.handleInitialize(req)
	case "notifications/initialized":
		d.initialized = true
		return nil, nil
	case "tools/list":
		return d.handleToolsList(req)
	case "tools/call":
		return d.handleToolsCall(ctx, req)
	case "resources/list":
		return d.handleResourcesList(req)
	case "resources/read":
		return d.handleResourcesRead(ctx, req)
	case "prompts/list":
		return d.handlePromptsList(req)
	case "prompts/get":
		return d.handlePromptsGet(req)
	default:
		if req.IsNotification() {
			return nil, nil
		}
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil), nil
	}
}

func (d *Dispatcher) handleInitialize(req *Request) (*Response, error) {
	result := initializeResult{ProtocolVersion: ProtocolVersion}
	result.ServerInfo.Name = d.info.Name
	result.ServerInfo.Version = d.info.Version
	result.Capabilities = capabilitiesResult{
		Tools:     &struct{}{},
		Resources: &struct{}{},
		Prompts:   &struct{}{},
	}
	return successResponse(req.ID, result), nil
}

func (d *Dispatcher) handleToolsList(req *Request) (*Response, error) {
	return successResponse(req.ID, toolsListResult{Tools: d.registry.ListTools()}), nil
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Params) == 0 {
		return errorResponse(req.ID, CodeInvalidParams, "params required", nil), nil
	}

	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid tools/call params", err.Error()), nil
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "tool name is required", nil), nil
	}

	tool, err := d.registry.GetTool(params.Name)
	if err != nil {
		return errorResponse(req.ID, CodeToolNotFound, fmt.Sprintf("tool not found: %s", params.Name), nil), nil
	}

	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}
	if err := tool.Schema.Validate(params.Arguments); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid arguments", err.Error()), nil
	}

	result, err := tool.Handler(ctx, params.Arguments, d.ac)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError, "tool execution failed", err.Error()), nil
	}
	if result == nil {
		return errorResponse(req.ID, CodeInternalError, "tool returned no result", nil), nil
	}

	return successResponse(req.ID, toolsCallResult{IsError: result.IsError, Content: result.Content}), nil
}

func (d *Dispatcher) handleResourcesList(req *Request) (*Response, error) {
	return successResponse(req.ID, resourcesListResult{Resources: d.registry.ListResources()}), nil
}

func (d *Dispatcher) handleResourcesRead(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Params) == 0 {
		return errorResponse(req.ID, CodeInvalidParams, "params required", nil), nil
	}

	var params resourcesReadParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid resources/read params", err.Error()), nil
	}
	if params.URI == "" {
		return errorResponse(req.ID, CodeInvalidParams, "resource uri is required", nil), nil
	}

	res, err := d.registry.GetResource(params.URI)
	if err != nil {
		return errorResponse(req.ID, CodeResourceNotFound, fmt.Sprintf("resource not found: %s", params.URI), nil), nil
	}

	payload, err := res.Handler(ctx, d.ac)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError, "failed to read resource", err.Error()), nil
	}
	if payload.URI == "" {
		payload.URI = res.URI
	}

	return successResponse(req.ID, resourcesReadResult{Contents: []ResourceContentPayload{*payload}}), nil
}

func (d *Dispatcher) handlePromptsList(req *Request) (*Response, error) {
	return successResponse(req.ID, promptsListResult{Prompts: d.registry.ListPrompts()}), nil
}

func (d *Dispatcher) handlePromptsGet(req *Request) (*Response, error) {
	if len(req.Params) == 0 {
		return errorResponse(req.ID, CodeInvalidParams, "params required", nil), nil
	}

	var params promptsGetParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid prompts/get params", err.Error()), nil
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "prompt name is required", nil), nil
	}

	prompt, err := d.registry.GetPrompt(params.Name)
	if err != nil {
		if errors.Is(err, ErrPromptNotFound) {
			return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("prompt not found: %s", params.Name), nil), nil
		}
		return errorResponse(req.ID, CodeInternalError, "failed to load prompt", err.Error()), nil
	}

	for _, arg := range prompt.Arguments {
		if arg.Required {
			if _, ok := params.Arguments[arg.Name]; !ok {
				return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("missing required argument %q", arg.Name), nil), nil
			}
		}
	}

	rendered := prompt.Render(params.Arguments)
	result := promptsGetResult{
		Description: prompt.Description,
		Messages: []PromptMessage{
			{Role: "user", Content: TextContent(rendered)},
		},
	}
	return successResponse(req.ID, result), nil
}
