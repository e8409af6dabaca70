package prompts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
)

// ListPromptsToolDescriptor registers list_prompts as a public tool,
// mirroring prompts/list for a dispatcher or client that only speaks the
// tools/* vocabulary. It re-derives its own visibility-filtered view from
// catalog on every call rather than capturing one filtered snapshot, so it
// stays correct if a future prompt is added with VisibilityAuthenticated.
func ListPromptsToolDescriptor(catalog []mcp.PromptDescriptor) mcp.ToolDescriptor {
	return mcp.ToolDescriptor{
		Name:        "list_prompts",
		Description: "Lists the prompt templates available to the caller.",
		Schema:      mcp.Schema{},
		Visibility:  mcp.VisibilityPublic,
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*mcp.ToolResult, error) {
			reg, err := mcp.NewRegistry(ac, nil, nil, catalog)
			if err != nil {
				return nil, err
			}

			body, err := json.Marshal(map[string]any{"prompts": reg.ListPrompts()})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult(string(body)), nil
		},
	}
}

type getPromptArgs struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

// GetPromptToolDescriptor registers get_prompt as a public tool mirroring
// prompts/get. Arguments arrive nested one level in (args.name,
// args.arguments) since tool call arguments are always a flat
// map[string]any, unlike the native prompts/get JSON-RPC params.
func GetPromptToolDescriptor(catalog []mcp.PromptDescriptor) mcp.ToolDescriptor {
	return mcp.ToolDescriptor{
		Name:        "get_prompt",
		Description: "Renders a named prompt template with the given arguments.",
		Schema: mcp.Schema{
			"name": mcp.Field{Type: mcp.TypeString, Required: true, Description: "The prompt template name."},
		},
		Visibility: mcp.VisibilityPublic,
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*mcp.ToolResult, error) {
			raw, err := json.Marshal(args)
			if err != nil {
				return nil, err
			}
			var parsed getPromptArgs
			if err := json.Unmarshal(raw, &parsed); err != nil {
				return mcp.ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			if parsed.Name == "" {
				return mcp.ErrorResult("argument \"name\" is required"), nil
			}

			reg, err := mcp.NewRegistry(ac, nil, nil, catalog)
			if err != nil {
				return nil, err
			}

			prompt, err := reg.GetPrompt(parsed.Name)
			if err != nil {
				if errors.Is(err, mcp.ErrPromptNotFound) {
					return mcp.ErrorResult(fmt.Sprintf("prompt not found: %s", parsed.Name)), nil
				}
				return nil, err
			}

			for _, arg := range prompt.Arguments {
				if arg.Required {
					if _, ok := parsed.Arguments[arg.Name]; !ok {
						return mcp.ErrorResult(fmt.Sprintf("missing required argument %q", arg.Name)), nil
					}
				}
			}

			rendered := prompt.Render(parsed.Arguments)
			body, err := json.Marshal(map[string]any{
				"name":        prompt.Name,
				"description": prompt.Description,
				"rendered":    rendered,
			})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult(string(body)), nil
		},
	}
}
