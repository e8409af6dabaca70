package mcp

import (
	"context"
	"strings"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
)

// ToolHandler executes a tool call. ac is always the caller's current
// AuthContext, verified or not; handlers that need the raw bearer token or
// the verifier's classification reason (whoami's entire purpose) read them
// off ac rather than from any process-global state.
type ToolHandler func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*ToolResult, error)

// ToolDescriptor is a named, schema-validated, access-controlled tool.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      Schema
	Visibility  Visibility
	Handler     ToolHandler
}

func (t ToolDescriptor) definition() ToolDefinition {
	return ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.Schema.JSONSchema(),
	}
}

// ResourceHandler resolves a resource read. ac lets a tenant-scoped
// resource (e.g. the travel policy object) derive a bucket path or other
// tenant-specific location.
type ResourceHandler func(ctx context.Context, ac *authctx.AuthContext) (*ResourceContentPayload, error)

// ResourceDescriptor is a named, access-controlled resource.
type ResourceDescriptor struct {
	Name        string
	URI         string
	Description string
	MimeType    string
	Visibility  Visibility
	Handler     ResourceHandler
}

func (r ResourceDescriptor) definition() ResourceDefinition {
	return ResourceDefinition{
		URI:         r.URI,
		Name:        r.Name,
		Description: r.Description,
		MimeType:    r.MimeType,
	}
}

// PromptDescriptor is a named prompt template. Render substitutes {{var}}
// placeholders; it is pure, so the same (Template, arguments) always
// produces the same string. {{var}} substitution is unescaped by design —
// this is acceptable for LLM-facing text but is NOT safe to embed directly
// into HTML or JSON documents.
type PromptDescriptor struct {
	Name        string
	Description string
	Arguments   []PromptArgument
	Template    string
	Visibility  Visibility

	// Synthesize computes derived variables from the caller-supplied
	// arguments before substitution (e.g. a budget_text derived from an
	// optional budget, or a default value for an omitted optional
	// argument). May be nil.
	Synthesize func(args map[string]string) map[string]string
}

func (p PromptDescriptor) definition() PromptDefinition {
	return PromptDefinition{
		Name:        p.Name,
		Description: p.Description,
		Arguments:   p.Arguments,
	}
}

// Render substitutes {{var}} tokens in the template with args, after first
// merging in any variables Synthesize derives. Render is pure: the same
// (Template, args) pair always produces the same string.
func (p PromptDescriptor) Render(args map[string]string) string {
	vars := make(map[string]string, len(args))
	for k, v := range args {
		vars[k] = v
	}
	if p.Synthesize != nil {
		for k, v := range p.Synthesize(args) {
			vars[k] = v
		}
	}
	return substitute(p.Template, vars)
}

func substitute(template string, vars map[string]string) string {
	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		name := rest[start+2 : start+2+end]
		if val, ok := vars[name]; ok {
			b.WriteString(val)
		}
		rest = rest[start+2+end+2:]
	}
	return b.String()
}
