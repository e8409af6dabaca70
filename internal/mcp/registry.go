package mcp

import (
	"fmt"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
)

// Registry holds the tools, resources, and prompts visible to one caller.
// It is built fresh per request: construction filters the full candidate
// descriptor sets down to what ac.Verified allows, so there is never a
// shared, mutable, cross-request registry to reason about.
type Registry struct {
	tools     map[string]ToolDescriptor
	resources map[string]ResourceDescriptor
	prompts   map[string]PromptDescriptor
}

// NewRegistry builds the per-request Registry. visible(d.Visibility) is:
// always for VisibilityPublic, only when ac.Verified for
// VisibilityAuthenticated. Name/URI collisions among the descriptors visible
// to the caller are a construction-time error — they indicate a wiring bug in the
// candidate descriptor sets, not caller input.
func NewRegistry(ac *authctx.AuthContext, tools []ToolDescriptor, resources []ResourceDescriptor, prompts []PromptDescriptor) (*Registry, error) {
	verified := ac != nil && ac.Verified

	r := &Registry{
		tools:     make(map[string]ToolDescriptor),
		resources: make(map[string]ResourceDescriptor),
		prompts:   make(map[string]PromptDescriptor),
	}

	for _, t := range tools {
		if !visible(t.Visibility, verified) {
			continue
		}
		if _, exists := r.tools[t.Name]; exists {
			return nil, fmt.Errorf("mcp: duplicate tool name %q", t.Name)
		}
		r.tools[t.Name] = t
	}

	for _, res := range resources {
		if !visible(res.Visibility, verified) {
			continue
		}
		if _, exists := r.resources[res.URI]; exists {
			return nil, fmt.Errorf("mcp: duplicate resource uri %q", res.URI)
		}
		r.resources[res.URI] = res
	}

	for _, p := range prompts {
		if !visible(p.Visibility, verified) {
			continue
		}
		if _, exists := r.prompts[p.Name]; exists {
			return nil, fmt.Errorf("mcp: duplicate prompt name %q", p.Name)
		}
		r.prompts[p.Name] = p
	}

	return r, nil
}

func visible(v Visibility, verified bool) bool {
	return v == VisibilityPublic || verified
}

// ListTools returns definitions for every tool in this registry, which is
// exactly the set of tools invocable via tools/call for the same caller.
func (r *Registry) ListTools() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.definition())
	}
	return defs
}

// GetTool looks up a tool by name. Returns ErrToolNotFound when absent —
// callers must not distinguish "doesn't exist" from "exists but the caller
// can't see it", since the latter would leak protected tool names to
// unverified callers.
func (r *Registry) GetTool(name string) (ToolDescriptor, error) {
	t, ok := r.tools[name]
	if !ok {
		return ToolDescriptor{}, ErrToolNotFound
	}
	return t, nil
}

// ListResources returns definitions for every visible resource.
func (r *Registry) ListResources() []ResourceDefinition {
	defs := make([]ResourceDefinition, 0, len(r.resources))
	for _, res := range r.resources {
		defs = append(defs, res.definition())
	}
	return defs
}

// GetResource looks up a resource by URI. Returns ErrResourceNotFound when
// absent or not visible to this caller.
func (r *Registry) GetResource(uri string) (ResourceDescriptor, error) {
	res, ok := r.resources[uri]
	if !ok {
		return ResourceDescriptor{}, ErrResourceNotFound
	}
	return res, nil
}

// ListPrompts returns definitions for every visible prompt.
func (r *Registry) ListPrompts() []PromptDefinition {
	defs := make([]PromptDefinition, 0, len(r.prompts))
	for _, p := range r.prompts {
		defs = append(defs, p.definition())
	}
	return defs
}

// GetPrompt looks up a prompt by name. Returns ErrPromptNotFound when absent
// or not visible to this caller.
func (r *Registry) GetPrompt(name string) (PromptDescriptor, error) {
	p, ok := r.prompts[name]
	if !ok {
		return PromptDescriptor{}, ErrPromptNotFound
	}
	return p, nil
}
