package mcp

import "github.com/voyagio/mcp-tenant-server/internal/authctx"

// Catalog is the full, unfiltered candidate set of tools, resources, and
// prompts this server can expose. It is built once at process start (it
// does not depend on any caller) and handed to NewDispatcherForRequest on
// every request, which filters it down per AuthContext.
type Catalog struct {
	Tools     []ToolDescriptor
	Resources []ResourceDescriptor
	Prompts   []PromptDescriptor
}

// NewDispatcherForRequest builds the per-request Registry and Dispatcher
// for one caller. Nothing built here outlives the request.
func NewDispatcherForRequest(ac *authctx.AuthContext, catalog Catalog, info ServerInfo) (*Dispatcher, error) {
	registry, err := NewRegistry(ac, catalog.Tools, catalog.Resources, catalog.Prompts)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(ac, registry, info), nil
}
