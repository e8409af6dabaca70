// Package transport provides the HTTP transport layer for the stateless
// multi-tenant MCP server.
//
// # Architecture
//
// The transport package implements the request pipeline that connects JWT
// classification with MCP protocol dispatch. Every request is self-contained:
// the pipeline builds a fresh AuthContext, registry, and dispatcher per POST
// and tears them down when the response closes. There is no session table and
// no cross-request state beyond the process-lived JWKS cache.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport domain errors
//	├── wire.go                   # Factory functions
//	├── internal/
//	│   ├── http/
//	│   │   ├── server.go         # HTTP server with graceful shutdown
//	│   │   ├── router.go         # HTTP routing
//	│   │   └── response.go       # JSON-RPC-shaped error responder
//	│   ├── middleware/
//	│   │   ├── logging.go        # Request logging with correlation ids
//	│   │   └── recovery.go       # Panic recovery
//	│   └── handlers/
//	│       ├── mcp.go            # MCP protocol endpoint
//	│       └── health.go         # Health check endpoint
//
// # Request Pipeline
//
// A POST /mcp request flows through, in order:
//
//  1. Recovery - catches panics and returns 500 errors
//  2. CORS - allows any origin; answers preflight OPTIONS
//  3. Logging - logs request details with a uuid correlation id
//  4. Body limit - oversize bodies rejected with 413 before parsing
//  5. Envelope parse - a single JSON-RPC object or a batch array
//  6. Token classification - absent / unsigned / signed-valid / signed-invalid
//  7. Auth preflight - non-public methods require a verified token
//  8. Dispatch - a per-request dispatcher bound to this caller's AuthContext
//  9. Emission - one application/json body, or one SSE frame per response
//     when the client advertises Accept: text/event-stream
//
// # Method Policy
//
// GET and DELETE on /mcp always answer 405 with Allow: POST. The server is
// strictly stateless: there is no resumable SSE stream for GET to reattach
// and no session for DELETE to end.
//
// The public method set tolerates missing, malformed, and unsigned tokens:
// initialize, notifications/initialized, tools/list, and any tools/call whose
// tool name is itself public. Membership is computed per (method, tool-name)
// pair, not per method. All other requests require a verified token and fail
// with 401 carrying a stable machine-readable reason.
//
// A tools/call naming a protected tool under an anonymous-class token is
// dispatched rather than rejected: the per-request registry contains no
// protected tools for that caller, so the lookup reports tool-not-found
// without revealing whether the name exists.
//
// # Error Handling
//
// Transport-level failures (401, 405, 413, 500) carry JSON-RPC-shaped error
// envelopes so clients run one decode path. Protocol-level failures (parse
// errors, unknown methods, bad params) travel as JSON-RPC errors inside a
// 200 response. Business-level tool failures travel as ToolResults with
// isError set, preserving the normal response channel.
//
// 401 Unauthorized:
//
//	HTTP/1.1 401 Unauthorized
//	Content-Type: application/json
//
//	{"jsonrpc":"2.0","error":{"code":-32001,"message":"token is expired","data":{"reason":"token-expired"}}}
//
// 405 Method Not Allowed:
//
//	HTTP/1.1 405 Method Not Allowed
//	Allow: POST
//	Content-Type: application/json
//
//	{"jsonrpc":"2.0","error":{"code":-32600,"message":"method not allowed","data":{"allow":"POST"}}}
//
// # Usage Example
//
//	cfg := &transport.Config{
//		ServerConfig: serverConfig,
//		Verifier:     verifier,
//		Catalog:      catalog,
//		ServerInfo:   mcp.ServerInfo{Name: "mcp-tenant-server", Version: version},
//	}
//
//	server, _, err := transport.NewTransportServices(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := server.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	if err := server.Shutdown(ctx); err != nil {
//		log.Printf("shutdown error: %v", err)
//	}
//
// # Endpoints
//
//   - GET /health - process metadata, no authentication
//   - POST /mcp - MCP protocol (JSON-RPC 2.0), conditional authentication
//   - GET, DELETE /mcp - 405 with Allow: POST
package transport
