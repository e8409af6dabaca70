package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/voyagio/mcp-tenant-server/internal/mcp"
)

// healthResponse is the process metadata reported by /health.
type healthResponse struct {
	Status          string `json:"status"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocolVersion"`
	UptimeSeconds   int64  `json:"uptimeSeconds"`
}

// healthHandler serves process metadata. It bypasses authentication
// entirely: load balancers and orchestration probes call it without
// credentials.
type healthHandler struct {
	info    mcp.ServerInfo
	started time.Time
}

// NewHealthHandler creates a handler for the /health endpoint.
func NewHealthHandler(info mcp.ServerInfo) http.Handler {
	return &healthHandler{
		info:    info,
		started: time.Now(),
	}
}

// ServeHTTP handles GET requests for health checks.
// Only GET method is allowed.
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := healthResponse{
		Status:          "ok",
		Name:            h.info.Name,
		Version:         h.info.Version,
		ProtocolVersion: mcp.ProtocolVersion,
		UptimeSeconds:   int64(time.Since(h.started).Seconds()),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}
