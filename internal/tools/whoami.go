// Package tools implements the concrete MCP tool handlers this server
// exposes: the always-available whoami diagnostic and a thin set of
// domain tool stubs exercising the credential vendor and tenant store.
package tools

import (
	"context"
	"encoding/json"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
)

// whoamiUserInfo reports what the verifier learned about the caller's
// identity, read from the decoded claim set rather than from
// AuthContext.UserID/TenantID — those are deliberately blank on an
// unverified context, but whoami's purpose is to report the claims anyway
// so a caller can see what an untrusted token claims before it is trusted.
type whoamiUserInfo struct {
	UserID     string `json:"userId,omitempty"`
	TenantID   string `json:"tenantId,omitempty"`
	TenantTier string `json:"tenantTier,omitempty"`
}

type whoamiTokenInfo struct {
	Present    bool `json:"present"`
	IsUnsigned bool `json:"isUnsigned"`
}

type whoamiReport struct {
	Authenticated bool            `json:"authenticated"`
	Reason        string          `json:"reason,omitempty"`
	UserInfo      whoamiUserInfo  `json:"userInfo"`
	TokenInfo     whoamiTokenInfo `json:"tokenInfo"`
}

// unsignedReason matches the jwtauth classification for a structurally
// decodable but unsigned token (missing/none alg, or no kid).
const unsignedReason = "unsigned-token-not-accepted"

// WhoamiDescriptor builds the always-public whoami tool. It never consults
// anything beyond the AuthContext handed to it by the dispatcher: a
// process-global last-seen-header fallback would race under concurrent
// requests.
func WhoamiDescriptor() mcp.ToolDescriptor {
	return mcp.ToolDescriptor{
		Name:        "whoami",
		Description: "Reports the caller's authentication status and the claims in the presented token, trusted or not.",
		Schema:      mcp.Schema{},
		Visibility:  mcp.VisibilityPublic,
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*mcp.ToolResult, error) {
			report := whoamiReport{
				Authenticated: ac.Verified,
				Reason:        ac.Reason,
				TokenInfo: whoamiTokenInfo{
					Present:    ac.RawToken != "",
					IsUnsigned: ac.Reason == unsignedReason,
				},
			}

			if ac.Verified {
				report.UserInfo = whoamiUserInfo{
					UserID:     ac.UserID,
					TenantID:   ac.TenantID,
					TenantTier: ac.TenantTier,
				}
			} else if ac.Claims != nil {
				sub, _ := ac.Claims["sub"].(string)
				tenantID, _ := ac.Claims["custom:tenantId"].(string)
				if tenantID == "" {
					tenantID, _ = ac.Claims["tenantId"].(string)
				}
				tier, _ := ac.Claims["custom:tenantTier"].(string)
				report.UserInfo = whoamiUserInfo{UserID: sub, TenantID: tenantID, TenantTier: tier}
			}

			body, err := json.Marshal(report)
			if err != nil {
				return nil, err
			}
			return mcp.TextResult(string(body)), nil
		},
	}
}
