package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
	domainerrors "github.com/voyagio/mcp-tenant-server/internal/errors"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
)

func callWhoami(t *testing.T, ac *authctx.AuthContext) whoamiReport {
	t.Helper()
	tool := WhoamiDescriptor()
	result, err := tool.Handler(context.Background(), map[string]any{}, ac)
	if err != nil {
		t.Fatalf("whoami handler error = %v", err)
	}
	if result.IsError {
		t.Fatalf("whoami handler returned isError result: %+v", result)
	}
	if len(result.Content) != 1 {
		t.Fatalf("whoami handler content = %+v, want exactly one part", result.Content)
	}

	var report whoamiReport
	if err := json.Unmarshal([]byte(result.Content[0].Text), &report); err != nil {
		t.Fatalf("whoami report not valid JSON: %v", err)
	}
	return report
}

// TestWhoami_UnsignedToken matches spec's "anonymous whoami with unsigned
// token" scenario: an unverified-but-decodable token still surfaces its
// claimed tenant id and is flagged as unsigned.
func TestWhoami_UnsignedToken(t *testing.T) {
	t.Parallel()
	ac := authctx.Anonymous(domainerrors.ReasonUnsignedNotOK)
	ac.RawToken = "eyJhbGciOiJub25lIn0.eyJzdWIiOiJ1c2VyMSJ9."
	ac.Claims = map[string]interface{}{"sub": "user1", "custom:tenantId": "ABC123"}

	report := callWhoami(t, ac)

	if report.Authenticated {
		t.Errorf("Authenticated = true, want false")
	}
	if !report.TokenInfo.IsUnsigned {
		t.Errorf("TokenInfo.IsUnsigned = false, want true")
	}
	if report.UserInfo.TenantID != "ABC123" {
		t.Errorf("UserInfo.TenantID = %q, want ABC123", report.UserInfo.TenantID)
	}
}

func TestWhoami_Verified(t *testing.T) {
	t.Parallel()
	ac := &authctx.AuthContext{
		Verified:   true,
		UserID:     "user1",
		TenantID:   "ABC123",
		TenantTier: "basic",
		RawToken:   "signed.jwt.token",
	}

	report := callWhoami(t, ac)

	if !report.Authenticated {
		t.Errorf("Authenticated = false, want true")
	}
	if report.UserInfo.TenantID != "ABC123" {
		t.Errorf("UserInfo.TenantID = %q, want ABC123", report.UserInfo.TenantID)
	}
	if report.TokenInfo.IsUnsigned {
		t.Errorf("TokenInfo.IsUnsigned = true, want false for a verified token")
	}
}

func TestWhoami_NoToken(t *testing.T) {
	t.Parallel()
	ac := authctx.Anonymous(domainerrors.ReasonMissingToken)

	report := callWhoami(t, ac)

	if report.Authenticated {
		t.Errorf("Authenticated = true, want false")
	}
	if report.TokenInfo.Present {
		t.Errorf("TokenInfo.Present = true, want false with no token at all")
	}
}

func TestWhoamiDescriptor_AlwaysPublic(t *testing.T) {
	t.Parallel()
	if got := WhoamiDescriptor().Visibility; got != mcp.VisibilityPublic {
		t.Errorf("Visibility = %v, want VisibilityPublic", got)
	}
}
