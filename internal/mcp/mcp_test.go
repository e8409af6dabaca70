package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
)

func whoamiTool() ToolDescriptor {
	return ToolDescriptor{
		Name:       "whoami",
		Visibility: VisibilityPublic,
		Schema:     Schema{},
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*ToolResult, error) {
			return TextResult(ac.UserID), nil
		},
	}
}

func protectedTool() ToolDescriptor {
	return ToolDescriptor{
		Name:       "list_bookings",
		Visibility: VisibilityAuthenticated,
		Schema:     Schema{},
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*ToolResult, error) {
			return TextResult("booking-" + ac.TenantID), nil
		},
	}
}

func testCatalog() Catalog {
	return Catalog{Tools: []ToolDescriptor{whoamiTool(), protectedTool()}}
}

func TestRegistry_VisibilityGating_Anonymous(t *testing.T) {
	t.Parallel()
	ac := authctx.Anonymous("missing-token")

	reg, err := NewRegistry(ac, testCatalog().Tools, nil, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tools := reg.ListTools()
	if len(tools) != 1 || tools[0].Name != "whoami" {
		t.Fatalf("ListTools() = %+v, want only whoami", tools)
	}

	if _, err := reg.GetTool("list_bookings"); err == nil {
		t.Fatalf("GetTool(list_bookings) succeeded for anonymous caller")
	}
}

func TestRegistry_VisibilityGating_Verified(t *testing.T) {
	t.Parallel()
	ac := &authctx.AuthContext{Verified: true, UserID: "u1", TenantID: "t1"}

	reg, err := NewRegistry(ac, testCatalog().Tools, nil, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if len(reg.ListTools()) != 2 {
		t.Fatalf("ListTools() = %d tools, want 2", len(reg.ListTools()))
	}
	if _, err := reg.GetTool("list_bookings"); err != nil {
		t.Fatalf("GetTool(list_bookings) error = %v, want nil for verified caller", err)
	}
}

// TestDispatcher_ProtectedTool_NotFound_NotForbidden asserts that calling a
// protected tool unverified yields tool-not-found, never a distinct
// forbidden error.
func TestDispatcher_ProtectedTool_NotFound_NotForbidden(t *testing.T) {
	t.Parallel()
	ac := authctx.Anonymous("missing-token")
	d, err := NewDispatcherForRequest(ac, testCatalog(), ServerInfo{Name: "test", Version: "0"})
	if err != nil {
		t.Fatalf("NewDispatcherForRequest() error = %v", err)
	}

	params, _ := json.Marshal(toolCallParams{Name: "list_bookings", Arguments: map[string]any{}})
	req := &Request{JSONRPC: JSONRPCVersion, ID: 1, Method: "tools/call", Params: params}

	resp, err := d.HandleRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleRequest() error = %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeToolNotFound {
		t.Fatalf("HandleRequest() = %+v, want tool-not-found error", resp)
	}
}

func TestDispatcher_Whoami_AlwaysInvocable(t *testing.T) {
	t.Parallel()
	for _, ac := range []*authctx.AuthContext{
		authctx.Anonymous("missing-token"),
		{Verified: true, UserID: "u1", TenantID: "t1"},
	} {
		d, err := NewDispatcherForRequest(ac, testCatalog(), ServerInfo{Name: "test", Version: "0"})
		if err != nil {
			t.Fatalf("NewDispatcherForRequest() error = %v", err)
		}

		params, _ := json.Marshal(toolCallParams{Name: "whoami", Arguments: map[string]any{}})
		req := &Request{JSONRPC: JSONRPCVersion, ID: 1, Method: "tools/call", Params: params}

		resp, err := d.HandleRequest(context.Background(), req)
		if err != nil {
			t.Fatalf("HandleRequest() error = %v", err)
		}
		if resp.IsError() {
			t.Fatalf("HandleRequest(whoami) = %+v, want success for verified=%v", resp, ac.Verified)
		}
	}
}

func TestDispatcher_NotificationsInitialized_NoResponse(t *testing.T) {
	t.Parallel()
	d, err := NewDispatcherForRequest(authctx.Anonymous("missing-token"), testCatalog(), ServerInfo{})
	if err != nil {
		t.Fatalf("NewDispatcherForRequest() error = %v", err)
	}

	req := &Request{JSONRPC: JSONRPCVersion, Method: "notifications/initialized"}
	resp, err := d.HandleRequest(context.Background(), req)
	if err != nil || resp != nil {
		t.Fatalf("HandleRequest(notification) = %+v, %v, want nil, nil", resp, err)
	}
}

func TestIsPublicMethod(t *testing.T) {
	t.Parallel()
	cases := []struct {
		method string
		params json.RawMessage
		want   bool
	}{
		{"tools/list", nil, true},
		{"initialize", nil, true},
		{"tools/call", mustMarshal(toolCallParams{Name: "whoami"}), true},
		{"tools/call", mustMarshal(toolCallParams{Name: "list_bookings"}), false},
		{"resources/read", nil, false},
	}

	for _, tc := range cases {
		if got := IsPublicMethod(tc.method, tc.params); got != tc.want {
			t.Errorf("IsPublicMethod(%q, %s) = %v, want %v", tc.method, tc.params, got, tc.want)
		}
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func TestSchema_Validate(t *testing.T) {
	t.Parallel()
	min, max := 1, 10
	s := Schema{
		"destination": Field{Type: TypeString, Required: true},
		"date":        Field{Type: TypeDate, Required: true},
		"guests":      Field{Type: TypeInteger, Min: &min, Max: &max},
		"class":       Field{Type: TypeEnum, Enum: []string{"economy", "business"}},
	}

	if err := s.Validate(map[string]any{"destination": "NYC", "date": "2026-01-02"}); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	if err := s.Validate(map[string]any{"date": "2026-01-02"}); err == nil {
		t.Fatalf("Validate() = nil, want error for missing required destination")
	}

	if err := s.Validate(map[string]any{"destination": "NYC", "date": "not-a-date"}); err == nil {
		t.Fatalf("Validate() = nil, want error for malformed date")
	}

	if err := s.Validate(map[string]any{"destination": "NYC", "date": "2026-01-02", "guests": float64(20)}); err == nil {
		t.Fatalf("Validate() = nil, want error for out-of-bounds guests")
	}

	if err := s.Validate(map[string]any{"destination": "NYC", "date": "2026-01-02", "class": "first"}); err == nil {
		t.Fatalf("Validate() = nil, want error for invalid enum value")
	}
}

func TestPromptDescriptor_Render_Pure(t *testing.T) {
	t.Parallel()
	p := PromptDescriptor{
		Template: "Plan a trip to {{destination}} with {{budget_text}}.",
		Synthesize: func(args map[string]string) map[string]string {
			budget := args["budget"]
			if budget == "" {
				return map[string]string{"budget_text": "no specific budget"}
			}
			return map[string]string{"budget_text": "a budget of " + budget}
		},
	}

	args := map[string]string{"destination": "Tokyo", "budget": "$2000"}
	want := p.Render(args)
	got := p.Render(args)
	if got != want {
		t.Fatalf("Render() not pure: %q != %q", got, want)
	}
	if want != "Plan a trip to Tokyo with a budget of $2000." {
		t.Fatalf("Render() = %q", want)
	}
}

func TestResult_SuccessfulNonEmpty(t *testing.T) {
	t.Parallel()
	result := TextResult("ok")
	if len(result.Content) == 0 {
		t.Fatalf("TextResult().Content is empty")
	}
}
