package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/voyagio/mcp-tenant-server/internal/authctx"
	"github.com/voyagio/mcp-tenant-server/internal/credentials"
	"github.com/voyagio/mcp-tenant-server/internal/mcp"
	"github.com/voyagio/mcp-tenant-server/internal/store"
)

// bookingKeyPrefix namespaces booking records within a tenant's partition.
const bookingKeyPrefix = "booking#"

// loyaltyKey is the fixed sort key for a tenant's loyalty balance record.
const loyaltyKey = "loyalty-balance"

// These domain tools are deliberately thin: the travel-booking business
// logic they'd front is out of scope. They exist to give the registry,
// dispatcher, tenant credential vendor, and tenant store something real to
// exercise end to end.

// ListBookingsDescriptor lists the calling tenant's bookings from the
// shared tenant store, proving the tenant credential vendor and the
// store's leading-key isolation are wired together: the vendor assumes a
// role tagged with the caller's tenantId before the store is queried. The
// assumed credentials are discarded; the query runs through the store's own
// client.
func ListBookingsDescriptor(s *store.Store, vendor *credentials.Vendor) mcp.ToolDescriptor {
	return mcp.ToolDescriptor{
		Name:        "list_bookings",
		Description: "Lists the calling tenant's travel bookings.",
		Schema:      mcp.Schema{},
		Visibility:  mcp.VisibilityAuthenticated,
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*mcp.ToolResult, error) {
			if _, err := vendor.AssumeForTenant(ctx, ac.TenantID); err != nil {
				return nil, fmt.Errorf("tools: assume tenant role: %w", err)
			}

			items, err := s.List(ctx, ac.TenantID, bookingKeyPrefix)
			if err != nil {
				return nil, err
			}

			bookings := make([]map[string]interface{}, 0, len(items))
			for _, item := range items {
				bookings = append(bookings, item.Value)
			}

			body, err := json.Marshal(map[string]any{"tenantId": ac.TenantID, "bookings": bookings})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult(string(body)), nil
		},
	}
}

// findFlightsSchema describes find_flights' input.
func findFlightsSchema() mcp.Schema {
	minGuests, maxGuests := mcp.IntBounds(1, 9)
	return mcp.Schema{
		"origin":      mcp.Field{Type: mcp.TypeString, Required: true, Description: "Origin airport or city code."},
		"destination": mcp.Field{Type: mcp.TypeString, Required: true, Description: "Destination airport or city code."},
		"date":        mcp.Field{Type: mcp.TypeDate, Required: true, Description: "Departure date, YYYY-MM-DD."},
		"passengers":  mcp.Field{Type: mcp.TypeInteger, Min: minGuests, Max: maxGuests, Description: "Passenger count, defaults to 1."},
	}
}

// FindFlightsDescriptor returns a deterministic, synthetic set of flight
// options for the given search — no external flight inventory is wired
// up, per the non-goal on domain business logic.
func FindFlightsDescriptor() mcp.ToolDescriptor {
	return mcp.ToolDescriptor{
		Name:        "find_flights",
		Description: "Searches for flights between an origin and destination on a given date.",
		Schema:      findFlightsSchema(),
		Visibility:  mcp.VisibilityAuthenticated,
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*mcp.ToolResult, error) {
			origin, _ := args["origin"].(string)
			destination, _ := args["destination"].(string)
			date, _ := args["date"].(string)

			options := []map[string]any{
				{"flightNumber": "VY100", "origin": origin, "destination": destination, "date": date, "priceUSD": 219},
				{"flightNumber": "VY204", "origin": origin, "destination": destination, "date": date, "priceUSD": 284},
			}

			body, err := json.Marshal(map[string]any{"tenantId": ac.TenantID, "options": options})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult(string(body)), nil
		},
	}
}

// GetLoyaltyBalanceDescriptor reads the calling tenant's loyalty point
// balance from the tenant store, defaulting to zero when no record exists
// yet.
func GetLoyaltyBalanceDescriptor(s *store.Store) mcp.ToolDescriptor {
	return mcp.ToolDescriptor{
		Name:        "get_loyalty_balance",
		Description: "Reports the calling tenant's loyalty point balance.",
		Schema:      mcp.Schema{},
		Visibility:  mcp.VisibilityAuthenticated,
		Handler: func(ctx context.Context, args map[string]any, ac *authctx.AuthContext) (*mcp.ToolResult, error) {
			item, err := s.Get(ctx, ac.TenantID, loyaltyKey)
			if err != nil {
				return nil, err
			}

			points := 0
			if item != nil {
				if p, ok := item.Value["points"].(float64); ok {
					points = int(p)
				}
			}

			body, err := json.Marshal(map[string]any{"tenantId": ac.TenantID, "points": points})
			if err != nil {
				return nil, err
			}
			return mcp.TextResult(string(body)), nil
		},
	}
}
