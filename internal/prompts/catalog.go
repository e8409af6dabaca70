// Package prompts implements this server's prompt template engine: a
// declarative catalog of named templates, each with required and optional
// arguments, rendered by substituting {{var}} tokens. Substitution is
// unescaped by design — it is acceptable for LLM-facing text but is NOT
// safe to embed directly into HTML or JSON documents.
package prompts

import (
	"fmt"

	"github.com/voyagio/mcp-tenant-server/internal/mcp"
)

// Catalog returns the full set of prompt templates this server exposes.
// Every entry is VisibilityPublic: prompts describe how to phrase a
// request to an LLM, not tenant data, so there is no reason to gate them
// on verification the way tools and resources are gated.
func Catalog() []mcp.PromptDescriptor {
	return []mcp.PromptDescriptor{
		tripPlanner(),
		packingList(),
		loyaltyRedemption(),
	}
}

// tripPlanner demonstrates a required argument (destination), an optional
// one (budget), and a synthetic variable (budget_text) derived from it.
func tripPlanner() mcp.PromptDescriptor {
	return mcp.PromptDescriptor{
		Name:        "trip_planner",
		Description: "Drafts a trip-planning prompt for a destination, optionally budget-constrained.",
		Visibility:  mcp.VisibilityPublic,
		Arguments: []mcp.PromptArgument{
			{Name: "destination", Description: "Where the trip is to.", Required: true},
			{Name: "budget", Description: "An approximate budget, e.g. \"$2000\".", Required: false},
		},
		Template: "Plan a trip to {{destination}} with {{budget_text}}. Suggest flights, lodging, and a daily itinerary.",
		Synthesize: func(args map[string]string) map[string]string {
			budget := args["budget"]
			if budget == "" {
				return map[string]string{"budget_text": "no specific budget"}
			}
			return map[string]string{"budget_text": fmt.Sprintf("a budget of %s", budget)}
		},
	}
}

// packingList demonstrates a default synthesized when an optional
// argument (preferences) is omitted entirely.
func packingList() mcp.PromptDescriptor {
	return mcp.PromptDescriptor{
		Name:        "packing_list",
		Description: "Drafts a packing-list prompt for a destination and travel dates.",
		Visibility:  mcp.VisibilityPublic,
		Arguments: []mcp.PromptArgument{
			{Name: "destination", Description: "Where the trip is to.", Required: true},
			{Name: "date", Description: "Departure date, YYYY-MM-DD.", Required: true},
			{Name: "preferences", Description: "Packing preferences, e.g. \"carry-on only\".", Required: false},
		},
		Template: "Build a packing list for {{destination}} departing {{date}}, accounting for {{preferences_text}}.",
		Synthesize: func(args map[string]string) map[string]string {
			preferences := args["preferences"]
			if preferences == "" {
				preferences = "no special preferences"
			}
			return map[string]string{"preferences_text": preferences}
		},
	}
}

// loyaltyRedemption has no optional arguments at all, to show the engine
// degrades cleanly to plain substitution when Synthesize has nothing to
// add.
func loyaltyRedemption() mcp.PromptDescriptor {
	return mcp.PromptDescriptor{
		Name:        "loyalty_redemption",
		Description: "Drafts a prompt to suggest loyalty-point redemption options.",
		Visibility:  mcp.VisibilityPublic,
		Arguments: []mcp.PromptArgument{
			{Name: "points", Description: "Current loyalty point balance.", Required: true},
		},
		Template: "Suggest redemption options for a loyalty balance of {{points}} points.",
	}
}
