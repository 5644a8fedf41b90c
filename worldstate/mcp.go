package worldstate

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ffhgterh111-hub/LFGWarframeMain/kit"
)

// RegisterMCP registers the worldstate tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	ep := s.endpoints()

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "worldstate_current",
		Description: "Return the latest value of a category: fissures, steelpath or arbitration.",
		InputSchema: kit.InputSchema(map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "fissures, steelpath or arbitration",
			},
		}, []string{"category"}),
	}, ep.current, kit.DecodeArgs[currentRequest]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "worldstate_status",
		Description: "Report the last scrape, a per-category summary and the pipeline counters.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}, ep.status, kit.DecodeArgs[struct{}]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "worldstate_refresh",
		Description: "Scrape both sources now and return the resulting status. Rate limited.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}, ep.refresh, kit.DecodeArgs[struct{}]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "worldstate_tier",
		Description: "Find the active or next arbitration of a tier (S to F).",
		InputSchema: kit.InputSchema(map[string]any{
			"tier": map[string]any{
				"type":        "string",
				"description": "Tier letter",
				"enum":        []string{"S", "A", "B", "C", "D", "F"},
			},
		}, []string{"tier"}),
	}, ep.tier, kit.DecodeArgs[tierRequest]())
}
