// ABOUTME: MCP tool definitions and registration for the story synthesis server
// ABOUTME: Defines JSON schemas for the synthesis and backend inspection tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/core"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, pipeline *core.Pipeline, registry *backend.Registry) *Handlers {
	handlers := &Handlers{
		pipeline: pipeline,
		registry: registry,
	}

	// 1. synthesize_story - Run a full transcript through the pipeline
	server.AddTool(mcp.Tool{
		Name:        "synthesize_story",
		Description: "Turn a tabletop session transcript into one coherent narrated story. Segments the transcript, narrates each segment with backend failover, and returns the synthesized story with a completeness score.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"transcript": map[string]interface{}{
					"type":        "string",
					"description": "Full session transcript text",
				},
				"backends": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Ordered backend preference list (e.g., ['remote', 'local', 'offline']). Defaults to the configured order.",
				},
				"segment_budget": map[string]interface{}{
					"type":        "number",
					"description": "Per-segment token budget override. Defaults to the primary backend's own budget.",
				},
			},
			Required: []string{"transcript"},
		},
	}, handlers.SynthesizeStory)

	// 2. list_backends - Inspect the configured backend registry
	server.AddTool(mcp.Tool{
		Name:        "list_backends",
		Description: "List the registered generation backends with their per-segment token budgets and metering status.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListBackends)

	return handlers
}
