// ABOUTME: MCP tool handler implementations for the story synthesis server
// ABOUTME: Bridges tool requests into pipeline runs and registry lookups
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/core"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	pipeline *core.Pipeline
	registry *backend.Registry
}

// SynthesizeStory handles the synthesize_story tool
func (h *Handlers) SynthesizeStory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transcript, err := request.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError("transcript argument is required and must be a string"), nil
	}

	budget := request.GetInt("segment_budget", 0)

	// Type assert Arguments to map for array access
	var backendNames []string
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		if raw, exists := args["backends"]; exists {
			if array, ok := raw.([]interface{}); ok {
				for _, entry := range array {
					if name, ok := entry.(string); ok {
						backendNames = append(backendNames, name)
					}
				}
			}
		}
	}

	result := h.pipeline.Synthesize(ctx, transcript, backendNames, budget)

	// Failed runs still return the partial result: the caller decides
	// what to do with an explicitly incomplete story
	failovers := make([]map[string]interface{}, 0, len(result.FailoverEvents))
	for _, ev := range result.FailoverEvents {
		failovers = append(failovers, map[string]interface{}{
			"segment_index": ev.SegmentIndex,
			"from_backend":  ev.FromBackend,
			"to_backend":    ev.ToBackend,
			"reason":        ev.Reason,
			"timestamp":     ev.Timestamp.Format(time.RFC3339),
		})
	}

	response := map[string]interface{}{
		"run_id":                  result.RunID,
		"success":                 result.Success,
		"story":                   result.StoryText,
		"segments_processed":      result.SegmentsProcessed,
		"characters":              result.Characters,
		"locations":               result.Locations,
		"plot_points":             result.PlotPoints,
		"completeness_score":      result.CompletenessScore,
		"failover_events":         failovers,
		"processing_time_seconds": result.ProcessingTime,
	}
	if !result.Success {
		response["failure_reason"] = result.FailureReason
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ListBackends handles the list_backends tool
func (h *Handlers) ListBackends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := h.registry.Names()

	backends := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		b, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		metered := false
		if m, isMetered := b.(backend.Metered); isMetered {
			metered = m.Metered()
		}
		backends = append(backends, map[string]interface{}{
			"name":                   b.Name(),
			"max_tokens_per_segment": b.MaxTokensPerSegment(),
			"metered":                metered,
		})
	}

	response := map[string]interface{}{
		"backends": backends,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}
