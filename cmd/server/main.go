// ABOUTME: Main entry point for the story synthesis MCP server with stdio transport
// ABOUTME: Initializes configuration, the backend registry, and the pipeline
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/config"
	"github.com/sagascribe/sagascribe/internal/core"
	"github.com/sagascribe/sagascribe/internal/mcp"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - the remote backend will not be registered")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	registry := backend.NewRegistryFromConfig(cfg)
	pipeline := core.NewPipeline(registry, cfg, nil)

	server := mcpserver.NewMCPServer(
		"SagaScribe Story Synthesis",
		"0.1.0",
	)

	mcp.RegisterTools(server, pipeline, registry)

	log.Println("SagaScribe MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
