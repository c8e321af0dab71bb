// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to run story synthesis via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/config"
	"github.com/sagascribe/sagascribe/internal/core"
	"github.com/sagascribe/sagascribe/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs SagaScribe as an MCP (Model Context Protocol) server, exposing
story synthesis and backend inspection tools via stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  sagascribe mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "sagascribe": {
  #       "command": "sagascribe",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - the remote backend will not be registered")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	registry := backend.NewRegistryFromConfig(cfg)
	pipeline := core.NewPipeline(registry, cfg, nil)

	server := mcpserver.NewMCPServer(
		"SagaScribe Story Synthesis",
		"0.1.0",
	)

	mcp.RegisterTools(server, pipeline, registry)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("SagaScribe MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, shutting down")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
