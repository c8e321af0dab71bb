// ABOUTME: CLI command listing the configured generation backends
// ABOUTME: Shows budgets, metering, and preference order from configuration
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/config"
)

// NewBackendsCmd creates the backends command
func NewBackendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List configured generation backends",
		Long: `List the registered generation backends with their per-segment
token budgets, metering status, and the configured failover order.`,
		RunE: runBackends,
	}

	return cmd
}

func runBackends(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry := backend.NewRegistryFromConfig(cfg)

	fmt.Fprintf(cmd.OutOrStdout(), "Preference order: %v\n\n", cfg.BackendOrder)
	for _, name := range registry.Names() {
		b, ok := registry.Get(name)
		if !ok {
			continue
		}
		metered := ""
		if m, isMetered := b.(backend.Metered); isMetered && m.Metered() {
			metered = " (metered)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-8s budget %d tokens/segment%s\n",
			b.Name(), b.MaxTokensPerSegment(), metered)
	}

	if _, registered := registry.Get("remote"); !registered && !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\nremote backend not registered: OPENAI_API_KEY is unset")
	}
	return nil
}
