// ABOUTME: CLI command that runs one transcript through the synthesis pipeline
// ABOUTME: Handles file or stdin input and human or JSON output
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/config"
	"github.com/sagascribe/sagascribe/internal/core"
)

var (
	narrateFile     string
	narrateBackends []string
	narrateBudget   int
	narrateJSON     bool
	narrateOutput   string
)

// NewNarrateCmd creates the narrate command
func NewNarrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "narrate [file]",
		Short: "Synthesize a story from a session transcript",
		Long: `Synthesize a story from a session transcript.

Reads the transcript from a file argument, --file, or stdin, then
segments it, narrates each segment, and prints the synthesized story.

Examples:
  sagascribe narrate session.txt
  sagascribe narrate --backends=local,offline session.txt
  cat session.txt | sagascribe narrate --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNarrate,
	}

	cmd.Flags().StringVar(&narrateFile, "file", "", "Read transcript from file")
	cmd.Flags().StringSliceVar(&narrateBackends, "backends", []string{}, "Ordered backend preference (comma-separated)")
	cmd.Flags().IntVar(&narrateBudget, "budget", 0, "Per-segment token budget override")
	cmd.Flags().BoolVar(&narrateJSON, "json", false, "Emit the full result as JSON")
	cmd.Flags().StringVarP(&narrateOutput, "output", "o", "", "Write the story to a file instead of stdout")

	return cmd
}

func runNarrate(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	text, err := readTranscript(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry := backend.NewRegistryFromConfig(cfg)
	pipeline := core.NewPipeline(registry, cfg, nil)

	// Ctrl-C between segments yields a partial result instead of nothing
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	preference := narrateBackends
	if len(preference) == 0 {
		preference = cfg.BackendOrder
	}

	result := pipeline.Synthesize(ctx, text, preference, narrateBudget)

	if narrateJSON {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		if err := writeStory(cmd, string(encoded)); err != nil {
			return err
		}
	} else {
		if err := writeStory(cmd, result.StoryText); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "\n%d segments, completeness %.2f, %d failovers, %.1fs\n",
				result.SegmentsProcessed, result.CompletenessScore, len(result.FailoverEvents), result.ProcessingTime)
		}
	}

	if !result.Success {
		return fmt.Errorf("synthesis incomplete: %s", result.FailureReason)
	}
	return nil
}

// readTranscript resolves the input source: file argument, --file flag,
// or stdin
func readTranscript(args []string) (string, error) {
	var text string
	switch {
	case narrateFile != "":
		data, err := os.ReadFile(narrateFile)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no transcript provided")
	}
	return text, nil
}

func writeStory(cmd *cobra.Command, content string) error {
	if narrateOutput != "" {
		if err := os.WriteFile(narrateOutput, []byte(content+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Story written to %s\n", narrateOutput)
		}
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), content)
	return err
}
