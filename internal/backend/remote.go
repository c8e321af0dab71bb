// ABOUTME: Remote hosted-model backend using the OpenAI chat completions API
// ABOUTME: Highest quality tier with the largest per-segment budget; metered
package backend

import (
	"context"
	"time"

	"github.com/sagascribe/sagascribe/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// RemoteConfig holds configuration for the remote backend
type RemoteConfig struct {
	APIKey     string
	Model      string
	Budget     int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Remote narrates segments with a hosted model. Network-dependent and
// subject to rate and cost limits, so calls are metered.
type Remote struct {
	caller chatCaller
	budget int
}

// NewRemote creates the remote backend from config
func NewRemote(cfg RemoteConfig) *Remote {
	return &Remote{
		caller: chatCaller{
			client:     openai.NewClient(cfg.APIKey),
			model:      cfg.Model,
			timeout:    cfg.Timeout,
			maxRetries: cfg.MaxRetries,
			retryDelay: cfg.RetryDelay,
		},
		budget: cfg.Budget,
	}
}

func (r *Remote) Narrate(ctx context.Context, segmentText, contextDigest string, style models.StyleHint) (string, error) {
	return r.caller.narrate(ctx, segmentText, contextDigest, style)
}

func (r *Remote) MaxTokensPerSegment() int { return r.budget }

func (r *Remote) Name() string { return "remote" }

// Metered marks the remote backend as billed by the external cost authority
func (r *Remote) Metered() bool { return true }
