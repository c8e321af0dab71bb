// ABOUTME: Locally hosted model backend speaking the OpenAI-compatible API
// ABOUTME: No external network dependency; conservative budget for smaller local models
package backend

import (
	"context"
	"time"

	"github.com/sagascribe/sagascribe/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// LocalConfig holds configuration for the local backend
type LocalConfig struct {
	// BaseURL of an OpenAI-compatible server, e.g. Ollama's /v1 endpoint
	BaseURL    string
	Model      string
	Budget     int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Local narrates segments with a locally hosted model. Slower per call
// than the remote tier, so it carries a longer timeout, but it never
// leaves the machine and is not metered.
type Local struct {
	caller chatCaller
	budget int
}

// NewLocal creates the local backend from config
func NewLocal(cfg LocalConfig) *Local {
	// Local servers ignore the API key but the client requires one
	clientCfg := openai.DefaultConfig("local")
	clientCfg.BaseURL = cfg.BaseURL

	return &Local{
		caller: chatCaller{
			client:     openai.NewClientWithConfig(clientCfg),
			model:      cfg.Model,
			timeout:    cfg.Timeout,
			maxRetries: cfg.MaxRetries,
			retryDelay: cfg.RetryDelay,
		},
		budget: cfg.Budget,
	}
}

func (l *Local) Narrate(ctx context.Context, segmentText, contextDigest string, style models.StyleHint) (string, error) {
	return l.caller.narrate(ctx, segmentText, contextDigest, style)
}

func (l *Local) MaxTokensPerSegment() int { return l.budget }

func (l *Local) Name() string { return "local" }
