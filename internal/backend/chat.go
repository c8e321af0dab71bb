// ABOUTME: Shared chat-completion plumbing for the remote and local model backends
// ABOUTME: Handles prompt assembly, per-call timeouts, retries, and error classification
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sagascribe/sagascribe/internal/models"
	"github.com/sagascribe/sagascribe/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a fantasy chronicler turning a transcribed tabletop
role-playing session into polished narrative prose. Stay faithful to the events,
characters, and locations in the transcript. Keep character and place names exactly
as written. Write in past tense, third person. Do not invent major events.`

// styleInstruction maps a style hint to an instruction appended to the prompt
func styleInstruction(style models.StyleHint) string {
	switch style {
	case models.StyleOpening:
		return "This is the opening of the story: set the scene and introduce the party."
	case models.StyleClosing:
		return "This is the closing of the story: bring the threads to a resting point."
	default:
		return "This is a middle passage: continue the story without re-introducing the party."
	}
}

// buildMessages assembles the chat messages for one segment narration
func buildMessages(segmentText, contextDigest string, style models.StyleHint) []openai.ChatCompletionMessage {
	var user strings.Builder
	if contextDigest != "" {
		user.WriteString("STORY SO FAR:\n")
		user.WriteString(contextDigest)
		user.WriteString("\n\n")
	}
	user.WriteString("TRANSCRIPT SEGMENT:\n")
	user.WriteString(segmentText)
	user.WriteString("\n\n")
	user.WriteString(styleInstruction(style))

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: user.String()},
	}
}

// chatCaller wraps a go-openai client with the retry and classification
// behavior shared by the remote and local backends
type chatCaller struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// narrate runs the chat completion with per-call timeout and retries.
// Transient transport errors are retried within this backend; terminal
// errors (auth, quota) surface immediately so the narrator can fail over.
func (cc *chatCaller) narrate(ctx context.Context, segmentText, contextDigest string, style models.StyleHint) (string, error) {
	messages := buildMessages(segmentText, contextDigest, style)

	var lastErr error
	for attempt := 0; attempt <= cc.maxRetries; attempt++ {
		// Run cancellation is the caller's signal, not a backend failure
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(cc.retryDelay, attempt))
		}

		callCtx, cancel := context.WithTimeout(ctx, cc.timeout)
		resp, err := cc.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       cc.model,
			Messages:    messages,
			Temperature: 0.7,
		})
		cancel()

		if err != nil {
			if terminal := classifyTerminal(err); terminal != nil {
				return "", terminal
			}
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			lastErr = fmt.Errorf("attempt %d: empty narration returned", attempt+1)
			continue
		}

		return text, nil
	}

	return "", fmt.Errorf("%w: narration failed after %d attempts: %v", ErrUnavailable, cc.maxRetries+1, lastErr)
}

// classifyTerminal returns a sentinel-wrapped error for failures that
// should not be retried within the same backend, or nil when the error
// is transient and worth another attempt
func classifyTerminal(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429:
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		case 401, 403:
			return fmt.Errorf("%w: authentication rejected: %v", ErrUnavailable, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: call timed out: %v", ErrUnavailable, err)
	}
	// context.Canceled is deliberately not terminal here: run
	// cancellation is surfaced through the context itself, not wrapped
	// as a backend failure
	return nil
}
