// ABOUTME: Deterministic offline backend producing template-driven narration
// ABOUTME: Always available; serves as the final failover tier and a reproducible test double
package backend

import (
	"context"
	"strings"

	"github.com/sagascribe/sagascribe/internal/models"
	"github.com/sagascribe/sagascribe/internal/util"
)

// Offline narrates segments without any model call. Output is a pure
// function of its inputs, which makes it reproducible in tests and
// usable when every networked backend is down.
type Offline struct {
	budget int
}

// NewOffline creates the offline backend with the given token budget
func NewOffline(budget int) *Offline {
	return &Offline{budget: budget}
}

func (o *Offline) Narrate(ctx context.Context, segmentText, contextDigest string, style models.StyleHint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(o.frame(style, contextDigest))
	sb.WriteString("\n\n")

	// Reserve room for the frame, then carry the segment's own prose
	// forward sentence by sentence until the budget is spent.
	budgetChars := util.TokensToChars(o.budget) - sb.Len() - 1
	sb.WriteString(trimToSentences(segmentText, budgetChars))

	return strings.TrimSpace(sb.String()), nil
}

func (o *Offline) MaxTokensPerSegment() int { return o.budget }

func (o *Offline) Name() string { return "offline" }

// frame produces the template opening line for a segment
func (o *Offline) frame(style models.StyleHint, contextDigest string) string {
	characters := digestList(contextDigest, "CHARACTERS:")

	switch style {
	case models.StyleOpening:
		if len(characters) > 0 {
			return "The session began with " + joinNames(characters) + " at the table."
		}
		return "The session began."
	case models.StyleClosing:
		return "As the session drew toward its close, the table pressed on."
	default:
		return "The tale continued."
	}
}

// digestList pulls a comma-separated entity line out of a context digest
func digestList(digest, label string) []string {
	for _, line := range strings.Split(digest, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, label) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, label))
		if rest == "" {
			return nil
		}
		var names []string
		for _, n := range strings.Split(rest, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return names
	}
	return nil
}

func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// trimToSentences keeps whole sentences from text up to maxChars,
// never cutting mid-word
func trimToSentences(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if maxChars <= 0 {
		return ""
	}
	if len(text) <= maxChars {
		return text
	}

	cut := text[:maxChars]
	// Prefer the last sentence end, fall back to the last word break
	if idx := lastSentenceEnd(cut); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	return cut
}

// lastSentenceEnd returns the index just past the last ., ! or ? in s
func lastSentenceEnd(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return 0
}
