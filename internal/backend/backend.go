// ABOUTME: Generation backend interface and error taxonomy for the narration pipeline
// ABOUTME: Backends turn (segment text, context digest, style hint) into narration text
package backend

import (
	"context"
	"errors"

	"github.com/sagascribe/sagascribe/internal/models"
)

// Sentinel errors used by the narrator to drive failover. Both are
// recoverable: the narrator switches to the next configured backend and
// records a failover event. Quota rejections are tracked separately for
// telemetry.
var (
	ErrUnavailable   = errors.New("backend unavailable")
	ErrQuotaExceeded = errors.New("backend quota exceeded")
)

// Backend turns one segment plus accumulated context into narration text.
// Implementations are selected by configuration, never by runtime type
// inspection, and must be safe for reuse across runs: a backend carries
// no per-run state.
type Backend interface {
	// Narrate generates story text for a single segment. The context
	// digest summarizes everything registered from earlier segments.
	Narrate(ctx context.Context, segmentText, contextDigest string, style models.StyleHint) (string, error)

	// MaxTokensPerSegment is this backend's per-segment token budget
	MaxTokensPerSegment() int

	// Name identifies the backend in results and failover events
	Name() string
}

// Metered is implemented by backends whose calls are billed by an
// external cost authority. The narrator consults the configured
// Authorizer before every call to a metered backend.
type Metered interface {
	Metered() bool
}
