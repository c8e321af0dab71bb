// ABOUTME: Segment narrator driving extract → register → snapshot → narrate in index order
// ABOUTME: Handles ordered backend failover; never mixes backends within one segment
package core

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/models"
	"github.com/sagascribe/sagascribe/internal/util"
)

// ErrAllBackendsExhausted is fatal for a run: every configured backend
// failed on the same segment. Partial results already produced are kept.
var ErrAllBackendsExhausted = errors.New("all configured backends exhausted")

// Narrator walks segments strictly in index order, because segment n's
// context depends on memory accumulated through segment n-1. On a
// backend failure it switches to the next backend in the preference
// list for the remainder of the run.
type Narrator struct {
	backends        []backend.Backend
	authorizer      backend.Authorizer
	extractor       *Extractor
	memory          *SessionMemory
	contextFraction float64

	active    int
	failovers []models.FailoverEvent
}

// NewNarrator creates a narrator over an ordered backend preference
// list. The authorizer is consulted before every metered backend call.
func NewNarrator(backends []backend.Backend, auth backend.Authorizer, mem *SessionMemory, contextFraction float64) *Narrator {
	if auth == nil {
		auth = backend.AllowAll()
	}
	return &Narrator{
		backends:        backends,
		authorizer:      auth,
		extractor:       NewExtractor(),
		memory:          mem,
		contextFraction: contextFraction,
	}
}

// NarrateAll narrates every segment in order. Cancellation is checked
// between segments and when a backend call returns on a cancelled
// context; on cancellation or backend exhaustion the narrations
// produced so far are returned alongside the error so the caller can
// build a partial result.
func (n *Narrator) NarrateAll(ctx context.Context, segments []models.Segment) ([]models.SegmentNarration, error) {
	narrations := make([]models.SegmentNarration, 0, len(segments))

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return narrations, err
		}

		els := n.extractor.Extract(seg)
		n.memory.Register(els)

		digest := n.memory.SnapshotContext(n.contextBudgetChars())
		style := models.StyleForPosition(i, len(segments))

		narration, err := n.narrateSegment(ctx, seg, digest, style)
		narrations = append(narrations, narration)
		if err != nil {
			return narrations, err
		}
	}

	return narrations, nil
}

// Memory exposes the accumulated session memory for synthesis
func (n *Narrator) Memory() *SessionMemory {
	return n.memory
}

// Failovers returns the failover events recorded so far
func (n *Narrator) Failovers() []models.FailoverEvent {
	out := make([]models.FailoverEvent, len(n.failovers))
	copy(out, n.failovers)
	return out
}

// ActiveBackend returns the backend currently in use
func (n *Narrator) ActiveBackend() backend.Backend {
	if n.active < len(n.backends) {
		return n.backends[n.active]
	}
	return nil
}

// narrateSegment calls the active backend, failing over down the
// preference list until one succeeds or the list is exhausted
func (n *Narrator) narrateSegment(ctx context.Context, seg models.Segment, digest string, style models.StyleHint) (models.SegmentNarration, error) {
	for n.active < len(n.backends) {
		b := n.backends[n.active]

		if m, ok := b.(backend.Metered); ok && m.Metered() {
			estimated := seg.EstimatedTokens + util.EstimateTokens(digest)
			if !n.authorizer.EstimateAndReserve(b.Name(), estimated) {
				log.Printf("[Narrator] quota reservation denied for %s on segment %d", b.Name(), seg.Index)
				n.failOver(seg.Index, b.Name(), "quota_reservation_denied")
				continue
			}
		}

		started := time.Now()
		text, err := b.Narrate(ctx, seg.Content, digest, style)
		elapsed := time.Since(started)

		if err != nil {
			// A cancelled run context is not a backend failure: stop here
			// instead of cascading the cancellation down the preference list
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Printf("[Narrator] run cancelled during %s call on segment %d", b.Name(), seg.Index)
				return models.SegmentNarration{
					SegmentIndex: seg.Index,
					Backend:      b.Name(),
					Success:      false,
				}, ctxErr
			}
			log.Printf("[Narrator] backend %s failed on segment %d after %v: %v", b.Name(), seg.Index, elapsed, err)
			n.failOver(seg.Index, b.Name(), failureReason(err))
			continue
		}

		return models.SegmentNarration{
			SegmentIndex: seg.Index,
			Text:         text,
			Backend:      b.Name(),
			Success:      true,
			Elapsed:      elapsed,
		}, nil
	}

	last := ""
	if len(n.backends) > 0 {
		last = n.backends[len(n.backends)-1].Name()
	}
	return models.SegmentNarration{
		SegmentIndex: seg.Index,
		Backend:      last,
		Success:      false,
	}, ErrAllBackendsExhausted
}

// failOver advances to the next backend for the remainder of the run,
// recording the switch when a next backend exists
func (n *Narrator) failOver(segIndex int, from, reason string) {
	n.active++
	if n.active >= len(n.backends) {
		return
	}
	to := n.backends[n.active].Name()
	log.Printf("[Narrator] failing over from %s to %s on segment %d (%s)", from, to, segIndex, reason)
	n.failovers = append(n.failovers, models.FailoverEvent{
		SegmentIndex: segIndex,
		FromBackend:  from,
		ToBackend:    to,
		Reason:       reason,
		Timestamp:    time.Now(),
	})
}

// contextBudgetChars sizes the digest to the configured fraction of the
// active backend's per-segment budget
func (n *Narrator) contextBudgetChars() int {
	b := n.ActiveBackend()
	if b == nil {
		return 0
	}
	return int(float64(util.TokensToChars(b.MaxTokensPerSegment())) * n.contextFraction)
}

// failureReason maps a backend error to a stable reason code for
// failover telemetry
func failureReason(err error) string {
	switch {
	case errors.Is(err, backend.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, backend.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
