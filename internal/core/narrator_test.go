// ABOUTME: Tests for the narrator loop with scripted stub backends
// ABOUTME: Covers failover correctness, quota denial, exhaustion, and cancellation
package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/models"
)

// stubBackend echoes segment text with a name prefix; failOn scripts an
// error for the nth call (1-based)
type stubBackend struct {
	name    string
	budget  int
	metered bool
	calls   int
	failOn  map[int]error
}

func (s *stubBackend) Narrate(ctx context.Context, segmentText, contextDigest string, style models.StyleHint) (string, error) {
	s.calls++
	if err, scripted := s.failOn[s.calls]; scripted {
		return "", err
	}
	return fmt.Sprintf("[%s] %s", s.name, segmentText), nil
}

func (s *stubBackend) MaxTokensPerSegment() int { return s.budget }
func (s *stubBackend) Name() string             { return s.name }
func (s *stubBackend) Metered() bool            { return s.metered }

// cancellingBackend cancels the run mid-call, simulating a Ctrl-C while
// a narration request is in flight
type cancellingBackend struct {
	name   string
	budget int
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingBackend) Narrate(ctx context.Context, segmentText, contextDigest string, style models.StyleHint) (string, error) {
	c.calls++
	c.cancel()
	return "", ctx.Err()
}

func (c *cancellingBackend) MaxTokensPerSegment() int { return c.budget }
func (c *cancellingBackend) Name() string             { return c.name }

func makeSegments(texts ...string) []models.Segment {
	segments := make([]models.Segment, len(texts))
	offset := 0
	for i, text := range texts {
		segments[i] = models.Segment{
			Index:           i,
			Start:           offset,
			End:             offset + len(text),
			Content:         text,
			EstimatedTokens: (len(text) + 3) / 4,
		}
		offset += len(text)
	}
	return segments
}

func TestNarrateAll_IndexOrder(t *testing.T) {
	stub := &stubBackend{name: "offline", budget: 2000}
	narrator := NewNarrator([]backend.Backend{stub}, nil, NewSessionMemory(4000), 0.15)

	segments := makeSegments(
		"Kira attacked the goblins at the gate. ",
		"Tormund defeated the chief in the Great Hall. ",
		"Elspeth discovered the shrine. ",
	)
	narrations, err := narrator.NarrateAll(context.Background(), segments)
	if err != nil {
		t.Fatalf("NarrateAll() error = %v", err)
	}

	if len(narrations) != 3 {
		t.Fatalf("got %d narrations, want 3", len(narrations))
	}
	for i, n := range narrations {
		if n.SegmentIndex != i {
			t.Errorf("narration %d has segment index %d", i, n.SegmentIndex)
		}
		if !n.Success {
			t.Errorf("narration %d not marked successful", i)
		}
		if n.Backend != "offline" {
			t.Errorf("narration %d backend = %q", i, n.Backend)
		}
	}
	if len(narrator.Failovers()) != 0 {
		t.Errorf("got %d failover events, want 0", len(narrator.Failovers()))
	}
}

func TestNarrateAll_FailoverOnSecondSegment(t *testing.T) {
	remote := &stubBackend{
		name:   "remote",
		budget: 3000,
		failOn: map[int]error{2: fmt.Errorf("%w: connection refused", backend.ErrUnavailable)},
	}
	local := &stubBackend{name: "local", budget: 2500}
	narrator := NewNarrator([]backend.Backend{remote, local}, nil, NewSessionMemory(4000), 0.15)

	segments := makeSegments(
		"Kira attacked the goblins. ",
		"Tormund defeated the chief. ",
		"Elspeth discovered the shrine. ",
	)
	narrations, err := narrator.NarrateAll(context.Background(), segments)
	if err != nil {
		t.Fatalf("NarrateAll() error = %v", err)
	}

	// Exactly one failover event; segments from the switch onward belong
	// to the fallback backend
	events := narrator.Failovers()
	if len(events) != 1 {
		t.Fatalf("got %d failover events, want 1: %+v", len(events), events)
	}
	if events[0].SegmentIndex != 1 || events[0].FromBackend != "remote" || events[0].ToBackend != "local" {
		t.Errorf("failover event = %+v", events[0])
	}
	if events[0].Reason != "unavailable" {
		t.Errorf("failover reason = %q, want unavailable", events[0].Reason)
	}

	wantBackends := []string{"remote", "local", "local"}
	for i, n := range narrations {
		if n.Backend != wantBackends[i] {
			t.Errorf("segment %d narrated by %q, want %q", i, n.Backend, wantBackends[i])
		}
		if !n.Success {
			t.Errorf("segment %d not successful after failover", i)
		}
	}

	// The failed backend never gets another call once passed over
	if remote.calls != 2 {
		t.Errorf("remote called %d times, want 2", remote.calls)
	}
}

func TestNarrateAll_QuotaDenialTriggersFailover(t *testing.T) {
	remote := &stubBackend{name: "remote", budget: 3000, metered: true}
	offline := &stubBackend{name: "offline", budget: 2000}

	denyRemote := backend.AuthorizerFunc(func(backendName string, tokens int) bool {
		return backendName != "remote"
	})
	narrator := NewNarrator([]backend.Backend{remote, offline}, denyRemote, NewSessionMemory(4000), 0.15)

	narrations, err := narrator.NarrateAll(context.Background(), makeSegments("Kira attacked the goblins. "))
	if err != nil {
		t.Fatalf("NarrateAll() error = %v", err)
	}

	if remote.calls != 0 {
		t.Errorf("remote was called %d times despite quota denial", remote.calls)
	}
	if narrations[0].Backend != "offline" {
		t.Errorf("segment narrated by %q, want offline", narrations[0].Backend)
	}

	events := narrator.Failovers()
	if len(events) != 1 || events[0].Reason != "quota_reservation_denied" {
		t.Errorf("failover events = %+v, want one quota denial", events)
	}
}

func TestNarrateAll_UnmeteredBackendSkipsAuthorizer(t *testing.T) {
	offline := &stubBackend{name: "offline", budget: 2000, metered: false}
	denyAll := backend.AuthorizerFunc(func(string, int) bool { return false })
	narrator := NewNarrator([]backend.Backend{offline}, denyAll, NewSessionMemory(4000), 0.15)

	narrations, err := narrator.NarrateAll(context.Background(), makeSegments("Kira attacked the goblins. "))
	if err != nil {
		t.Fatalf("NarrateAll() error = %v", err)
	}
	if !narrations[0].Success {
		t.Error("unmetered backend should narrate regardless of the authorizer")
	}
}

func TestNarrateAll_AllBackendsExhausted(t *testing.T) {
	remote := &stubBackend{
		name:   "remote",
		budget: 3000,
		failOn: map[int]error{1: backend.ErrUnavailable},
	}
	local := &stubBackend{
		name:   "local",
		budget: 2500,
		failOn: map[int]error{1: backend.ErrQuotaExceeded},
	}
	narrator := NewNarrator([]backend.Backend{remote, local}, nil, NewSessionMemory(4000), 0.15)

	narrations, err := narrator.NarrateAll(context.Background(), makeSegments(
		"Kira attacked the goblins. ",
		"Tormund defeated the chief. ",
	))
	if !errors.Is(err, ErrAllBackendsExhausted) {
		t.Fatalf("NarrateAll() error = %v, want ErrAllBackendsExhausted", err)
	}

	// The failing segment comes back marked unsuccessful so callers can
	// count what actually completed
	if len(narrations) != 1 {
		t.Fatalf("got %d narrations, want 1", len(narrations))
	}
	if narrations[0].Success {
		t.Error("exhausted segment should not be marked successful")
	}

	events := narrator.Failovers()
	if len(events) != 1 {
		t.Errorf("got %d failover events, want 1 (no event past the last backend)", len(events))
	}
}

func TestNarrateAll_CancellationBetweenSegments(t *testing.T) {
	stub := &stubBackend{name: "offline", budget: 2000}
	narrator := NewNarrator([]backend.Backend{stub}, nil, NewSessionMemory(4000), 0.15)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	narrations, err := narrator.NarrateAll(ctx, makeSegments("Kira attacked the goblins. "))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("NarrateAll() error = %v, want context.Canceled", err)
	}
	if len(narrations) != 0 {
		t.Errorf("got %d narrations after pre-cancelled context, want 0", len(narrations))
	}
	if stub.calls != 0 {
		t.Errorf("backend called %d times after cancellation", stub.calls)
	}
}

func TestNarrateAll_CancellationMidCallDoesNotFailOver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := &cancellingBackend{name: "remote", budget: 3000, cancel: cancel}
	local := &stubBackend{name: "local", budget: 2500}
	narrator := NewNarrator([]backend.Backend{remote, local}, nil, NewSessionMemory(4000), 0.15)

	narrations, err := narrator.NarrateAll(ctx, makeSegments(
		"Kira attacked the goblins. ",
		"Tormund defeated the chief. ",
	))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("NarrateAll() error = %v, want context.Canceled", err)
	}

	// Cancellation is the caller's signal, not a backend failure: no
	// failover, no calls cascading down the preference list
	if len(narrator.Failovers()) != 0 {
		t.Errorf("failover events = %+v, want none on cancellation", narrator.Failovers())
	}
	if local.calls != 0 {
		t.Errorf("fallback backend called %d times during cancellation", local.calls)
	}
	if len(narrations) != 1 || narrations[0].Success {
		t.Errorf("narrations = %+v, want one unsuccessful entry", narrations)
	}
}

func TestNarrateAll_MemoryAccumulatesAcrossSegments(t *testing.T) {
	stub := &stubBackend{name: "offline", budget: 2000}
	mem := NewSessionMemory(4000)
	narrator := NewNarrator([]backend.Backend{stub}, nil, mem, 0.15)

	_, err := narrator.NarrateAll(context.Background(), makeSegments(
		"Kira attacked the goblins at the gate. ",
		"Tormund defeated the chief in the Great Hall. ",
	))
	if err != nil {
		t.Fatalf("NarrateAll() error = %v", err)
	}

	if !containsString(mem.Characters(), "Kira") || !containsString(mem.Characters(), "Tormund") {
		t.Errorf("memory characters = %v, want both segment casts", mem.Characters())
	}
	if len(mem.PlotPoints()) == 0 {
		t.Error("memory should hold plot points after narration")
	}
}
