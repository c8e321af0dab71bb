// ABOUTME: Pipeline entry point: transcript in, SynthesisResult out
// ABOUTME: Drives segmentation, the narrator loop, and synthesis for one run
package core

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sagascribe/sagascribe/internal/backend"
	"github.com/sagascribe/sagascribe/internal/config"
	"github.com/sagascribe/sagascribe/internal/models"
	"github.com/sagascribe/sagascribe/internal/util"
)

// RunState tracks where a single run is in its lifecycle
type RunState string

const (
	StateIdle         RunState = "idle"
	StateSegmenting   RunState = "segmenting"
	StateNarrating    RunState = "narrating"
	StateSynthesizing RunState = "synthesizing"
	StateComplete     RunState = "complete"
	StateFailed       RunState = "failed"
)

// Pipeline runs transcripts through segmentation, narration, and
// synthesis. It holds only shared read-only resources (registry,
// authorizer, config), so independent runs may execute in parallel;
// all per-run state lives in locals and run-scoped SessionMemory.
type Pipeline struct {
	registry    *backend.Registry
	authorizer  backend.Authorizer
	cfg         *config.Config
	detector    *BoundaryDetector
	synthesizer *Synthesizer
}

// NewPipeline creates a pipeline over a backend registry. A nil
// authorizer approves everything.
func NewPipeline(reg *backend.Registry, cfg *config.Config, auth backend.Authorizer) *Pipeline {
	if auth == nil {
		auth = backend.AllowAll()
	}
	return &Pipeline{
		registry:    reg,
		authorizer:  auth,
		cfg:         cfg,
		detector:    NewBoundaryDetector(),
		synthesizer: NewSynthesizer(),
	}
}

// Synthesize turns one transcript into one story. Callers always get a
// SynthesisResult: fatal conditions come back as explicit failure
// results with a reason code, never as an error or silent empty output.
// backendNames is the ordered preference list; a zero budgetOverride
// uses the primary backend's own per-segment budget.
func (p *Pipeline) Synthesize(ctx context.Context, transcriptText string, backendNames []string, budgetOverride int) models.SynthesisResult {
	started := time.Now()
	runID := uuid.New().String()
	log.Printf("[Pipeline] run %s starting (%d chars)", runID, len(transcriptText))

	state := StateIdle
	setState := func(next RunState) {
		log.Printf("[Pipeline] run %s: %s -> %s", runID, state, next)
		state = next
	}

	backends, err := p.registry.Resolve(backendNames)
	if err != nil {
		log.Printf("[Pipeline] run %s failed: %v", runID, err)
		return p.failResult(runID, nil, nil, nil, nil, models.ReasonBackendConfiguration, started)
	}

	budget := budgetOverride
	if budget <= 0 {
		budget = backends[0].MaxTokensPerSegment()
	}

	setState(StateSegmenting)
	transcript := NewTranscript(transcriptText)
	boundaries := p.detector.DetectOrSynthesize(transcript.Text, syntheticSpanChars(budget))

	segments, err := NewSegmenter(budget).Segment(transcript, boundaries)
	if err != nil {
		log.Printf("[Pipeline] run %s segmentation failed: %v", runID, err)
		return p.failResult(runID, nil, nil, nil, nil, models.ReasonSegmentationError, started)
	}
	log.Printf("[Pipeline] run %s segmented into %d segments (budget %d tokens)", runID, len(segments), budget)

	setState(StateNarrating)
	memory := NewSessionMemory(p.cfg.SummaryMaxChars)
	narrator := NewNarrator(backends, p.authorizer, memory, p.cfg.ContextFraction)

	narrations, err := narrator.NarrateAll(ctx, segments)
	if err != nil {
		reason := models.ReasonAllBackendsExhausted
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			reason = models.ReasonCancelled
		}
		// Preserve what was produced: compose the partial story so the
		// caller sees an explicitly incomplete result, not silence
		partial, _ := p.synthesizer.Compose(narrations, memory)
		setState(StateFailed)
		log.Printf("[Pipeline] run %s ended in %s after %d narrations: %v", runID, state, len(narrations), err)
		return p.failResult(runID, memory, narrations, narrator.Failovers(), &partial, reason, started)
	}

	setState(StateSynthesizing)
	story, completeness := p.synthesizer.Compose(narrations, memory)

	setState(StateComplete)
	elapsed := time.Since(started)
	log.Printf("[Pipeline] run %s %s: %d segments, completeness %.2f, %v", runID, state, len(segments), completeness, elapsed)

	return models.SynthesisResult{
		RunID:             runID,
		StoryText:         story,
		SegmentsProcessed: len(narrations),
		Characters:        memory.Characters(),
		Locations:         memory.Locations(),
		PlotPoints:        plotPointDescriptions(memory),
		CompletenessScore: completeness,
		FailoverEvents:    narrator.Failovers(),
		ProcessingTime:    elapsed.Seconds(),
		Success:           true,
	}
}

// failResult builds an explicit failure result, preserving any partial
// story, entities, and failover events already accumulated
func (p *Pipeline) failResult(runID string, memory *SessionMemory, narrations []models.SegmentNarration, failovers []models.FailoverEvent, partialStory *string, reason string, started time.Time) models.SynthesisResult {
	result := models.SynthesisResult{
		RunID:          runID,
		ProcessingTime: time.Since(started).Seconds(),
		Success:        false,
		FailureReason:  reason,
		FailoverEvents: failovers,
	}

	if memory != nil {
		result.Characters = memory.Characters()
		result.Locations = memory.Locations()
		result.PlotPoints = plotPointDescriptions(memory)
	}
	for _, n := range narrations {
		if n.Success {
			result.SegmentsProcessed++
		}
	}
	if partialStory != nil {
		result.StoryText = *partialStory
	}
	return result
}

// syntheticSpanChars sizes synthetic boundary spacing just under the
// budget so marker-free transcripts still segment cleanly
func syntheticSpanChars(budgetTokens int) int {
	return util.TokensToChars(budgetTokens) * 9 / 10
}

func plotPointDescriptions(memory *SessionMemory) []string {
	points := memory.PlotPoints()
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Description
	}
	return out
}
