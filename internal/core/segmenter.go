// ABOUTME: Segmenter turns boundaries plus a token budget into gap-free ordered segments
// ABOUTME: Guarantees exact round-trip reconstruction of the transcript by concatenation
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sagascribe/sagascribe/internal/models"
	"github.com/sagascribe/sagascribe/internal/util"
)

// ErrEmptyTranscript is the fatal segmentation error: an empty or
// malformed transcript produces no segments and aborts the run
var ErrEmptyTranscript = errors.New("transcript is empty or malformed")

// NewTranscript wraps raw text with its estimated token count
func NewTranscript(text string) models.Transcript {
	return models.Transcript{Text: text, EstimatedTokens: util.EstimateTokens(text)}
}

// Segmenter accumulates boundary-delimited spans into segments that fit
// a per-segment token budget
type Segmenter struct {
	budget int
}

// NewSegmenter creates a segmenter for the given token budget
func NewSegmenter(budgetTokens int) *Segmenter {
	return &Segmenter{budget: budgetTokens}
}

// Segment splits the transcript along boundaries. Every produced segment
// estimates at or below the budget; ordered concatenation of the
// segments reproduces the transcript exactly, with no gaps or overlaps.
func (s *Segmenter) Segment(t models.Transcript, boundaries []models.Boundary) ([]models.Segment, error) {
	if strings.TrimSpace(t.Text) == "" {
		return nil, fmt.Errorf("%w: no usable text", ErrEmptyTranscript)
	}
	if s.budget <= 0 {
		return nil, fmt.Errorf("segment token budget must be positive, got %d", s.budget)
	}

	text := t.Text
	budgetChars := util.TokensToChars(s.budget)
	cuts := spanCuts(len(text), boundaries)

	var segments []models.Segment
	cur := -1 // start of the accumulating segment, -1 when empty

	flush := func(end int) {
		if cur < 0 || cur >= end {
			return
		}
		segments = append(segments, newSegment(text, len(segments), cur, end))
		cur = -1
	}

	for i := 0; i+1 < len(cuts); i++ {
		start, end := cuts[i], cuts[i+1]

		if cur < 0 {
			cur = start
		}

		if end-cur <= budgetChars {
			// Span still fits on top of what we have accumulated
			continue
		}

		// Flush what fit so far, then deal with the span itself
		flush(start)

		if end-start <= budgetChars {
			cur = start
			continue
		}

		// A single span over budget gets force-split at sentence
		// boundaries, never mid-word
		for _, piece := range splitOversized(text, start, end, budgetChars) {
			segments = append(segments, newSegment(text, len(segments), piece[0], piece[1]))
		}
		cur = -1
	}
	flush(len(text))

	return segments, nil
}

// newSegment builds an immutable segment over text[start:end)
func newSegment(text string, index, start, end int) models.Segment {
	content := text[start:end]
	return models.Segment{
		Index:           index,
		Start:           start,
		End:             end,
		Content:         content,
		EstimatedTokens: util.EstimateTokens(content),
	}
}

// spanCuts merges the implicit transcript ends with the boundary
// offsets into a sorted, unique list of cut positions
func spanCuts(textLen int, boundaries []models.Boundary) []int {
	cuts := []int{0}
	for _, b := range boundaries {
		if b.Offset > 0 && b.Offset < textLen && b.Offset != cuts[len(cuts)-1] {
			cuts = append(cuts, b.Offset)
		}
	}
	cuts = append(cuts, textLen)
	return cuts
}

// splitOversized cuts text[start:end) into [start,end) pieces each at
// most budgetChars long, preferring sentence ends, then word breaks.
// A pathological run with no break point at all is cut hard so the
// coverage invariant survives.
func splitOversized(text string, start, end, budgetChars int) [][2]int {
	var pieces [][2]int
	for end-start > budgetChars {
		limit := start + budgetChars
		cut := lastBreakBefore(text, start, limit)
		if cut <= start {
			cut = limit
		}
		pieces = append(pieces, [2]int{start, cut})
		start = cut
	}
	pieces = append(pieces, [2]int{start, end})
	return pieces
}

// lastBreakBefore finds the best cut position in (start, limit]:
// the nearest preceding sentence end, else the last whitespace
func lastBreakBefore(text string, start, limit int) int {
	for pos := limit; pos > start; pos-- {
		if isSentenceEnd(text, pos) {
			return pos
		}
	}
	for pos := limit; pos > start; pos-- {
		c := text[pos-1]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			return pos
		}
	}
	return start
}
