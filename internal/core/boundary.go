// ABOUTME: BoundaryDetector finds candidate split points in raw transcript text
// ABOUTME: Scans a prioritized marker table and synthesizes sentence-aligned boundaries as fallback
package core

import (
	"regexp"
	"sort"

	"github.com/sagascribe/sagascribe/internal/models"
)

// Boundaries closer together than this are deduplicated, keeping the
// higher-priority one
const defaultMinBoundaryDistance = 200

// markerRules is the prioritized marker table. Order reflects priority:
// explicit part/session markers beat combat markers beat scene changes
// beat chapter headings.
var markerRules = []struct {
	kind    models.BoundaryKind
	pattern *regexp.Regexp
}{
	{models.BoundaryPart, regexp.MustCompile(`(?mi)^[\s=*#~-]*(?:session|part)[\s:]+(?:\d+|[ivxlc]+|one|two|three|four|five|six|seven|eight|nine|ten)\b`)},
	{models.BoundaryEncounter, regexp.MustCompile(`(?mi)^.{0,80}?\b(?:roll(?:ed|s)? (?:for )?initiative|combat (?:begins|began|starts|started)|encounter (?:begins|began|starts|started)|battle (?:was )?joined)\b`)},
	{models.BoundaryScene, regexp.MustCompile(`(?mi)^(?:later that|meanwhile|elsewhere|the next (?:morning|day|evening|night)|back (?:at|in)|hours later|some time later)\b`)},
	{models.BoundaryChapter, regexp.MustCompile(`(?mi)^[\s=*#~-]*chapter[\s:]+(?:\d+|[ivxlc]+)\b`)},
}

// BoundaryDetector scans transcripts for split points
type BoundaryDetector struct {
	minDistance int
}

// NewBoundaryDetector creates a detector with the default dedup distance
func NewBoundaryDetector() *BoundaryDetector {
	return &BoundaryDetector{minDistance: defaultMinBoundaryDistance}
}

// Detect returns the ordered, deduplicated boundary list for text.
// Offsets are strictly inside (0, len(text)); the segmenter supplies the
// implicit boundaries at both ends.
func (d *BoundaryDetector) Detect(text string) []models.Boundary {
	var found []models.Boundary
	for _, rule := range markerRules {
		for _, loc := range rule.pattern.FindAllStringIndex(text, -1) {
			if loc[0] <= 0 || loc[0] >= len(text) {
				continue
			}
			found = append(found, models.Boundary{Offset: loc[0], Kind: rule.kind})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].Offset < found[j].Offset })
	return d.dedupe(found)
}

// DetectOrSynthesize runs Detect and falls back to evenly spaced
// synthetic boundaries when the text carries no recognizable markers,
// so segmentation always succeeds even on unstructured text.
func (d *BoundaryDetector) DetectOrSynthesize(text string, targetSpanChars int) []models.Boundary {
	if found := d.Detect(text); len(found) > 0 {
		return found
	}
	return d.Synthesize(text, targetSpanChars)
}

// Synthesize produces evenly spaced boundaries roughly targetSpanChars
// apart, each aligned to the nearest sentence end near its target offset
func (d *BoundaryDetector) Synthesize(text string, targetSpanChars int) []models.Boundary {
	if targetSpanChars <= 0 || len(text) <= targetSpanChars {
		return nil
	}

	spans := (len(text) + targetSpanChars - 1) / targetSpanChars
	window := targetSpanChars / 2

	var out []models.Boundary
	prev := 0
	for i := 1; i < spans; i++ {
		target := i * len(text) / spans
		offset := alignToSentenceEnd(text, target, window)
		if offset <= prev || offset >= len(text) {
			continue
		}
		out = append(out, models.Boundary{Offset: offset, Kind: models.BoundarySynthetic})
		prev = offset
	}
	return out
}

// dedupe collapses boundaries closer together than minDistance, keeping
// the higher-priority one; on equal priority the earlier boundary wins.
// Input must be sorted by offset.
func (d *BoundaryDetector) dedupe(sorted []models.Boundary) []models.Boundary {
	var out []models.Boundary
	for _, b := range sorted {
		if len(out) == 0 {
			out = append(out, b)
			continue
		}
		last := out[len(out)-1]
		if b.Offset-last.Offset >= d.minDistance {
			out = append(out, b)
			continue
		}
		if b.Kind.Priority() > last.Kind.Priority() {
			out[len(out)-1] = b
		}
	}
	return out
}

// alignToSentenceEnd finds the position just past the sentence end
// nearest to target, searching up to window chars in both directions.
// Falls back to the target itself when no sentence end is in range.
func alignToSentenceEnd(text string, target, window int) int {
	for delta := 0; delta <= window; delta++ {
		for _, pos := range []int{target + delta, target - delta} {
			if pos <= 0 || pos >= len(text) {
				continue
			}
			if isSentenceEnd(text, pos) {
				return pos
			}
		}
	}
	return target
}

// isSentenceEnd reports whether pos sits just past sentence-ending
// punctuation followed by whitespace
func isSentenceEnd(text string, pos int) bool {
	c := text[pos-1]
	if c != '.' && c != '!' && c != '?' {
		return false
	}
	next := text[pos]
	return next == ' ' || next == '\n' || next == '\t' || next == '\r'
}
