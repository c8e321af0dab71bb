// ABOUTME: Synthesizer merges per-segment narrations and final memory into one story
// ABOUTME: Computes the completeness score: the fraction of known elements present in the text
package core

import (
	"strings"

	"github.com/sagascribe/sagascribe/internal/models"
)

// Adjacent narrations whose opening sentences share at least this
// token-overlap ratio are treated as restating the same scene-setting
const openingOverlapThreshold = 0.6

// How many plot threads the closing paragraph recaps
const closingThreadCount = 8

// Synthesizer assembles the final story
type Synthesizer struct{}

// NewSynthesizer creates a new Synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Compose concatenates narrations in order with a light connective pass,
// appends a closing paragraph built from memory, and scores completeness
func (s *Synthesizer) Compose(narrations []models.SegmentNarration, mem *SessionMemory) (string, float64) {
	parts := s.stitch(narrations)

	if closing := s.closingParagraph(mem); closing != "" {
		parts = append(parts, closing)
	}

	story := strings.Join(parts, "\n\n")
	return story, s.completeness(story, mem)
}

// stitch joins narrations in order, dropping a duplicated opening
// sentence when two adjacent segments restate the same scene-setting
func (s *Synthesizer) stitch(narrations []models.SegmentNarration) []string {
	var parts []string
	prevOpening := ""

	for _, n := range narrations {
		text := strings.TrimSpace(n.Text)
		if text == "" {
			continue
		}

		opening := firstSentence(text)
		if prevOpening != "" && tokenOverlap(prevOpening, opening) >= openingOverlapThreshold {
			text = strings.TrimSpace(strings.TrimPrefix(text, opening))
		}
		if text == "" {
			continue
		}

		parts = append(parts, text)
		prevOpening = opening
	}
	return parts
}

// closingParagraph summarizes the final character roster and open plot
// threads from session memory
func (s *Synthesizer) closingParagraph(mem *SessionMemory) string {
	characters := mem.Characters()
	locations := mem.Locations()
	points := mem.PlotPoints()

	if len(characters) == 0 && len(locations) == 0 && len(points) == 0 {
		return ""
	}

	var sb strings.Builder
	if len(characters) > 0 {
		sb.WriteString("When the dust settled, the tale belonged to ")
		sb.WriteString(formatRoster(characters))
		sb.WriteString(".")
	}
	if len(locations) > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("Their road had carried them through ")
		sb.WriteString(formatRoster(locations))
		sb.WriteString(".")
	}
	if len(points) > 0 {
		start := len(points) - closingThreadCount
		if start < 0 {
			start = 0
		}
		sb.WriteString("\n\nThreads of the story still echo: ")
		var threads []string
		for _, p := range points[start:] {
			threads = append(threads, strings.TrimSuffix(p.Description, "."))
		}
		sb.WriteString(strings.Join(threads, "; "))
		sb.WriteString(".")
	}
	return sb.String()
}

// completeness is the fraction of registered characters, locations, and
// plot points that appear verbatim or near-verbatim in the final text
func (s *Synthesizer) completeness(story string, mem *SessionMemory) float64 {
	lowerStory := strings.ToLower(story)
	storyWords := wordSet(lowerStory)

	total, hits := 0, 0

	for _, name := range append(mem.Characters(), mem.Locations()...) {
		total++
		if strings.Contains(lowerStory, strings.ToLower(name)) {
			hits++
		}
	}

	for _, p := range mem.PlotPoints() {
		total++
		if phrasePresent(p.Description, lowerStory, storyWords) {
			hits++
		}
	}

	if total == 0 {
		return 1.0
	}
	return float64(hits) / float64(total)
}

// phrasePresent accepts a verbatim hit or a near-verbatim one where
// most of the phrase's significant words appear in the text
func phrasePresent(phrase, lowerStory string, storyWords map[string]bool) bool {
	lowerPhrase := strings.ToLower(phrase)
	if strings.Contains(lowerStory, lowerPhrase) {
		return true
	}

	significant := 0
	found := 0
	for _, w := range strings.Fields(lowerPhrase) {
		w = strings.Trim(w, ".,;:!?\"'")
		if len(w) <= 3 {
			continue
		}
		significant++
		if storyWords[w] {
			found++
		}
	}
	if significant == 0 {
		return false
	}
	return float64(found)/float64(significant) >= openingOverlapThreshold
}

// tokenOverlap is the fraction of a's tokens also present in b,
// computed over lowercased words
func tokenOverlap(a, b string) float64 {
	aWords := strings.Fields(strings.ToLower(a))
	if len(aWords) == 0 {
		return 0
	}
	bSet := wordSet(strings.ToLower(b))

	shared := 0
	for _, w := range aWords {
		if bSet[strings.Trim(w, ".,;:!?\"'")] {
			shared++
		}
	}
	return float64(shared) / float64(len(aWords))
}

func wordSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(lower) {
		set[strings.Trim(w, ".,;:!?\"'")] = true
	}
	return set
}

// firstSentence returns the first sentence of text, or all of it when
// no sentence end is found
func firstSentence(text string) string {
	sentences := sentencesOf(text)
	if len(sentences) == 0 {
		return text
	}
	return sentences[0]
}

// formatRoster joins names with commas and a final "and"
func formatRoster(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
