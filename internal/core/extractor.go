// ABOUTME: Element extractor pulling characters, locations, and events from one segment
// ABOUTME: Pure heuristics over a prioritized rule table; identical input yields identical output
package core

import (
	"log"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sagascribe/sagascribe/internal/models"
)

type elementCategory string

const (
	catCharacter elementCategory = "character"
	catLocation  elementCategory = "location"
)

// extractRule is one entry in the data-driven extraction table.
// Rules are evaluated in priority order with first-match-per-category:
// once a candidate is claimed by a category, later rules cannot reassign it.
type extractRule struct {
	category elementCategory
	priority int
	pattern  *regexp.Regexp
	group    int // capture group holding the candidate name
}

var extractRules = []extractRule{
	// Locative prepositional cues claim names as locations first
	{catLocation, 40, regexp.MustCompile(`\b(?:in|at|into|inside|near|through|beneath|beyond)\s+the\s+([A-Z][a-z]+(?:\s+(?:of\s+)?[A-Z][a-z]+){0,2})`), 1},
	{catLocation, 30, regexp.MustCompile(`\b(?:to|toward|towards|from|reached|arrived\s+(?:at|in))\s+(?:the\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})`), 1},
	// Titled names are strong character signals
	{catCharacter, 20, regexp.MustCompile(`\b((?:Sir|Lady|Lord|Captain|Queen|King|Master|Brother|Sister)\s+[A-Z][a-z]+)`), 1},
	// Bare proper-noun-like sequences, filtered by the stopword list
	{catCharacter, 10, regexp.MustCompile(`\b([A-Z][a-z]{2,}(?:\s+[A-Z][a-z]{2,})?)\b`), 1},
}

// actionVerbs anchor the event-window heuristic: a sentence containing
// one becomes a notable event
var actionVerbs = regexp.MustCompile(`\b(?:attacked|fought|defeated|slew|killed|struck|battled|ambushed|charged|vanquished|discovered|found|uncovered|entered|arrived|reached|escaped|fled|rescued|stole|cast|rolled|negotiated|bargained|died|fell|unleashed|summoned)\b`)

// stopwords filters sentence starters and table talk out of the
// proper-noun character heuristic
var stopwords = map[string]bool{
	"The": true, "They": true, "Then": true, "There": true, "That": true, "This": true,
	"When": true, "While": true, "Where": true, "What": true, "Who": true, "Why": true,
	"After": true, "Before": true, "During": true, "Once": true, "Suddenly": true,
	"And": true, "But": true, "With": true, "From": true, "Into": true, "Inside": true,
	"His": true, "Her": true, "Their": true, "She": true, "Him": true, "Our": true,
	"Everyone": true, "Everything": true, "Nothing": true, "Nobody": true, "Somewhere": true,
	"Session": true, "Part": true, "Chapter": true, "Scene": true, "Meanwhile": true,
	"Later": true, "Elsewhere": true, "Next": true, "Back": true, "Hours": true,
	"Initiative": true, "Combat": true, "Encounter": true, "Battle": true,
}

const maxEventChars = 160

// Extractor finds story elements in segment text. It is backend
// independent and never blocks the pipeline: any internal failure
// degrades to an empty extraction.
type Extractor struct{}

// NewExtractor creates a new Extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns candidate characters, locations, and events found in
// the segment, each tagged with the segment index. Output slices are
// sorted and de-duplicated so extraction is idempotent.
func (e *Extractor) Extract(seg models.Segment) (els models.ExtractedElements) {
	els = models.ExtractedElements{SegmentIndex: seg.Index}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Extractor] extraction failed on segment %d, returning empty elements: %v", seg.Index, r)
			els = models.ExtractedElements{SegmentIndex: seg.Index}
		}
	}()

	claimed := make(map[string]elementCategory)
	characters := make(map[string]bool)
	locations := make(map[string]bool)

	// Rules are declared in priority order; first claim wins
	for _, rule := range extractRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(seg.Content, -1) {
			name := strings.TrimSpace(m[rule.group])
			if name == "" || badCandidate(name) {
				continue
			}
			if _, taken := claimed[name]; taken {
				continue
			}
			claimed[name] = rule.category
			switch rule.category {
			case catCharacter:
				characters[name] = true
			case catLocation:
				locations[name] = true
			}
		}
	}

	els.Characters = sortedKeys(characters)
	els.Locations = sortedKeys(locations)
	els.Events = extractEvents(seg.Content)
	return els
}

// badCandidate rejects stopword-led or stopword-only candidates
func badCandidate(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 {
		return true
	}
	// A candidate led by a stopword is a sentence artifact, not a name
	if stopwords[words[0]] {
		return true
	}
	return false
}

// extractEvents returns notable-event sentences in textual order
func extractEvents(text string) []string {
	var events []string
	seen := make(map[string]bool)

	for _, sentence := range sentencesOf(text) {
		if !actionVerbs.MatchString(sentence) {
			continue
		}
		event := condenseWhitespace(sentence)
		if len(event) > maxEventChars {
			event = truncateRuneSafe(event, maxEventChars)
			if idx := strings.LastIndex(event, " "); idx > 0 {
				event = event[:idx]
			}
		}
		if !seen[event] {
			seen[event] = true
			events = append(events, event)
		}
	}
	return events
}

// sentencesOf splits text into sentences on ., ! and ? followed by space
func sentencesOf(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' && text[i+1] != '\t' && text[i+1] != '\r' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func condenseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRuneSafe cuts s to at most max bytes, backing the cut up to a
// rune boundary so the result is always valid UTF-8
func truncateRuneSafe(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
