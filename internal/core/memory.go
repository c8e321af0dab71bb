// ABOUTME: SessionMemory accumulates run-scoped story state across segments
// ABOUTME: Entity sets grow monotonically; only the free-text summary is ever compacted
package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sagascribe/sagascribe/internal/models"
)

// How many of the most recent plot points a context digest carries
const digestRecentPlotPoints = 5

// SessionMemory is created empty at run start and discarded at run end;
// it is never shared across runs. Character and location sets only ever
// grow; the running summary is bounded by periodic compaction.
type SessionMemory struct {
	// lowercased name → first-seen casing
	characters map[string]string
	locations  map[string]string
	plotPoints []models.PlotPoint
	summary    []string // one line per registered segment
	summaryCap int
}

// NewSessionMemory creates empty memory with the given summary byte cap
func NewSessionMemory(summaryCap int) *SessionMemory {
	return &SessionMemory{
		characters: make(map[string]string),
		locations:  make(map[string]string),
		summaryCap: summaryCap,
	}
}

// Register merges one segment's extracted elements into memory.
// Entity merging is case-insensitive set union; plot points append in
// arrival order. Nothing is ever removed.
func (m *SessionMemory) Register(els models.ExtractedElements) {
	for _, name := range els.Characters {
		key := strings.ToLower(name)
		if _, seen := m.characters[key]; !seen {
			m.characters[key] = name
		}
	}
	for _, name := range els.Locations {
		key := strings.ToLower(name)
		if _, seen := m.locations[key]; !seen {
			m.locations[key] = name
		}
	}
	for _, event := range els.Events {
		m.plotPoints = append(m.plotPoints, models.PlotPoint{
			SegmentIndex: els.SegmentIndex,
			Description:  event,
		})
	}

	m.appendSummaryLine(els)
	if m.summaryLen() > m.summaryCap {
		m.Compact()
	}
}

// SnapshotContext returns a bounded digest of everything registered so
// far, sized to fit within maxChars. Sections are dropped lowest-value
// first: summary, then older plot points; entity lists survive longest.
func (m *SessionMemory) SnapshotContext(maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	entities := m.entitySection()
	points := m.plotPointSection(digestRecentPlotPoints)
	summary := m.summarySection()

	for _, digest := range []string{
		joinSections(entities, points, summary),
		joinSections(entities, points),
		joinSections(entities),
	} {
		if len(digest) <= maxChars {
			return digest
		}
	}

	// Even the entity lists alone are over budget: hard-truncate at a
	// line break so the digest stays parseable
	cut := truncateRuneSafe(entities, maxChars)
	if idx := strings.LastIndex(cut, "\n"); idx > 0 {
		return cut[:idx]
	}
	return cut
}

// Compact shrinks the running summary, retaining the most recent lines
// and the highest-salience older lines (those naming the most known
// entities) instead of growing unboundedly
func (m *SessionMemory) Compact() {
	target := m.summaryCap / 2
	if m.summaryLen() <= target || len(m.summary) <= 1 {
		return
	}

	// Always keep the newest half of the lines
	keepFrom := len(m.summary) / 2
	recent := m.summary[keepFrom:]
	older := m.summary[:keepFrom]

	// Rank older lines by how many known entities they mention
	type scored struct {
		line  string
		score int
		pos   int
	}
	ranked := make([]scored, 0, len(older))
	for i, line := range older {
		ranked = append(ranked, scored{line, m.salience(line), i})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	budget := target - totalLen(recent)
	keep := make(map[int]bool)
	for _, s := range ranked {
		if budget-len(s.line)-1 < 0 {
			continue
		}
		budget -= len(s.line) + 1
		keep[s.pos] = true
	}

	var compacted []string
	for i, line := range older {
		if keep[i] {
			compacted = append(compacted, line)
		}
	}
	m.summary = append(compacted, recent...)
}

// Characters returns the known character roster, sorted, original casing
func (m *SessionMemory) Characters() []string {
	return sortedValues(m.characters)
}

// Locations returns the known locations, sorted, original casing
func (m *SessionMemory) Locations() []string {
	return sortedValues(m.locations)
}

// PlotPoints returns all plot points in arrival order
func (m *SessionMemory) PlotPoints() []models.PlotPoint {
	out := make([]models.PlotPoint, len(m.plotPoints))
	copy(out, m.plotPoints)
	return out
}

func (m *SessionMemory) appendSummaryLine(els models.ExtractedElements) {
	var parts []string
	if len(els.Characters) > 0 {
		parts = append(parts, "featuring "+strings.Join(els.Characters, ", "))
	}
	if len(els.Locations) > 0 {
		parts = append(parts, "at "+strings.Join(els.Locations, ", "))
	}
	if len(els.Events) > 0 {
		parts = append(parts, els.Events[0])
	}
	if len(parts) == 0 {
		return
	}
	m.summary = append(m.summary, fmt.Sprintf("Segment %d: %s", els.SegmentIndex, strings.Join(parts, "; ")))
}

func (m *SessionMemory) summaryLen() int {
	return totalLen(m.summary)
}

// salience counts known-entity mentions in a summary line
func (m *SessionMemory) salience(line string) int {
	lower := strings.ToLower(line)
	score := 0
	for key := range m.characters {
		if strings.Contains(lower, key) {
			score++
		}
	}
	for key := range m.locations {
		if strings.Contains(lower, key) {
			score++
		}
	}
	return score
}

func (m *SessionMemory) entitySection() string {
	var sb strings.Builder
	sb.WriteString("CHARACTERS: ")
	sb.WriteString(strings.Join(m.Characters(), ", "))
	sb.WriteString("\nLOCATIONS: ")
	sb.WriteString(strings.Join(m.Locations(), ", "))
	return sb.String()
}

func (m *SessionMemory) plotPointSection(n int) string {
	if len(m.plotPoints) == 0 {
		return ""
	}
	start := len(m.plotPoints) - n
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	sb.WriteString("RECENT PLOT POINTS:")
	for _, p := range m.plotPoints[start:] {
		sb.WriteString("\n- ")
		sb.WriteString(p.Description)
	}
	return sb.String()
}

func (m *SessionMemory) summarySection() string {
	if len(m.summary) == 0 {
		return ""
	}
	return "SUMMARY:\n" + strings.Join(m.summary, "\n")
}

func joinSections(sections ...string) string {
	var nonEmpty []string
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func totalLen(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	return n
}

func sortedValues(set map[string]string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
