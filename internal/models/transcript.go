// ABOUTME: Transcript and Boundary types for the narration pipeline
// ABOUTME: Boundaries are detected or synthesized split points inside a transcript
package models

// Transcript is the raw session text handed to a single pipeline run
type Transcript struct {
	Text            string `json:"text"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

// BoundaryKind classifies how a split point was found
type BoundaryKind string

const (
	BoundaryPart      BoundaryKind = "PART"
	BoundaryEncounter BoundaryKind = "ENCOUNTER"
	BoundaryScene     BoundaryKind = "SCENE"
	BoundaryChapter   BoundaryKind = "CHAPTER"
	BoundarySynthetic BoundaryKind = "SYNTHETIC"
)

// Priority orders boundary kinds for deduplication; higher wins
func (k BoundaryKind) Priority() int {
	switch k {
	case BoundaryPart:
		return 4
	case BoundaryEncounter:
		return 3
	case BoundaryScene:
		return 2
	case BoundaryChapter:
		return 1
	default:
		return 0
	}
}

// Boundary is a candidate split point at a character offset in the transcript
type Boundary struct {
	Offset int          `json:"offset"`
	Kind   BoundaryKind `json:"kind"`
}
