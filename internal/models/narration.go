// ABOUTME: Per-segment narration records and failover events
// ABOUTME: Produced strictly in segment index order by the narrator loop
package models

import "time"

// StyleHint tells a backend where a segment sits in the overall story
type StyleHint string

const (
	StyleOpening StyleHint = "opening"
	StyleMiddle  StyleHint = "middle"
	StyleClosing StyleHint = "closing"
)

// StyleForPosition derives the style hint from a segment's position
func StyleForPosition(index, total int) StyleHint {
	switch {
	case index == 0:
		return StyleOpening
	case index == total-1 && total > 1:
		return StyleClosing
	default:
		return StyleMiddle
	}
}

// SegmentNarration is the generated text for one segment.
// Immutable once produced.
type SegmentNarration struct {
	SegmentIndex int           `json:"segment_index"`
	Text         string        `json:"text"`
	Backend      string        `json:"backend"`
	Success      bool          `json:"success"`
	Elapsed      time.Duration `json:"elapsed"`
}

// FailoverEvent records a switch from one backend to the next for the
// remainder of a run
type FailoverEvent struct {
	SegmentIndex int       `json:"segment_index"`
	FromBackend  string    `json:"from_backend"`
	ToBackend    string    `json:"to_backend"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}
