// ABOUTME: Segment represents one contiguous slice of a transcript sized to a backend call
// ABOUTME: Segments are immutable once produced and cover the transcript exactly
package models

// Segment is a contiguous, non-overlapping slice of the transcript.
// Content equals Transcript.Text[Start:End]; ordered concatenation of
// all segments reproduces the original text exactly.
type Segment struct {
	Index           int    `json:"index"`
	Start           int    `json:"start"`
	End             int    `json:"end"`
	Content         string `json:"content"`
	EstimatedTokens int    `json:"estimated_tokens"`
}
