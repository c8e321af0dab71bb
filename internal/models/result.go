// ABOUTME: SynthesisResult is the sole durable output of a pipeline run
// ABOUTME: Carries the final story, entity lists, completeness score, and run telemetry
package models

// Failure reason codes surfaced on unsuccessful runs
const (
	ReasonSegmentationError    = "segmentation_error"
	ReasonAllBackendsExhausted = "all_backends_exhausted"
	ReasonBackendConfiguration = "backend_configuration"
	ReasonCancelled            = "cancelled"
)

// SynthesisResult is the final output handed to the caller. It is never
// mutated after creation. Callers always receive a result rather than an
// error; fatal conditions are reported through Success and FailureReason.
type SynthesisResult struct {
	RunID             string          `json:"run_id"`
	StoryText         string          `json:"story_text"`
	SegmentsProcessed int             `json:"segments_processed"`
	Characters        []string        `json:"characters"`
	Locations         []string        `json:"locations"`
	PlotPoints        []string        `json:"plot_points"`
	CompletenessScore float64         `json:"completeness_score"`
	FailoverEvents    []FailoverEvent `json:"failover_events"`
	ProcessingTime    float64         `json:"processing_time_seconds"`
	Success           bool            `json:"success"`
	FailureReason     string          `json:"failure_reason,omitempty"`
}
