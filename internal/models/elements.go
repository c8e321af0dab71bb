// ABOUTME: Extracted story elements produced by the heuristic element extractor
// ABOUTME: Characters, locations, and notable events tagged with their source segment
package models

// PlotPoint is a notable event tagged with the segment it came from
type PlotPoint struct {
	SegmentIndex int    `json:"segment_index"`
	Description  string `json:"description"`
}

// ExtractedElements holds candidate story elements found in one segment.
// All slices are sorted and de-duplicated by the extractor so identical
// input always yields identical output.
type ExtractedElements struct {
	SegmentIndex int      `json:"segment_index"`
	Characters   []string `json:"characters"`
	Locations    []string `json:"locations"`
	Events       []string `json:"events"`
}
