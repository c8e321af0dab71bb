// ABOUTME: Evaluation metrics for synthesis benchmarks
// ABOUTME: Deterministic entity recall and story faithfulness against ground truth

package eval

import (
	"fmt"
	"strings"

	"github.com/sagascribe/sagascribe/internal/models"
)

// MetricsCalculator computes benchmark scores against ground truth
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateEntityRecall computes recall (0.0-1.0) of expected characters
// and locations against the entities the pipeline actually recovered
func (m *MetricsCalculator) CalculateEntityRecall(
	recovered []string,
	expected []string,
) (float64, string) {
	if len(expected) == 0 {
		return 1.0, "No entities expected"
	}

	recoveredUpper := strings.ToUpper(strings.Join(recovered, " | "))

	foundCount := 0
	missingItems := []string{}
	for _, item := range expected {
		if strings.Contains(recoveredUpper, strings.ToUpper(item)) {
			foundCount++
		} else {
			missingItems = append(missingItems, item)
		}
	}

	recall := float64(foundCount) / float64(len(expected))
	if recall == 1.0 {
		return 1.0, "Perfect entity recall - all expected entities recovered"
	}
	return recall, fmt.Sprintf("Partial entity recall (%.2f) - missing: %v", recall, missingItems)
}

// CalculateFaithfulness computes faithfulness score (0.0-1.0)
// Faithfulness = Does the story carry the expected content without
// forbidden content?
func (m *MetricsCalculator) CalculateFaithfulness(
	story string,
	expectedInStory []string,
	forbiddenInStory []string,
) (float64, string) {
	storyUpper := strings.ToUpper(story)

	missingItems := []string{}
	for _, expected := range expectedInStory {
		if !strings.Contains(storyUpper, strings.ToUpper(expected)) {
			missingItems = append(missingItems, expected)
		}
	}

	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInStory {
		if strings.Contains(storyUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	if len(missingItems) == 0 && len(forbiddenFound) == 0 {
		return 1.0, "Perfect faithfulness - story matches expected ground truth"
	}
	if len(missingItems) > 0 && len(forbiddenFound) > 0 {
		return 0.0, fmt.Sprintf(
			"Faithfulness failure - missing expected items: %v, forbidden items found: %v",
			missingItems, forbiddenFound,
		)
	}
	if len(missingItems) > 0 {
		return 0.5, fmt.Sprintf("Partial faithfulness - missing expected items: %v", missingItems)
	}
	return 0.5, fmt.Sprintf("Partial faithfulness - forbidden items found: %v", forbiddenFound)
}

// EvaluateTest runs full evaluation of one pipeline result
func (m *MetricsCalculator) EvaluateTest(
	scenario TestScenario,
	result models.SynthesisResult,
) TestResult {
	recovered := append(append([]string{}, result.Characters...), result.Locations...)
	expected := append(append([]string{}, scenario.GroundTruth.ExpectedCharacters...),
		scenario.GroundTruth.ExpectedLocations...)

	recall, recallDetail := m.CalculateEntityRecall(recovered, expected)
	faithfulness, faithfulnessDetail := m.CalculateFaithfulness(
		result.StoryText,
		scenario.GroundTruth.ExpectedInStory,
		scenario.GroundTruth.ForbiddenInStory,
	)

	overallScore := (recall + faithfulness) / 2.0

	// A passing run requires the structural expectations too
	status := "PASS"
	if recall < 0.9 || faithfulness < 0.9 {
		status = "FAIL"
	}
	if !result.Success {
		status = "FAIL"
	}
	if result.SegmentsProcessed < scenario.GroundTruth.MinSegments {
		status = "FAIL"
	}
	if result.CompletenessScore < scenario.GroundTruth.MinCompleteness {
		status = "FAIL"
	}

	storyPreview := result.StoryText
	if len(storyPreview) > 200 {
		storyPreview = storyPreview[:200]
	}

	return TestResult{
		TestID:            scenario.ID,
		TestName:          scenario.Name,
		EntityRecallScore: recall,
		FaithfulnessScore: faithfulness,
		OverallScore:      overallScore,
		Status:            status,
		Details: map[string]interface{}{
			"recall_detail":       recallDetail,
			"faithfulness_detail": faithfulnessDetail,
			"segments_processed":  result.SegmentsProcessed,
			"completeness_score":  result.CompletenessScore,
			"failover_events":     len(result.FailoverEvents),
			"story_preview":       storyPreview,
		},
	}
}
