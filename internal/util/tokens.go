// ABOUTME: Token estimation shared by the segmenter, session memory, and backends
// ABOUTME: Uses the 4 chars ≈ 1 token approximation consistently across the pipeline
package util

// CharsPerToken is the character-to-token approximation used everywhere.
// Budget compliance holds as long as every component uses the same estimator.
const CharsPerToken = 4

// EstimateTokens approximates the token count of text, rounding up
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + CharsPerToken - 1) / CharsPerToken
}

// TokensToChars converts a token budget into a character budget
func TokensToChars(tokens int) int {
	return tokens * CharsPerToken
}
