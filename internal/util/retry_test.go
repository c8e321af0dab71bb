// ABOUTME: Tests for the backoff calculation used between backend retries
// ABOUTME: Exercises the default 2s retry delay and the configurable retry range
package util

import (
	"testing"
	"time"
)

// The default retry delay the backends are configured with
const defaultRetryDelay = 2 * time.Second

func TestCalculateBackoff_NonPositiveAttempts(t *testing.T) {
	for _, attempt := range []int{0, -1, -100} {
		if got := CalculateBackoff(defaultRetryDelay, attempt); got != 0 {
			t.Errorf("CalculateBackoff(attempt=%d) = %v, want 0", attempt, got)
		}
	}
}

func TestCalculateBackoff_GrowthWithinJitterBounds(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		attempt int
	}{
		{"first retry at default delay", defaultRetryDelay, 1},
		{"second retry at default delay", defaultRetryDelay, 2},
		{"third retry at default delay", defaultRetryDelay, 3},
		{"short configured delay", 100 * time.Millisecond, 1},
		{"short delay deep attempt", 100 * time.Millisecond, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Expected base doubles per attempt; jitter is ±25%
			expected := tt.base * time.Duration(1<<uint(tt.attempt))
			if expected > 30*time.Second {
				expected = 30 * time.Second
			}
			lo, hi := expected*3/4, expected*5/4

			got := CalculateBackoff(tt.base, tt.attempt)
			if got < lo || got > hi {
				t.Errorf("CalculateBackoff(%v, %d) = %v, want between %v and %v",
					tt.base, tt.attempt, got, lo, hi)
			}
		})
	}
}

func TestCalculateBackoff_CappedForMaxConfiguredRetries(t *testing.T) {
	// Attempts up to the configured maximum of 10 must respect the 30s
	// cap: 2^10 * 2s would be 2048s uncapped
	maxAllowed := 37500 * time.Millisecond // 30s + 25% jitter

	for attempt := 4; attempt <= 10; attempt++ {
		got := CalculateBackoff(defaultRetryDelay, attempt)
		if got > maxAllowed {
			t.Errorf("attempt %d: backoff = %v, want <= %v", attempt, got, maxAllowed)
		}
		if got < 0 {
			t.Errorf("attempt %d: backoff is negative", attempt)
		}
	}
}

func TestCalculateBackoff_OverflowSafeAttempts(t *testing.T) {
	// Attempt values far past the configured range must not overflow
	got := CalculateBackoff(defaultRetryDelay, 100)
	if got < 0 || got > 37500*time.Millisecond {
		t.Errorf("CalculateBackoff(attempt=100) = %v, want within the capped range", got)
	}
}

func TestCalculateBackoff_JitterVaries(t *testing.T) {
	// 4s base for attempt 1: samples must vary and stay within 3s-5s
	base := defaultRetryDelay
	first := CalculateBackoff(base, 1)

	varied := false
	for i := 0; i < 100; i++ {
		sample := CalculateBackoff(base, 1)
		if sample != first {
			varied = true
		}
		if sample < 3*time.Second || sample > 5*time.Second {
			t.Fatalf("sample %d = %v, want between 3s and 5s", i, sample)
		}
	}
	if !varied {
		t.Error("jitter should vary across samples, all 100 were identical")
	}
}
