// ABOUTME: Tests for the deterministic offline backend
// ABOUTME: Verifies reproducibility, budget compliance, and style framing
package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sagascribe/sagascribe/internal/models"
	"github.com/sagascribe/sagascribe/internal/util"
)

func TestOffline_Deterministic(t *testing.T) {
	o := NewOffline(2000)
	digest := "CHARACTERS: Kira, Tormund\nLOCATIONS: Ravenholt"
	segment := "Kira crept through the gate. Tormund followed with his axe drawn."

	first, err := o.Narrate(context.Background(), segment, digest, models.StyleMiddle)
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	second, err := o.Narrate(context.Background(), segment, digest, models.StyleMiddle)
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}

	if first != second {
		t.Error("offline narration should be identical for identical input")
	}
}

func TestOffline_StyleFraming(t *testing.T) {
	o := NewOffline(2000)
	digest := "CHARACTERS: Kira, Tormund, Elspeth"
	segment := "The party met at the tavern."

	tests := []struct {
		style models.StyleHint
		want  string
	}{
		{models.StyleOpening, "The session began with Kira, Tormund, and Elspeth"},
		{models.StyleMiddle, "The tale continued."},
		{models.StyleClosing, "As the session drew toward its close"},
	}

	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			got, err := o.Narrate(context.Background(), segment, digest, tt.style)
			if err != nil {
				t.Fatalf("Narrate() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("narration %q should contain %q", got, tt.want)
			}
		})
	}
}

func TestOffline_OpeningWithoutCharacters(t *testing.T) {
	o := NewOffline(2000)

	got, err := o.Narrate(context.Background(), "Dice hit the table.", "", models.StyleOpening)
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if !strings.HasPrefix(got, "The session began.") {
		t.Errorf("narration = %q, want generic opening frame", got)
	}
}

func TestOffline_BudgetCompliance(t *testing.T) {
	o := NewOffline(100) // tiny budget: 400 chars
	long := strings.Repeat("The goblins pressed the attack from the ridge. ", 50)

	got, err := o.Narrate(context.Background(), long, "", models.StyleMiddle)
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}

	if est := util.EstimateTokens(got); est > o.MaxTokensPerSegment() {
		t.Errorf("narration estimates %d tokens, budget is %d", est, o.MaxTokensPerSegment())
	}

	// Must end on a whole word
	if strings.HasSuffix(got, "-") || strings.HasSuffix(got, " ") {
		t.Errorf("narration should end cleanly, got %q", got[len(got)-10:])
	}
}

func TestOffline_CancelledContext(t *testing.T) {
	o := NewOffline(2000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The context error comes back as-is so the narrator can tell
	// cancellation apart from a backend failure
	_, err := o.Narrate(ctx, "text", "", models.StyleMiddle)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Narrate() error = %v, want context.Canceled", err)
	}
}

func TestTrimToSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     string
	}{
		{"fits entirely", "One. Two.", 100, "One. Two."},
		{"cuts at sentence end", "First sentence. Second sentence. Third sentence.", 34, "First sentence. Second sentence."},
		{"falls back to word break", "no sentence punctuation in here at all", 20, "no sentence"},
		{"zero budget", "Anything.", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimToSentences(tt.text, tt.maxChars); got != tt.want {
				t.Errorf("trimToSentences(%q, %d) = %q, want %q", tt.text, tt.maxChars, got, tt.want)
			}
		})
	}
}

func TestDigestList(t *testing.T) {
	digest := "CHARACTERS: Kira, Tormund\nLOCATIONS: Ravenholt Keep\nSUMMARY: stuff"

	chars := digestList(digest, "CHARACTERS:")
	if len(chars) != 2 || chars[0] != "Kira" || chars[1] != "Tormund" {
		t.Errorf("digestList(CHARACTERS) = %v, want [Kira Tormund]", chars)
	}

	locs := digestList(digest, "LOCATIONS:")
	if len(locs) != 1 || locs[0] != "Ravenholt Keep" {
		t.Errorf("digestList(LOCATIONS) = %v, want [Ravenholt Keep]", locs)
	}

	if missing := digestList(digest, "ITEMS:"); missing != nil {
		t.Errorf("digestList(ITEMS) = %v, want nil", missing)
	}
}
