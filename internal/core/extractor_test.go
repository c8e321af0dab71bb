// ABOUTME: Tests for heuristic element extraction from segment text
// ABOUTME: Verifies rule priorities, stopword filtering, and idempotence
package core

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sagascribe/sagascribe/internal/models"
)

func segmentOf(index int, text string) models.Segment {
	return models.Segment{Index: index, Start: 0, End: len(text), Content: text}
}

func TestExtract_Characters(t *testing.T) {
	e := NewExtractor()
	seg := segmentOf(0, "Kira drew her blade while Tormund held the door. Sir Aldric watched from the stairs.")

	els := e.Extract(seg)

	for _, want := range []string{"Kira", "Tormund", "Sir Aldric"} {
		if !containsString(els.Characters, want) {
			t.Errorf("Characters = %v, missing %q", els.Characters, want)
		}
	}
	if els.SegmentIndex != 0 {
		t.Errorf("SegmentIndex = %d, want 0", els.SegmentIndex)
	}
}

func TestExtract_StopwordsFiltered(t *testing.T) {
	e := NewExtractor()
	seg := segmentOf(1, "The party rested. Then everyone slept. Suddenly a horn sounded. When morning came they left.")

	els := e.Extract(seg)

	for _, banned := range []string{"The", "Then", "Suddenly", "When"} {
		if containsString(els.Characters, banned) {
			t.Errorf("Characters = %v should not contain stopword %q", els.Characters, banned)
		}
	}
}

func TestExtract_LocativeCuesClaimLocations(t *testing.T) {
	e := NewExtractor()
	seg := segmentOf(2, "Kira slipped into the Whispering Woods while Tormund waited at the gate. They met again in the Broken Anvil.")

	els := e.Extract(seg)

	for _, want := range []string{"Whispering Woods", "Broken Anvil"} {
		if !containsString(els.Locations, want) {
			t.Errorf("Locations = %v, missing %q", els.Locations, want)
		}
	}
	// A name claimed as a location must not double as a character
	for _, loc := range els.Locations {
		if containsString(els.Characters, loc) {
			t.Errorf("%q claimed by both categories", loc)
		}
	}
}

func TestExtract_Events(t *testing.T) {
	e := NewExtractor()
	seg := segmentOf(3, "The group talked for an hour. Kira attacked the goblin chief. Later they discovered a hidden shrine.")

	els := e.Extract(seg)

	if len(els.Events) != 2 {
		t.Fatalf("Events = %v, want 2 entries", els.Events)
	}
	if els.Events[0] != "Kira attacked the goblin chief." {
		t.Errorf("first event = %q", els.Events[0])
	}
	if els.Events[1] != "Later they discovered a hidden shrine." {
		t.Errorf("second event = %q", els.Events[1])
	}
}

func TestExtract_LongEventTruncatedAtWord(t *testing.T) {
	e := NewExtractor()
	long := "Kira attacked the enormous horde of shrieking goblins that had been gathering strength in the abandoned mine for months while the villagers hid behind barricades of overturned carts and prayed."
	els := e.Extract(segmentOf(4, long))

	if len(els.Events) != 1 {
		t.Fatalf("Events = %v, want 1 entry", els.Events)
	}
	event := els.Events[0]
	if len(event) > 160 {
		t.Errorf("event length = %d, want <= 160", len(event))
	}
	if event[len(event)-1] == ' ' {
		t.Error("truncated event should not end with a space")
	}
}

func TestExtract_EventTruncationKeepsValidUTF8(t *testing.T) {
	e := NewExtractor()
	// One unbroken accented word long enough that the byte cut would land
	// inside a two-byte rune
	long := "A" + strings.Repeat("é", 100) + " attacked the gate."
	els := e.Extract(segmentOf(7, long))

	if len(els.Events) != 1 {
		t.Fatalf("Events = %v, want 1 entry", els.Events)
	}
	event := els.Events[0]
	if len(event) > 160 {
		t.Errorf("event length = %d, want <= 160", len(event))
	}
	if !utf8.ValidString(event) {
		t.Errorf("truncated event is not valid UTF-8: %q", event)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"fits", "abc", 10, "abc"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"backs up over a split rune", "aéb", 2, "a"},
		{"cut on a rune boundary", "aéb", 3, "aé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRuneSafe(tt.s, tt.max); got != tt.want {
				t.Errorf("truncateRuneSafe(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor()
	seg := segmentOf(5, "Sir Aldric fought the wraith at the Sunken Chapel. Elspeth found the reliquary. Kira fled toward Ravenholt.")

	first := e.Extract(seg)
	second := e.Extract(seg)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtract_EmptySegment(t *testing.T) {
	e := NewExtractor()
	els := e.Extract(segmentOf(6, ""))

	if len(els.Characters) != 0 || len(els.Locations) != 0 || len(els.Events) != 0 {
		t.Errorf("empty segment should extract nothing, got %+v", els)
	}
	if els.SegmentIndex != 6 {
		t.Errorf("SegmentIndex = %d, want 6", els.SegmentIndex)
	}
}

func TestExtract_SortedOutput(t *testing.T) {
	e := NewExtractor()
	els := e.Extract(segmentOf(7, "Zara nodded at Brennan. Marcus shrugged."))

	for i := 1; i < len(els.Characters); i++ {
		if els.Characters[i] < els.Characters[i-1] {
			t.Errorf("Characters not sorted: %v", els.Characters)
		}
	}
}

func TestSentencesOf(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single", "One sentence.", 1},
		{"three", "One. Two! Three?", 3},
		{"decimal point not a break", "They paid 3.50 gold. Then left.", 2},
		{"trailing fragment", "Complete. And a fragment", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sentencesOf(tt.text); len(got) != tt.want {
				t.Errorf("sentencesOf(%q) = %d sentences %v, want %d", tt.text, len(got), got, tt.want)
			}
		})
	}
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
