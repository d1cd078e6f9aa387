package cleaner

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty input: got %d, want 0", got)
	}
	if got := EstimateTokens("ab"); got != 1 {
		t.Errorf("short input rounds up to 1, got %d", got)
	}
	if got := EstimateTokens(strings.Repeat("x", 300)); got != 100 {
		t.Errorf("300 runes: got %d, want 100", got)
	}
	// Multi-byte runes count as runes, not bytes.
	if got := EstimateTokens("日本語"); got != 1 {
		t.Errorf("3 CJK runes: got %d, want 1", got)
	}
}
