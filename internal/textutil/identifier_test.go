package textutil

import (
	"slices"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Speaker", "speaker"},
		{"  child gaze ", "child_gaze"},
		{"speaker-ordinal", "speaker_ordinal"},
		{"2nd_pass", "_2nd_pass"},
		{"__", "unknown"},
		{"", "unknown"},
		{"émotion", "motion"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueTokens(t *testing.T) {
	got := UniqueTokens([]string{"Onset", "a-b", "a_b", "A B"}, "onset")
	want := []string{"onset_2", "a_b", "a_b_2", "a_b_3"}
	if !slices.Equal(got, want) {
		t.Fatalf("UniqueTokens = %v, want %v", got, want)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	if got := QuoteIdentifier(`we"ird`); got != `"we""ird"` {
		t.Fatalf("QuoteIdentifier = %s", got)
	}
}
