package timestamp

import (
	"errors"
	"math"
	"testing"
	"time"

	"govyu/internal/faults"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Timestamp
	}{
		{"00:00:00:000", 0},
		{"00:00:00:001", 1},
		{"00:00:01:000", 1000},
		{"00:01:00:000", 60_000},
		{"01:00:00:000", 3_600_000},
		{"01:02:03:004", 3_723_004},
		{"23:59:59:999", 86_399_999},
		{"100:00:00:000", 360_000_000},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "00:00:00", "00:00:00:000:000", "aa:00:00:000", "00:-1:00:000", "00:00:00:1.5", "00:+1:00:000",
		"3000000000000:00:00:000", "2562047788015:12:55:807", "00:00:01:9223372036854775807"} {
		if _, err := Parse(in); !errors.Is(err, faults.ErrFormat) {
			t.Fatalf("Parse(%q) error = %v, want ErrFormat", in, err)
		}
	}
}

func TestParseLargestTimestamp(t *testing.T) {
	const text = "2562047788015:12:55:806"
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	if got != Max {
		t.Fatalf("Parse(%q) = %d, want %d", text, got, Max)
	}
	if got.String() != text {
		t.Fatalf("String() = %q, want %q", got.String(), text)
	}
	if Max+1 != Timestamp(math.MaxInt64) {
		t.Fatal("Max leaves no room for an exclusive end")
	}
	if _, err := ParseFlexible("9223372036854775807"); !errors.Is(err, faults.ErrFormat) {
		t.Fatalf("ParseFlexible accepted a value above Max: %v", err)
	}
	if got := FromMillis(math.MaxInt64); got != Max {
		t.Fatalf("FromMillis(MaxInt64) = %d, want Max", got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   Timestamp
		want string
	}{
		{0, "00:00:00:000"},
		{7, "00:00:00:007"},
		{3_723_004, "01:02:03:004"},
		{86_399_999, "23:59:59:999"},
		{86_400_000, "24:00:00:000"},
		{360_000_000, "100:00:00:000"},
		{-5, "00:00:00:000"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Fatalf("Format(%d) = %q, want %q", tt.in, got, tt.want)
		}
		if got := tt.in.String(); got != tt.want {
			t.Fatalf("String(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTripOverOneDay(t *testing.T) {
	const day = 24 * 3600 * 1000
	for n := int64(0); n < day; n += 997 {
		ts := FromMillis(n)
		got, err := Parse(Format(ts))
		if err != nil {
			t.Fatalf("Parse(Format(%d)) error: %v", n, err)
		}
		if got.Millis() != n {
			t.Fatalf("round trip %d -> %q -> %d", n, Format(ts), got)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00:00:000", "12:34:56:789", "99:59:59:999", "123:00:00:001"} {
		if got := Format(MustParse(s)); got != s {
			t.Fatalf("Format(Parse(%q)) = %q", s, got)
		}
	}
}

func TestFromMillisClampsNegative(t *testing.T) {
	if got := FromMillis(-10); got != 0 {
		t.Fatalf("FromMillis(-10) = %d", got)
	}
	if got := FromMillis(42); got.Millis() != 42 {
		t.Fatalf("FromMillis(42) = %d", got)
	}
}

func TestDuration(t *testing.T) {
	if got := Timestamp(1500).Duration(); got != 1500*time.Millisecond {
		t.Fatalf("Duration = %v", got)
	}
}

func TestParseFlexible(t *testing.T) {
	if got, err := ParseFlexible(" 2500 "); err != nil || got != 2500 {
		t.Fatalf("ParseFlexible millis = %d, %v", got, err)
	}
	if got, err := ParseFlexible("00:00:02:500"); err != nil || got != 2500 {
		t.Fatalf("ParseFlexible text = %d, %v", got, err)
	}
	if _, err := ParseFlexible("soon"); !errors.Is(err, faults.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}
