// Package timestamp converts between millisecond offsets and the fixed-width
// HH:MM:SS:mmm text form used by Datavyu exports.
package timestamp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"govyu/internal/faults"
)

// Timestamp is a non-negative offset from the start of a recording, in
// milliseconds.
type Timestamp int64

// Max is the largest Timestamp. Max+1 still fits in an int64, so an offset
// can always be turned into an exclusive end.
const Max = Timestamp(math.MaxInt64 - 1)

// parseFactors are applied left to right: each factor scales everything
// accumulated so far before the next part is added.
var parseFactors = [4]int64{1, 60, 60, 1000}

// FromMillis returns ms as a Timestamp. Negative values clamp to zero and
// values above Max clamp to Max.
func FromMillis(ms int64) Timestamp {
	if ms < 0 {
		return 0
	}
	return min(Timestamp(ms), Max)
}

// Parse converts HH:MM:SS:mmm text into a Timestamp. The hour field may be
// wider than two digits. Text whose value exceeds Max is rejected with
// ErrFormat.
func Parse(text string) (Timestamp, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != len(parseFactors) {
		return 0, faults.Wrap(faults.ErrFormat, "timestamp", "parse",
			fmt.Sprintf("%q: want 4 fields, got %d", text, len(parts)), nil)
	}
	var ms int64
	for i, part := range parts {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil || value < 0 || strings.HasPrefix(part, "+") {
			return 0, faults.Wrap(faults.ErrFormat, "timestamp", "parse",
				fmt.Sprintf("%q: field %d is not a non-negative integer", text, i+1), nil)
		}
		if ms > (int64(Max)-value)/parseFactors[i] {
			return 0, faults.Wrap(faults.ErrFormat, "timestamp", "parse",
				fmt.Sprintf("%q: value overflows the millisecond range", text), nil)
		}
		ms = ms*parseFactors[i] + value
	}
	return Timestamp(ms), nil
}

// MustParse is Parse for literals known to be well formed.
func MustParse(text string) Timestamp {
	ts, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return ts
}

// Format renders ms as HH:MM:SS:mmm. Hours are not wrapped at 24.
func Format(ts Timestamp) string {
	ms := int64(ts)
	if ms < 0 {
		ms = 0
	}
	millis := ms % 1000
	ms /= 1000
	seconds := ms % 60
	ms /= 60
	minutes := ms % 60
	hours := ms / 60
	return fmt.Sprintf("%02d:%02d:%02d:%03d", hours, minutes, seconds, millis)
}

// String implements fmt.Stringer using the Datavyu text form.
func (ts Timestamp) String() string {
	return Format(ts)
}

// Millis returns the raw millisecond count.
func (ts Timestamp) Millis() int64 {
	return int64(ts)
}

// Duration converts the offset to a time.Duration.
func (ts Timestamp) Duration() time.Duration {
	return time.Duration(ts) * time.Millisecond
}

// ParseFlexible accepts either the HH:MM:SS:mmm form or a bare millisecond
// count, which is how command line callers usually type instants.
func ParseFlexible(text string) (Timestamp, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, ":") {
		value, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil || value < 0 {
			return 0, faults.Wrap(faults.ErrFormat, "timestamp", "parse",
				fmt.Sprintf("%q is neither HH:MM:SS:mmm nor milliseconds", text), nil)
		}
		if value > int64(Max) {
			return 0, faults.Wrap(faults.ErrFormat, "timestamp", "parse",
				fmt.Sprintf("%q: value overflows the millisecond range", text), nil)
		}
		return Timestamp(value), nil
	}
	return Parse(trimmed)
}
