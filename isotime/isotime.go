// Package isotime formats and parses the ISO-8601 instants and durations used on the SIRI wire.
package isotime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// layout is RFC 3339 at second precision. UTC instants always render with the Z suffix.
const layout = "2006-01-02T15:04:05Z07:00"

// Format renders t in UTC truncated to whole seconds.
func Format(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(layout)
}

// NowPlus returns the current UTC time truncated to whole seconds plus the given offset.
// Negative offsets are treated as zero.
func NowPlus(seconds int) string {
	return FormatPlus(time.Now(), seconds)
}

// FormatPlus is NowPlus for an explicit "now", used with injected clocks.
func FormatPlus(now time.Time, seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return Format(now.UTC().Truncate(time.Second).Add(time.Duration(seconds) * time.Second))
}

// Parse reads an RFC 3339 instant. Both "Z" and "+00:00" suffixes are accepted.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Interval renders an ISO-8601 duration. Only non-zero components are emitted, in the order
// Y, M, D, then T, H, M, S. All-zero input yields "PT0S".
func Interval(years, months, days, hours, minutes, seconds int) (string, error) {
	for _, v := range []int{years, months, days, hours, minutes, seconds} {
		if v < 0 {
			return "", fmt.Errorf("interval component must not be negative, got %d", v)
		}
	}

	var b strings.Builder
	b.WriteString("P")
	writePart(&b, years, 'Y')
	writePart(&b, months, 'M')
	writePart(&b, days, 'D')
	if hours != 0 || minutes != 0 || seconds != 0 {
		b.WriteString("T")
		writePart(&b, hours, 'H')
		writePart(&b, minutes, 'M')
		writePart(&b, seconds, 'S')
	}

	if b.Len() == 1 {
		return "PT0S", nil
	}
	return b.String(), nil
}

// MustInterval is Interval for constant, known-valid components.
func MustInterval(years, months, days, hours, minutes, seconds int) string {
	s, err := Interval(years, months, days, hours, minutes, seconds)
	if err != nil {
		panic(err)
	}
	return s
}

func writePart(b *strings.Builder, v int, designator byte) {
	if v == 0 {
		return
	}
	b.WriteString(strconv.Itoa(v))
	b.WriteByte(designator)
}
