package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date format used for every bucket key
	DateLayout = "2006-01-02"
	isoLayout  = "2006-01-02T15:04:05"

	// Unix bounds of years 1 and 9999 with a day of slack for zone offsets
	minUnixSeconds = -62135596800 - 86400
	maxUnixSeconds = 253402300799 + 86400
)

var errTimestampRange = errors.New("timestamp out of range")

// ParseCreateTime decodes a create_time value. Numbers and numeric strings
// are accepted; null, booleans, objects, arrays and other strings are not.
func ParseCreateTime(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimFunc(s, isSpace)
		if s == "" || strings.HasPrefix(strings.ToLower(strings.TrimLeft(s, "+-")), "0x") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return f, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return f, true
	default:
		// booleans are not timestamps, even though float(true) would give 1970
		return 0, false
	}
}

// LocalTime converts Unix seconds to a wall-clock time in loc. The result
// carries the wall-clock fields in UTC so arithmetic between values ignores
// zone transitions.
func LocalTime(seconds float64, loc *time.Location) (time.Time, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, fmt.Errorf("invalid timestamp %v", seconds)
	}
	whole, frac := math.Modf(seconds)
	us := math.RoundToEven(frac * 1e6)
	if us >= 1e6 {
		whole++
		us -= 1e6
	} else if us < 0 {
		whole--
		us += 1e6
	}
	if whole < minUnixSeconds || whole > maxUnixSeconds {
		return time.Time{}, errTimestampRange
	}
	if loc == nil {
		loc = time.Local
	}
	t := time.Unix(int64(whole), int64(us)*int64(time.Microsecond)).In(loc)
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, errTimestampRange
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

// FormatISO renders a wall-clock time as YYYY-MM-DDTHH:MM:SS with a
// microsecond suffix only when it is non-zero.
func FormatISO(t time.Time) string {
	s := t.Format(isoLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD key into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseISO parses the output of FormatISO.
func ParseISO(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05.999999", s, time.UTC)
}

// TruncateDay drops the clock part of a wall-clock time.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SecondsBetween returns b-a in seconds at microsecond precision. It does
// not saturate the way time.Duration does for spans beyond ~292 years.
func SecondsBetween(a, b time.Time) float64 {
	secs := b.Unix() - a.Unix()
	us := int64(b.Nanosecond()/1000 - a.Nanosecond()/1000)
	return float64(secs*1_000_000+us) / 1e6
}

// DaysBetween returns the whole number of days from a to b, rounded down.
func DaysBetween(a, b time.Time) int {
	secs := b.Unix() - a.Unix()
	us := int64(b.Nanosecond()/1000 - a.Nanosecond()/1000)
	total := secs*1_000_000 + us
	const day = 86400 * 1_000_000
	d := total / day
	if total%day != 0 && total < 0 {
		d--
	}
	return int(d)
}
