package gpxfield

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Converter turns wire text into a value and back. Parse returns nil for
// values that should be treated as unset.
type Converter[V any] interface {
	Parse(s string) (*V, error)
	Format(v V) string
}

// FloatConverter renders fixed-point numbers, never scientific notation
type FloatConverter struct{}

func (FloatConverter) Parse(s string) (*float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (FloatConverter) Format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IntConverter parses base 10 integers
type IntConverter struct{}

func (IntConverter) Parse(s string) (*int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (IntConverter) Format(i int) string {
	return strconv.Itoa(i)
}

// StringConverter keeps text unchanged
type StringConverter struct{}

func (StringConverter) Parse(s string) (*string, error) {
	return &s, nil
}

func (StringConverter) Format(s string) string {
	return s
}

// TimeConverter is lenient: malformed timestamps become unset
type TimeConverter struct{}

func (TimeConverter) Parse(s string) (*time.Time, error) {
	return ParseTime(s), nil
}

func (TimeConverter) Format(t time.Time) string {
	return FormatTime(t)
}

var timeRegexp = regexp.MustCompile(`^([0-9]{4})-([0-9]{1,2})-([0-9]{1,2})[T ]([0-9]{1,2}):([0-9]{1,2}):([0-9]{1,2})(\.[0-9]+)?(Z|[+-][0-9]{2}:?(?:[0-9]{2})?)?$`)

// ParseTime parses a GPX timestamp. Fractions are truncated to
// microseconds and a missing offset means UTC. It returns nil when the text
// is not a timestamp.
func ParseTime(s string) *time.Time {
	m := timeRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil
	}

	parts := make([]int, 6)
	for i := range parts {
		parts[i], _ = strconv.Atoi(m[i+1])
	}

	var micros int
	if frac := m[7]; frac != "" {
		digits := frac[1:]
		if len(digits) > 6 {
			digits = digits[:6]
		}
		digits += strings.Repeat("0", 6-len(digits))
		micros, _ = strconv.Atoi(digits)
	}

	loc := time.UTC
	if offset := m[8]; offset != "" && offset != "Z" {
		sign := 1
		if offset[0] == '-' {
			sign = -1
		}
		digits := strings.ReplaceAll(offset[1:], ":", "")
		hours, _ := strconv.Atoi(digits[:2])
		var minutes int
		if len(digits) >= 4 {
			minutes, _ = strconv.Atoi(digits[2:4])
		}
		seconds := sign * (hours*3600 + minutes*60)
		if seconds != 0 {
			loc = time.FixedZone("", seconds)
		}
	}

	year, month, day, hour, minute, second := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) || hour > 23 || minute > 59 || second > 59 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, micros*1000, loc)
	return &t
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatTime renders a timestamp as YYYY-MM-DDTHH:MM:SS[.ffffff](Z|±HHMM)
func FormatTime(t time.Time) string {
	var sb strings.Builder
	sb.WriteString(t.Format("2006-01-02T15:04:05"))
	if micros := t.Nanosecond() / 1000; micros != 0 {
		fmt.Fprintf(&sb, ".%06d", micros)
	}
	if _, offset := t.Zone(); offset == 0 {
		sb.WriteString("Z")
	} else {
		sb.WriteString(t.Format("-0700"))
	}
	return sb.String()
}
