// Package phpdate renders times with PHP date() format strings ("d.m.Y H:i")
// and parses loosely formatted storage values.
package phpdate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

type token func(t time.Time) string

func goLayout(l string) token {
	return func(t time.Time) string { return t.Format(l) }
}

var tokens = map[byte]token{
	// day
	'd': goLayout("02"),
	'D': goLayout("Mon"),
	'j': func(t time.Time) string { return strconv.Itoa(t.Day()) },
	'l': goLayout("Monday"),
	'N': func(t time.Time) string { return strconv.Itoa(isoWeekday(t)) },
	'S': func(t time.Time) string { return ordinal(t.Day()) },
	'w': func(t time.Time) string { return strconv.Itoa(int(t.Weekday())) },
	'z': func(t time.Time) string { return strconv.Itoa(t.YearDay() - 1) },
	// week
	'W': func(t time.Time) string { _, w := t.ISOWeek(); return fmt.Sprintf("%02d", w) },
	// month
	'F': goLayout("January"),
	'm': goLayout("01"),
	'M': goLayout("Jan"),
	'n': func(t time.Time) string { return strconv.Itoa(int(t.Month())) },
	't': func(t time.Time) string { return strconv.Itoa(daysIn(t)) },
	// year
	'L': func(t time.Time) string { return flag(daysInYear(t.Year()) == 366) },
	'o': func(t time.Time) string { y, _ := t.ISOWeek(); return strconv.Itoa(y) },
	'Y': goLayout("2006"),
	'y': goLayout("06"),
	// time
	'a': goLayout("pm"),
	'A': goLayout("PM"),
	'g': goLayout("3"),
	'G': func(t time.Time) string { return strconv.Itoa(t.Hour()) },
	'h': goLayout("03"),
	'H': goLayout("15"),
	'i': goLayout("04"),
	's': goLayout("05"),
	'u': func(t time.Time) string { return fmt.Sprintf("%06d", t.Nanosecond()/1e3) },
	'v': func(t time.Time) string { return fmt.Sprintf("%03d", t.Nanosecond()/1e6) },
	// timezone
	'e': func(t time.Time) string { return t.Location().String() },
	'O': goLayout("-0700"),
	'P': goLayout("-07:00"),
	'p': goLayout("Z07:00"),
	'T': goLayout("MST"),
	'Z': func(t time.Time) string { _, off := t.Zone(); return strconv.Itoa(off) },
	// full date/time
	'c': goLayout("2006-01-02T15:04:05-07:00"),
	'r': goLayout("Mon, 02 Jan 2006 15:04:05 -0700"),
	'U': func(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) },
}

// FormatTime renders t with a PHP format. Backslash escapes a literal
// character; characters that are not format tokens, digits included, are
// copied as is.
func FormatTime(t time.Time, format string) string {
	var out strings.Builder
	out.Grow(len(format) * 2)
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch == '\\' && i+1 < len(format) {
			i++
			out.WriteByte(format[i])
			continue
		}
		if render, ok := tokens[ch]; ok {
			out.WriteString(render(t))
			continue
		}
		out.WriteByte(ch)
	}
	return out.String()
}

// Format renders value using a PHP format. Unparsable values yield "".
func Format(value any, format string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}
	return FormatTime(t, format)
}

var storageLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse reads a stored date value: time.Time, *time.Time, integer unix
// seconds (UTC) and strings in the common SQL/ISO layouts. Zero values are
// not dates.
func Parse(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return ParseString(v)
	case []byte:
		return ParseString(string(v))
	case int, int32, int64, uint, uint32, uint64:
		secs, err := cast.ToInt64E(v)
		if err != nil || secs == 0 {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// ParseString tries each storage layout in turn. Digit-only strings are not
// read as unix seconds since they collide with bare years.
func ParseString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range storageLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func ordinal(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
