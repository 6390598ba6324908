// Package deadline turns a learner's free-form deadline ("in 3 weeks",
// "2026-12-01") into a bounded planning window measured in days.
package deadline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindowDays is used when a deadline expression cannot be understood.
const DefaultWindowDays = 28

const isoLayout = "2006-01-02"

var (
	relativePattern = regexp.MustCompile(`^in\s+(\d+)\s*(days?|weeks?|months?|years?)\b`)
	isoPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Resolve returns the planning window in days for text relative to anchor.
// The result is always >= 1; unparseable input yields DefaultWindowDays.
func Resolve(text string, anchor time.Time) int {
	if days, ok := Parse(text, anchor); ok {
		return days
	}
	return DefaultWindowDays
}

// Parse reports the window for text and whether text matched a known form.
func Parse(text string, anchor time.Time) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, false
	}

	if m := relativePattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return relativeWindow(n, m[2]), true
	}

	if isoPattern.MatchString(s) {
		target, err := time.ParseInLocation(isoLayout, s, time.UTC)
		if err != nil {
			return 0, false
		}
		return max(1, DaysBetween(anchor, target)), true
	}

	return 0, false
}

// relativeWindow converts "N <unit>" into days. Months are a rough 30 days.
func relativeWindow(n int, unit string) int {
	switch {
	case strings.HasPrefix(unit, "day"):
		return max(1, n)
	case strings.HasPrefix(unit, "week"):
		return max(7, n*7)
	case strings.HasPrefix(unit, "month"):
		return max(7, n*30)
	default:
		return max(30, n*365)
	}
}

// Date truncates t to its calendar date, expressed at UTC midnight so that
// day arithmetic is free of DST shifts.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// FormatISO renders t's calendar date as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return Date(t).Format(isoLayout)
}

// ParseISO parses a strict YYYY-MM-DD date.
func ParseISO(s string) (time.Time, error) {
	return time.ParseInLocation(isoLayout, strings.TrimSpace(s), time.UTC)
}
