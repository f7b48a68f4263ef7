package entities

import (
	"fmt"
	"time"
)

// YearWeek formats a date as its ISO year-week, e.g. 2025-06-11 -> "2025-24W".
// The zero time formats as an empty string.
func YearWeek(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-%02dW", year, week)
}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays shifts a date by whole days
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// DaysBetween returns the number of calendar days from 'from' to 'to', each
// taken as the date in its own location.
func DaysBetween(from, to time.Time) int {
	return int(calendarDate(to).Sub(calendarDate(from)) / (24 * time.Hour))
}

// calendarDate keeps the date of t and drops its location and DST offset
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
