package util

import "time"

// DateLayout is the calendar-date format used on the API and in sales files.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// TruncateDay drops the time of day, keeping the location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FirstOfMonth returns midnight of the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return FirstOfMonth(t).AddDate(0, 1, -1).Day()
}

// AlignDayRange widens [from, to] to whole days: from at midnight, to at the end of its day.
func AlignDayRange(from, to time.Time) (time.Time, time.Time) {
	from = TruncateDay(from)
	if !to.IsZero() {
		to = TruncateDay(to).AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return from, to
}
