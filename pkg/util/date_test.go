package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
	if _, err := ParseDate("2024-02-30"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestFirstOfMonthAvoidsOverflow(t *testing.T) {
	// Jan 31 + 1 month through AddDate lands in March; the first-of-month anchor does not.
	jan31 := time.Date(2025, 1, 31, 15, 4, 5, 0, time.UTC)
	next := FirstOfMonth(jan31).AddDate(0, 1, 0)
	if next.Month() != time.February || next.Day() != 1 {
		t.Fatalf("unexpected next month %v", next)
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := map[time.Time]int{
		time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC):  29,
		time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC):  28,
		time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC):  30,
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC): 31,
	}
	for in, want := range cases {
		if got := DaysInMonth(in); got != want {
			t.Fatalf("DaysInMonth(%v)=%d want %d", in, got, want)
		}
	}
}

func TestAlignDayRange(t *testing.T) {
	from := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	f, tt := AlignDayRange(from, to)
	if !f.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", f)
	}
	if tt.Day() != 5 || tt.Hour() != 23 {
		t.Fatalf("unexpected to %v", tt)
	}
}
