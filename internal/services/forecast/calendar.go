package forecast

import "time"

var seasonalProfile = map[time.Month]float64{
	time.January:   0.90,
	time.February:  0.85,
	time.March:     0.95,
	time.April:     1.00,
	time.May:       1.10,
	time.June:      1.15,
	time.July:      1.20,
	time.August:    1.10,
	time.September: 1.00,
	time.October:   1.05,
	time.November:  1.20,
	time.December:  1.50,
}

var holidayCalendar = map[time.Month][]int{
	time.January:   {1},
	time.February:  {14},
	time.March:     {17},
	time.May:       {1, 31},
	time.July:      {4},
	time.September: {1},
	time.October:   {31},
	time.November:  {11, 24},
	time.December:  {24, 25, 31},
}

// SeasonalFactor returns the demand multiplier of a calendar month.
func SeasonalFactor(m time.Month) float64 {
	if f, ok := seasonalProfile[m]; ok {
		return f
	}
	return 1.0
}

// HasHoliday reports whether any fixed holiday falls in month m.
func HasHoliday(m time.Month) bool {
	return len(holidayCalendar[m]) > 0
}

// IsHoliday reports whether t is a fixed holiday.
func IsHoliday(t time.Time) bool {
	for _, d := range holidayCalendar[t.Month()] {
		if d == t.Day() {
			return true
		}
	}
	return false
}

// HolidayFactor is HolidayBoost for months with a holiday, 1 otherwise.
func HolidayFactor(m time.Month) float64 {
	if HasHoliday(m) {
		return HolidayBoost
	}
	return 1.0
}
