package http

import (
	"time"

	xutil "StockPulse/pkg/util"
)

// ParseDateRange parses optional YYYY-MM-DD bounds. A missing bound is the
// zero time. to is made inclusive by moving it to the end of that day.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var err error
	if from != "" {
		if f, err = xutil.ParseDate(from); err != nil {
			return f, t, BadRequestErrorf("invalid from date %q", from).WithError(err)
		}
	}
	if to != "" {
		if t, err = xutil.ParseDate(to); err != nil {
			return f, t, BadRequestErrorf("invalid to date %q", to).WithError(err)
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !f.IsZero() && !t.IsZero() && t.Before(f) {
		return f, t, BadRequestError("to must not be before from")
	}
	return f, t, nil
}
