// Package datetime provides a small calendar value type, grounded on
// the original's Datetime struct: year/month/day/hour/minute/second
// fields with ordering and a fixed string format.
package datetime

import (
	"fmt"
	"time"
)

// DateTime is a calendar timestamp at second precision.
type DateTime struct {
	Year  int
	Month int
	Day   int
	Hour  int
	Min   int
	Sec   int
}

// Now returns the current local time as a DateTime.
func Now() DateTime {
	return FromTime(time.Now())
}

// FromTime converts a time.Time, discarding sub-second precision and
// monotonic reading, matching the original's field layout.
func FromTime(t time.Time) DateTime {
	return DateTime{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
		Hour:  t.Hour(),
		Min:   t.Minute(),
		Sec:   t.Second(),
	}
}

// String formats as "YYYY-MM-DD HH:MM:SS", matching the original's
// toString.
func (d DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Min, d.Sec)
}

// Parse reverses String.
func Parse(s string) (DateTime, error) {
	var d DateTime
	_, err := fmt.Sscanf(s, "%04d-%02d-%02d %02d:%02d:%02d", &d.Year, &d.Month, &d.Day, &d.Hour, &d.Min, &d.Sec)
	return d, err
}

// Compare returns -1, 0 or 1 as d is before, equal to, or after o.
func (d DateTime) Compare(o DateTime) int {
	da := [...]int{d.Year, d.Month, d.Day, d.Hour, d.Min, d.Sec}
	ob := [...]int{o.Year, o.Month, o.Day, o.Hour, o.Min, o.Sec}
	for i := range da {
		if da[i] < ob[i] {
			return -1
		}
		if da[i] > ob[i] {
			return 1
		}
	}
	return 0
}

// Before reports whether d is strictly earlier than o.
func (d DateTime) Before(o DateTime) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly later than o.
func (d DateTime) After(o DateTime) bool { return d.Compare(o) > 0 }
