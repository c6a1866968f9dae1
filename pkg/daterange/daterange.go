package daterange

import (
	"fmt"
	"time"
)

// Layout is the only calendar date format accepted by the service.
const Layout = "2006-01-02"

const day = 24 * time.Hour

// Parse parses a YYYY-MM-DD string into midnight UTC of that day
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return t, nil
}

// Format returns the calendar date of t in its own location
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Normalize validates a date string and returns its canonical form
func Normalize(date string) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t), nil
}

// DaysBetween returns floor((b - a) / 24h) for two calendar dates.
// The result is negative when b is before a.
func DaysBetween(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}

	diff := tb.Sub(ta)
	days := int(diff / day)
	if diff%day != 0 && diff < 0 {
		days--
	}
	return days, nil
}

// AddDays shifts a calendar date by n days (n may be negative)
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// IsWithin reports whether start <= date <= end.
// Normalized YYYY-MM-DD strings order lexicographically like the dates they name.
func IsWithin(date, start, end string) bool {
	return start <= date && date <= end
}

// IsFuture reports whether date is strictly after today
func IsFuture(date, today string) bool {
	return date > today
}

// IsPast reports whether date is strictly before today
func IsPast(date, today string) bool {
	return date < today
}

// Clock supplies "today" to code that must never read the wall clock itself.
type Clock interface {
	Today() string
}

// SystemClock reports today's date in a fixed time zone
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a clock for the given IANA time zone; empty means UTC
func NewSystemClock(timeZone string) (*SystemClock, error) {
	if timeZone == "" {
		return &SystemClock{loc: time.UTC}, nil
	}

	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	return &SystemClock{loc: loc}, nil
}

func (c *SystemClock) Today() string {
	return Format(time.Now().In(c.loc))
}

// FixedClock always reports the same date.
type FixedClock string

func (c FixedClock) Today() string {
	return string(c)
}
