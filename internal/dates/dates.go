// Package dates implements calendar-date parsing and arithmetic for the
// invoice engine. Dates carry no time-of-day or timezone component; all
// arithmetic happens at day granularity.
package dates

import (
	"fmt"
	"regexp"
	"time"
)

var (
	isoPattern     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	lenientPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

// CalendarDate is a timezone-naive calendar day.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Clock supplies the current calendar date. Injected wherever derivation
// needs "today" so computations stay deterministic under test.
type Clock func() CalendarDate

// Today returns the current local calendar date.
func Today() CalendarDate {
	now := time.Now()
	return CalendarDate{Year: now.Year(), Month: now.Month(), Day: now.Day()}
}

// Parse reads a YYYY-MM-DD prefix from input. Longer strings (full
// timestamps) are truncated to their first ten characters. Returns nil on
// malformed or empty input. Out-of-range components normalise forward
// (2025-02-31 becomes 2025-03-03), matching how the stored records have
// always been interpreted.
func Parse(input string) *CalendarDate {
	if input == "" {
		return nil
	}
	if len(input) > 10 {
		input = input[:10]
	}
	m := isoPattern.FindStringSubmatch(input)
	if m == nil {
		return nil
	}
	t := time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), 0, 0, 0, 0, time.UTC)
	d := CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	return &d
}

// ParseLenient additionally accepts D/M/YYYY and D-M-YYYY, for data entry
// only. Derivation paths must go through Parse.
func ParseLenient(input string) *CalendarDate {
	if d := Parse(input); d != nil {
		return d
	}
	m := lenientPattern.FindStringSubmatch(input)
	if m == nil {
		return nil
	}
	t := time.Date(atoi(m[3]), time.Month(atoi(m[2])), atoi(m[1]), 0, 0, 0, 0, time.UTC)
	d := CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	return &d
}

// Format renders the zero-padded canonical YYYY-MM-DD form.
func Format(d CalendarDate) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// String implements fmt.Stringer.
func (d CalendarDate) String() string {
	return Format(d)
}

// AddDays returns the date n calendar days after d. Negative n moves
// backwards. d is not mutated.
func AddDays(d CalendarDate, n int) CalendarDate {
	t := d.midnightUTC().AddDate(0, 0, n)
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DaysBetween counts the calendar days a - b. Both sides normalise to
// midnight UTC before subtracting so DST transitions can never skew the
// result by a day.
func DaysBetween(a, b CalendarDate) int {
	return int(a.midnightUTC().Sub(b.midnightUTC()).Hours() / 24)
}

// Before reports whether d falls before other.
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.midnightUTC().Before(other.midnightUTC())
}

// Equal reports whether two dates name the same calendar day.
func (d CalendarDate) Equal(other CalendarDate) bool {
	return d == other
}

func (d CalendarDate) midnightUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// FromTime truncates a timestamp to its calendar day.
func FromTime(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
