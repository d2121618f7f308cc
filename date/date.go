// Package date provides a day-granularity Date type and small helpers built
// on top of it: sorted histories, inclusive ranges and UK tax years.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const readFormat = "2006-1-2" // permissive read format (allows single-digit month/day)

// Format is the canonical string representation of a Date (ISO-8601).
const Format = "2006-01-02"

// noteFormat is the day-first form found in hand-written notes.
const noteFormat = "2/1/2006"

// Date represents a calendar date with day-level granularity, no time of day
// and no time zone.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
// Out-of-range values are normalized the way time.Date does.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// FromTime returns the date of a time.Time, in its location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// time returns the canonical time.Time for that day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// String formats the date in ISO-8601.
func (d Date) String() string { return d.time().Format(Format) }

// Format returns the date formatted according to a time layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// Unix returns the Unix time of midnight UTC on that day.
func (d Date) Unix() int64 { return d.time().Unix() }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after x. It is suitable for slices.SortStableFunc.
func (d Date) Compare(x Date) int {
	switch {
	case d.Before(x):
		return -1
	case d.After(x):
		return 1
	default:
		return 0
	}
}

// Add returns a new Date with the given number of days added.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// Sub returns the number of whole days from x to d. It is positive when d is
// after x.
func (d Date) Sub(x Date) int {
	return int(d.time().Sub(x.time()) / (24 * time.Hour))
}

// Parse parses a Date. It accepts ISO-8601 (with single-digit month and day
// tolerated) and the day-first DD/MM/YYYY form used in hand-written notes.
func Parse(str string) (Date, error) {
	str = strings.TrimSpace(str)
	if t, err := time.Parse(readFormat, str); err == nil {
		return New(t.Date()), nil
	}
	if t, err := time.Parse(noteFormat, str); err == nil {
		return New(t.Date()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q, want %q or DD/MM/YYYY", str, Format)
}

// MustParse is like Parse but panics on error. It is intended for constants
// and tests.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON decodes a Date from a JSON string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	t, err := time.Parse(readFormat, str)
	if err != nil {
		return fmt.Errorf("invalid date %q in data file, want format %q: %w", str, Format, err)
	}
	*d = New(t.Date())
	return nil
}

// MarshalJSON encodes a Date as a JSON string in ISO-8601.
func (d Date) MarshalJSON() ([]byte, error) {
	str := d.String()
	return json.Marshal(&str)
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
