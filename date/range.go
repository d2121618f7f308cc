package date

import "fmt"

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange returns the inclusive range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Contains reports whether the date falls inside the range, boundaries
// included.
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Days returns the number of days the range spans, boundaries included.
func (r Range) Days() int { return r.To.Sub(r.From) + 1 }

func (r Range) String() string {
	return fmt.Sprintf("%s to %s", r.From, r.To)
}
