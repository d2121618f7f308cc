package date

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// TaxYear identifies a UK tax year by the calendar year it ends in:
// TaxYear(2024) runs from 2023-04-06 to 2024-04-05.
type TaxYear int

// Range returns the inclusive date range covered by the tax year.
func (y TaxYear) Range() Range {
	return Range{
		From: New(int(y)-1, time.April, 6),
		To:   New(int(y), time.April, 5),
	}
}

func (y TaxYear) String() string { return fmt.Sprintf("FY%d", int(y)) }

// TaxYearOf returns the tax year a day falls in.
func TaxYearOf(day Date) TaxYear {
	if day.After(New(day.Year(), time.April, 5)) {
		return TaxYear(day.Year() + 1)
	}
	return TaxYear(day.Year())
}

// CurrentTaxYear returns the tax year containing today.
func CurrentTaxYear() TaxYear { return TaxYearOf(Today()) }

// ParseTaxYear parses a tax year given either as a bare year ("2024") or in
// the FY form ("FY2024").
func ParseTaxYear(str string) (TaxYear, error) {
	s := strings.TrimSpace(str)
	s = strings.TrimPrefix(strings.ToUpper(s), "FY")
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("invalid tax year %q, want e.g. 2024 or FY2024", str)
	}
	return TaxYear(year), nil
}

// ParseYears parses a comma-separated list of years and year ranges, e.g.
// "2021,2023-2025". It returns the set of years in ascending order.
func ParseYears(str string) ([]int, error) {
	seen := map[int]bool{}
	var years []int
	add := func(y int) {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for part := range strings.SplitSeq(str, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			a, err1 := strconv.Atoi(strings.TrimSpace(from))
			b, err2 := strconv.Atoi(strings.TrimSpace(to))
			if err1 != nil || err2 != nil || b < a {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
			for y := a; y <= b; y++ {
				add(y)
			}
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		add(y)
	}
	slices.Sort(years)
	return years, nil
}
