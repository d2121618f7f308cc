// Package renderer turns review reports into markdown, and the daily
// tables into CSV.
package renderer

import (
	"fmt"
	"strings"

	reviews "github.com/cloudon7281/investment-reviews"
)

// renderer accumulates markdown, a thin wrapper so report renderers read as
// a sequence of Printf calls.
type renderer struct {
	*strings.Builder
}

func newRenderer() *renderer { return &renderer{&strings.Builder{}} }

func (r *renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// risk formats the three risk cells, blank when no observations were
// available.
func risk(s reviews.RiskStats) (high, pctOfHigh, volatility string) {
	if s.Observations == 0 {
		return "", "", ""
	}
	return s.RecentHigh.String(), s.PctOfHigh.String(), s.Volatility.String()
}

// days formats a day count, blank for zero.
func days(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}
