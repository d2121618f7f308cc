package marketdata

import (
	"log/slog"
	"math"

	reviews "github.com/cloudon7281/investment-reviews"
	"github.com/cloudon7281/investment-reviews/date"
)

// rawSeries is a symbol's close history as returned by the provider, before
// any cleaning or currency conversion. Closes may contain NaN for days the
// provider reports no trade.
type rawSeries struct {
	Symbol   string
	Currency string
	Days     []date.Date
	Closes   []float64
}

// valid reports whether the close at i is usable.
func (s *rawSeries) valid(i int) bool { return !math.IsNaN(s.Closes[i]) }

// prevValid and nextValid find the nearest usable neighbours of i, or -1.
func (s *rawSeries) prevValid(i int) int {
	for j := i - 1; j >= 0; j-- {
		if s.valid(j) {
			return j
		}
	}
	return -1
}

func (s *rawSeries) nextValid(i int) int {
	for j := i + 1; j < len(s.Closes); j++ {
		if s.valid(j) {
			return j
		}
	}
	return -1
}

// spikeTolerance is the relative difference beyond which a one-day reversal
// is treated as bad data rather than a real move.
const spikeTolerance = 0.20

// dropSpikes removes single-day V spikes: a close that reverses direction
// and differs from both its valid neighbours by more than the tolerance is
// provider noise (a mis-scaled or stray tick), not a trade.
func (s *rawSeries) dropSpikes() {
	days := s.Days[:0]
	closes := s.Closes[:0]
	for i := range s.Closes {
		if s.valid(i) && s.isSpike(i) {
			slog.Warn("dropping price spike", "symbol", s.Symbol,
				"day", s.Days[i], "close", s.Closes[i])
			continue
		}
		days = append(days, s.Days[i])
		closes = append(closes, s.Closes[i])
	}
	s.Days, s.Closes = days, closes
}

func (s *rawSeries) isSpike(i int) bool {
	p, n := s.prevValid(i), s.nextValid(i)
	if p < 0 || n < 0 {
		return false
	}
	prev, cur, next := s.Closes[p], s.Closes[i], s.Closes[n]
	// must reverse direction across the point
	if (cur > prev) == (next > cur) {
		return false
	}
	return relDiff(cur, prev) > spikeTolerance && relDiff(cur, next) > spikeTolerance
}

func relDiff(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return math.Abs(a-b) / math.Abs(b)
}

// penceJump is the minimum ratio between consecutive closes that marks a
// pence/pounds unit change. Real one-day moves never approach it.
const penceJump = 80.0

// fixPenceTransition detects a mid-series switch between pence and pounds
// quoting (UK listings move between the two) and rescales one side so the
// whole series is in pounds-consistent units. Reports whether a transition
// was found and handled.
func (s *rawSeries) fixPenceTransition() bool {
	prev := -1
	for i := range s.Closes {
		if !s.valid(i) {
			continue
		}
		if prev >= 0 {
			ratio := s.Closes[i] / s.Closes[prev]
			switch {
			case ratio < 1/penceJump:
				// pence before, pounds after: scale the earlier rows down
				slog.Info("pence to pounds transition", "symbol", s.Symbol, "day", s.Days[i])
				for j := 0; j <= prev; j++ {
					s.Closes[j] /= 100
				}
				return true
			case ratio > penceJump:
				// pounds before, pence after: scale the later rows down
				slog.Info("pounds to pence transition", "symbol", s.Symbol, "day", s.Days[i])
				for j := i; j < len(s.Closes); j++ {
					s.Closes[j] /= 100
				}
				return true
			}
		}
		prev = i
	}
	return false
}

// normalizeUnits puts the series in pounds when the provider quotes pence.
// Symbols known to quote funds in pounds despite a pence currency flag are
// left alone.
func (s *rawSeries) normalizeUnits() {
	if s.fixPenceTransition() {
		return
	}
	if s.Currency == "GBp" && !reviews.QuotedInPounds(s.Symbol) {
		for i := range s.Closes {
			s.Closes[i] /= 100
		}
	}
}

// fxRates holds daily exchange rates into the reporting currency, keyed by
// source currency code. Rates absent for a given day are forward filled.
type fxRates struct {
	reporting string
	series    map[string]*date.History[float64]
	// live pins every conversion to the latest known rate, matching a
	// valuation done against live quotes.
	live bool
}

func newFxRates(reporting string) *fxRates {
	return &fxRates{reporting: reporting, series: make(map[string]*date.History[float64])}
}

func (f *fxRates) add(currency string, day date.Date, rate float64) {
	h, ok := f.series[currency]
	if !ok {
		h = &date.History[float64]{}
		f.series[currency] = h
	}
	h.Append(day, rate)
}

// rate returns the conversion rate from currency on day. Days before the
// first known rate use that first rate; unknown currencies convert at 1.
func (f *fxRates) rate(currency string, day date.Date) float64 {
	if currency == f.reporting {
		return 1
	}
	h, ok := f.series[currency]
	if !ok || h.Len() == 0 {
		slog.Warn("no exchange rate, using 1.0", "currency", currency, "to", f.reporting)
		return 1
	}
	if f.live {
		_, r := h.Latest()
		return r
	}
	if r, ok := h.ValueAsOf(day); ok {
		return r
	}
	_, r := h.First()
	return r
}

// convert rewrites the series closes into the reporting currency. The last
// row converts at the most recent known rate rather than its own day's,
// so today's valuation uses today's rate even when the provider's FX
// series lags the price series.
func (f *fxRates) convert(s *rawSeries) {
	if s.Currency == f.reporting || s.Currency == "" {
		return
	}
	for i := range s.Closes {
		if !s.valid(i) {
			continue
		}
		day := s.Days[i]
		if i == len(s.Closes)-1 {
			if h, ok := f.series[s.Currency]; ok && h.Len() > 0 {
				if last, _ := h.Latest(); last.After(day) {
					day = last
				}
			}
		}
		s.Closes[i] *= f.rate(s.Currency, day)
	}
	s.Currency = f.reporting
}
