package reviews

import (
	"log/slog"
	"math"
	"slices"

	"github.com/cloudon7281/investment-reviews/date"
)

// Cashflow is one dated net cash movement, investor centric: negative is
// money put in, positive is money taken out.
type Cashflow struct {
	Day    date.Date
	Amount float64
}

// Cashflows builds the dated net cash movements of an event stream. Buys
// flow out, sells flow in, transfers carry their stored sign, conversions
// move no cash. Flows on the same day are netted.
func Cashflows(events []Event) []Cashflow {
	buckets := make(map[date.Date]float64)
	for _, e := range events {
		switch t := e.(type) {
		case Buy:
			buckets[t.Date] -= t.Amount.AsFloat()
		case Sell:
			buckets[t.Date] += t.Amount.AsFloat()
		case Transfer:
			buckets[t.Date] += t.Amount.AsFloat()
		}
	}
	flows := make([]Cashflow, 0, len(buckets))
	for day, amount := range buckets {
		flows = append(flows, Cashflow{Day: day, Amount: amount})
	}
	slices.SortFunc(flows, func(a, b Cashflow) int { return a.Day.Compare(b.Day) })
	return flows
}

// MWRR computes the money weighted rate of return of a cashflow series as an
// annualized rate, by solving for the internal rate of return on actual
// flow dates. Undefined (NaN) without at least one inflow and one outflow,
// or when no rate zeroes the series.
func MWRR(flows []Cashflow) Percent {
	var hasIn, hasOut bool
	for _, f := range flows {
		if f.Amount > 0 {
			hasIn = true
		}
		if f.Amount < 0 {
			hasOut = true
		}
	}
	if !hasIn || !hasOut {
		slog.Debug("rate of return undefined, flows are one sided")
		return Undefined()
	}
	rate, ok := xirr(flows)
	if !ok {
		slog.Warn("rate of return did not converge", "flows", len(flows))
		return Undefined()
	}
	return Percent(rate * 100)
}

// xirr solves net present value = 0 by bisection over the annual rate. The
// NPV is monotonically decreasing in the rate, so once a sign change is
// bracketed bisection always lands.
func xirr(flows []Cashflow) (float64, bool) {
	start := flows[0].Day
	npv := func(rate float64) float64 {
		var sum float64
		for _, f := range flows {
			years := float64(f.Day.Sub(start)) / 365.0
			sum += f.Amount / math.Pow(1+rate, years)
		}
		return sum
	}

	lo, hi := -0.9999, 10.0
	flo, fhi := npv(lo), npv(hi)
	for range 64 {
		if flo*fhi <= 0 {
			break
		}
		hi *= 2
		fhi = npv(hi)
	}
	if flo*fhi > 0 {
		return 0, false
	}
	for range 200 {
		mid := (lo + hi) / 2
		fmid := npv(mid)
		if math.Abs(fmid) < 1e-7 || hi-lo < 1e-9 {
			return mid, true
		}
		if flo*fmid <= 0 {
			hi, fhi = mid, fmid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, true
}

// SimpleReturn is the plain gain over cost: (value+received-invested)/invested.
// Undefined when nothing was invested.
func SimpleReturn(invested, received, current Money) Percent {
	if !invested.IsPositive() {
		return Undefined()
	}
	gain := current.Add(received).Sub(invested)
	return Percent(gain.AsFloat() / invested.AsFloat() * 100)
}

// volatilityWindowDays is the observation window for risk statistics.
const volatilityWindowDays = 90

// tradingDaysPerYear annualizes a daily standard deviation.
const tradingDaysPerYear = 252

// RiskStats are the price based risk figures for one security.
type RiskStats struct {
	RecentHigh   Money   // highest close in the window
	PctOfHigh    Percent // latest close as a share of the high
	Volatility   Percent // annualized standard deviation of daily log returns
	Observations int
}

// Risk computes RiskStats from a close series over the 90 days up to eval,
// or over the last 90 recorded closes when eval is zero.
func Risk(closes *date.History[Money], eval date.Date) (RiskStats, bool) {
	if closes == nil || closes.Len() == 0 {
		return RiskStats{}, false
	}

	var window []Money
	if eval.IsZero() {
		for _, v := range closes.Values() {
			window = append(window, v)
		}
		if len(window) > volatilityWindowDays {
			window = window[len(window)-volatilityWindowDays:]
		}
	} else {
		from := eval.Add(-volatilityWindowDays)
		for on, v := range closes.Values() {
			if on.Before(from) || on.After(eval) {
				continue
			}
			window = append(window, v)
		}
	}
	if len(window) == 0 {
		return RiskStats{}, false
	}

	high := window[0]
	for _, c := range window[1:] {
		if c.GreaterThan(high) {
			high = c
		}
	}
	latest := window[len(window)-1]

	stats := RiskStats{
		RecentHigh:   high,
		Volatility:   Undefined(),
		PctOfHigh:    Undefined(),
		Observations: len(window),
	}
	if high.IsPositive() {
		stats.PctOfHigh = Percent(latest.AsFloat() / high.AsFloat() * 100)
	}

	if len(window) < 2 {
		return stats, true
	}
	var returns []float64
	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1].AsFloat(), window[i].AsFloat()
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) < 2 {
		return stats, true
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	daily := math.Sqrt(sq / float64(len(returns)-1))
	stats.Volatility = Percent(daily * math.Sqrt(tradingDaysPerYear) * 100)
	return stats, true
}
