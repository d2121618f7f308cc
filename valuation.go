package reviews

import (
	"fmt"

	"github.com/cloudon7281/investment-reviews/date"
)

// priceLookbackDays bounds how stale a close is still usable when valuing a
// holding: weekends, bank holidays and brief suspensions leave gaps, but a
// close older than two weeks no longer prices today's position.
const priceLookbackDays = 14

// Quotes holds daily close prices per symbol, normalized to the reporting
// currency.
type Quotes struct {
	closes map[string]*date.History[Money]
}

// NewQuotes creates an empty quote set.
func NewQuotes() *Quotes {
	return &Quotes{closes: make(map[string]*date.History[Money])}
}

// Append records a close for a symbol, overwriting any earlier value on the
// same day.
func (q *Quotes) Append(symbol string, day date.Date, close Money) {
	h, ok := q.closes[symbol]
	if !ok {
		h = &date.History[Money]{}
		q.closes[symbol] = h
	}
	h.Append(day, close)
}

// History returns the close series for a symbol, or nil.
func (q *Quotes) History(symbol string) *date.History[Money] { return q.closes[symbol] }

// PriceOn returns the close for a symbol on a day, falling back to the most
// recent close within the lookback window. The date the close was recorded
// on is returned alongside.
func (q *Quotes) PriceOn(symbol string, day date.Date) (Money, date.Date, bool) {
	h, ok := q.closes[symbol]
	if !ok {
		return Money{}, date.Date{}, false
	}
	on, close, ok := h.AsOf(day)
	if !ok || day.Sub(on) > priceLookbackDays {
		return Money{}, date.Date{}, false
	}
	return close, on, true
}

// PriceAround is PriceOn with a forward fallback: when no close exists in
// the lookback window it takes the earliest close after the day. Early
// history is patchy for some funds and a later close is better than
// dropping the holding from a chart.
func (q *Quotes) PriceAround(symbol string, day date.Date) (Money, date.Date, bool) {
	if close, on, ok := q.PriceOn(symbol, day); ok {
		return close, on, true
	}
	h, ok := q.closes[symbol]
	if !ok {
		return Money{}, date.Date{}, false
	}
	on, close, ok := h.ValueAfter(day)
	if !ok {
		return Money{}, date.Date{}, false
	}
	return close, on, true
}

// ErrNoPrice reports a holding that could not be valued: shares are held
// but no usable close exists.
type ErrNoPrice struct {
	Symbol string
	Day    date.Date
}

func (e *ErrNoPrice) Error() string {
	return fmt.Sprintf("no usable price for %s on or before %s", e.Symbol, e.Day)
}

// splitRatioAfter returns the product of all split ratios strictly after a
// day. Holdings computed as of that day must be multiplied by it before
// applying a later close, because closes are quoted post split.
func splitRatioAfter(events []Event, day date.Date) Quantity {
	r := Q(1)
	for _, e := range events {
		c, ok := e.(Conversion)
		if !ok || !c.IsRatio() {
			continue
		}
		if c.When().After(day) {
			r = r.Mul(c.Ratio())
		}
	}
	return r
}

// Value prices a position using the quote set: holdings as of holdingsDay,
// rescaled by any splits after that day since closes are quoted post split,
// times the close at priceDay with the lookback fallback. A held position
// with no usable close returns ErrNoPrice.
func Value(q *Quotes, symbol string, events []Event, shares Quantity, holdingsDay, priceDay date.Date) (Money, error) {
	if shares.IsFlat() {
		return GBP(0), nil
	}
	adjusted := shares.Mul(splitRatioAfter(events, holdingsDay))
	close, _, ok := q.PriceOn(symbol, priceDay)
	if !ok {
		return GBP(0), &ErrNoPrice{Symbol: symbol, Day: priceDay}
	}
	return close.Mul(adjusted), nil
}
