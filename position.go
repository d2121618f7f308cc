package reviews

import (
	"github.com/cloudon7281/investment-reviews/date"
)

// Position is the state of one holding after replaying its events up to a
// date.
type Position struct {
	Security string // current symbol, updated by rename conversions
	Name     string

	Shares   Quantity // shares held
	Invested Money    // cash put in, net of transfers out
	Received Money    // gross sale proceeds taken out

	// cost accounting for average cost per share, split adjusted
	GrossShares Quantity // total shares ever bought, rescaled by splits
	CostBasis   Money    // total cost of those shares
}

// Held reports whether the position still holds shares, ignoring fractional
// dust.
func (p Position) Held() bool { return !p.Shares.IsFlat() }

// AverageCost returns the split adjusted average cost per share of every
// share ever bought. The second return is false for positions that were
// never bought, only granted or transferred in.
func (p Position) AverageCost() (Money, bool) {
	if p.GrossShares.IsFlat() {
		return GBP(0), false
	}
	return p.CostBasis.Div(p.GrossShares), true
}

// ReplayOptions tune how a replay accounts for cash flows.
type ReplayOptions struct {
	// MinInvestment excludes small buys from the invested total when
	// positive. Regular dividend reinvestments below the threshold would
	// otherwise swamp the figure for money deliberately put in.
	MinInvestment Money
}

// Replay folds a ledger's events up to and including a date into a
// Position. Splits rescale the held and gross bought shares but leave cost
// unchanged; grants add shares at zero cost; renames update the current
// symbol; transfers move shares and cost basis in or out without touching
// proceeds.
func Replay(l *Ledger, events []Event, through date.Date, opts ReplayOptions) Position {
	p := Position{Security: l.Security, Name: l.Name}
	for _, e := range events {
		if e.When().After(through) {
			break
		}
		p.apply(e, opts)
	}
	return p
}

func (p *Position) apply(e Event, opts ReplayOptions) {
	switch t := e.(type) {
	case Buy:
		p.Shares = p.Shares.Add(t.Shares)
		p.GrossShares = p.GrossShares.Add(t.Shares)
		if opts.MinInvestment.IsZero() || t.Amount.GreaterThan(opts.MinInvestment) {
			p.Invested = p.Invested.Add(t.Amount)
			p.CostBasis = p.CostBasis.Add(t.Amount)
		}
	case Sell:
		p.Shares = p.Shares.Sub(t.Shares.Abs())
		p.Received = p.Received.Add(t.Amount)
	case Conversion:
		p.applyConversion(t)
	case Transfer:
		p.Shares = p.Shares.Add(t.Shares)
		p.Invested = p.Invested.Add(t.Amount)
		p.CostBasis = p.CostBasis.Add(t.Amount)
	}
}

func (p *Position) applyConversion(c Conversion) {
	switch {
	case c.IsRatio():
		r := c.Ratio()
		p.Shares = p.Shares.Mul(r)
		p.GrossShares = p.GrossShares.Mul(r)
	case c.OldShares.IsZero() && c.NewShares.IsPositive():
		// share grant: free shares, not a purchase, so the cost pool and
		// its share count are untouched
		p.Shares = p.Shares.Add(c.NewShares)
	}
	if c.NewSecurity != "" {
		p.Security = c.NewSecurity
	}
}
