package reviews

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cloudon7281/investment-reviews/date"
)

// AnnualOptions tune the annual review.
type AnnualOptions struct {
	Filter Filter

	Start date.Date // start of the review period
	Eval  date.Date // valuation date, today when zero

	// PriceOverTime adds the daily price table for the period.
	PriceOverTime bool
}

// AnnualRow is one security's line in the annual review.
type AnnualRow struct {
	Security string
	Name     string
	Category Category
	Tag      string

	StartValue   Money // holdings at start priced at start
	BoughtSince  Money // purchases and transfers in during the period
	SoldSince    Money // sale proceeds and transfers out during the period
	CurrentValue Money
	PnL          Money
	MWRR         Percent

	SharesAtStart Quantity
	Shares        Quantity
	CurrentPrice  Money
	Risk          RiskStats
}

// AnnualGroupRow is one aggregated line of the annual review.
type AnnualGroupRow struct {
	Group        string
	StartValue   Money
	BoughtSince  Money
	SoldSince    Money
	CurrentValue Money
	PnL          Money
	MWRR         Percent
}

// AnnualReport measures the portfolio over a period against market prices
// at both ends.
type AnnualReport struct {
	Start, Eval date.Date

	Stocks      []AnnualRow
	Portfolio   AnnualGroupRow
	PerCategory []AnnualGroupRow
	PerTag      []AnnualGroupRow

	// PriceOverTime is nil unless requested.
	PriceOverTime *PriceTable
}

// Annual builds the annual review: every security held at the start, held
// now, or traded in between is measured from its start value through the
// period's flows to its current value. Profit is what came out plus what is
// still there, against what was there plus what went in.
func Annual(ctx context.Context, p *Portfolio, src PriceSource, opts AnnualOptions) (*AnnualReport, error) {
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}
	eval := opts.Eval
	if eval.IsZero() {
		eval = date.Today()
	}
	if opts.Start.IsZero() {
		opts.Start = date.New(eval.Year()-1, eval.Month(), eval.Day())
	}
	if !opts.Start.Before(eval) {
		return nil, fmt.Errorf("start %s is not before evaluation date %s", opts.Start, eval)
	}

	// phase 1: replay and keep ledgers with holdings or period activity
	type annualStock struct {
		ledger     *Ledger
		events     []Event
		atStart    Position
		current    Position
		hasTrading bool
	}
	var stocks []annualStock
	var needed []string
	for l := range p.All() {
		if !opts.Filter.Match(l) {
			continue
		}
		events := l.Collapsed()
		if len(events) == 0 {
			continue
		}
		atStart := Replay(l, events, opts.Start, ReplayOptions{})
		current := Replay(l, events, eval, ReplayOptions{})
		hasTrading := false
		for _, e := range events {
			if e.When().After(opts.Start) && !e.When().After(eval) {
				hasTrading = true
				break
			}
		}
		if !atStart.Held() && !current.Held() && !hasTrading {
			continue
		}
		stocks = append(stocks, annualStock{l, events, atStart, current, hasTrading})
		if atStart.Held() || current.Held() || (opts.PriceOverTime && hasTrading) {
			needed = append(needed, current.Security)
		}
	}

	// phase 2
	quotes, err := src.Prices(ctx, needed, opts.Start, eval, true)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	// phase 3
	report := &AnnualReport{Start: opts.Start, Eval: eval}
	portfolio := newAnnualAccumulator("Whole Portfolio")
	perCategory := newAnnualAccumulator()
	perTag := newAnnualAccumulator()

	for _, s := range stocks {
		l := s.ledger
		row := AnnualRow{
			Security:      l.Security,
			Name:          l.Name,
			Category:      l.Category,
			Tag:           l.Tag,
			SharesAtStart: s.atStart.Shares,
			Shares:        s.current.Shares,
		}

		if s.atStart.Held() {
			v, err := Value(quotes, s.current.Security, s.events, s.atStart.Shares, opts.Start, opts.Start)
			if err != nil {
				slog.Warn("no start price, start value taken as zero",
					"ledger", l.Key(), "err", err)
			} else {
				row.StartValue = v
			}
		}
		if s.current.Held() {
			v, err := Value(quotes, s.current.Security, s.events, s.current.Shares, eval, eval)
			if err != nil {
				slog.Warn("no current price, current value taken as zero",
					"ledger", l.Key(), "err", err)
			} else {
				row.CurrentValue = v
				row.CurrentPrice = v.Div(s.current.Shares)
			}
		}

		row.BoughtSince, row.SoldSince = periodTurnover(s.events, opts.Start, eval)
		row.PnL = row.CurrentValue.Add(row.SoldSince).
			Sub(row.StartValue.Add(row.BoughtSince))

		flows := annualFlows(s.events, opts.Start, row.StartValue, eval, row.CurrentValue)
		row.MWRR = MWRR(netFlows(flows))
		if risk, ok := Risk(quotes.History(s.current.Security), eval); ok {
			row.Risk = risk
		}

		report.Stocks = append(report.Stocks, row)
		portfolio.add("Whole Portfolio", row, flows)
		perCategory.add(string(l.Category), row, flows)
		perTag.add(tagKey(l), row, flows)
	}

	report.Portfolio = portfolio.finish(false)[0]
	report.PerCategory = sortAnnualByCategory(perCategory.finish(false))
	report.PerTag = perTag.finish(true)

	if opts.PriceOverTime {
		pot, err := PriceOverTime(p, quotes, opts.Start, eval, opts.Filter)
		if err != nil {
			return nil, err
		}
		report.PriceOverTime = pot
	}
	return report, nil
}

// periodTurnover sums the money in and out strictly after start through
// eval. Transfers count by direction.
func periodTurnover(events []Event, start, eval date.Date) (bought, sold Money) {
	for _, e := range events {
		if !e.When().After(start) || e.When().After(eval) {
			continue
		}
		switch t := e.(type) {
		case Buy:
			bought = bought.Add(t.Amount)
		case Sell:
			sold = sold.Add(t.Amount)
		case Transfer:
			if t.Amount.IsNegative() {
				sold = sold.Add(t.Amount.Abs())
			} else {
				bought = bought.Add(t.Amount)
			}
		}
	}
	return bought, sold
}

// annualFlows models the period as a trade: buy the position at the start
// for its value then, apply the real flows since, sell it now for its
// current value.
func annualFlows(events []Event, start date.Date, startValue Money, eval date.Date, currentValue Money) []Cashflow {
	var flows []Cashflow
	if startValue.IsPositive() {
		flows = append(flows, syntheticBuy(start, startValue))
	}
	var since []Event
	for _, e := range events {
		if e.When().After(start) && !e.When().After(eval) {
			since = append(since, e)
		}
	}
	flows = append(flows, Cashflows(since)...)
	if currentValue.IsPositive() {
		flows = append(flows, syntheticSell(eval, currentValue))
	}
	return flows
}

// annualAccumulator builds AnnualGroupRows per group key.
type annualAccumulator struct {
	order []string
	rows  map[string]*AnnualGroupRow
	flows map[string][]Cashflow
}

func newAnnualAccumulator(keys ...string) *annualAccumulator {
	g := &annualAccumulator{
		rows:  make(map[string]*AnnualGroupRow),
		flows: make(map[string][]Cashflow),
	}
	for _, k := range keys {
		g.row(k)
	}
	return g
}

func (g *annualAccumulator) row(key string) *AnnualGroupRow {
	r, ok := g.rows[key]
	if !ok {
		r = &AnnualGroupRow{Group: key}
		g.rows[key] = r
		g.order = append(g.order, key)
	}
	return r
}

func (g *annualAccumulator) add(key string, row AnnualRow, flows []Cashflow) {
	r := g.row(key)
	r.StartValue = r.StartValue.Add(row.StartValue)
	r.BoughtSince = r.BoughtSince.Add(row.BoughtSince)
	r.SoldSince = r.SoldSince.Add(row.SoldSince)
	r.CurrentValue = r.CurrentValue.Add(row.CurrentValue)
	g.flows[key] = append(g.flows[key], flows...)
}

func (g *annualAccumulator) finish(sorted bool) []AnnualGroupRow {
	keys := g.order
	if sorted {
		keys = slices.Clone(keys)
		slices.Sort(keys)
	}
	out := make([]AnnualGroupRow, 0, len(keys))
	for _, k := range keys {
		r := g.rows[k]
		r.PnL = r.CurrentValue.Add(r.SoldSince).Sub(r.StartValue.Add(r.BoughtSince))
		r.MWRR = MWRR(netFlows(g.flows[k]))
		out = append(out, *r)
	}
	return out
}

func sortAnnualByCategory(rows []AnnualGroupRow) []AnnualGroupRow {
	pos := func(r AnnualGroupRow) int {
		for i, c := range Categories() {
			if r.Group == string(c) {
				return i
			}
		}
		return len(Categories())
	}
	slices.SortStableFunc(rows, func(a, b AnnualGroupRow) int { return pos(a) - pos(b) })
	return rows
}
