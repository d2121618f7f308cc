package reviews

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudon7281/investment-reviews/date"
)

// Class is the periodic review classification of a security.
type Class string

const (
	ClassNew        Class = "new"
	ClassRetained   Class = "retained"
	ClassSold       Class = "sold"
	ClassOutOfScope Class = "out_of_scope"
)

// Classes lists the reported classes in order. Out of scope securities are
// classified but not reported.
func Classes() []Class { return []Class{ClassNew, ClassRetained, ClassSold} }

// Classify sorts each filtered ledger into a periodic review class for the
// period [start, end]: first event inside the period makes it new, held at
// both ends retained, held at the start and flat at the end sold, anything
// else out of scope.
func Classify(p *Portfolio, filter Filter, start, end date.Date) map[Class][]*Ledger {
	out := make(map[Class][]*Ledger)
	for l := range p.All() {
		if !filter.Match(l) {
			continue
		}
		c := classify(l, start, end)
		out[c] = append(out[c], l)
		slog.Debug("classified ledger", "ledger", l.Key(), "class", c)
	}
	return out
}

func classify(l *Ledger, start, end date.Date) Class {
	first := l.First()
	if first == nil || first.When().After(end) {
		return ClassOutOfScope
	}
	if !first.When().Before(start) {
		return ClassNew
	}
	events := l.Collapsed()
	heldAtStart := Replay(l, events, start, ReplayOptions{}).Held()
	heldAtEnd := Replay(l, events, end, ReplayOptions{}).Held()
	switch {
	case heldAtStart && heldAtEnd:
		return ClassRetained
	case heldAtStart:
		return ClassSold
	default:
		return ClassOutOfScope
	}
}

// PeriodicOptions tune the periodic review.
type PeriodicOptions struct {
	Filter Filter

	Start date.Date // start of the review period
	End   date.Date // end of the review period
	Eval  date.Date // valuation date, today when zero
}

// PeriodicRow is one security's line in the periodic review.
type PeriodicRow struct {
	Security string
	Name     string
	Category Category
	Tag      string
	Class    Class

	Shares       Quantity
	StartValue   Money
	CurrentValue Money
	PnL          Money
	ROI          Percent
	MWRR         Percent
	PeriodDays   int // zero for sold stocks, the period is counterfactual

	CurrentPrice Money
	Risk         RiskStats
}

// PeriodicReport compares the portfolio across a review period.
type PeriodicReport struct {
	Start, End, Eval date.Date

	New      []PeriodicRow
	Retained []PeriodicRow
	Sold     []PeriodicRow

	Summary []GroupRow // one row per class, in class order
	PerTag  []GroupRow
}

// Periodic builds the periodic review: classifies every security over
// [start, end], then measures each class from its anchor to the evaluation
// date. New stocks run from their purchases, retained stocks from their
// value at the period end, sold stocks counterfactually from their sale
// proceeds to what the position would be worth now.
func Periodic(ctx context.Context, p *Portfolio, src PriceSource, opts PeriodicOptions) (*PeriodicReport, error) {
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("invalid period %s to %s", opts.Start, opts.End)
	}
	eval := opts.Eval
	if eval.IsZero() {
		eval = date.Today()
	}

	classified := Classify(p, opts.Filter, opts.Start, opts.End)

	var needed []string
	for _, class := range Classes() {
		for _, l := range classified[class] {
			pos := Replay(l, l.Collapsed(), eval, ReplayOptions{})
			needed = append(needed, pos.Security)
		}
	}
	quotes, err := src.Prices(ctx, needed, opts.Start, eval, false)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	report := &PeriodicReport{Start: opts.Start, End: opts.End, Eval: eval}
	summary := newGroupAccumulator()
	perTag := newGroupAccumulator()

	for _, class := range Classes() {
		for _, l := range classified[class] {
			row, flows, ok := periodicRow(l, class, quotes, opts.Start, opts.End, eval)
			if !ok {
				continue
			}
			switch class {
			case ClassNew:
				report.New = append(report.New, row)
			case ClassRetained:
				report.Retained = append(report.Retained, row)
			case ClassSold:
				report.Sold = append(report.Sold, row)
			}
			summary.add(string(class), row.StartValue, GBP(0), row.CurrentValue, flows)
			perTag.add(tagKey(l), row.StartValue, GBP(0), row.CurrentValue, flows)
		}
	}

	report.Summary = summary.finish(false)
	report.PerTag = perTag.finish(true)
	return report, nil
}

// periodicRow measures one classified ledger. The returned flows isolate
// the period: a synthetic buy books the anchor value, actual purchases
// stand in for new stocks, and a synthetic sell books the closing value.
func periodicRow(l *Ledger, class Class, quotes *Quotes, start, end, eval date.Date) (PeriodicRow, []Cashflow, bool) {
	events := l.Collapsed()

	// holdings anchor: period start for sold stocks, period end otherwise
	holdingsDay := end
	if class == ClassSold {
		holdingsDay = start
	}
	pos := Replay(l, events, holdingsDay, ReplayOptions{})
	if !pos.Held() {
		return PeriodicRow{}, nil, false
	}
	current := Replay(l, events, eval, ReplayOptions{})

	// value the anchored holdings at the evaluation date
	currentValue, err := Value(quotes, current.Security, events, pos.Shares, holdingsDay, eval)
	if err != nil {
		slog.Warn("skipping stock, cannot value", "ledger", l.Key(), "err", err)
		return PeriodicRow{}, nil, false
	}

	row := PeriodicRow{
		Security: l.Security,
		Name:     l.Name,
		Category: l.Category,
		Tag:      l.Tag,
		Class:    class,
		Shares:   pos.Shares,
	}

	var flows []Cashflow
	switch class {
	case ClassNew:
		// money actually put in during the period
		first := date.Date{}
		for _, e := range events {
			if e.When().Before(start) || e.When().After(end) {
				continue
			}
			if first.IsZero() {
				first = e.When()
			}
			if b, isBuy := e.(Buy); isBuy {
				row.StartValue = row.StartValue.Add(b.Amount)
			}
		}
		flows = periodFlows(events, start, end)
		row.PeriodDays = eval.Sub(first)
	case ClassRetained:
		// value at the period end, split adjusted to that day
		v, err := Value(quotes, current.Security, events, pos.Shares, end, end)
		if err != nil {
			slog.Warn("skipping retained stock, cannot value at period end",
				"ledger", l.Key(), "err", err)
			return PeriodicRow{}, nil, false
		}
		row.StartValue = v
		flows = append(flows, syntheticBuy(start, v))
		if first := l.First(); first != nil {
			row.PeriodDays = eval.Sub(first.When())
		}
	case ClassSold:
		// actual proceeds, or outflow totals when the exit was a transfer
		for _, e := range events {
			if e.When().Before(start) || e.When().After(end) {
				continue
			}
			if s, isSell := e.(Sell); isSell {
				row.StartValue = row.StartValue.Add(s.Amount)
			}
		}
		if row.StartValue.IsZero() {
			for _, e := range events {
				if e.When().Before(start) || e.When().After(end) {
					continue
				}
				if t, isTransfer := e.(Transfer); isTransfer {
					row.StartValue = row.StartValue.Add(t.Amount.Abs())
				}
			}
		}
		flows = append(flows, syntheticBuy(start, row.StartValue))
	}
	flows = append(flows, syntheticSell(eval, currentValue))

	row.CurrentValue = currentValue
	row.PnL = currentValue.Sub(row.StartValue)
	row.ROI = SimpleReturn(row.StartValue, GBP(0), currentValue)
	row.MWRR = MWRR(netFlows(flows))
	if !pos.Shares.IsFlat() {
		row.CurrentPrice = currentValue.Div(pos.Shares)
	}
	if risk, ok := Risk(quotes.History(current.Security), eval); ok {
		row.Risk = risk
	}
	return row, flows, true
}

// periodFlows extracts the real cashflows falling inside [start, end].
func periodFlows(events []Event, start, end date.Date) []Cashflow {
	var inPeriod []Event
	for _, e := range events {
		if !e.When().Before(start) && !e.When().After(end) {
			inPeriod = append(inPeriod, e)
		}
	}
	return Cashflows(inPeriod)
}
