package reviews

import (
	"context"
	"errors"
	"slices"

	"github.com/cloudon7281/investment-reviews/date"
)

// PriceSource supplies close series for symbols over a date range,
// normalized to the reporting currency. Live selects intraday exchange
// rates for the newest closes instead of the last historical rate.
type PriceSource interface {
	Prices(ctx context.Context, symbols []string, from, to date.Date, live bool) (*Quotes, error)
}

// Filter restricts which ledgers a report covers.
type Filter struct {
	Categories  []Category // keep only these categories; empty keeps all
	IncludeTags []string   // keep only these tags; empty keeps all
	ExcludeTags []string   // drop these tags; exclusive with IncludeTags
}

// Validate checks the filter for contradictions.
func (f Filter) Validate() error {
	if len(f.IncludeTags) > 0 && len(f.ExcludeTags) > 0 {
		return errors.New("include-tags and exclude-tags cannot both be set")
	}
	return nil
}

// Match reports whether a ledger passes the filter. Untagged ledgers match
// tag filters under the "No Tag" label.
func (f Filter) Match(l *Ledger) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, l.Category) {
		return false
	}
	if len(f.IncludeTags) > 0 && !slices.Contains(f.IncludeTags, tagKey(l)) {
		return false
	}
	return !slices.Contains(f.ExcludeTags, tagKey(l))
}

// noTag labels untagged ledgers in per-tag groupings.
const noTag = "No Tag"

func tagKey(l *Ledger) string {
	if l.Tag == "" {
		return noTag
	}
	return l.Tag
}

// GroupRow is one aggregated line of a report: the whole portfolio, one
// account category, or one tag.
type GroupRow struct {
	Group        string
	Invested     Money
	Received     Money
	CurrentValue Money
	PnL          Money
	ROI          Percent
	MWRR         Percent
}

// groupAccumulator builds GroupRows and their cashflow series per group key,
// preserving first-seen order unless keys are pre-registered.
type groupAccumulator struct {
	order []string
	rows  map[string]*GroupRow
	flows map[string][]Cashflow
}

func newGroupAccumulator(keys ...string) *groupAccumulator {
	g := &groupAccumulator{
		rows:  make(map[string]*GroupRow),
		flows: make(map[string][]Cashflow),
	}
	for _, k := range keys {
		g.row(k)
	}
	return g
}

func (g *groupAccumulator) row(key string) *GroupRow {
	r, ok := g.rows[key]
	if !ok {
		r = &GroupRow{Group: key}
		g.rows[key] = r
		g.order = append(g.order, key)
	}
	return r
}

func (g *groupAccumulator) add(key string, invested, received, current Money, flows []Cashflow) {
	r := g.row(key)
	r.Invested = r.Invested.Add(invested)
	r.Received = r.Received.Add(received)
	r.CurrentValue = r.CurrentValue.Add(current)
	g.flows[key] = append(g.flows[key], flows...)
}

// finish finalizes the accumulated groups: nets each group's flows, computes
// PnL, ROI and the money weighted return, and returns the rows in order.
func (g *groupAccumulator) finish(sorted bool) []GroupRow {
	keys := g.order
	if sorted {
		keys = slices.Clone(keys)
		slices.Sort(keys)
	}
	out := make([]GroupRow, 0, len(keys))
	for _, k := range keys {
		r := g.rows[k]
		r.PnL = r.CurrentValue.Add(r.Received).Sub(r.Invested)
		r.ROI = SimpleReturn(r.Invested, r.Received, r.CurrentValue)
		r.MWRR = MWRR(netFlows(g.flows[k]))
		out = append(out, *r)
	}
	return out
}

// sortByCategory orders category group rows in the fixed reporting order,
// ISA then Taxable then Pension.
func sortByCategory(rows []GroupRow) []GroupRow {
	pos := func(r GroupRow) int {
		for i, c := range Categories() {
			if r.Group == string(c) {
				return i
			}
		}
		return len(Categories())
	}
	slices.SortStableFunc(rows, func(a, b GroupRow) int { return pos(a) - pos(b) })
	return rows
}

// netFlows re-nets a merged cashflow series by date.
func netFlows(flows []Cashflow) []Cashflow {
	buckets := make(map[date.Date]float64)
	for _, f := range flows {
		buckets[f.Day] += f.Amount
	}
	out := make([]Cashflow, 0, len(buckets))
	for day, amount := range buckets {
		out = append(out, Cashflow{Day: day, Amount: amount})
	}
	slices.SortFunc(out, func(a, b Cashflow) int { return a.Day.Compare(b.Day) })
	return out
}

// syntheticSell is the terminal flow that books a still-held position's
// market value into a return calculation, as if it were sold on the day.
func syntheticSell(day date.Date, value Money) Cashflow {
	return Cashflow{Day: day, Amount: value.AsFloat()}
}

// syntheticBuy books a starting value into a return calculation, as if the
// position were bought on the day for its value then.
func syntheticBuy(day date.Date, value Money) Cashflow {
	return Cashflow{Day: day, Amount: -value.AsFloat()}
}
