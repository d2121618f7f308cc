package reviews

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/cloudon7281/investment-reviews/date"
)

// TimeTable is a daily series of numeric columns.
type TimeTable struct {
	Columns []string
	Days    []date.Date
	Values  [][]float64 // one row per day, one value per column
}

// votLedger tracks one ledger's incremental replay through the day sweep.
type votLedger struct {
	ledger  *Ledger
	events  []Event
	next    int // index of the first event not yet applied
	pos     Position
	pending Quantity // product of split ratios still ahead of the sweep
}

// ValueOverTime builds the daily valuation table over [from, to]: for every
// day, each filtered ledger's holdings are priced with the most recent
// usable close, or the earliest later close when the early history predates
// the series, and accumulated into whole portfolio, per category and per
// tag columns. Days where a held stock has no close at all simply skip that
// stock; a chart tolerates gaps a valuation must not.
func ValueOverTime(p *Portfolio, quotes *Quotes, from, to date.Date, filter Filter) (*TimeTable, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range %s to %s", from, to)
	}

	var ledgers []*votLedger
	tagSet := make(map[string]bool)
	for l := range p.All() {
		if !filter.Match(l) {
			continue
		}
		events := l.Collapsed()
		if len(events) == 0 {
			continue
		}
		v := &votLedger{
			ledger:  l,
			events:  events,
			pos:     Position{Security: l.Security, Name: l.Name},
			pending: splitRatioAfter(events, date.Date{}),
		}
		ledgers = append(ledgers, v)
		tagSet[tagKey(l)] = true
	}

	tags := slices.Sorted(maps.Keys(tagSet))

	columns := []string{"Whole Portfolio"}
	for _, c := range Categories() {
		columns = append(columns, string(c))
	}
	columns = append(columns, tags...)
	colIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		colIndex[c] = i
	}

	table := &TimeTable{Columns: columns}
	for day := from; !day.After(to); day = day.Add(1) {
		row := make([]float64, len(columns))
		for _, v := range ledgers {
			v.advance(day)
			if !v.pos.Held() {
				continue
			}
			price, _, ok := quotes.PriceAround(v.pos.Security, day)
			if !ok {
				slog.Debug("no close, skipping stock for the day",
					"security", v.pos.Security, "day", day)
				continue
			}
			value := price.Mul(v.pos.Shares.Mul(v.pending)).AsFloat()
			row[0] += value
			row[colIndex[string(v.ledger.Category)]] += value
			row[colIndex[tagKey(v.ledger)]] += value
		}
		table.Days = append(table.Days, day)
		table.Values = append(table.Values, row)
	}
	return table, nil
}

// advance applies every event up to and including day, keeping the pending
// split ratio in step. Closes are quoted post split, so holdings are
// multiplied by the splits still ahead before pricing.
func (v *votLedger) advance(day date.Date) {
	for v.next < len(v.events) && !v.events[v.next].When().After(day) {
		e := v.events[v.next]
		v.pos.apply(e, ReplayOptions{})
		if c, ok := e.(Conversion); ok && c.IsRatio() {
			v.pending = v.pending.Div(c.Ratio())
		}
		v.next++
	}
}

// PriceTable is a daily table of close prices interleaved with transaction
// annotations, one pair of columns per security.
type PriceTable struct {
	Columns []string
	Days    []date.Date
	Cells   [][]string
}

// PriceOverTime builds the daily price table over [from, to] for the
// filtered ledgers: a price column and a transaction annotation column per
// security, so a reviewer can see what was traded against the price it
// traded at.
func PriceOverTime(p *Portfolio, quotes *Quotes, from, to date.Date, filter Filter) (*PriceTable, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range %s to %s", from, to)
	}

	var ledgers []*Ledger
	for l := range p.All() {
		if filter.Match(l) {
			ledgers = append(ledgers, l)
		}
	}
	slices.SortStableFunc(ledgers, func(a, b *Ledger) int {
		return strings.Compare(a.Security, b.Security)
	})

	table := &PriceTable{}
	for _, l := range ledgers {
		name := l.Name
		if name == "" {
			name = l.Security
		}
		table.Columns = append(table.Columns,
			fmt.Sprintf("%s (%s)", name, l.Security),
			fmt.Sprintf("Transactions (%s)", l.Security))
	}

	for day := from; !day.After(to); day = day.Add(1) {
		row := make([]string, len(table.Columns))
		for i, l := range ledgers {
			symbol := currentSymbol(l, day)
			if close, on, ok := quotes.PriceOn(symbol, day); ok && on == day {
				row[2*i] = fmt.Sprintf("%.2f", close.AsFloat())
			}
			row[2*i+1] = annotate(l, day)
		}
		table.Days = append(table.Days, day)
		table.Cells = append(table.Cells, row)
	}
	return table, nil
}

// currentSymbol returns the symbol a ledger trades under as of a day.
func currentSymbol(l *Ledger, day date.Date) string {
	symbol := l.Security
	for _, e := range l.events {
		if e.When().After(day) {
			break
		}
		if c, ok := e.(Conversion); ok && c.NewSecurity != "" {
			symbol = c.NewSecurity
		}
	}
	return symbol
}

// annotate describes a ledger's events on one day for the price table.
func annotate(l *Ledger, day date.Date) string {
	var notes []string
	for _, e := range l.events {
		if e.When() != day {
			continue
		}
		switch t := e.(type) {
		case Buy:
			notes = append(notes, fmt.Sprintf("BOUGHT %s", t.Shares))
		case Sell:
			notes = append(notes, fmt.Sprintf("SOLD %s", t.Shares))
		case Transfer:
			if t.Shares.IsNegative() {
				notes = append(notes, fmt.Sprintf("TRANSFER OUT %s", t.Shares.Abs()))
			} else {
				notes = append(notes, fmt.Sprintf("TRANSFER IN %s", t.Shares))
			}
		case Conversion:
			notes = append(notes, describeConversion(t))
		}
	}
	return strings.Join(notes, "; ")
}

func describeConversion(c Conversion) string {
	switch {
	case c.IsRatio() && c.NewShares.GreaterThan(c.OldShares):
		return fmt.Sprintf("SPLIT x%s", c.Ratio())
	case c.IsRatio():
		return fmt.Sprintf("REVERSE SPLIT %s:1", c.OldShares.Div(c.NewShares))
	case c.NewSecurity != "":
		return fmt.Sprintf("CONVERTED to %s", c.NewSecurity)
	default:
		return "CONVERSION"
	}
}
