package reviews

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudon7281/investment-reviews/date"
)

// FullHistoryOptions tune the full history report.
type FullHistoryOptions struct {
	Filter Filter

	// Eval is the valuation date, today when zero.
	Eval date.Date

	// MinInvestment excludes small buys from invested totals, see
	// ReplayOptions.
	MinInvestment Money

	// ValueOverTimeDays adds a daily portfolio valuation table covering
	// this many days back from Eval. Zero disables it, and current
	// valuations then use live exchange rates.
	ValueOverTimeDays int
}

// StockRow is one security's line in the full history report.
type StockRow struct {
	Security string
	Current  string // symbol after conversions, when renamed
	Name     string
	Category Category
	Tag      string

	Invested     Money
	Received     Money
	CurrentValue Money
	PnL          Money
	Unrealized   Money
	ROI          Percent
	MWRR         Percent

	Shares       Quantity
	CurrentPrice Money
	FirstEvent   date.Date
	LastEvent    date.Date
	NumEvents    int

	Risk RiskStats
}

// FullHistoryReport is the complete since-inception view of the portfolio.
type FullHistoryReport struct {
	Eval   date.Date
	Stocks []StockRow

	Portfolio   GroupRow
	PerCategory []GroupRow
	PerTag      []GroupRow

	// ValueOverTime is nil unless requested.
	ValueOverTime *TimeTable
}

// fullHistoryStock is the phase 1 analysis of one ledger.
type fullHistoryStock struct {
	ledger *Ledger
	events []Event // collapsed view
	pos    Position
}

// FullHistory builds the since-inception report: replays every ledger
// through the evaluation date, prices the positions still held, and
// aggregates performance for the whole portfolio, each account category and
// each tag. A held position with no usable price is an error; the report
// would silently understate the portfolio otherwise.
func FullHistory(ctx context.Context, p *Portfolio, src PriceSource, opts FullHistoryOptions) (*FullHistoryReport, error) {
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}
	eval := opts.Eval
	if eval.IsZero() {
		eval = date.Today()
	}

	// phase 1: replay ledgers, collect symbols that need pricing
	var stocks []fullHistoryStock
	var needed []string
	for l := range p.All() {
		if !opts.Filter.Match(l) {
			continue
		}
		events := l.Collapsed()
		if len(events) == 0 {
			continue
		}
		pos := Replay(l, events, eval, ReplayOptions{MinInvestment: opts.MinInvestment})
		stocks = append(stocks, fullHistoryStock{ledger: l, events: events, pos: pos})
		if pos.Held() {
			needed = append(needed, pos.Security)
		}
		slog.Debug("analyzed ledger", "ledger", l.Key(),
			"held", pos.Shares, "invested", pos.Invested)
	}

	// phase 2: one batch price fetch; risk stats want 90 days of closes
	lookback := max(opts.ValueOverTimeDays, volatilityWindowDays)
	quotes, err := src.Prices(ctx, needed, eval.Add(-lookback), eval, opts.ValueOverTimeDays == 0)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	// phase 3: value positions and aggregate
	report := &FullHistoryReport{Eval: eval}
	portfolio := newGroupAccumulator("Whole Portfolio")
	perCategory := newGroupAccumulator()
	perTag := newGroupAccumulator()

	for _, s := range stocks {
		row, flows, err := fullHistoryRow(s, quotes, eval)
		if err != nil {
			return nil, err
		}
		report.Stocks = append(report.Stocks, row)

		portfolio.add("Whole Portfolio", row.Invested, row.Received, row.CurrentValue, flows)
		perCategory.add(string(row.Category), row.Invested, row.Received, row.CurrentValue, flows)
		perTag.add(tagKey(s.ledger), row.Invested, row.Received, row.CurrentValue, flows)
	}

	report.Portfolio = portfolio.finish(false)[0]
	report.PerCategory = sortByCategory(perCategory.finish(false))
	report.PerTag = perTag.finish(true)

	if opts.ValueOverTimeDays > 0 {
		vot, err := ValueOverTime(p, quotes, eval.Add(-opts.ValueOverTimeDays), eval, opts.Filter)
		if err != nil {
			return nil, err
		}
		report.ValueOverTime = vot
	}
	return report, nil
}

// fullHistoryRow values one analyzed ledger and derives its metrics. The
// returned flows are the stock's real cashflows plus a terminal synthetic
// sell for value still held.
func fullHistoryRow(s fullHistoryStock, quotes *Quotes, eval date.Date) (StockRow, []Cashflow, error) {
	l, pos := s.ledger, s.pos

	current := GBP(0)
	price := GBP(0)
	if pos.Held() {
		v, err := Value(quotes, pos.Security, s.events, pos.Shares, eval, eval)
		if err != nil {
			return StockRow{}, nil, fmt.Errorf("valuing %s: %w", l.Key(), err)
		}
		current = v
		price = current.Div(pos.Shares)
	}

	flows := Cashflows(s.events)
	if pos.Held() {
		flows = append(flows, syntheticSell(eval, current))
	}

	row := StockRow{
		Security:     l.Security,
		Name:         l.Name,
		Category:     l.Category,
		Tag:          l.Tag,
		Invested:     pos.Invested,
		Received:     pos.Received,
		CurrentValue: current,
		PnL:          current.Add(pos.Received).Sub(pos.Invested),
		ROI:          SimpleReturn(pos.Invested, pos.Received, current),
		MWRR:         MWRR(netFlows(flows)),
		Shares:       pos.Shares,
		CurrentPrice: price,
		NumEvents:    len(s.events),
	}
	if pos.Security != l.Security {
		row.Current = pos.Security
	}
	if first := l.First(); first != nil {
		row.FirstEvent = first.When()
		row.LastEvent = s.events[len(s.events)-1].When()
	}

	// unrealized profit of the shares still held, against average cost
	if pos.Held() {
		if avg, ok := pos.AverageCost(); ok {
			row.Unrealized = price.Sub(avg).Mul(pos.Shares)
		}
		if risk, ok := Risk(quotes.History(pos.Security), eval); ok {
			row.Risk = risk
		}
	}
	return row, flows, nil
}
