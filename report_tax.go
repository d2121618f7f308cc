package reviews

import (
	"log/slog"
	"slices"

	"github.com/cloudon7281/investment-reviews/date"
)

// TaxOptions tune the capital gains report.
type TaxOptions struct {
	Years []date.TaxYear // tax years to report, most commonly one
}

// Disposal is one taxable sale with its average cost P&L.
type Disposal struct {
	Security string
	Name     string
	Year     date.TaxYear

	Day          date.Date
	Shares       Quantity // shares sold
	Received     Money    // gross proceeds
	TotalBought  Quantity // split adjusted shares bought through the sale
	TotalPaid    Money    // cost of all shares bought through the sale
	AveragePrice Money    // TotalPaid / TotalBought
	PnL          Money    // Received - Shares x AveragePrice
}

// TaxReport lists the disposals of the requested tax years.
type TaxReport struct {
	Years     []date.TaxYear
	Disposals []Disposal
	NetGains  Money
}

// Tax builds the capital gains report over the raw taxable event streams.
// Bed-and-ISA trades stay as their sell and buy legs here: the sale is a
// disposal for capital gains even when the shares were immediately bought
// back in another account. Each sale is priced against the average cost of
// every share bought through the sale date, split adjusted.
func Tax(p *Portfolio, opts TaxOptions) (*TaxReport, error) {
	years := slices.Clone(opts.Years)
	if len(years) == 0 {
		years = []date.TaxYear{date.CurrentTaxYear()}
	}
	slices.Sort(years)

	report := &TaxReport{Years: years}
	for l := range p.All() {
		if l.Category != Taxable {
			continue
		}
		for _, e := range l.Events() {
			s, ok := e.(Sell)
			if !ok {
				continue
			}
			year, in := inYears(s.Date, years)
			if !in {
				continue
			}
			d, ok := disposal(l, s, year)
			if !ok {
				continue
			}
			report.Disposals = append(report.Disposals, d)
		}
	}

	slices.SortStableFunc(report.Disposals, func(a, b Disposal) int {
		return a.Day.Compare(b.Day)
	})
	for _, d := range report.Disposals {
		report.NetGains = report.NetGains.Add(d.PnL)
	}
	return report, nil
}

func inYears(day date.Date, years []date.TaxYear) (date.TaxYear, bool) {
	for _, y := range years {
		if y.Range().Contains(day) {
			return y, true
		}
	}
	return 0, false
}

// disposal prices one sale against the average cost of everything bought
// through its date. Positions that were never bought, only granted or
// transferred in, have no cost record and are skipped with a warning.
func disposal(l *Ledger, s Sell, year date.TaxYear) (Disposal, bool) {
	pos := Replay(l, l.Events(), s.Date, ReplayOptions{})
	avg, ok := pos.AverageCost()
	if !ok {
		slog.Warn("sale has no purchase record, skipped",
			"security", l.Security, "date", s.Date)
		return Disposal{}, false
	}
	shares := s.Shares.Abs()
	return Disposal{
		Security:     l.Security,
		Name:         l.Name,
		Year:         year,
		Day:          s.Date,
		Shares:       shares,
		Received:     s.Amount,
		TotalBought:  pos.GrossShares,
		TotalPaid:    pos.CostBasis,
		AveragePrice: avg,
		PnL:          s.Amount.Sub(avg.Mul(shares)),
	}, true
}
