package reviews

import (
	"testing"
	"time"

	"github.com/cloudon7281/investment-reviews/date"
)

func TestTax(t *testing.T) {
	b := NewBuilder()
	b.Add(Taxable, "",
		buy(day(2020, time.January, 10), "VWRL.L", 100, 80),
		buy(day(2021, time.January, 10), "VWRL.L", 100, 90),
		sell(day(2023, time.June, 1), "VWRL.L", 50, 110),
	)
	// ISA sales are free of capital gains
	b.Add(ISA, "",
		buy(day(2020, time.January, 10), "AAPL", 10, 100),
		sell(day(2023, time.June, 1), "AAPL", 10, 150),
	)
	p := b.Build()

	report, err := Tax(p, TaxOptions{Years: []date.TaxYear{2024}})
	if err != nil {
		t.Fatalf("Tax() error: %v", err)
	}
	if len(report.Disposals) != 1 {
		t.Fatalf("report has %d disposals, want 1, taxable only", len(report.Disposals))
	}
	d := report.Disposals[0]
	// average cost over every share bought through the sale date
	if !d.AveragePrice.Equal(GBP(85)) {
		t.Errorf("AveragePrice = %v, want (8000 + 9000) / 200 = 85", d.AveragePrice)
	}
	if !d.PnL.Equal(GBP(1250)) {
		t.Errorf("PnL = %v, want 5500 - 50 x 85 = 1250", d.PnL)
	}
	if !report.NetGains.Equal(GBP(1250)) {
		t.Errorf("NetGains = %v, want 1250", report.NetGains)
	}
}

func TestTax_YearBoundaries(t *testing.T) {
	b := NewBuilder()
	b.Add(Taxable, "",
		buy(day(2020, time.January, 10), "VWRL.L", 100, 80),
		sell(day(2023, time.April, 5), "VWRL.L", 10, 100), // last day of FY2023
		sell(day(2023, time.April, 6), "VWRL.L", 10, 100), // first day of FY2024
		sell(day(2024, time.April, 5), "VWRL.L", 10, 100), // last day of FY2024
		sell(day(2024, time.April, 6), "VWRL.L", 10, 100), // FY2025
	)
	p := b.Build()

	report, err := Tax(p, TaxOptions{Years: []date.TaxYear{2024}})
	if err != nil {
		t.Fatalf("Tax() error: %v", err)
	}
	if len(report.Disposals) != 2 {
		t.Fatalf("report has %d disposals, want the 2 in FY2024", len(report.Disposals))
	}
	if report.Disposals[0].Day != day(2023, time.April, 6) {
		t.Errorf("first disposal on %v, want 2023-04-06", report.Disposals[0].Day)
	}
}

func TestTax_BedAndISALegsStayVisible(t *testing.T) {
	// the same-day sell and buy-back is collapsed for valuation but the
	// sale is still a disposal for capital gains
	b := NewBuilder()
	b.Add(Taxable, "",
		buy(day(2020, time.January, 10), "VWRL.L", 100, 80),
		sell(day(2023, time.June, 1), "VWRL.L", 100, 110),
		buy(day(2023, time.June, 1), "VWRL.L", 100, 110),
	)
	p := b.Build()

	report, err := Tax(p, TaxOptions{Years: []date.TaxYear{2024}})
	if err != nil {
		t.Fatalf("Tax() error: %v", err)
	}
	if len(report.Disposals) != 1 {
		t.Fatalf("report has %d disposals, want 1", len(report.Disposals))
	}
	// the buy-back joins the pool, the average cost covers both purchases
	if !report.Disposals[0].PnL.Equal(GBP(1500)) {
		t.Errorf("PnL = %v, want 11000 - 100 x 95 = 1500", report.Disposals[0].PnL)
	}
}

func TestTax_GrantOnlySkipped(t *testing.T) {
	b := NewBuilder()
	b.Add(Taxable, "",
		NewConversion(day(2020, time.January, 10), "FSFLY", "Free shares", Q(0), Q(10), ""),
		sell(day(2023, time.June, 1), "FSFLY", 10, 50),
	)
	p := b.Build()

	report, err := Tax(p, TaxOptions{Years: []date.TaxYear{2024}})
	if err != nil {
		t.Fatalf("Tax() error: %v", err)
	}
	if len(report.Disposals) != 0 {
		t.Errorf("report has %d disposals, want 0, no cost record", len(report.Disposals))
	}
}
