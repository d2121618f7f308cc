package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/cloudon7281/investment-reviews/date"
)

func classifyOne(t *testing.T, events ...Event) Class {
	t.Helper()
	b := NewBuilder()
	b.Add(ISA, "", events...)
	p := b.Build()
	classified := Classify(p, Filter{}, day(2023, time.January, 1), day(2023, time.December, 31))
	for class, ledgers := range classified {
		if len(ledgers) > 0 {
			return class
		}
	}
	t.Fatal("nothing classified")
	return ""
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		events []Event
		want   Class
	}{
		{
			name:   "bought in the period",
			events: []Event{buy(day(2023, time.March, 1), "A", 10, 100)},
			want:   ClassNew,
		},
		{
			name: "bought and sold in the period",
			events: []Event{
				buy(day(2023, time.March, 1), "A", 10, 100),
				sell(day(2023, time.June, 1), "A", 10, 110),
			},
			want: ClassNew,
		},
		{
			name:   "held across the period",
			events: []Event{buy(day(2020, time.March, 1), "A", 10, 100)},
			want:   ClassRetained,
		},
		{
			name: "sold during the period",
			events: []Event{
				buy(day(2020, time.March, 1), "A", 10, 100),
				sell(day(2023, time.June, 1), "A", 10, 110),
			},
			want: ClassSold,
		},
		{
			name: "closed before the period",
			events: []Event{
				buy(day(2020, time.March, 1), "A", 10, 100),
				sell(day(2021, time.June, 1), "A", 10, 110),
			},
			want: ClassOutOfScope,
		},
		{
			name:   "first trade after the period",
			events: []Event{buy(day(2024, time.March, 1), "A", 10, 100)},
			want:   ClassOutOfScope,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyOne(t, tc.events...); got != tc.want {
				t.Errorf("classified as %v, want %v", got, tc.want)
			}
		})
	}
}

func periodicQuotes(closes map[string]map[date.Date]float64) *Quotes {
	q := NewQuotes()
	for symbol, series := range closes {
		for on, c := range series {
			q.Append(symbol, on, GBP(c))
		}
	}
	return q
}

func TestPeriodic_Retained(t *testing.T) {
	start, end := day(2023, time.January, 1), day(2023, time.December, 31)
	eval := day(2024, time.March, 1)

	b := NewBuilder()
	b.Add(ISA, "", buy(day(2020, time.March, 1), "VWRL.L", 100, 80))
	p := b.Build()

	src := &fakeSource{quotes: periodicQuotes(map[string]map[date.Date]float64{
		"VWRL.L": {end: 90, eval: 100},
	})}
	report, err := Periodic(context.Background(), p, src, PeriodicOptions{Start: start, End: end, Eval: eval})
	if err != nil {
		t.Fatalf("Periodic() error: %v", err)
	}
	if src.live {
		t.Error("periodic reviews never use live rates")
	}
	if len(report.Retained) != 1 {
		t.Fatalf("retained rows = %d, want 1", len(report.Retained))
	}
	row := report.Retained[0]
	// the period's starting point is the value at its end
	if !row.StartValue.Equal(GBP(9000)) {
		t.Errorf("StartValue = %v, want 9000", row.StartValue)
	}
	if !row.CurrentValue.Equal(GBP(10000)) {
		t.Errorf("CurrentValue = %v, want 10000", row.CurrentValue)
	}
	if !row.PnL.Equal(GBP(1000)) {
		t.Errorf("PnL = %v, want 1000", row.PnL)
	}
	if row.PeriodDays != eval.Sub(day(2020, time.March, 1)) {
		t.Errorf("PeriodDays = %d, want days since the first trade", row.PeriodDays)
	}
}

func TestPeriodic_NewStartsFromPurchases(t *testing.T) {
	start, end := day(2023, time.January, 1), day(2023, time.December, 31)
	eval := day(2024, time.March, 1)

	b := NewBuilder()
	b.Add(ISA, "",
		buy(day(2023, time.March, 1), "NEWCO", 10, 100),
		buy(day(2023, time.September, 1), "NEWCO", 10, 120),
	)
	p := b.Build()

	src := &fakeSource{quotes: periodicQuotes(map[string]map[date.Date]float64{
		"NEWCO": {eval: 130},
	})}
	report, err := Periodic(context.Background(), p, src, PeriodicOptions{Start: start, End: end, Eval: eval})
	if err != nil {
		t.Fatalf("Periodic() error: %v", err)
	}
	if len(report.New) != 1 {
		t.Fatalf("new rows = %d, want 1", len(report.New))
	}
	row := report.New[0]
	if !row.StartValue.Equal(GBP(2200)) {
		t.Errorf("StartValue = %v, want the 2200 actually put in", row.StartValue)
	}
	if !row.CurrentValue.Equal(GBP(2600)) {
		t.Errorf("CurrentValue = %v, want 2600", row.CurrentValue)
	}
	if row.PeriodDays != eval.Sub(day(2023, time.March, 1)) {
		t.Errorf("PeriodDays = %d, want days since the first purchase in the period", row.PeriodDays)
	}
}

func TestPeriodic_SoldIsCounterfactual(t *testing.T) {
	start, end := day(2023, time.January, 1), day(2023, time.December, 31)
	eval := day(2024, time.March, 1)

	b := NewBuilder()
	b.Add(ISA, "",
		buy(day(2020, time.March, 1), "OLDCO", 10, 100),
		sell(day(2023, time.June, 1), "OLDCO", 10, 150),
	)
	p := b.Build()

	src := &fakeSource{quotes: periodicQuotes(map[string]map[date.Date]float64{
		"OLDCO": {eval: 200},
	})}
	report, err := Periodic(context.Background(), p, src, PeriodicOptions{Start: start, End: end, Eval: eval})
	if err != nil {
		t.Fatalf("Periodic() error: %v", err)
	}
	if len(report.Sold) != 1 {
		t.Fatalf("sold rows = %d, want 1", len(report.Sold))
	}
	row := report.Sold[0]
	// start value is the sale proceeds
	if !row.StartValue.Equal(GBP(1500)) {
		t.Errorf("StartValue = %v, want the 1500 received", row.StartValue)
	}
	// current value is what the sold shares would be worth today
	if !row.CurrentValue.Equal(GBP(2000)) {
		t.Errorf("CurrentValue = %v, want 2000 had it been kept", row.CurrentValue)
	}
	// selling looks wrong when the price kept climbing
	if !row.PnL.Equal(GBP(500)) {
		t.Errorf("PnL = %v, want 500 foregone", row.PnL)
	}
	if row.PeriodDays != 0 {
		t.Errorf("PeriodDays = %d, want 0 for a counterfactual", row.PeriodDays)
	}
}
