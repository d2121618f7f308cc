package reviews

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudon7281/investment-reviews/date"
)

func TestPriceOn_Lookback(t *testing.T) {
	q := NewQuotes()
	q.Append("VWRL.L", day(2024, time.March, 1), GBP(100)) // a Friday

	testCases := []struct {
		name string
		on   date.Date
		want float64
		ok   bool
	}{
		{name: "exact day", on: day(2024, time.March, 1), want: 100, ok: true},
		{name: "over the weekend", on: day(2024, time.March, 3), want: 100, ok: true},
		{name: "two weeks later", on: day(2024, time.March, 15), want: 100, ok: true},
		{name: "too stale", on: day(2024, time.March, 16), ok: false},
		{name: "before any close", on: day(2024, time.February, 1), ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			close, _, ok := q.PriceOn("VWRL.L", tc.on)
			if ok != tc.ok {
				t.Fatalf("PriceOn() ok = %v, want %v", ok, tc.ok)
			}
			if ok && !close.Equal(GBP(tc.want)) {
				t.Errorf("PriceOn() = %v, want %v", close, tc.want)
			}
		})
	}
}

func TestPriceAround_ForwardFallback(t *testing.T) {
	q := NewQuotes()
	q.Append("FUND", day(2024, time.June, 1), GBP(50))

	close, on, ok := q.PriceAround("FUND", day(2024, time.January, 1))
	if !ok {
		t.Fatal("PriceAround() found nothing")
	}
	if !close.Equal(GBP(50)) || on != day(2024, time.June, 1) {
		t.Errorf("PriceAround() = %v on %v, want 50 on 2024-06-01", close, on)
	}
}

func TestValue(t *testing.T) {
	q := NewQuotes()
	q.Append("AAPL", day(2024, time.March, 1), GBP(170))

	got, err := Value(q, "AAPL", nil, Q(10), day(2024, time.March, 1), day(2024, time.March, 1))
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if !got.Equal(GBP(1700)) {
		t.Errorf("Value() = %v, want 1700", got)
	}
}

func TestValue_SplitAdjustsHoldings(t *testing.T) {
	// holdings anchored before the split, priced after it: the close is
	// post split, so the share count must be too
	events := []Event{
		buy(day(2020, time.January, 10), "AAPL", 10, 400),
		NewConversion(day(2020, time.August, 31), "AAPL", "Apple", Q(1), Q(4), ""),
	}
	q := NewQuotes()
	q.Append("AAPL", day(2024, time.March, 1), GBP(170))

	got, err := Value(q, "AAPL", events, Q(10), day(2020, time.June, 1), day(2024, time.March, 1))
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if !got.Equal(GBP(6800)) {
		t.Errorf("Value() = %v, want 40 x 170 = 6800", got)
	}

	// anchored after the split: holdings are already post split
	got, err = Value(q, "AAPL", events, Q(40), day(2021, time.January, 1), day(2024, time.March, 1))
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if !got.Equal(GBP(6800)) {
		t.Errorf("Value() = %v, want 6800 unadjusted", got)
	}
}

func TestValue_HeldWithoutPrice(t *testing.T) {
	q := NewQuotes()
	_, err := Value(q, "GHOST", nil, Q(10), day(2024, time.March, 1), day(2024, time.March, 1))
	var noPrice *ErrNoPrice
	if !errors.As(err, &noPrice) {
		t.Fatalf("Value() error = %v, want ErrNoPrice", err)
	}
	if noPrice.Symbol != "GHOST" {
		t.Errorf("ErrNoPrice.Symbol = %q, want GHOST", noPrice.Symbol)
	}
}

func TestValue_FlatIsFree(t *testing.T) {
	q := NewQuotes() // no prices at all
	got, err := Value(q, "GHOST", nil, Q(0), day(2024, time.March, 1), day(2024, time.March, 1))
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Value() = %v, want 0", got)
	}
}
