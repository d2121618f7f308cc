package marketdata

import (
	"math"
	"testing"
	"time"

	"github.com/cloudon7281/investment-reviews/date"
)

func series(symbol, currency string, start date.Date, closes ...float64) *rawSeries {
	s := &rawSeries{Symbol: symbol, Currency: currency}
	for i, c := range closes {
		s.Days = append(s.Days, start.Add(i))
		s.Closes = append(s.Closes, c)
	}
	return s
}

func TestDropSpikes(t *testing.T) {
	start := date.New(2024, time.January, 1)
	s := series("VWRL.L", "GBP", start, 100, 101, 250, 102, 103)

	s.dropSpikes()

	if len(s.Closes) != 4 {
		t.Fatalf("series has %d rows after filtering, want 4", len(s.Closes))
	}
	for _, c := range s.Closes {
		if c == 250 {
			t.Error("spike survived the filter")
		}
	}
}

func TestDropSpikes_KeepsRealMoves(t *testing.T) {
	start := date.New(2024, time.January, 1)
	testCases := []struct {
		name   string
		closes []float64
	}{
		// a step change holds its new level, no reversal
		{name: "step change", closes: []float64{100, 101, 130, 131, 132}},
		// a reversal within tolerance is an ordinary wobble
		{name: "small wobble", closes: []float64{100, 101, 110, 102, 103}},
		// endpoints have only one neighbour
		{name: "jump at the end", closes: []float64{100, 101, 102, 103, 180}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := series("X", "GBP", start, tc.closes...)
			s.dropSpikes()
			if len(s.Closes) != len(tc.closes) {
				t.Errorf("series has %d rows, want %d untouched", len(s.Closes), len(tc.closes))
			}
		})
	}
}

func TestDropSpikes_SkipsNaNNeighbours(t *testing.T) {
	start := date.New(2024, time.January, 1)
	// the spike's immediate neighbour is a gap; the filter compares
	// against the nearest valid closes
	s := series("X", "GBP", start, 100, math.NaN(), 250, 102, 103)
	s.dropSpikes()
	if len(s.Closes) != 4 {
		t.Fatalf("series has %d rows, want 4 with the spike gone", len(s.Closes))
	}
}

func TestFixPenceTransition_PenceToPounds(t *testing.T) {
	start := date.New(2024, time.January, 1)
	s := series("FUND.L", "GBp", start, 12000, 12100, 121.5, 122)

	if !s.fixPenceTransition() {
		t.Fatal("transition not detected")
	}
	if s.Closes[0] != 120 || s.Closes[1] != 121 {
		t.Errorf("pence rows = %v, %v, want scaled to 120, 121", s.Closes[0], s.Closes[1])
	}
	if s.Closes[2] != 121.5 {
		t.Errorf("pounds row = %v, want untouched", s.Closes[2])
	}
}

func TestFixPenceTransition_PoundsToPence(t *testing.T) {
	start := date.New(2024, time.January, 1)
	s := series("FUND.L", "GBp", start, 120, 121, 12150, 12200)

	if !s.fixPenceTransition() {
		t.Fatal("transition not detected")
	}
	if s.Closes[2] != 121.5 || s.Closes[3] != 122 {
		t.Errorf("pence rows = %v, %v, want scaled down", s.Closes[2], s.Closes[3])
	}
	if s.Closes[0] != 120 {
		t.Errorf("pounds row = %v, want untouched", s.Closes[0])
	}
}

func TestNormalizeUnits_GBpDividedBy100(t *testing.T) {
	start := date.New(2024, time.January, 1)
	s := series("IUSA.L", "GBp", start, 3000, 3010)
	s.normalizeUnits()
	if s.Closes[0] != 30 || s.Closes[1] != 30.1 {
		t.Errorf("closes = %v, want pence scaled to pounds", s.Closes)
	}
}

func TestNormalizeUnits_QuotedInPoundsException(t *testing.T) {
	start := date.New(2024, time.January, 1)
	// a fund the provider flags GBp while quoting pounds
	s := series("0P00013YAP.L", "GBp", start, 2.5, 2.6)
	s.normalizeUnits()
	if s.Closes[0] != 2.5 {
		t.Errorf("close = %v, want untouched for a pounds-quoted fund", s.Closes[0])
	}
}

func TestFxRates(t *testing.T) {
	fx := newFxRates("GBP")
	jan2 := date.New(2024, time.January, 2)
	jan5 := date.New(2024, time.January, 5)
	fx.add("USD", jan2, 0.80)
	fx.add("USD", jan5, 0.82)

	testCases := []struct {
		name string
		day  date.Date
		want float64
	}{
		{name: "exact day", day: jan2, want: 0.80},
		{name: "forward filled", day: date.New(2024, time.January, 4), want: 0.80},
		{name: "before all rates", day: date.New(2023, time.December, 1), want: 0.80},
		{name: "latest", day: date.New(2024, time.February, 1), want: 0.82},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := fx.rate("USD", tc.day); got != tc.want {
				t.Errorf("rate() = %v, want %v", got, tc.want)
			}
		})
	}

	if got := fx.rate("GBP", jan2); got != 1 {
		t.Errorf("rate for the reporting currency = %v, want 1", got)
	}
	if got := fx.rate("XXX", jan2); got != 1 {
		t.Errorf("rate for an unknown currency = %v, want the 1.0 fallback", got)
	}
}

func TestFxRates_Live(t *testing.T) {
	fx := newFxRates("GBP")
	fx.live = true
	fx.add("USD", date.New(2024, time.January, 2), 0.80)
	fx.add("USD", date.New(2024, time.January, 5), 0.82)

	// live mode pins every day to the latest rate
	if got := fx.rate("USD", date.New(2024, time.January, 2)); got != 0.82 {
		t.Errorf("live rate = %v, want 0.82", got)
	}
}

func TestConvert_LastRowUsesLatestRate(t *testing.T) {
	fx := newFxRates("GBP")
	jan2 := date.New(2024, time.January, 2)
	jan3 := date.New(2024, time.January, 3)
	fx.add("USD", jan2, 0.80)
	fx.add("USD", jan3, 0.90)

	// the price series ends a day before the FX series
	s := series("AAPL", "USD", jan2, 100)
	fx.convert(s)
	// the single (hence last) row converts at the most recent rate
	if s.Closes[0] != 90 {
		t.Errorf("converted close = %v, want 100 x 0.90", s.Closes[0])
	}
	if s.Currency != "GBP" {
		t.Errorf("currency = %q, want GBP after conversion", s.Currency)
	}
}
