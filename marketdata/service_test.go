package marketdata

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloudon7281/investment-reviews/date"
)

// testService wires a Service around a canned per-symbol fetch so no test
// ever talks to the provider.
func testService(fetch func(symbol string) (*rawSeries, error)) *Service {
	s := &Service{reporting: "GBP", crumb: "test"}
	s.fetchFn = func(_ context.Context, symbol string, _, _ date.Date, _ bool) (*rawSeries, error) {
		return fetch(symbol)
	}
	return s
}

func TestPrices_SurvivesUnreachableSymbol(t *testing.T) {
	start := date.New(2024, time.January, 8)
	s := testService(func(symbol string) (*rawSeries, error) {
		if symbol == "AAPL" {
			return nil, errors.New("dial tcp: connection refused")
		}
		return series(symbol, "GBP", start, 100, 101), nil
	})

	quotes, err := s.Prices(context.Background(), []string{"AAPL", "VWRL.L"}, start, start.Add(1), false)
	if err != nil {
		t.Fatalf("Prices() = %v, want the run to continue past the dead symbol", err)
	}
	if _, _, ok := quotes.PriceOn("VWRL.L", start.Add(1)); !ok {
		t.Error("the reachable symbol lost its closes")
	}
	if _, _, ok := quotes.PriceOn("AAPL", start.Add(1)); ok {
		t.Error("the unreachable symbol reports closes from nowhere")
	}
}

func TestPrices_UnknownSymbolIsFatal(t *testing.T) {
	start := date.New(2024, time.January, 8)
	s := testService(func(symbol string) (*rawSeries, error) {
		if symbol == "XXXX" {
			return nil, fmt.Errorf("%s: no closes and no market price: %w", symbol, errUnknownSymbol)
		}
		return series(symbol, "GBP", start, 100, 101), nil
	})

	if _, err := s.Prices(context.Background(), []string{"VWRL.L", "XXXX"}, start, start.Add(1), false); !errors.Is(err, errUnknownSymbol) {
		t.Fatalf("Prices() = %v, want a bad ticker to fail the run", err)
	}
}

func TestPrices_FallsBackToStoredCloses(t *testing.T) {
	start := date.New(2024, time.January, 8)
	store := openTestStore(t)
	if err := store.Save(series("VWRL.L", "GBP", start, 100, 101)); err != nil {
		t.Fatal(err)
	}

	s := testService(func(string) (*rawSeries, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	s.store = store

	quotes, err := s.Prices(context.Background(), []string{"VWRL.L"}, start, start.Add(1), false)
	if err != nil {
		t.Fatalf("Prices() = %v, want stored closes to cover the outage", err)
	}
	if _, _, ok := quotes.PriceOn("VWRL.L", start.Add(1)); !ok {
		t.Error("stored closes not served")
	}
}
