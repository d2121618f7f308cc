package marketdata

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudon7281/investment-reviews/date"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "closes.db"))
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	start := date.New(2024, time.January, 2)

	in := series("VWRL.L", "GBP", start, 100, math.NaN(), 102)
	if err := store.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := store.Load("VWRL.L", start, start.Add(5))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	// the NaN row is not persisted
	if len(out.Closes) != 2 {
		t.Fatalf("Load() returned %d rows, want 2", len(out.Closes))
	}
	if out.Closes[0] != 100 || out.Closes[1] != 102 {
		t.Errorf("closes = %v, want [100 102]", out.Closes)
	}
	if out.Days[1] != start.Add(2) {
		t.Errorf("second day = %v, want %v", out.Days[1], start.Add(2))
	}
	if out.Currency != "GBP" {
		t.Errorf("currency = %q, want GBP", out.Currency)
	}
}

func TestStore_UpsertAndRange(t *testing.T) {
	store := openTestStore(t)
	start := date.New(2024, time.January, 2)

	if err := store.Save(series("AAPL", "GBP", start, 100, 101, 102)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	// a refetch revises the middle close
	if err := store.Save(series("AAPL", "GBP", start.Add(1), 150)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := store.Load("AAPL", start.Add(1), start.Add(1))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(out.Closes) != 1 || out.Closes[0] != 150 {
		t.Errorf("closes = %v, want the revised [150]", out.Closes)
	}

	// other symbols are untouched
	if out, _ := store.Load("VWRL.L", start, start.Add(5)); len(out.Closes) != 0 {
		t.Errorf("unexpected closes for an unsaved symbol: %v", out.Closes)
	}
}
