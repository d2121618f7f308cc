package date

import (
	"testing"
	"time"
)

func day(d int) Date { return New(2024, time.June, d) }

func TestHistoryValueAsOf(t *testing.T) {
	var h History[float64]
	h.Append(day(10), 10.0).Append(day(1), 1.0).Append(day(20), 20.0)

	tests := []struct {
		name  string
		on    Date
		want  float64
		found bool
	}{
		{name: "exact", on: day(10), want: 10.0, found: true},
		{name: "between", on: day(15), want: 10.0, found: true},
		{name: "after last", on: day(25), want: 20.0, found: true},
		{name: "before first", on: day(0).Add(-1), found: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, found := h.ValueAsOf(tc.on)
			if found != tc.found || (found && got != tc.want) {
				t.Errorf("ValueAsOf(%v) = %v,%v want %v,%v", tc.on, got, found, tc.want, tc.found)
			}
		})
	}
}

func TestHistoryValueAfter(t *testing.T) {
	var h History[float64]
	h.Append(day(1), 1.0).Append(day(20), 20.0)

	on, v, ok := h.ValueAfter(day(1))
	if !ok || on != day(20) || v != 20.0 {
		t.Errorf("ValueAfter(day 1) = %v,%v,%v want day 20,20,true", on, v, ok)
	}
	if _, _, ok := h.ValueAfter(day(20)); ok {
		t.Error("ValueAfter(last) should not find anything")
	}
}

func TestHistoryAppendOverwrites(t *testing.T) {
	var h History[float64]
	h.Append(day(5), 1.0).Append(day(5), 2.0)
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
	if v, _ := h.Get(day(5)); v != 2.0 {
		t.Errorf("Get = %v, want 2.0", v)
	}
}
