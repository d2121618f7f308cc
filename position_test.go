package reviews

import (
	"testing"
	"time"
)

func replayAll(t *testing.T, events []Event, opts ReplayOptions) Position {
	t.Helper()
	l := NewLedger("VWRL.L", ISA)
	l.Append(events...)
	return Replay(l, l.Events(), day(2030, time.January, 1), opts)
}

func TestReplay_BuySell(t *testing.T) {
	p := replayAll(t, []Event{
		buy(day(2020, time.January, 10), "VWRL.L", 10, 100),
		buy(day(2020, time.June, 10), "VWRL.L", 10, 120),
		sell(day(2021, time.January, 10), "VWRL.L", 5, 130),
	}, ReplayOptions{})

	if !p.Shares.Equal(Q(15)) {
		t.Errorf("Shares = %v, want 15", p.Shares)
	}
	if !p.Invested.Equal(GBP(2200)) {
		t.Errorf("Invested = %v, want 2200", p.Invested)
	}
	if !p.Received.Equal(GBP(650)) {
		t.Errorf("Received = %v, want 650", p.Received)
	}
	avg, ok := p.AverageCost()
	if !ok || !avg.Equal(GBP(110)) {
		t.Errorf("AverageCost() = %v, %v, want 110", avg, ok)
	}
}

func TestReplay_MinInvestment(t *testing.T) {
	// reinvested dividends below the threshold do not count as capital in
	p := replayAll(t, []Event{
		buy(day(2020, time.January, 10), "VWRL.L", 10, 100),
		buy(day(2020, time.April, 10), "VWRL.L", 0.1, 100), // reinvestment
	}, ReplayOptions{MinInvestment: GBP(500)})

	if !p.Invested.Equal(GBP(1000)) {
		t.Errorf("Invested = %v, want 1000", p.Invested)
	}
	// the shares still count, the cost pool does not
	if !p.Shares.Equal(Q(10.1)) {
		t.Errorf("Shares = %v, want 10.1", p.Shares)
	}
	if !p.CostBasis.Equal(GBP(1000)) {
		t.Errorf("CostBasis = %v, want 1000", p.CostBasis)
	}
}

func TestReplay_Split(t *testing.T) {
	p := replayAll(t, []Event{
		buy(day(2020, time.January, 10), "AAPL", 10, 100),
		NewConversion(day(2020, time.August, 31), "AAPL", "Apple", Q(10), Q(40), ""),
	}, ReplayOptions{})

	if !p.Shares.Equal(Q(40)) {
		t.Errorf("Shares after 4:1 split = %v, want 40", p.Shares)
	}
	avg, ok := p.AverageCost()
	if !ok || !avg.Equal(GBP(25)) {
		t.Errorf("AverageCost() after split = %v, %v, want 25", avg, ok)
	}
}

func TestReplay_Grant(t *testing.T) {
	p := replayAll(t, []Event{
		NewConversion(day(2020, time.January, 10), "FSFLY", "Free shares", Q(0), Q(12), ""),
	}, ReplayOptions{})

	if !p.Shares.Equal(Q(12)) {
		t.Errorf("Shares = %v, want 12", p.Shares)
	}
	if _, ok := p.AverageCost(); ok {
		t.Error("AverageCost() defined for a pure grant, want undefined")
	}
}

func TestReplay_GrantKeepsAverageCost(t *testing.T) {
	p := replayAll(t, []Event{
		buy(day(2020, time.January, 10), "FSFLY", 10, 100),
		NewConversion(day(2020, time.June, 1), "FSFLY", "Free shares", Q(0), Q(5), ""),
	}, ReplayOptions{})

	if !p.Shares.Equal(Q(15)) {
		t.Errorf("Shares = %v, want 15", p.Shares)
	}
	avg, ok := p.AverageCost()
	if !ok || !avg.Equal(GBP(100)) {
		t.Errorf("AverageCost() = %v, %v, want 100 undiluted by the grant", avg, ok)
	}
}

func TestReplay_Rename(t *testing.T) {
	p := replayAll(t, []Event{
		buy(day(2020, time.January, 10), "OLD", 10, 100),
		NewConversion(day(2021, time.March, 1), "OLD", "Old Co", Q(0), Q(0), "NEW"),
	}, ReplayOptions{})

	if p.Security != "NEW" {
		t.Errorf("Security = %q, want NEW", p.Security)
	}
	if !p.Shares.Equal(Q(10)) {
		t.Errorf("Shares = %v, want 10 unchanged by rename", p.Shares)
	}
}

func TestReplay_Transfer(t *testing.T) {
	p := replayAll(t, []Event{
		NewTransfer(day(2020, time.January, 10), "VWRL.L", "VWRL.L", Q(10), GBP(1000)),
		NewTransfer(day(2021, time.January, 10), "VWRL.L", "VWRL.L", Q(-4), GBP(-400)),
	}, ReplayOptions{})

	if !p.Shares.Equal(Q(6)) {
		t.Errorf("Shares = %v, want 6", p.Shares)
	}
	if !p.Invested.Equal(GBP(600)) {
		t.Errorf("Invested = %v, want 600", p.Invested)
	}
	if !p.Received.IsZero() {
		t.Errorf("Received = %v, want 0, transfers are not proceeds", p.Received)
	}
}

func TestReplay_Through(t *testing.T) {
	l := NewLedger("VWRL.L", ISA)
	l.Append(
		buy(day(2020, time.January, 10), "VWRL.L", 10, 100),
		sell(day(2021, time.January, 10), "VWRL.L", 10, 130),
	)
	p := Replay(l, l.Events(), day(2020, time.December, 31), ReplayOptions{})
	if !p.Held() {
		t.Error("position should still be held before the sale")
	}
	p = Replay(l, l.Events(), day(2021, time.January, 10), ReplayOptions{})
	if p.Held() {
		t.Error("position should be flat on the sale date")
	}
}
