package reviews

import (
	"log/slog"

	"github.com/cloudon7281/investment-reviews/date"
)

// oneShare is the matching tolerance when pairing the two legs of a
// transfer: brokers round fractional holdings differently on each side, so
// legs within one share of each other are taken as the same movement.
func oneShare() Quantity { return Q(1) }

// Collapsed returns the ledger's events with same-day sell/buy round trips
// folded into a single transfer. A sale and a repurchase of the same
// security on the same day is a bed-and-ISA style movement, not a disposal
// followed by a fresh position, and valuing it as two trades misstates the
// money actually invested.
//
// The raw stream is left untouched; capital gains work on Events(), which
// keeps every disposal visible.
func (l *Ledger) Collapsed() []Event {
	byDay := make(map[date.Date][]Event)
	var days []date.Date
	for _, e := range l.events {
		d := e.When()
		if _, ok := byDay[d]; !ok {
			days = append(days, d)
		}
		byDay[d] = append(byDay[d], e)
	}

	var out []Event
	for _, d := range days {
		out = append(out, collapseDay(byDay[d])...)
	}
	stableSortEvents(out)
	return out
}

// collapseDay folds one day's events. The first buy within one share of the
// day's total sells absorbs them; the pair becomes a transfer carrying the
// net share and cash movement, standing where the buy stood. Everything
// unmatched passes through in its original order.
func collapseDay(events []Event) []Event {
	soldShares := Q(0)
	proceeds := GBP(0)
	hasSell := false
	for _, e := range events {
		if s, ok := e.(Sell); ok {
			hasSell = true
			soldShares = soldShares.Add(s.Shares)
			proceeds = proceeds.Add(s.Amount)
		}
	}
	if !hasSell {
		return events
	}

	match := -1
	for i, e := range events {
		b, ok := e.(Buy)
		if !ok || soldShares.Sub(b.Shares).Abs().GreaterThan(oneShare()) {
			continue
		}
		match = i
		break
	}
	if match < 0 {
		return events
	}

	b := events[match].(Buy)
	t := NewTransfer(b.Date, b.Security, b.Name,
		b.Shares.Sub(soldShares), proceeds.Sub(b.Amount))
	slog.Debug("collapsed same-day round trip",
		"security", b.Security, "date", b.Date,
		"shares", t.Shares, "amount", t.Amount)

	out := make([]Event, 0, len(events))
	for i, e := range events {
		switch {
		case i == match:
			out = append(out, t)
		default:
			if _, ok := e.(Sell); ok {
				continue
			}
			out = append(out, e)
		}
	}
	return out
}

// DetectTransfers rewrites same-day cross-account movements of a security
// as transfer pairs. A sale in one account category matched by a purchase
// of the same security in another on the same day moves the holding rather
// than realising it, so both legs are replaced: the buy leg receives the
// shares at the cost basis they carried, the sell leg surrenders them.
//
// Unlike same-account collapsing this mutates the raw streams, since the
// sell leg must not appear as a disposal anywhere, capital gains included.
func (p *Portfolio) DetectTransfers() {
	for _, security := range p.securities() {
		cats := p.CategoriesOf(security)
		if len(cats) < 2 {
			continue
		}
		for _, sellCat := range cats {
			for _, buyCat := range cats {
				if buyCat == sellCat {
					continue
				}
				p.pairTransfers(security, buyCat, sellCat)
			}
		}
	}
}

// pairTransfers matches buys in buyCat against same-day sells in sellCat
// for one security and rewrites each matched pair in place.
func (p *Portfolio) pairTransfers(security string, buyCat, sellCat Category) {
	buyLedger := p.Get(Key{Security: security, Category: buyCat})
	sellLedger := p.Get(Key{Security: security, Category: sellCat})
	if buyLedger == nil || sellLedger == nil {
		return
	}

	for bi, be := range buyLedger.events {
		b, ok := be.(Buy)
		if !ok {
			continue
		}
		for si, se := range sellLedger.events {
			s, ok := se.(Sell)
			if !ok || s.Date != b.Date {
				continue
			}
			if b.Shares.Sub(s.Shares).Abs().GreaterThan(oneShare()) {
				continue
			}
			costSold, ok := sellLedger.costOfSharesBefore(s.Shares, b.Date)
			if !ok {
				continue
			}
			slog.Debug("detected cross-account transfer",
				"security", security, "date", b.Date,
				"from", sellCat, "to", buyCat, "cost", costSold)
			buyLedger.events[bi] = NewTransfer(b.Date, b.Security, b.Name,
				b.Shares, costSold.Mul(b.Shares).Div(s.Shares))
			sellLedger.events[si] = NewTransfer(s.Date, s.Security, s.Name,
				s.Shares.Neg(), costSold.Neg())
			break
		}
	}
}

// costOfSharesBefore prices shares at the ledger's average cost built from
// buys strictly before day. Conversion ratios rescale the share counts of
// earlier buys so the average stays per current share.
func (l *Ledger) costOfSharesBefore(shares Quantity, day date.Date) (Money, bool) {
	held := Q(0)
	cost := GBP(0)
	for _, e := range l.events {
		if !e.When().Before(day) {
			break
		}
		switch t := e.(type) {
		case Buy:
			held = held.Add(t.Shares)
			cost = cost.Add(t.Amount)
		case Conversion:
			if t.IsRatio() {
				held = held.Mul(t.Ratio())
			}
		}
	}
	if held.IsFlat() {
		return GBP(0), false
	}
	return cost.Div(held).Mul(shares), true
}
