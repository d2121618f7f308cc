package reviews

import (
	"time"

	"github.com/cloudon7281/investment-reviews/date"
)

// day is a helper for tests to build dates from consts.
func day(y int, m time.Month, d int) date.Date { return date.New(y, m, d) }

// buy is a helper for tests: shares at a unit price, amount derived.
func buy(on date.Date, security string, shares, price float64) Buy {
	return NewBuy(on, security, security, Q(shares), GBP(price), GBP(shares*price))
}

// sell is a helper for tests: shares at a unit price, proceeds derived.
func sell(on date.Date, security string, shares, price float64) Sell {
	return NewSell(on, security, security, Q(shares), GBP(price), GBP(shares*price))
}

// quotesOf builds a quote set from (day, close) pairs for one symbol.
func quotesOf(symbol string, closes map[date.Date]float64) *Quotes {
	q := NewQuotes()
	for on, c := range closes {
		q.Append(symbol, on, GBP(c))
	}
	return q
}
