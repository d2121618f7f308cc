package reviews

import (
	"errors"
	"fmt"

	"github.com/cloudon7281/investment-reviews/date"
)

// Kind is a typed string identifying an event record.
type Kind string

// Event kinds found in the ingested streams.
const (
	KindBuy        Kind = "buy"
	KindSell       Kind = "sell"
	KindConversion Kind = "conversion"
	KindTransfer   Kind = "transfer"
)

// Event is the common interface for all records in a security's stream.
type Event interface {
	What() Kind      // What returns the kind of the event.
	When() date.Date // When returns the date on which the event occurred.
	Ticker() string  // Ticker returns the security symbol the event applies to.
	Equal(Event) bool
	Validate() (Event, error)
}

// baseEvent carries the fields common to all event kinds.
type baseEvent struct {
	Kind     Kind      `json:"kind"`
	Date     date.Date `json:"date"`
	Security string    `json:"security"`       // ticker symbol
	Name     string    `json:"name,omitempty"` // human readable security name
	Isin     string    `json:"isin,omitempty"` // optional, used to derive the exchange suffix
}

func (e baseEvent) What() Kind      { return e.Kind }
func (e baseEvent) When() date.Date { return e.Date }
func (e baseEvent) Ticker() string  { return e.Security }

// MarshalJSON implements the json.Marshaler interface for baseEvent.
func (e baseEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", e.Kind)
	w.Append("date", e.Date)
	w.Append("security", e.Security)
	w.Optional("name", e.Name)
	w.Optional("isin", e.Isin)
	return w.MarshalJSON()
}

// validate normalizes the record's symbol the way the source documents need:
// fund notes often carry only a name, and bare exchange tickers get their
// quote suffix from the ISIN country.
func (e *baseEvent) validate() error {
	if e.Security == "" {
		t, ok := TickerForName(e.Name)
		if !ok {
			return errors.New("event security ticker is missing and the name is not a known security")
		}
		e.Security = t
	} else {
		e.Security = QuoteSymbol(e.Security, e.Isin)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("event for %s has no date", e.Security)
	}
	return nil
}

// Buy records the purchase of a quantity of a security for a gross amount.
type Buy struct {
	baseEvent
	Shares Quantity // number of shares bought, always positive
	Price  Money    // price per share, optional
	Amount Money    // gross consideration paid
}

// NewBuy creates a new Buy event.
func NewBuy(day date.Date, security, name string, shares Quantity, price, amount Money) Buy {
	return Buy{
		baseEvent: baseEvent{Kind: KindBuy, Date: day, Security: security, Name: name},
		Shares:    shares,
		Price:     price,
		Amount:    amount,
	}
}

func (e Buy) Equal(other Event) bool {
	o, ok := other.(Buy)
	return ok && e.baseEvent == o.baseEvent && e.Shares.Equal(o.Shares) &&
		e.Price.Equal(o.Price) && e.Amount.Equal(o.Amount)
}

// Validate checks the Buy fields. A missing per-share price is derived from
// the gross amount.
func (e Buy) Validate() (Event, error) {
	if err := e.baseEvent.validate(); err != nil {
		return e, err
	}
	if !e.Shares.IsPositive() {
		return e, fmt.Errorf("buy of %s: shares must be positive, got %s", e.Security, e.Shares)
	}
	if !e.Amount.IsPositive() {
		return e, fmt.Errorf("buy of %s: amount must be positive, got %s", e.Security, e.Amount)
	}
	if e.Price.IsZero() {
		e.Price = e.Amount.Div(e.Shares)
	}
	return e, nil
}

// MarshalJSON implements the json.Marshaler interface for Buy.
func (e Buy) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEvent)
	w.Append("shares", e.Shares)
	if !e.Price.IsZero() {
		w.Append("price", e.Price.value)
	}
	w.EmbedFrom(e.Amount)
	return w.MarshalJSON()
}

// Sell records the disposal of a quantity of a security for gross proceeds.
type Sell struct {
	baseEvent
	Shares Quantity // number of shares sold, always positive
	Price  Money    // price per share, optional
	Amount Money    // gross proceeds received
}

// NewSell creates a new Sell event.
func NewSell(day date.Date, security, name string, shares Quantity, price, amount Money) Sell {
	return Sell{
		baseEvent: baseEvent{Kind: KindSell, Date: day, Security: security, Name: name},
		Shares:    shares,
		Price:     price,
		Amount:    amount,
	}
}

func (e Sell) Equal(other Event) bool {
	o, ok := other.(Sell)
	return ok && e.baseEvent == o.baseEvent && e.Shares.Equal(o.Shares) &&
		e.Price.Equal(o.Price) && e.Amount.Equal(o.Amount)
}

// Validate checks the Sell fields. Disposal records sometimes carry a signed
// share count; the sign is dropped, direction is implied by the kind.
func (e Sell) Validate() (Event, error) {
	if err := e.baseEvent.validate(); err != nil {
		return e, err
	}
	e.Shares = e.Shares.Abs()
	if e.Shares.IsZero() {
		return e, fmt.Errorf("sell of %s: shares must be non zero", e.Security)
	}
	if !e.Amount.IsPositive() {
		return e, fmt.Errorf("sell of %s: amount must be positive, got %s", e.Security, e.Amount)
	}
	if e.Price.IsZero() {
		e.Price = e.Amount.Div(e.Shares)
	}
	return e, nil
}

// MarshalJSON implements the json.Marshaler interface for Sell.
func (e Sell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEvent)
	w.Append("shares", e.Shares)
	if !e.Price.IsZero() {
		w.Append("price", e.Price.value)
	}
	w.EmbedFrom(e.Amount)
	return w.MarshalJSON()
}

// Conversion records a corporate action on a security: a split or reverse
// split (ratio of NewShares to OldShares), a rename or merger (NewSecurity),
// or a share grant (OldShares zero).
type Conversion struct {
	baseEvent
	OldShares   Quantity // shares before the conversion
	NewShares   Quantity // shares after the conversion
	NewSecurity string   // new ticker symbol, when the security was renamed or merged
	NewCurrency string   // new trading currency, when it changed
}

// NewConversion creates a new Conversion event.
func NewConversion(day date.Date, security, name string, oldShares, newShares Quantity, newSecurity string) Conversion {
	return Conversion{
		baseEvent:   baseEvent{Kind: KindConversion, Date: day, Security: security, Name: name},
		OldShares:   oldShares,
		NewShares:   newShares,
		NewSecurity: newSecurity,
	}
}

func (e Conversion) Equal(other Event) bool {
	o, ok := other.(Conversion)
	return ok && e.baseEvent == o.baseEvent && e.OldShares.Equal(o.OldShares) &&
		e.NewShares.Equal(o.NewShares) && e.NewSecurity == o.NewSecurity &&
		e.NewCurrency == o.NewCurrency
}

// Validate checks the Conversion fields.
func (e Conversion) Validate() (Event, error) {
	if err := e.baseEvent.validate(); err != nil {
		return e, err
	}
	if e.OldShares.IsNegative() || e.NewShares.IsNegative() {
		return e, fmt.Errorf("conversion of %s: share counts cannot be negative", e.Security)
	}
	if e.NewShares.IsZero() && e.NewSecurity == "" {
		return e, fmt.Errorf("conversion of %s: needs a new share count or a new ticker", e.Security)
	}
	return e, nil
}

// IsRatio reports whether the conversion rescales the share count, i.e. it
// is a split or a reverse split rather than a grant or a pure rename.
func (e Conversion) IsRatio() bool {
	return e.OldShares.IsPositive() && e.NewShares.IsPositive()
}

// Ratio returns NewShares/OldShares. Only meaningful when IsRatio is true.
func (e Conversion) Ratio() Quantity { return e.NewShares.Div(e.OldShares) }

// MarshalJSON implements the json.Marshaler interface for Conversion.
func (e Conversion) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEvent)
	w.Append("oldShares", e.OldShares)
	w.Append("newShares", e.NewShares)
	w.Optional("newSecurity", e.NewSecurity)
	w.Optional("newCurrency", e.NewCurrency)
	return w.MarshalJSON()
}

// Transfer records shares moving into or out of an account category without
// a market trade, typically one leg of a bed-and-ISA. Shares and Amount are
// signed: positive receives, negative sends.
type Transfer struct {
	baseEvent
	Shares Quantity // signed share count
	Amount Money    // signed cost basis moved with the shares
}

// NewTransfer creates a new Transfer event.
func NewTransfer(day date.Date, security, name string, shares Quantity, amount Money) Transfer {
	return Transfer{
		baseEvent: baseEvent{Kind: KindTransfer, Date: day, Security: security, Name: name},
		Shares:    shares,
		Amount:    amount,
	}
}

func (e Transfer) Equal(other Event) bool {
	o, ok := other.(Transfer)
	return ok && e.baseEvent == o.baseEvent && e.Shares.Equal(o.Shares) && e.Amount.Equal(o.Amount)
}

// Validate checks the Transfer fields.
func (e Transfer) Validate() (Event, error) {
	if err := e.baseEvent.validate(); err != nil {
		return e, err
	}
	if e.Shares.IsZero() && e.Amount.IsZero() {
		return e, fmt.Errorf("transfer of %s: shares and amount are both zero", e.Security)
	}
	return e, nil
}

// MarshalJSON implements the json.Marshaler interface for Transfer.
func (e Transfer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEvent)
	w.Append("shares", e.Shares)
	w.EmbedFrom(e.Amount)
	return w.MarshalJSON()
}
