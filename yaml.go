package reviews

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"gopkg.in/yaml.v3"

	"github.com/cloudon7281/investment-reviews/date"
)

// yamlNote is the hand-written form of an event record. It exists for cases
// where the original broker export is missing: a single document or a list
// of documents, with permissive field names and date formats.
type yamlNote struct {
	Kind        string  `yaml:"kind"`
	Ticker      string  `yaml:"ticker"`
	Isin        string  `yaml:"isin"`
	Name        string  `yaml:"name"`
	Date        string  `yaml:"date"`
	Shares      float64 `yaml:"shares"`
	Price       float64 `yaml:"price"`
	Amount      float64 `yaml:"amount"`
	Currency    string  `yaml:"currency"`
	OldShares   float64 `yaml:"old_shares"`
	NewShares   float64 `yaml:"new_shares"`
	NewTicker   string  `yaml:"new_ticker"`
	NewCurrency string  `yaml:"new_currency"`
}

// DecodeYAMLNotes decodes hand-written YAML notes into validated events.
// The document may be a single note or a list of notes.
func DecodeYAMLNotes(r io.Reader) ([]Event, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var notes []yamlNote
	if err := yaml.Unmarshal(raw, &notes); err != nil {
		// retry as a single document
		var one yamlNote
		if err2 := yaml.Unmarshal(raw, &one); err2 != nil {
			return nil, fmt.Errorf("invalid YAML note: %w", err)
		}
		notes = []yamlNote{one}
	}

	events := make([]Event, 0, len(notes))
	for i, n := range notes {
		e, err := n.event()
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i+1, err)
		}
		valid, err := e.Validate()
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i+1, err)
		}
		events = append(events, valid)
	}
	return events, nil
}

func (n yamlNote) event() (Event, error) {
	day, err := date.Parse(n.Date)
	if err != nil {
		return nil, err
	}
	currency := n.Currency
	if currency == "" {
		currency = money.GBP
	}

	switch Kind(strings.ToLower(n.Kind)) {
	case KindBuy:
		e := NewBuy(day, n.Ticker, n.Name, Q(n.Shares), M(n.Price, currency), M(n.Amount, currency))
		e.Isin = n.Isin
		return e, nil
	case KindSell:
		e := NewSell(day, n.Ticker, n.Name, Q(n.Shares), M(n.Price, currency), M(n.Amount, currency))
		e.Isin = n.Isin
		return e, nil
	case KindConversion:
		e := NewConversion(day, n.Ticker, n.Name, Q(n.OldShares), Q(n.NewShares), n.NewTicker)
		e.NewCurrency = n.NewCurrency
		e.Isin = n.Isin
		return e, nil
	case KindTransfer:
		e := NewTransfer(day, n.Ticker, n.Name, Q(n.Shares), M(n.Amount, currency))
		e.Isin = n.Isin
		return e, nil
	default:
		return nil, fmt.Errorf("unknown note kind %q", n.Kind)
	}
}
