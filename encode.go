package reviews

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// amountFields is a specialized struct to read a money amount split in two
// json fields, defaulting to the reporting currency.
type amountFields struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountFields) Money() Money {
	if a.Currency == "" {
		a.Currency = money.GBP
	}
	return M(a.Amount, a.Currency)
}

// DecodeEvents decodes a stream of JSONL event records, dispatching on the
// "kind" field, and returns them in file order.
func DecodeEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // skip empty lines
		}

		var identifier struct {
			Kind Kind `json:"kind"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify event kind in %q: %w", line, string(lineBytes), err)
		}

		var decoded Event
		switch identifier.Kind {
		case KindBuy:
			var temp struct {
				baseEvent
				amountFields
				Shares Quantity        `json:"shares"`
				Price  decimal.Decimal `json:"price"`
			}
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			decoded = Buy{
				baseEvent: temp.baseEvent,
				Shares:    temp.Shares,
				Price:     M(temp.Price, temp.Money().Currency()),
				Amount:    temp.Money(),
			}
		case KindSell:
			var temp struct {
				baseEvent
				amountFields
				Shares Quantity        `json:"shares"`
				Price  decimal.Decimal `json:"price"`
			}
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			decoded = Sell{
				baseEvent: temp.baseEvent,
				Shares:    temp.Shares,
				Price:     M(temp.Price, temp.Money().Currency()),
				Amount:    temp.Money(),
			}
		case KindConversion:
			var temp struct {
				baseEvent
				OldShares   Quantity `json:"oldShares"`
				NewShares   Quantity `json:"newShares"`
				NewSecurity string   `json:"newSecurity"`
				NewCurrency string   `json:"newCurrency"`
			}
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			decoded = Conversion{
				baseEvent:   temp.baseEvent,
				OldShares:   temp.OldShares,
				NewShares:   temp.NewShares,
				NewSecurity: temp.NewSecurity,
				NewCurrency: temp.NewCurrency,
			}
		case KindTransfer:
			var temp struct {
				baseEvent
				amountFields
				Shares Quantity `json:"shares"`
			}
			if err := json.Unmarshal(lineBytes, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			decoded = Transfer{
				baseEvent: temp.baseEvent,
				Shares:    temp.Shares,
				Amount:    temp.Money(),
			}
		default:
			return nil, fmt.Errorf("line %d: unknown event kind %q", line, identifier.Kind)
		}

		valid, err := decoded.Validate()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, valid)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return events, nil
}

// EncodeEvent marshals a single event to JSON and writes it to the writer,
// followed by a newline, in JSONL format.
func EncodeEvent(w io.Writer, e Event) error {
	decimal.MarshalJSONWithoutQuotes = true
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// EncodeEvents persists events to an io.Writer in JSONL format, keeping
// their order. The JSON keys within each event are written in a stable
// order for canonical output.
func EncodeEvents(w io.Writer, events []Event) error {
	for _, e := range events {
		if err := EncodeEvent(w, e); err != nil {
			return err
		}
	}
	return nil
}
