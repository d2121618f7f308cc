package reviews

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
	"strings"
)

// Category is the account category a ledger belongs to.
type Category string

const (
	ISA     Category = "ISA"
	Taxable Category = "Taxable"
	Pension Category = "Pension"
)

// Categories lists all account categories in reporting order.
func Categories() []Category { return []Category{ISA, Taxable, Pension} }

// ParseCategory parses an account category, case-insensitively.
func ParseCategory(str string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(str, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown account category %q, want one of ISA, Taxable, Pension", str)
}

// Key identifies a ledger by security symbol and account category.
type Key struct {
	Security string
	Category Category
}

func (k Key) String() string { return fmt.Sprintf("%s/%s", k.Security, k.Category) }

// Ledger holds the chronologically ordered event stream of one security
// within one account category.
type Ledger struct {
	Security string   // symbol the ledger was opened under
	Name     string   // human readable security name
	Category Category // account category the events belong to
	Tag      string   // optional grouping tag, fixed by the first event

	events []Event
}

// NewLedger creates an empty ledger.
func NewLedger(security string, category Category) *Ledger {
	return &Ledger{Security: security, Category: category}
}

// Key returns the ledger's identifying key.
func (l *Ledger) Key() Key { return Key{Security: l.Security, Category: l.Category} }

// Append adds an event to the ledger, keeping insertion order. Call
// stableSort once loading is complete.
func (l *Ledger) Append(events ...Event) {
	l.events = append(l.events, events...)
}

// Len returns the number of events in the ledger.
func (l *Ledger) Len() int { return len(l.events) }

// Events returns the raw event view in chronological order. The tax report
// works on this view; bed-and-ISA transfers stay as their original sell and
// buy legs.
func (l *Ledger) Events() []Event { return l.events }

// First returns the earliest event, or nil when the ledger is empty.
func (l *Ledger) First() Event {
	if len(l.events) == 0 {
		return nil
	}
	return l.events[0]
}

// All returns an iterator over the raw events in chronological order.
func (l *Ledger) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range l.events {
			if !yield(e) {
				return
			}
		}
	}
}

// stableSort sorts events by date. Events on the same day keep their
// insertion order, which is file order; that is the same-day tiebreak rule.
func (l *Ledger) stableSort() { stableSortEvents(l.events) }

func stableSortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].When().Before(events[j].When())
	})
}

// Portfolio is the full set of ledgers keyed by (security, category),
// together with the ticker identity map built from conversions.
type Portfolio struct {
	ledgers  map[Key]*Ledger
	identity *identityMap
}

// NewPortfolio creates an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		ledgers:  make(map[Key]*Ledger),
		identity: newIdentityMap(),
	}
}

// Ledger returns the ledger for a key, creating it on first use.
func (p *Portfolio) Ledger(key Key) *Ledger {
	l, ok := p.ledgers[key]
	if !ok {
		l = NewLedger(key.Security, key.Category)
		p.ledgers[key] = l
	}
	return l
}

// Get returns the ledger for a key, or nil.
func (p *Portfolio) Get(key Key) *Ledger { return p.ledgers[key] }

// Len returns the number of ledgers.
func (p *Portfolio) Len() int { return len(p.ledgers) }

// Keys returns all ledger keys sorted by security then category, for
// deterministic iteration.
func (p *Portfolio) Keys() []Key {
	keys := slices.Collect(maps.Keys(p.ledgers))
	slices.SortFunc(keys, func(a, b Key) int {
		if c := strings.Compare(a.Security, b.Security); c != 0 {
			return c
		}
		return strings.Compare(string(a.Category), string(b.Category))
	})
	return keys
}

// All returns an iterator over the ledgers in deterministic order.
func (p *Portfolio) All() iter.Seq[*Ledger] {
	return func(yield func(*Ledger) bool) {
		for _, k := range p.Keys() {
			if !yield(p.ledgers[k]) {
				return
			}
		}
	}
}

// securities returns the distinct security symbols, sorted.
func (p *Portfolio) securities() []string {
	seen := make(map[string]bool)
	var out []string
	for key := range p.ledgers {
		if !seen[key.Security] {
			seen[key.Security] = true
			out = append(out, key.Security)
		}
	}
	slices.Sort(out)
	return out
}

// Resolve follows the identity map from a symbol to its current symbol.
func (p *Portfolio) Resolve(security string) string { return p.identity.resolve(security) }

// Categories returns the categories that hold a ledger for the given
// security symbol.
func (p *Portfolio) CategoriesOf(security string) []Category {
	var cats []Category
	for _, c := range Categories() {
		if _, ok := p.ledgers[Key{Security: security, Category: c}]; ok {
			cats = append(cats, c)
		}
	}
	return cats
}

// remove deletes a ledger from the portfolio.
func (p *Portfolio) remove(key Key) { delete(p.ledgers, key) }
