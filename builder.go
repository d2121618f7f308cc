package reviews

import (
	"log/slog"
	"sort"
)

// Builder assembles a Portfolio from per-category event streams.
//
// Buys, sells and transfers are routed straight to their (security,
// category) ledger. Conversions are held back and broadcast at build time to
// every ledger of the same security, whichever category it sits in, since a
// corporate action applies to the security itself and not to one account.
type Builder struct {
	portfolio   *Portfolio
	conversions []Conversion
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{portfolio: NewPortfolio()}
}

// Add routes events from one source stream into the portfolio. The tag is
// the optional grouping the stream was filed under; a ledger's tag is fixed
// by its first event and later mismatches keep the first.
func (b *Builder) Add(category Category, tag string, events ...Event) {
	for _, e := range events {
		if conv, ok := e.(Conversion); ok {
			b.conversions = append(b.conversions, conv)
			continue
		}
		l := b.portfolio.Ledger(Key{Security: e.Ticker(), Category: category})
		if l.Len() == 0 {
			l.Tag = tag
		} else if tag != "" && l.Tag != tag {
			slog.Warn("tag mismatch, keeping first",
				"security", e.Ticker(), "category", category,
				"tag", l.Tag, "later", tag)
		}
		if l.Name == "" {
			l.Name = eventName(e)
		}
		l.Append(e)
	}
}

// Build finalizes the portfolio: broadcasts conversions, merges renamed
// ledgers following the identity map, and discards ledgers that cannot open
// a position.
func (b *Builder) Build() *Portfolio {
	p := b.portfolio

	for l := range p.All() {
		l.stableSort()
	}

	b.broadcastConversions()

	for l := range p.All() {
		l.stableSort()
	}

	b.mergeRenamed()
	b.dropInvalid()

	return p
}

// broadcastConversions applies each conversion to every ledger holding the
// same security, falling back to a name match when the symbol is unknown.
// Renames feed the identity map.
func (b *Builder) broadcastConversions() {
	p := b.portfolio

	// apply in date order so chained renames resolve correctly
	sort.SliceStable(b.conversions, func(i, j int) bool {
		return b.conversions[i].When().Before(b.conversions[j].When())
	})

	for _, conv := range b.conversions {
		matched := b.matchLedgers(conv)
		if len(matched) == 0 {
			slog.Warn("conversion matches no ledger, dropped",
				"security", conv.Security, "date", conv.When())
			continue
		}
		for _, l := range matched {
			l.Append(conv)
		}
		if conv.NewSecurity != "" {
			p.identity.rename(conv.Security, conv.NewSecurity)
		}
	}
}

// matchLedgers finds the ledgers a conversion applies to: every ledger of
// the same symbol, or failing that, of the same security name.
func (b *Builder) matchLedgers(conv Conversion) []*Ledger {
	p := b.portfolio
	var matched []*Ledger
	for l := range p.All() {
		if l.Security == conv.Security {
			matched = append(matched, l)
		}
	}
	if len(matched) > 0 || conv.Name == "" {
		return matched
	}
	for l := range p.All() {
		if l.Name != "" && l.Name == conv.Name {
			matched = append(matched, l)
		}
	}
	return matched
}

// mergeRenamed folds each ledger whose symbol resolves elsewhere into the
// target ledger of the same category, when one exists. The merged stream is
// re-sorted chronologically and the source ledger removed. Without a target
// the ledger is kept: replay reports the current symbol from its conversion
// events.
func (b *Builder) mergeRenamed() {
	p := b.portfolio
	for _, key := range p.Keys() {
		resolved := p.Resolve(key.Security)
		if resolved == key.Security {
			continue
		}
		target := p.Get(Key{Security: resolved, Category: key.Category})
		if target == nil {
			continue
		}
		source := p.Get(key)
		if source == nil || source == target {
			continue
		}
		slog.Debug("merging renamed ledger",
			"from", key, "into", target.Key())
		target.Append(source.events...)
		target.stableSort()
		if target.Tag == "" {
			target.Tag = source.Tag
		}
		p.remove(key)
	}
}

// dropInvalid discards ledgers whose first event could not open a position:
// a stream starting with a sell means its opening trades are missing, most
// often because the security was renamed and the identity map already
// rescued the rest.
func (b *Builder) dropInvalid() {
	p := b.portfolio
	for _, key := range p.Keys() {
		l := p.Get(key)
		first := l.First()
		if first == nil {
			p.remove(key)
			continue
		}
		switch first.(type) {
		case Buy, Transfer, Conversion:
			// a valid opening
		default:
			slog.Warn("ledger cannot open a position, discarded",
				"security", key.Security, "category", key.Category,
				"first", first.What(), "date", first.When())
			p.remove(key)
		}
	}
}

// eventName extracts the human readable security name an event carries.
func eventName(e Event) string {
	switch t := e.(type) {
	case Buy:
		return t.Name
	case Sell:
		return t.Name
	case Conversion:
		return t.Name
	case Transfer:
		return t.Name
	}
	return ""
}
