package reviews

import "strings"

// tickerBySecurityName maps security names to quote symbols, for streams
// whose records carry no symbol of their own. Funds trade under Morningstar
// style identifiers rather than exchange tickers.
var tickerBySecurityName = map[string]string{
	"Rocket Lab USA Inc":                         "RKLB",
	"Barrick Gold Corp":                          "ABX.TO",
	"Celestica Inc":                              "CLS.TO",
	"Artemis US Smaller Companies":               "0P00013YAP.L",
	"Rathbone Global Opportunities":              "0P0001FE43.L",
	"Blackrock ICS Sterling Liquidity":           "0P0000UHZA.L",
	"AXA Framlington American Growth":            "0P0000VKOU.L", // class R converted to class Z
	"Man GLG Japan CoreAlpha":                    "0P0000810W.L",
	"ASI Latin American Equity":                  "0P0000XOMV.L", // ASI renamed abrdn with a conversion
	"abrdn Latin American Equity":                "0P0000XOMV.L",
	"Polar Capital Biotechnology":                "0P0000ZVG5",
	"Threadneedle European Select":               "0P0000X3IE.L",
	"Waverton European Capital Growth":           "0P0001FG8T.L",
	"Smith & Williamson Artificial Intelligence": "0P0001PGKI.L",
	"Landseer Global Artificial Intelligence":    "0P0001PGKI.L",
	"AXA Framlington Global Technology Fund":     "0P0000XNBQ.L",
	"Legal & General US Index":                   "0P000102MM.L",
	"GS India Equity Portfolio":                  "0P0000XTCF.L",
	"JPMorgan Emerging Markets":                  "0P000013TQ.L", // class B converted to class C
	"Baillie Gifford High Yield Bond":            "0P000090AH.L",
	"Jupiter Global Value Equity":                "0P0001CWV4.L",
	"FSSA Global Emerging Markets Focus":         "0P0001EEMN.L",
	"Kensington Capital Acquisition Corp":        "QS",
	"Piedmont Lithium Ltd":                       "PLL",
	"Lucid Group Inc":                            "LCID",
	"Kwesst Micro Systems Inc":                   "KWE",
	"Skillz Inc":                                 "SKLZ",
	"Invesco Perpetual High Income":              "0P00000DII.L",
	"Churchill Capital Corp IV":                  "LCID",
	"Federal Realty Investment Trust":            "0IL1.L",
	"Workhorse Group Inc":                        "1WO.BE",
	"Everbridge Inc":                             "EVBG",
	"Hennessy Capital Acquisition Corp IV":       "GOEV",
	"M&G Global Macro Bond":                      "0P0000UR3O.L",
	"Rathbone Ethical Bond":                      "0P0001D2M9.L",
}

// TickerForName returns the quote symbol a security name is known under.
func TickerForName(name string) (string, bool) {
	t, ok := tickerBySecurityName[name]
	return t, ok
}

// ukSymbolsInPounds lists the UK symbols whose quotes come back flagged GBP
// and genuinely are in pounds. Most UK listings flagged GBP are quoted in
// pence and need dividing by 100; these are the exceptions.
//
// If a UK symbol starts showing 100x valuation errors it probably belongs
// off this list.
var ukSymbolsInPounds = map[string]bool{
	"0P00013YAP.L": true, // Artemis US Smaller Companies
	"0P0001FE43.L": true, // Rathbone Global Opportunities
	"0P0000VKOU.L": true, // AXA Framlington American Growth
	"0P0000810W.L": true, // Man GLG Japan CoreAlpha
	"0P0000XOMV.L": true, // abrdn Latin American Equity
	"0P0000X3IE.L": true, // Threadneedle European Select
	"0P0001FG8T.L": true, // Waverton European Capital Growth
	"0P0001PGKI.L": true, // Smith & Williamson Artificial Intelligence
	"0P0000XNBQ.L": true, // AXA Framlington Global Technology
	"0P000102MM.L": true, // Legal & General US Index
	"0P000090AH.L": true, // Baillie Gifford High Yield Bond
	"0P0001EEMN.L": true, // FSSA Global Emerging Markets Focus
	"0P0001D2M9.L": true, // Rathbone Ethical Bond
	"0P0000UR3O.L": true, // M&G Global Macro Bond
	"0P00018MM4.L": true, // Fidelity Cash W Acc
	"0P0000Z8P7.L": true, // Royal London Short Term Money Mkt Y Acc
	"0P00013P6I.L": true, // HSBC FTSE All-World Index C Acc
}

// QuotedInPounds reports whether a GBP flagged symbol is quoted in pounds
// rather than pence.
func QuotedInPounds(symbol string) bool { return ukSymbolsInPounds[symbol] }

// exchangeSuffixByCountry maps an ISIN country prefix to the quote symbol
// suffix of its main exchange.
var exchangeSuffixByCountry = map[string]string{
	"US": "",    // US symbols carry no suffix
	"GB": ".L",  // London
	"DE": ".DE", // Frankfurt
	"FR": ".PA", // Paris
	"IT": ".MI", // Milan
	"CA": ".V",  // Vancouver
}

// exchangeSuffixBySymbol overrides the country default for securities that
// trade somewhere other than their home exchange.
var exchangeSuffixBySymbol = map[string]string{
	"ASML":   ".AS",
	"ING":    ".AS",
	"KPN":    ".AS",
	"NN":     ".AS",
	"UNA":    ".AS",
	"UBS":    ".SW",
	"NOVN":   ".SW",
	"ROG":    ".SW",
	"NESN":   ".SW",
	"MAL":    ".TO",
	"FTG":    ".TO",
	"CLS":    ".TO",
	"NATO":   ".L",
	"IDFN":   ".L",
	"DFNS":   ".L",
	"SSLV":   ".L",
	"PRIUA":  ".PR",
	"GOMX":   ".ST",
	"MILDEF": ".ST",
	"KOG":    ".OL",
	"TECK":   "",
	"BYDDY":  "",
	"PGY":    "",
	"POET":   "",
}

// QuoteSymbol derives the full quote symbol for a security: the bare symbol
// plus the exchange suffix implied by its ISIN country, with per-symbol
// overrides for securities listed away from home. Symbols that already
// carry a suffix pass through unchanged.
func QuoteSymbol(symbol, isin string) string {
	if symbol == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	if suffix, ok := exchangeSuffixBySymbol[symbol]; ok {
		return symbol + suffix
	}
	if len(isin) >= 2 {
		if suffix, ok := exchangeSuffixByCountry[strings.ToUpper(isin[:2])]; ok {
			return symbol + suffix
		}
	}
	return symbol
}
