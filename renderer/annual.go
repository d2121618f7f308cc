package renderer

import (
	reviews "github.com/cloudon7281/investment-reviews"
)

// AnnualMarkdown renders the annual review.
func AnnualMarkdown(report *reviews.AnnualReport) string {
	r := newRenderer()
	r.Printf("# Annual Review %s to %s\n\n", report.Start, report.Eval)

	r.Printf("## Stocks\n\n")
	r.Printf("| Ticker | Name | Category | Tag | Start Value | Bought | Sold | Value | P&L | MWRR | Shares at Start | Shares | Price | High | %% of High | Volatility |\n")
	r.Printf("|:---|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range report.Stocks {
		high, pct, vol := risk(s.Risk)
		r.Printf("| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Security, s.Name, s.Category, s.Tag,
			s.StartValue, s.BoughtSince, s.SoldSince, s.CurrentValue, s.PnL.SignedString(), s.MWRR,
			s.SharesAtStart, s.Shares, s.CurrentPrice, high, pct, vol)
	}
	r.Printf("\n")

	renderAnnualGroups(r, "Summary", append([]reviews.AnnualGroupRow{report.Portfolio}, report.PerCategory...))
	if len(report.PerTag) > 0 {
		renderAnnualGroups(r, "By Tag", report.PerTag)
	}

	if report.PriceOverTime != nil {
		r.Printf("## Prices Over The Period\n\n")
		renderPriceTable(r, report.PriceOverTime)
	}
	return r.String()
}

func renderAnnualGroups(r *renderer, title string, rows []reviews.AnnualGroupRow) {
	r.Printf("## %s\n\n", title)
	r.Printf("| Group | Start Value | Bought | Sold | Value | P&L | MWRR |\n")
	r.Printf("|:---|---:|---:|---:|---:|---:|---:|\n")
	for _, g := range rows {
		r.Printf("| %s | %s | %s | %s | %s | %s | %s |\n",
			g.Group, g.StartValue, g.BoughtSince, g.SoldSince, g.CurrentValue, g.PnL.SignedString(), g.MWRR)
	}
	r.Printf("\n")
}
