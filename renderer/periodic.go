package renderer

import (
	reviews "github.com/cloudon7281/investment-reviews"
)

// PeriodicMarkdown renders the periodic review.
func PeriodicMarkdown(report *reviews.PeriodicReport) string {
	r := newRenderer()
	r.Printf("# Periodic Review %s to %s, valued %s\n\n", report.Start, report.End, report.Eval)

	renderClass(r, "New Purchases", report.New)
	renderClass(r, "Retained Holdings", report.Retained)
	renderClass(r, "Sold Holdings", report.Sold)

	renderGroups(r, "Summary", report.Summary)
	if len(report.PerTag) > 0 {
		renderGroups(r, "By Tag", report.PerTag)
	}
	return r.String()
}

func renderClass(r *renderer, title string, rows []reviews.PeriodicRow) {
	if len(rows) == 0 {
		return
	}
	r.Printf("## %s\n\n", title)
	r.Printf("| Ticker | Name | Category | Tag | Start Value | Value | P&L | ROI | MWRR | Days | Shares | Price | High | %% of High | Volatility |\n")
	r.Printf("|:---|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range rows {
		high, pct, vol := risk(s.Risk)
		r.Printf("| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Security, s.Name, s.Category, s.Tag,
			s.StartValue, s.CurrentValue, s.PnL.SignedString(), s.ROI, s.MWRR,
			days(s.PeriodDays), s.Shares, s.CurrentPrice, high, pct, vol)
	}
	r.Printf("\n")
}
