package renderer

import (
	reviews "github.com/cloudon7281/investment-reviews"
)

// FullHistoryMarkdown renders the since-inception report.
func FullHistoryMarkdown(report *reviews.FullHistoryReport) string {
	r := newRenderer()
	r.Printf("# Full History Review as of %s\n\n", report.Eval)

	r.Printf("## Stocks\n\n")
	r.Printf("| Ticker | Name | Category | Tag | Invested | Received | Value | P&L | Unrealized | ROI | MWRR | Shares | Price | High | %% of High | Volatility | First | Last |\n")
	r.Printf("|:---|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|:---|:---|\n")
	for _, s := range report.Stocks {
		ticker := s.Security
		if s.Current != "" && s.Current != s.Security {
			ticker = ticker + " → " + s.Current
		}
		high, pct, vol := risk(s.Risk)
		r.Printf("| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			ticker, s.Name, s.Category, s.Tag,
			s.Invested, s.Received, s.CurrentValue, s.PnL.SignedString(), s.Unrealized.SignedString(),
			s.ROI, s.MWRR, s.Shares, s.CurrentPrice,
			high, pct, vol, s.FirstEvent, s.LastEvent)
	}
	r.Printf("\n")

	renderGroups(r, "Summary", append([]reviews.GroupRow{report.Portfolio}, report.PerCategory...))
	if len(report.PerTag) > 0 {
		renderGroups(r, "By Tag", report.PerTag)
	}

	if report.ValueOverTime != nil {
		r.Printf("## Value Over Time\n\n")
		renderTimeTable(r, report.ValueOverTime)
	}
	return r.String()
}

func renderGroups(r *renderer, title string, rows []reviews.GroupRow) {
	r.Printf("## %s\n\n", title)
	r.Printf("| Group | Invested | Received | Value | P&L | ROI | MWRR |\n")
	r.Printf("|:---|---:|---:|---:|---:|---:|---:|\n")
	for _, g := range rows {
		r.Printf("| %s | %s | %s | %s | %s | %s | %s |\n",
			g.Group, g.Invested, g.Received, g.CurrentValue, g.PnL.SignedString(), g.ROI, g.MWRR)
	}
	r.Printf("\n")
}
