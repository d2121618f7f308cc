package renderer

import (
	"strings"

	reviews "github.com/cloudon7281/investment-reviews"
)

// TaxMarkdown renders the capital gains report.
func TaxMarkdown(report *reviews.TaxReport) string {
	var years []string
	for _, y := range report.Years {
		years = append(years, y.String())
	}

	r := newRenderer()
	r.Printf("# Capital Gains %s\n\n", strings.Join(years, ", "))

	if len(report.Disposals) == 0 {
		r.Printf("No disposals.\n")
		return r.String()
	}

	r.Printf("| Date | Ticker | Name | Shares | Received | Avg Cost | P&L |\n")
	r.Printf("|:---|:---|:---|---:|---:|---:|---:|\n")
	for _, d := range report.Disposals {
		r.Printf("| %s | %s | %s | %s | %s | %s | %s |\n",
			d.Day, d.Security, d.Name, d.Shares, d.Received, d.AveragePrice, d.PnL.SignedString())
	}
	r.Printf("\n**Net gains: %s**\n", report.NetGains.SignedString())
	return r.String()
}
