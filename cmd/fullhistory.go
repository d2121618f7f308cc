package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	reviews "github.com/cloudon7281/investment-reviews"
	"github.com/cloudon7281/investment-reviews/date"
	"github.com/cloudon7281/investment-reviews/renderer"
)

// fullHistoryCmd holds the flags for the 'fullhistory' subcommand.
type fullHistoryCmd struct {
	filterFlags
	evalDate  string
	threshold float64
	votDays   int
	csv       bool
}

func (*fullHistoryCmd) Name() string { return "fullhistory" }

func (*fullHistoryCmd) Synopsis() string { return "review the portfolio since inception" }

func (*fullHistoryCmd) Usage() string {
	return `fullhistory [-d <date>] [-threshold <amount>] [-value-over-time <days>] [-categories ...] [-tags ...]

  Review every holding since the first transaction: invested, received,
  current value, profit, returns and risk, aggregated for the whole
  portfolio, per account category and per tag.
`
}

func (c *fullHistoryCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.register(f)
	f.StringVar(&c.evalDate, "d", "", "Valuation date (YYYY-MM-DD), today when empty")
	f.Float64Var(&c.threshold, "threshold", 500, "Smallest purchase counted as invested capital, 0 disables")
	f.IntVar(&c.votDays, "value-over-time", 0, "Add a daily valuation table covering this many days, 0 disables")
	f.BoolVar(&c.csv, "csv", false, "Also write the value-over-time table as CSV")
}

func (c *fullHistoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	loadOpts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	opts := reviews.FullHistoryOptions{
		Filter:            loadOpts.Filter,
		ValueOverTimeDays: c.votDays,
	}
	if c.evalDate != "" {
		if opts.Eval, err = date.Parse(c.evalDate); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.threshold > 0 {
		opts.MinInvestment = reviews.GBP(c.threshold)
	}

	p, err := loadPortfolio(loadOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	src, err := newPriceSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer src.Close()

	report, err := reviews.FullHistory(ctx, p, src, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.FullHistoryMarkdown(report))

	if c.csv && report.ValueOverTime != nil {
		err := writeCSV("value_over_time.csv", func(f *os.File) error {
			return renderer.TimeTableCSV(f, report.ValueOverTime)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
