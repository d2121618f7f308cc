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

// annualCmd holds the flags for the 'annual' subcommand.
type annualCmd struct {
	filterFlags
	start    string
	evalDate string
	prices   bool
	csv      bool
}

func (*annualCmd) Name() string { return "annual" }

func (*annualCmd) Synopsis() string { return "review the portfolio over the last year" }

func (*annualCmd) Usage() string {
	return `annual [-start <date>] [-d <date>] [-prices] [-categories ...] [-tags ...]

  Measure every security held or traded since the start date: value at the
  start, bought and sold in between, value now, and the money weighted
  return over the period. The start date defaults to one year before the
  valuation date.
`
}

func (c *annualCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.register(f)
	f.StringVar(&c.start, "start", "", "Start of the review period (YYYY-MM-DD), one year back when empty")
	f.StringVar(&c.evalDate, "d", "", "Valuation date (YYYY-MM-DD), today when empty")
	f.BoolVar(&c.prices, "prices", false, "Add the daily price table for the period")
	f.BoolVar(&c.csv, "csv", false, "Also write the daily price table as CSV")
}

func (c *annualCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	loadOpts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	opts := reviews.AnnualOptions{
		Filter:        loadOpts.Filter,
		PriceOverTime: c.prices || c.csv,
	}
	if c.evalDate != "" {
		if opts.Eval, err = date.Parse(c.evalDate); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.start != "" {
		if opts.Start, err = date.Parse(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -start: %v\n", err)
			return subcommands.ExitUsageError
		}
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

	report, err := reviews.Annual(ctx, p, src, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.AnnualMarkdown(report))

	if c.csv && report.PriceOverTime != nil {
		err := writeCSV("prices_over_time.csv", func(f *os.File) error {
			return renderer.PriceTableCSV(f, report.PriceOverTime)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
