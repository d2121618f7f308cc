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

// periodicCmd holds the flags for the 'periodic' subcommand.
type periodicCmd struct {
	filterFlags
	start    string
	end      string
	evalDate string
}

func (*periodicCmd) Name() string { return "periodic" }

func (*periodicCmd) Synopsis() string { return "review purchases, holdings and sales over a period" }

func (*periodicCmd) Usage() string {
	return `periodic -start <date> -end <date> [-d <date>] [-categories ...] [-tags ...]

  Classify every security against the review period: bought inside it,
  retained across it, or sold during it, and measure each class up to the
  valuation date. Sold stocks are measured counterfactually, what the
  position would be worth had it been kept.
`
}

func (c *periodicCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.register(f)
	f.StringVar(&c.start, "start", "", "Start of the review period (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", "", "End of the review period (YYYY-MM-DD)")
	f.StringVar(&c.evalDate, "d", "", "Valuation date (YYYY-MM-DD), today when empty")
}

func (c *periodicCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	loadOpts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	opts := reviews.PeriodicOptions{Filter: loadOpts.Filter}
	if opts.Start, err = date.Parse(c.start); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -start: %v\n", err)
		return subcommands.ExitUsageError
	}
	if opts.End, err = date.Parse(c.end); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -end: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.evalDate != "" {
		if opts.Eval, err = date.Parse(c.evalDate); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

	report, err := reviews.Periodic(ctx, p, src, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.PeriodicMarkdown(report))
	return subcommands.ExitSuccess
}
