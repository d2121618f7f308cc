package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	reviews "github.com/cloudon7281/investment-reviews"
	"github.com/cloudon7281/investment-reviews/date"
	"github.com/cloudon7281/investment-reviews/renderer"
)

// taxCmd holds the flags for the 'tax' subcommand.
type taxCmd struct {
	filterFlags
	taxYears string
}

func (*taxCmd) Name() string { return "tax" }

func (*taxCmd) Synopsis() string { return "report capital gains on taxable disposals" }

func (*taxCmd) Usage() string {
	return `tax [-fy <years>]

  List every sale in a taxable account during the requested tax years with
  its average cost profit or loss. A tax year is named by the calendar year
  it ends in: FY2024 runs 2023-04-06 to 2024-04-05. Defaults to the
  current tax year.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.register(f)
	f.StringVar(&c.taxYears, "fy", "", "Comma-separated tax years, e.g. 2024 or FY2023,FY2024")
}

func (c *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	loadOpts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var opts reviews.TaxOptions
	for _, s := range strings.Split(c.taxYears, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		y, err := date.ParseTaxYear(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		opts.Years = append(opts.Years, y)
	}

	p, err := loadPortfolio(loadOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := reviews.Tax(p, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.TaxMarkdown(report))
	return subcommands.ExitSuccess
}
