package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	reviews "github.com/cloudon7281/investment-reviews"
	"github.com/cloudon7281/investment-reviews/agent"
	"github.com/cloudon7281/investment-reviews/renderer"
)

// assistCmd holds the flags for the 'assist' subcommand.
type assistCmd struct {
	filterFlags
	threshold float64
}

func (*assistCmd) Name() string { return "assist" }

func (*assistCmd) Synopsis() string { return "have an AI analyst comment on the full history review" }

func (*assistCmd) Usage() string {
	return `assist [-categories ...] [-tags ...]

  Build the full history review, send it to the analyst for commentary and
  open an interactive session for follow-up questions. Requires a
  GEMINI_API_KEY in the environment or a .env file.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	c.filterFlags.register(f)
	f.Float64Var(&c.threshold, "threshold", 500, "Smallest purchase counted as invested capital, 0 disables")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	loadOpts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	opts := reviews.FullHistoryOptions{Filter: loadOpts.Filter}
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

	analyst, err := agent.NewAnalyst(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	commentary, err := analyst.Review(ctx, renderer.FullHistoryMarkdown(report))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(commentary)

	// follow-up loop, Ctrl+D or 'bye' to leave
	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("assist> ")
		line, err := in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "bye" {
			return subcommands.ExitSuccess
		}
		answer, err := analyst.Ask(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(answer)
	}
}
