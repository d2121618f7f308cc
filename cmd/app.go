// Package cmd implements the CLI application to review a portfolio.
package cmd

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	reviews "github.com/cloudon7281/investment-reviews"
	"github.com/cloudon7281/investment-reviews/date"
	"github.com/cloudon7281/investment-reviews/marketdata"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	subcommands.HelpCommand(),
	subcommands.FlagsCommand(),
	subcommands.CommandsCommand(),
	&fullHistoryCmd{},
	&periodicCmd{},
	&annualCmd{},
	&taxCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok
// to use global variables for the app-wide flags.

var (
	baseDir  = flag.String("base-dir", ".", "Root of the transaction tree (<category>/<year>/ folders)")
	logLevel = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	cacheDir = flag.String("cache-dir", "", "HTTP response cache directory, system temp dir when empty")
	closesDB = flag.String("closes-db", "", "Optional sqlite file persisting fetched close prices")
)

// Setup prepares the process before any subcommand runs: environment
// overrides from .env, and structured logging on stderr.
func Setup() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: cannot read .env: %v\n", err)
	}
	initLogger(*logLevel)
}

func initLogger(levelStr string) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
		slog.Warn("invalid log level, defaulting to warn", "configured", levelStr)
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
}

// filterFlags are the ledger selection flags shared by the review
// subcommands.
type filterFlags struct {
	categories  string
	includeTags string
	excludeTags string
	years       string
}

func (ff *filterFlags) register(f *flag.FlagSet) {
	f.StringVar(&ff.categories, "categories", "", "Comma-separated account categories (ISA, Taxable, Pension); all when empty")
	f.StringVar(&ff.includeTags, "tags", "", "Comma-separated tags to include; all when empty")
	f.StringVar(&ff.excludeTags, "exclude-tags", "", "Comma-separated tags to exclude")
	f.StringVar(&ff.years, "years", "", "Calendar years of source folders to load, e.g. 2021,2023-2025; all when empty")
}

func (ff *filterFlags) loadOptions() (reviews.LoadOptions, error) {
	var opts reviews.LoadOptions
	for _, s := range splitList(ff.categories) {
		c, err := reviews.ParseCategory(s)
		if err != nil {
			return opts, err
		}
		opts.Filter.Categories = append(opts.Filter.Categories, c)
	}
	opts.Filter.IncludeTags = splitList(ff.includeTags)
	opts.Filter.ExcludeTags = splitList(ff.excludeTags)
	if ff.years != "" {
		years, err := date.ParseYears(ff.years)
		if err != nil {
			return opts, err
		}
		opts.Years = years
	}
	return opts, opts.Filter.Validate()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadPortfolio reads the transaction tree under -base-dir.
func loadPortfolio(opts reviews.LoadOptions) (*reviews.Portfolio, error) {
	return reviews.Load(*baseDir, opts)
}

// newPriceSource builds the market data service from the app flags.
func newPriceSource() (*marketdata.Service, error) {
	return marketdata.NewService(marketdata.Options{
		CacheDir:  *cacheDir,
		StorePath: *closesDB,
	})
}

// printMarkdown renders markdown for the terminal, falling back to the
// raw text when rendering fails (e.g. output is a pipe).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// writeCSV writes a CSV artifact next to the reviewed tree.
func writeCSV(name string, write func(f *os.File) error) error {
	path := filepath.Join(*baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
