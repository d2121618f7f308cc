// Command invrev reviews an investment portfolio rebuilt from broker
// transaction exports.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/cloudon7281/investment-reviews/cmd"
)

func main() {
	// shell completion, a no-op unless invoked by the completion hooks
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	cmd.Setup()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	filters := map[string]complete.Predictor{
		"categories":   predict.Set{"ISA", "Taxable", "Pension"},
		"tags":         predict.Something,
		"exclude-tags": predict.Something,
		"years":        predict.Something,
	}
	sub := func(extra map[string]complete.Predictor) *complete.Command {
		flags := make(map[string]complete.Predictor)
		for k, v := range filters {
			flags[k] = v
		}
		for k, v := range extra {
			flags[k] = v
		}
		return &complete.Command{Flags: flags}
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"fullhistory": sub(map[string]complete.Predictor{
				"d": predict.Something, "threshold": predict.Something,
				"value-over-time": predict.Something, "csv": predict.Nothing,
			}),
			"periodic": sub(map[string]complete.Predictor{
				"start": predict.Something, "end": predict.Something, "d": predict.Something,
			}),
			"annual": sub(map[string]complete.Predictor{
				"start": predict.Something, "d": predict.Something,
				"prices": predict.Nothing, "csv": predict.Nothing,
			}),
			"tax":    sub(map[string]complete.Predictor{"fy": predict.Something}),
			"assist": sub(map[string]complete.Predictor{"threshold": predict.Something}),
		},
		Flags: map[string]complete.Predictor{
			"base-dir":  predict.Dirs("*"),
			"log-level": predict.Set{"debug", "info", "warn", "error"},
			"cache-dir": predict.Dirs("*"),
			"closes-db": predict.Files("*.db"),
		},
	}
}
