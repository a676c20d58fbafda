//==============================================================================
// itmrun: command line front end of the itm solver.
//==============================================================================

// itmrun reads one or more models in the CPLEX LP format and runs the itm
// heuristic on each, either for a single feasibility search (solve) or for
// the parallel optimizer (optimize). Parameters are overridden with
// repeated -p key=value flags.
//
// Exit codes: 0 success, 1 usage error, 2 file format error, 3 infeasible
// or unrealisable model, 4 time limit reached without a feasible point.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-opt/itm"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	exitOK = iota
	exitUsage
	exitFileFormat
	exitInfeasible
	exitTimeLimit
)

type options struct {
	optimize bool
	params   []string
	verbose  int
	output   string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	exit := exitOK

	cmd := &cobra.Command{
		Use:           "itmrun [flags] model.lp...",
		Short:         "heuristic solver for 0/1 linear programs",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exit = solveFiles(&opts, args)
			return nil
		},
	}

	addFlags(cmd.Flags(), &opts)

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "itmrun: %v\n", err)
		return exitUsage
	}
	return exit
}

func addFlags(flags *pflag.FlagSet, opts *options) {
	flags.BoolVarP(&opts.optimize, "optimize", "O", false,
		"run the parallel optimizer instead of a single solve")
	flags.StringArrayVarP(&opts.params, "param", "p", nil,
		"parameter override, key=value (repeatable)")
	flags.CountVarP(&opts.verbose, "verbose", "v",
		"increase verbosity (repeatable)")
	flags.StringVarP(&opts.output, "output", "o", "",
		"write the best solution to this file instead of stdout")
}

// parseOverrides splits the repeated key=value flags.
func parseOverrides(raw []string) (map[string]string, error) {
	overrides := make(map[string]string, len(raw))
	for _, kv := range raw {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			return nil, errors.Errorf("bad parameter %q, expected key=value", kv)
		}
		overrides[kv[:eq]] = kv[eq+1:]
	}
	return overrides, nil
}

func solveFiles(opts *options, files []string) int {
	itm.SetVerbose(opts.verbose)

	overrides, err := parseOverrides(opts.params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "itmrun: %v\n", err)
		return exitUsage
	}

	params := itm.DefaultParams()
	if err := params.ApplyOptions(overrides); err != nil {
		fmt.Fprintf(os.Stderr, "itmrun: %v\n", err)
		return exitUsage
	}

	if opts.verbose > 0 {
		printResume(&params, opts.optimize)
	}

	worst := exitOK
	for _, file := range files {
		code := solveFile(opts, params, file)
		if code > worst {
			worst = code
		}
	}
	return worst
}

func solveFile(opts *options, params itm.Params, file string) int {
	pb, err := itm.ReadProblemFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "itmrun: %s: %v\n", file, err)
		if itm.IsFileFormatError(err) {
			return exitFileFormat
		}
		return exitUsage
	}

	var result *itm.Result
	if opts.optimize {
		result, err = itm.Optimize(context.Background(), pb, params)
	} else {
		result, err = itm.Solve(context.Background(), pb, params)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "itmrun: %s: %v\n", file, err)
		if itm.IsUnrealisable(err) || itm.IsProblemError(err) {
			return exitInfeasible
		}
		return exitUsage
	}

	fmt.Fprintf(os.Stderr, "%s: %s, remaining constraints %d\n",
		file, result.Status, result.RemainingConstraints)
	if result.RemainingConstraints == 0 && result.HasSolution() {
		fmt.Fprintf(os.Stderr, "%s: objective %.10g (loop %d, %.3fs)\n",
			file, result.Best().Value, result.Loop, result.Duration)
	}

	if opts.output != "" {
		err = itm.WriteBestSolutionFile(opts.output, result)
	} else {
		err = itm.WriteBestSolution(os.Stdout, result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "itmrun: %s: %v\n", file, err)
		return exitUsage
	}

	if result.RemainingConstraints > 0 {
		if result.Status == itm.StatusTimeLimitReached {
			return exitTimeLimit
		}
		return exitInfeasible
	}
	return exitOK
}

// printResume prints the effective parameter set, in the spirit of the
// solver's log preamble.
func printResume(p *itm.Params, optimize bool) {
	mode := "solve"
	if optimize {
		mode = "optimize"
	}

	fmt.Fprintf(os.Stderr, "itmrun %s\n", mode)
	fmt.Fprintf(os.Stderr, "  limit: %d  time-limit: %gs  float: %s\n",
		p.Limit, p.TimeLimit, p.FloatType)
	fmt.Fprintf(os.Stderr, "  kappa: min %g step %g max %g  alpha: %g\n",
		p.KappaMin, p.KappaStep, p.KappaMax, p.Alpha)
	fmt.Fprintf(os.Stderr, "  theta: %g  delta: %g  w: %d\n",
		p.Theta, p.Delta, p.W)
	fmt.Fprintf(os.Stderr, "  order: %s  init: %s (random %g)\n",
		p.Order, p.InitPolicy, p.InitRandom)
	fmt.Fprintf(os.Stderr, "  pushes: %d  push-k: %g  push-amp: %g  push-iter: %d\n",
		p.PushesLimit, p.PushingKFactor, p.PushingObjectiveAmplifier,
		p.PushingIterationLimit)
	fmt.Fprintf(os.Stderr, "  threads: %d  seed: %d  preprocessor: %s  observer: %s\n",
		p.Thread, p.Seed, p.Preprocessor, p.Observer)
}
