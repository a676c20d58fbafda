package itm

// result: what Solve and Optimize return.

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ResultStatus tags the outcome of a solve or optimize call. Reaching a
// limit is a normal status carrying the best-so-far, not an error.
type ResultStatus int

const (
	StatusUninitialized ResultStatus = iota
	StatusSuccess
	StatusLimitReached
	StatusTimeLimitReached
	StatusKappaMaxReached
	StatusInternalError
)

func (s ResultStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusLimitReached:
		return "limit reached"
	case StatusTimeLimitReached:
		return "time limit reached"
	case StatusKappaMaxReached:
		return "kappa max reached"
	case StatusInternalError:
		return "internal error"
	}
	return "uninitialized"
}

// Solution is one assignment with its objective value under the original
// costs. Variables is indexed like Result.VariableNames.
type Solution struct {
	Variables []bool
	Value     float64
}

// Result carries the outcome of a Solve or Optimize call. The assignment
// of the last solution may be infeasible; RemainingConstraints says how
// many rows it violates.
type Result struct {
	Status               ResultStatus
	RemainingConstraints int

	// Solutions holds the best assignments found, best last.
	Solutions []Solution

	// VariableNames names the solved variables, parallel to
	// Solution.Variables.
	VariableNames []string

	// AffectedVars carries the assignments fixed by the preprocessor.
	AffectedVars AffectedVariables

	// Variables and Constraints are the solved model dimensions after
	// preprocessing and merging.
	Variables   int
	Constraints int

	// Loop is the iteration at which the best solution was recorded;
	// negative values index push-phase sweeps. Duration is the solve
	// time in seconds up to that record.
	Loop     int
	Duration float64
}

// HasSolution reports whether at least one assignment was recorded.
func (r *Result) HasSolution() bool {
	return len(r.Solutions) > 0
}

// Best returns the last recorded solution.
func (r *Result) Best() *Solution {
	if len(r.Solutions) == 0 {
		return nil
	}
	return &r.Solutions[len(r.Solutions)-1]
}

// WriteBestSolution writes the best assignment in the conventional
// solution-file layout: a status comment block followed by one
// name=value line per variable, preprocessor-affected variables included.
func WriteBestSolution(w io.Writer, r *Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ solver: itm\n")
	fmt.Fprintf(bw, "\\ status: %s\n", r.Status)
	fmt.Fprintf(bw, "\\ remaining constraints: %d\n", r.RemainingConstraints)

	best := r.Best()
	if best == nil {
		fmt.Fprintf(bw, "\\ no solution\n")
		return errors.Wrap(bw.Flush(), "writing solution")
	}

	if r.RemainingConstraints == 0 {
		fmt.Fprintf(bw, "\\ objective: %.10g\n", best.Value)
	}

	for i := 0; i < r.AffectedVars.Len(); i++ {
		fmt.Fprintf(bw, "%s=%d\n", r.AffectedVars.Names[i],
			boolToInt(r.AffectedVars.Values[i]))
	}
	for i, name := range r.VariableNames {
		fmt.Fprintf(bw, "%s=%d\n", name, boolToInt(best.Variables[i]))
	}

	return errors.Wrap(bw.Flush(), "writing solution")
}

// WriteBestSolutionFile writes the best assignment to the given path.
func WriteBestSolutionFile(path string, r *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating solution file %s", path)
	}
	defer f.Close()

	return WriteBestSolution(f, r)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
