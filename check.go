package itm

// check: validation of a result against the raw problem it came from,
// preprocessor affectations included.

import (
	"github.com/pkg/errors"
)

// variableValueMap resolves every variable of the original problem from a
// result: solved variables from the best solution, affected variables
// from the preprocessor record.
func variableValueMap(pb *Problem, r *Result) (map[string]bool, error) {
	best := r.Best()
	if best == nil {
		return nil, errors.New("result carries no solution")
	}
	if len(best.Variables) != len(r.VariableNames) {
		return nil, errors.Errorf("solution width %d does not match %d variable names",
			len(best.Variables), len(r.VariableNames))
	}

	cache := make(map[string]bool,
		len(r.VariableNames)+r.AffectedVars.Len())

	for i := 0; i < r.AffectedVars.Len(); i++ {
		cache[r.AffectedVars.Names[i]] = r.AffectedVars.Values[i]
	}
	for i, name := range r.VariableNames {
		cache[name] = best.Variables[i]
	}

	for _, name := range pb.Vars.Names {
		if _, ok := cache[name]; !ok {
			return nil, errors.Errorf("variable %s missing from the result", name)
		}
	}
	return cache, nil
}

func evaluateFunction(elements []Element, values []bool) int {
	v := 0
	for _, e := range elements {
		if values[e.Variable] {
			v += e.Factor
		}
	}
	return v
}

func resolveValues(pb *Problem, cache map[string]bool) []bool {
	values := make([]bool, pb.NumVariables())
	for i, name := range pb.Vars.Names {
		values[i] = cache[name]
	}
	return values
}

// IsValidSolution reports whether the result's best assignment satisfies
// every constraint of the original problem.
func IsValidSolution(pb *Problem, r *Result) bool {
	cache, err := variableValueMap(pb, r)
	if err != nil {
		return false
	}
	values := resolveValues(pb, cache)

	for i := range pb.EqualConstraints {
		c := &pb.EqualConstraints[i]
		if evaluateFunction(c.Elements, values) != c.Value {
			return false
		}
	}
	for i := range pb.GreaterConstraints {
		c := &pb.GreaterConstraints[i]
		if evaluateFunction(c.Elements, values) < c.Value {
			return false
		}
	}
	for i := range pb.LessConstraints {
		c := &pb.LessConstraints[i]
		if evaluateFunction(c.Elements, values) > c.Value {
			return false
		}
	}
	return true
}

// ComputeSolution evaluates the original objective at the result's best
// assignment.
func ComputeSolution(pb *Problem, r *Result) (float64, error) {
	cache, err := variableValueMap(pb, r)
	if err != nil {
		return 0, err
	}
	values := resolveValues(pb, cache)

	value := pb.Objective.Constant
	for _, e := range pb.Objective.Elements {
		if values[e.Variable] {
			value += e.Factor
		}
	}
	for _, q := range pb.Objective.QElements {
		if values[q.VariableI] && values[q.VariableJ] {
			value += q.Factor
		}
	}
	return value, nil
}
