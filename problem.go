package itm

// problem: the raw model as read from an LP file or built directly by the
// caller, before constraint merging.

import (
	"github.com/pkg/errors"
)

// VariableType classifies a variable domain.
type VariableType int

const (
	// VarReal is the parser default before a binary/general section
	// reclassifies the variable. The solver itself accepts only bounded
	// integer variables.
	VarReal VariableType = iota
	VarBinary
	VarGeneral
)

// VariableValue is the domain of one variable.
type VariableValue struct {
	Min  int
	Max  int
	Type VariableType
}

// Variables holds the parallel name and domain lists of a model. The index
// of a variable in these lists is its identity everywhere else.
type Variables struct {
	Names  []string
	Values []VariableValue
}

// ObjectiveElement is one linear term of the objective function.
type ObjectiveElement struct {
	Factor   float64
	Variable int
}

// QuadElement is one quadratic term of the objective function.
type QuadElement struct {
	Factor    float64
	VariableI int
	VariableJ int
}

// Objective is a constant plus linear elements, optionally with a
// quadratic part.
type Objective struct {
	Constant  float64
	Elements  []ObjectiveElement
	QElements []QuadElement
}

// Element is one term of a constraint function: an integer coefficient
// applied to a variable.
type Element struct {
	Factor   int
	Variable int
}

// Constraint is one labeled row of the model. The comparison direction is
// given by the list holding it (equal, greater, less).
type Constraint struct {
	Label    string
	ID       int
	Elements []Element
	Value    int
}

// ObjectiveSense gives the optimization direction.
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

func (s ObjectiveSense) String() string {
	if s == Maximize {
		return "maximize"
	}
	return "minimize"
}

// AffectedVariables carries the assignments fixed by the preprocessor,
// reported alongside the solved variables on the result.
type AffectedVariables struct {
	Names  []string
	Values []bool
}

// Set records one fixed variable.
func (a *AffectedVariables) Set(name string, value bool) {
	a.Names = append(a.Names, name)
	a.Values = append(a.Values, value)
}

// Len returns the number of fixed variables.
func (a *AffectedVariables) Len() int {
	return len(a.Names)
}

// Problem is a bounded-integer linear program. GreaterConstraints and
// LessConstraints hold the >= and <= rows respectively.
type Problem struct {
	Sense              ObjectiveSense
	Objective          Objective
	EqualConstraints   []Constraint
	GreaterConstraints []Constraint
	LessConstraints    []Constraint
	Vars               Variables

	// AffectedVars is populated by the preprocessor when variables were
	// substituted out before solving.
	AffectedVars AffectedVariables

	// CoefficientClass is the largest coefficient family observed while
	// reading the model: 0 for {0,1}, 1 for {-1,0,1}, 2 for Z.
	CoefficientClass int
}

// NumVariables returns the variable count.
func (p *Problem) NumVariables() int {
	return len(p.Vars.Names)
}

// NumConstraints returns the total row count over the three lists.
func (p *Problem) NumConstraints() int {
	return len(p.EqualConstraints) +
		len(p.GreaterConstraints) +
		len(p.LessConstraints)
}

// constraintLists returns the three typed lists in a fixed order, for
// callers that process every row uniformly.
func (p *Problem) constraintLists() [][]Constraint {
	return [][]Constraint{
		p.EqualConstraints,
		p.GreaterConstraints,
		p.LessConstraints,
	}
}

// Validate checks the problem-definition rules: variables exist, the
// objective is not empty, every declared variable is used, and every
// variable bound is ordered. In case of failure, it returns a
// ProblemError.
func (p *Problem) Validate() error {
	if len(p.Vars.Names) == 0 {
		return &ProblemError{Tag: EmptyVariables}
	}

	if len(p.Objective.Elements) == 0 && len(p.Objective.QElements) == 0 {
		return &ProblemError{Tag: EmptyObjective}
	}

	for i := 0; i < len(p.Vars.Values); i++ {
		if p.Vars.Values[i].Min > p.Vars.Values[i].Max {
			return &ProblemError{
				Tag:    BadVariableBound,
				Detail: p.Vars.Names[i],
			}
		}
	}

	used := make([]bool, len(p.Vars.Names))
	for _, list := range p.constraintLists() {
		for i := 0; i < len(list); i++ {
			for _, elem := range list[i].Elements {
				if elem.Variable < 0 || elem.Variable >= len(used) {
					return errors.Errorf("constraint %s references variable %d out of range",
						list[i].Label, elem.Variable)
				}
				used[elem.Variable] = true
			}
		}
	}
	for _, elem := range p.Objective.Elements {
		if elem.Variable < 0 || elem.Variable >= len(used) {
			return errors.Errorf("objective references variable %d out of range",
				elem.Variable)
		}
		used[elem.Variable] = true
	}
	for _, q := range p.Objective.QElements {
		if q.VariableI < 0 || q.VariableI >= len(used) ||
			q.VariableJ < 0 || q.VariableJ >= len(used) {
			return errors.Errorf("objective quadratic term references variable out of range")
		}
		used[q.VariableI] = true
		used[q.VariableJ] = true
	}

	for i := 0; i < len(used); i++ {
		if !used[i] {
			return &ProblemError{
				Tag:    VariableNotUsed,
				Detail: p.Vars.Names[i],
			}
		}
	}

	return nil
}
