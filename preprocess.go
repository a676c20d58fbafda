package itm

// preprocess: pre-affectation of forced binary variables.
//
// A constraint can force variables outright: an equality over one
// remaining variable, or a row whose bound saturates its reach (for
// example x1 + x2 + x3 = 3, or x1 + x2 <= 0). Affecting a variable
// tightens every row it appears in, which may force further variables;
// a LIFO worklist drives the propagation to a fixed point. The reduced
// problem substitutes the affected variables out and reports them so the
// result can be reconstituted afterwards.

import (
	"github.com/pkg/errors"
)

// ppKind is the comparison direction of a row in preprocessing form.
type ppKind int

const (
	ppEqual ppKind = iota
	ppGreater
	ppLess
)

// ppConstraint is one row in preprocessing form.
type ppConstraint struct {
	kind     ppKind
	label    string
	id       int
	elements []Element
	value    int
	done     bool
}

// preprocessor carries the propagation state over one problem.
type preprocessor struct {
	pb       *Problem
	rows     []ppConstraint
	varRows  [][]int
	affected map[int]bool
	lifo     []int
}

// Preprocess substitutes forced variables out of the problem and returns
// the reduced model with the affected variables recorded on it. A forced
// contradiction returns an unrealisable-constraint error.
func Preprocess(pb *Problem) (*Problem, error) {
	pp := &preprocessor{
		pb:       pb,
		varRows:  make([][]int, pb.NumVariables()),
		affected: make(map[int]bool),
	}

	for _, c := range pb.EqualConstraints {
		pp.addRow(ppEqual, c)
	}
	for _, c := range pb.GreaterConstraints {
		pp.addRow(ppGreater, c)
	}
	for _, c := range pb.LessConstraints {
		pp.addRow(ppLess, c)
	}

	// Seed: scan every row once; propagation handles the rest.
	for i := range pp.rows {
		if err := pp.examine(i); err != nil {
			return nil, err
		}
	}
	if err := pp.propagate(); err != nil {
		return nil, err
	}

	reduced := pp.reduce()
	log.Infof("preprocessor: %d variables affected, %d rows removed",
		len(pp.affected), len(pp.rows)-countOpenRows(pp.rows))

	return reduced, nil
}

func countOpenRows(rows []ppConstraint) int {
	open := 0
	for i := range rows {
		if !rows[i].done {
			open++
		}
	}
	return open
}

func (pp *preprocessor) addRow(kind ppKind, c Constraint) {
	index := len(pp.rows)
	pp.rows = append(pp.rows, ppConstraint{
		kind:     kind,
		label:    c.Label,
		id:       c.ID,
		elements: normalizeElements(c.Elements),
		value:    c.Value,
	})
	for _, e := range pp.rows[index].elements {
		pp.varRows[e.Variable] = append(pp.varRows[e.Variable], index)
	}
}

// affect fixes one variable and queues it for propagation.
func (pp *preprocessor) affect(variable int, value bool) error {
	if prev, ok := pp.affected[variable]; ok {
		if prev != value {
			return errors.Wrapf(
				&SolverError{Tag: UnrealisableConstraint,
					Detail: pp.pb.Vars.Names[variable]},
				"variable %s forced to both values",
				pp.pb.Vars.Names[variable])
		}
		return nil
	}
	pp.affected[variable] = value
	pp.lifo = append(pp.lifo, variable)

	log.Debugf("preprocessor: %s := %d",
		pp.pb.Vars.Names[variable], boolToInt(value))
	return nil
}

func (pp *preprocessor) propagate() error {
	for len(pp.lifo) > 0 {
		variable := pp.lifo[len(pp.lifo)-1]
		pp.lifo = pp.lifo[:len(pp.lifo)-1]

		for _, row := range pp.varRows[variable] {
			if err := pp.examine(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// examine reduces one row under the current affectations and applies the
// forcing rules.
func (pp *preprocessor) examine(index int) error {
	row := &pp.rows[index]
	if row.done {
		return nil
	}

	value := row.value
	sumPos, sumNeg := 0, 0
	remaining := row.elements[:0:0]

	for _, e := range row.elements {
		if fixed, ok := pp.affected[e.Variable]; ok {
			if fixed {
				value -= e.Factor
			}
			continue
		}
		remaining = append(remaining, e)
		if e.Factor > 0 {
			sumPos += e.Factor
		} else {
			sumNeg += e.Factor
		}
	}

	unrealisable := func() error {
		return errors.Wrapf(
			&SolverError{Tag: UnrealisableConstraint, Detail: row.label},
			"constraint %s cannot be satisfied after pre-affectation",
			row.label)
	}

	if len(remaining) == 0 {
		switch row.kind {
		case ppEqual:
			if value != 0 {
				return unrealisable()
			}
		case ppGreater:
			if value > 0 {
				return unrealisable()
			}
		case ppLess:
			if value < 0 {
				return unrealisable()
			}
		}
		row.done = true
		return nil
	}

	switch row.kind {
	case ppEqual:
		if value < sumNeg || value > sumPos {
			return unrealisable()
		}
		if len(remaining) == 1 {
			e := remaining[0]
			if value == 0 {
				row.done = true
				return pp.affect(e.Variable, false)
			}
			if value == e.Factor {
				row.done = true
				return pp.affect(e.Variable, true)
			}
			return unrealisable()
		}
		if value == sumNeg || value == sumPos {
			// The bound saturates the reach: every positive position
			// takes the saturating value, every negative one the
			// opposite.
			row.done = true
			for _, e := range remaining {
				on := (value == sumPos) == (e.Factor > 0)
				if err := pp.affect(e.Variable, on); err != nil {
					return err
				}
			}
		}

	case ppGreater:
		if value > sumPos {
			return unrealisable()
		}
		if value <= sumNeg {
			row.done = true
			return nil
		}
		if value == sumPos {
			row.done = true
			for _, e := range remaining {
				if err := pp.affect(e.Variable, e.Factor > 0); err != nil {
					return err
				}
			}
		}

	case ppLess:
		if value < sumNeg {
			return unrealisable()
		}
		if value >= sumPos {
			row.done = true
			return nil
		}
		if value == sumNeg {
			row.done = true
			for _, e := range remaining {
				if err := pp.affect(e.Variable, e.Factor < 0); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// reduce rebuilds the problem without the affected variables.
func (pp *preprocessor) reduce() *Problem {
	if len(pp.affected) == 0 {
		return pp.pb
	}

	pb := pp.pb
	remap := make([]int, pb.NumVariables())
	out := &Problem{
		Sense:            pb.Sense,
		CoefficientClass: pb.CoefficientClass,
	}

	for i := 0; i < pb.NumVariables(); i++ {
		if value, ok := pp.affected[i]; ok {
			remap[i] = -1
			out.AffectedVars.Set(pb.Vars.Names[i], value)
			continue
		}
		remap[i] = len(out.Vars.Names)
		out.Vars.Names = append(out.Vars.Names, pb.Vars.Names[i])
		out.Vars.Values = append(out.Vars.Values, pb.Vars.Values[i])
	}

	// Objective: fold fixed contributions into the constant.
	out.Objective.Constant = pb.Objective.Constant
	for _, e := range pb.Objective.Elements {
		if remap[e.Variable] < 0 {
			if pp.affected[e.Variable] {
				out.Objective.Constant += e.Factor
			}
			continue
		}
		out.Objective.Elements = append(out.Objective.Elements,
			ObjectiveElement{Factor: e.Factor, Variable: remap[e.Variable]})
	}
	for _, q := range pb.Objective.QElements {
		ri, rj := remap[q.VariableI], remap[q.VariableJ]
		switch {
		case ri < 0 && rj < 0:
			if pp.affected[q.VariableI] && pp.affected[q.VariableJ] {
				out.Objective.Constant += q.Factor
			}
		case ri < 0:
			if pp.affected[q.VariableI] {
				out.Objective.Elements = append(out.Objective.Elements,
					ObjectiveElement{Factor: q.Factor, Variable: rj})
			}
		case rj < 0:
			if pp.affected[q.VariableJ] {
				out.Objective.Elements = append(out.Objective.Elements,
					ObjectiveElement{Factor: q.Factor, Variable: ri})
			}
		default:
			out.Objective.QElements = append(out.Objective.QElements,
				QuadElement{Factor: q.Factor, VariableI: ri, VariableJ: rj})
		}
	}

	// Constraints: substitute, drop the settled rows.
	for i := range pp.rows {
		row := &pp.rows[i]
		if row.done {
			continue
		}

		value := row.value
		var elements []Element
		for _, e := range row.elements {
			if remap[e.Variable] < 0 {
				if pp.affected[e.Variable] {
					value -= e.Factor
				}
				continue
			}
			elements = append(elements,
				Element{Factor: e.Factor, Variable: remap[e.Variable]})
		}
		if len(elements) == 0 {
			continue
		}

		c := Constraint{
			Label:    row.label,
			ID:       row.id,
			Elements: elements,
			Value:    value,
		}
		switch row.kind {
		case ppEqual:
			out.EqualConstraints = append(out.EqualConstraints, c)
		case ppGreater:
			out.GreaterConstraints = append(out.GreaterConstraints, c)
		case ppLess:
			out.LessConstraints = append(out.LessConstraints, c)
		}
	}

	return out
}
