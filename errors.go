package itm

// errors: typed error kinds surfaced by the parser, the problem builder,
// and the solver.
//
// File-format and problem-definition errors abort problem construction.
// Solver errors abort the current Solve or Optimize call. Soft conditions
// (time limit, iteration limit, kappa limit) are result statuses, never
// errors.

import (
	"fmt"

	"github.com/pkg/errors"
)

// FileFormatTag identifies the kind of LP-format parse failure.
type FileFormatTag int

const (
	BadEndOfFile FileFormatTag = iota
	BadToken
	BadName
	BadOperator
	BadInteger
	BadObjectiveType
	BadBound
	BadConstraint
	BadFunctionElement
	TooManyVariables
	Incomplete
)

func (t FileFormatTag) String() string {
	switch t {
	case BadEndOfFile:
		return "end of file"
	case BadToken:
		return "unexpected token"
	case BadName:
		return "bad name"
	case BadOperator:
		return "bad operator"
	case BadInteger:
		return "bad integer"
	case BadObjectiveType:
		return "bad objective function type"
	case BadBound:
		return "bad bound"
	case BadConstraint:
		return "bad constraint"
	case BadFunctionElement:
		return "bad function element"
	case TooManyVariables:
		return "too many variables"
	case Incomplete:
		return "incomplete file"
	}
	return "unknown"
}

// FileFormatError reports a failure while reading an LP-format model,
// with the 1-based line and column where the failure was detected.
type FileFormatError struct {
	Tag    FileFormatTag
	Line   int
	Column int
	Token  string
}

func (e *FileFormatError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("lp format: %s near %q at %d:%d",
			e.Tag, e.Token, e.Line, e.Column)
	}
	return fmt.Sprintf("lp format: %s at %d:%d", e.Tag, e.Line, e.Column)
}

// ProblemTag identifies the kind of problem-definition failure.
type ProblemTag int

const (
	EmptyVariables ProblemTag = iota
	EmptyObjective
	VariableNotUsed
	BadVariableBound
	IncompatibleConstraints
)

func (t ProblemTag) String() string {
	switch t {
	case EmptyVariables:
		return "empty variables"
	case EmptyObjective:
		return "empty objective function"
	case VariableNotUsed:
		return "variable declared but not used"
	case BadVariableBound:
		return "bad variable bound"
	case IncompatibleConstraints:
		return "same constraint with incompatible bounds"
	}
	return "unknown"
}

// ProblemError reports an invalid problem definition.
type ProblemError struct {
	Tag    ProblemTag
	Detail string
}

func (e *ProblemError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("problem definition: %s: %s", e.Tag, e.Detail)
	}
	return fmt.Sprintf("problem definition: %s", e.Tag)
}

// SolverTag identifies the kind of solver failure.
type SolverTag int

const (
	NoSolverAvailable SolverTag = iota
	UnrealisableConstraint
	NotEnoughMemory
)

func (t SolverTag) String() string {
	switch t {
	case NoSolverAvailable:
		return "no solver available"
	case UnrealisableConstraint:
		return "unrealisable constraint"
	case NotEnoughMemory:
		return "not enough memory"
	}
	return "unknown"
}

// SolverError reports a hard solver failure; no partial result accompanies
// it.
type SolverError struct {
	Tag    SolverTag
	Detail string
}

func (e *SolverError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("solver: %s: %s", e.Tag, e.Detail)
	}
	return fmt.Sprintf("solver: %s", e.Tag)
}

// IsFileFormatError reports whether err wraps a FileFormatError.
func IsFileFormatError(err error) bool {
	var ffe *FileFormatError
	return errors.As(err, &ffe)
}

// IsProblemError reports whether err wraps a ProblemError.
func IsProblemError(err error) bool {
	var pe *ProblemError
	return errors.As(err, &pe)
}

// IsUnrealisable reports whether err wraps a SolverError carrying the
// unrealisable-constraint tag.
func IsUnrealisable(err error) bool {
	var se *SolverError
	if errors.As(err, &se) {
		return se.Tag == UnrealisableConstraint
	}
	return false
}

// expects panics when an internal precondition does not hold. Violations
// are bugs, not recoverable conditions.
func expects(condition bool, msg string) {
	if !condition {
		panic("itm: precondition failure: " + msg)
	}
}

// ensures panics when an internal postcondition does not hold.
func ensures(condition bool, msg string) {
	if !condition {
		panic("itm: postcondition failure: " + msg)
	}
}
