package itm

// merge: fuse the three typed constraint lists into a single list of
// merged, normalized rows and classify the problem family.
//
// Two rows sharing the same element map (variable -> factor, order
// independent) are merged by intersecting their bound intervals. Bounds
// are tightened against each row's algebraic reach, rows that any 0/1
// assignment satisfies are dropped, and an empty interval is an
// unrealisable-constraint error.

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Sentinels for one-sided rows before tightening.
const (
	boundNegInf = math.MinInt32
	boundPosInf = math.MaxInt32
)

// MergedConstraint is one normalized row: deduplicated elements and a
// bound interval with Min <= Max. Equality rows have Min == Max. ID keeps
// the first source constraint id for reporting.
type MergedConstraint struct {
	Elements []Element
	Min      int
	Max      int
	ID       int
}

// ProblemFamily tags the solver specialization chosen for a merged
// problem.
type ProblemFamily int

const (
	Equalities01 ProblemFamily = iota
	Equalities101
	EqualitiesZ
	Inequalities01
	Inequalities101
	InequalitiesZ
)

func (f ProblemFamily) String() string {
	switch f {
	case Equalities01:
		return "equalities-01"
	case Equalities101:
		return "equalities-101"
	case EqualitiesZ:
		return "equalities-Z"
	case Inequalities01:
		return "inequalities-01"
	case Inequalities101:
		return "inequalities-101"
	case InequalitiesZ:
		return "inequalities-Z"
	}
	return "unknown"
}

// normalizeElements sums duplicate appearances of a variable and removes
// zero coefficients, returning elements sorted by variable index.
func normalizeElements(elements []Element) []Element {
	byVar := make(map[int]int, len(elements))
	for _, e := range elements {
		byVar[e.Variable] += e.Factor
	}

	out := make([]Element, 0, len(byVar))
	for v, f := range byVar {
		if f != 0 {
			out = append(out, Element{Factor: f, Variable: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Variable < out[j].Variable
	})
	return out
}

// elementKey builds the order-independent identity of an element map used
// to detect duplicate rows.
func elementKey(elements []Element) string {
	var sb strings.Builder
	for _, e := range elements {
		sb.WriteString(strconv.Itoa(e.Variable))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(e.Factor))
		sb.WriteByte(';')
	}
	return sb.String()
}

// reach returns the algebraic reach [sum of negatives, sum of positives]
// of a row over 0/1 variables.
func reach(elements []Element) (lo, hi int) {
	for _, e := range elements {
		if e.Factor > 0 {
			hi += e.Factor
		} else {
			lo += e.Factor
		}
	}
	return lo, hi
}

// MergeConstraints builds the merged row list of a problem and returns it
// with the problem family classification. In case of an empty bound
// intersection or a row whose tightened interval is empty, it returns a
// SolverError carrying the unrealisable-constraint tag.
func MergeConstraints(p *Problem) ([]MergedConstraint, ProblemFamily, error) {
	type slot struct {
		index int
	}

	var merged []MergedConstraint
	byKey := make(map[string]slot)

	add := func(c Constraint, min, max int) error {
		elements := normalizeElements(c.Elements)
		if len(elements) == 0 {
			// A row with no remaining element is a pure bound check.
			if min > 0 || max < 0 {
				return errors.Wrapf(
					&SolverError{Tag: UnrealisableConstraint, Detail: c.Label},
					"constraint %s reduced to an empty row", c.Label)
			}
			return nil
		}

		key := elementKey(elements)
		if s, ok := byKey[key]; ok {
			row := &merged[s.index]
			if min > row.Min {
				row.Min = min
			}
			if max < row.Max {
				row.Max = max
			}
			if row.Min > row.Max {
				return errors.Wrapf(
					&SolverError{Tag: UnrealisableConstraint, Detail: c.Label},
					"merging constraint %s empties its bound interval", c.Label)
			}
			return nil
		}

		byKey[key] = slot{index: len(merged)}
		merged = append(merged, MergedConstraint{
			Elements: elements,
			Min:      min,
			Max:      max,
			ID:       c.ID,
		})
		return nil
	}

	for i := range p.EqualConstraints {
		c := p.EqualConstraints[i]
		if err := add(c, c.Value, c.Value); err != nil {
			return nil, Equalities01, err
		}
	}
	for i := range p.GreaterConstraints {
		c := p.GreaterConstraints[i]
		if err := add(c, c.Value, boundPosInf); err != nil {
			return nil, Equalities01, err
		}
	}
	for i := range p.LessConstraints {
		c := p.LessConstraints[i]
		if err := add(c, boundNegInf, c.Value); err != nil {
			return nil, Equalities01, err
		}
	}

	// Tighten against each row's reach and drop rows that any 0/1
	// assignment satisfies.
	kept := merged[:0]
	for i := range merged {
		row := merged[i]
		lo, hi := reach(row.Elements)

		if row.Min < lo {
			row.Min = lo
		}
		if row.Max > hi {
			row.Max = hi
		}
		if row.Min > row.Max {
			return nil, Equalities01, errors.Wrapf(
				&SolverError{Tag: UnrealisableConstraint,
					Detail: strconv.Itoa(row.ID)},
				"tightening constraint %d empties its bound interval", row.ID)
		}
		if row.Min == lo && row.Max == hi {
			continue
		}
		kept = append(kept, row)
	}
	merged = kept

	return merged, classify(merged), nil
}

// classify derives the family tag from the coefficient magnitudes and the
// presence of non-point bound intervals. A problem whose rows all collapse
// to Min == Max is an equality problem regardless of the comparators it
// was written with.
func classify(merged []MergedConstraint) ProblemFamily {
	coefficient := 0
	hasRange := false

	for i := range merged {
		if merged[i].Min != merged[i].Max {
			hasRange = true
		}
		for _, e := range merged[i].Elements {
			switch {
			case e.Factor < -1 || e.Factor > 1:
				coefficient = 2
			case e.Factor == -1 && coefficient < 1:
				coefficient = 1
			}
		}
	}

	if hasRange {
		switch coefficient {
		case 0:
			return Inequalities01
		case 1:
			return Inequalities101
		default:
			return InequalitiesZ
		}
	}
	switch coefficient {
	case 0:
		return Equalities01
	case 1:
		return Equalities101
	default:
		return EqualitiesZ
	}
}

// maxRowSize returns the largest element count over the merged rows; the
// reduced-cost scratch vector is sized from it.
func maxRowSize(merged []MergedConstraint) int {
	max := 0
	for i := range merged {
		if len(merged[i].Elements) > max {
			max = len(merged[i].Elements)
		}
	}
	return max
}

// elementCount returns the number of nonzeros over the merged rows.
func elementCount(merged []MergedConstraint) int {
	n := 0
	for i := range merged {
		n += len(merged[i].Elements)
	}
	return n
}
