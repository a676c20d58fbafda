package itm

// solver101: row solver specialized for coefficients in {-1, 1}. Rows
// holding a -1 go through the sign-flip trick: the reduced costs and
// preferences of those positions negate, the bound window shifts by the
// count of negated positions, and after selection the negation is undone
// and the affected variables invert.

import (
	"math/rand"
)

type solver101[F Float] struct {
	*solverCore[F]
}

func newSolver101[F Float](
	merged []MergedConstraint,
	ap *Incidence,
	c costModel[F],
	sense ObjectiveSense,
	rng *rand.Rand,
) *solver101[F] {
	s := &solver101[F]{
		solverCore: newSolverCore[F](merged, ap, c, sense, rng),
	}
	for _, a := range s.A {
		expects(a == 1 || a == -1, "coefficient outside {-1,1} in a 101 row")
	}
	return s
}

func (s *solver101[F]) base() *solverCore[F] {
	return s.solverCore
}

func (s *solver101[F]) updateRow(k int, kappa, delta, theta F) bool {
	return s.run(k, kappa, delta, theta, 0)
}

func (s *solver101[F]) pushUpdateRow(k int, kappa, delta, theta, objAmp F) bool {
	return s.run(k, kappa, delta, theta, objAmp)
}

func (s *solver101[F]) run(k int, kappa, delta, theta, objAmp F) bool {
	row := s.ap.Row(k)

	s.decreasePreference(row, theta)
	rSize, cSize := s.computeReducedCosts(row)

	if cSize == 0 {
		// Pure 0/1 row.
		s.amplifyObjective(row, rSize, objAmp)
		s.calculatorSort(rSize)

		var selected int
		if s.b[k].min == s.b[k].max {
			selected = selectEquality01(rSize, s.b[k].min)
		} else {
			selected = s.selectInequality(rSize, s.b[k].min, s.b[k].max)
		}
		return s.affect(row, k, selected, rSize, kappa, delta)
	}

	s.flipNegative(row, rSize)
	s.amplifyObjective(row, rSize, objAmp)
	s.calculatorSort(rSize)

	var selected int
	if s.b[k].min == s.b[k].max {
		selected = selectEquality01(rSize, s.b[k].min+cSize)
	} else {
		selected = s.selectInequality(rSize, s.b[k].min+cSize, s.b[k].max+cSize)
	}

	changed := s.affect(row, k, selected, rSize, kappa, delta)

	s.unflipNegative(row, rSize)

	return changed
}

func selectEquality01(rSize, bk int) int {
	if bk > rSize {
		bk = rSize
	}
	return bk - 1
}

func (s *solver101[F]) selectInequality(rSize, bkmin, bkmax int) int {
	if bkmin < 0 {
		bkmin = 0
	}
	if bkmax > rSize {
		bkmax = rSize
	}

	for i := bkmin; i <= bkmax && i < rSize; i++ {
		if s.stopIterating(s.R[i].value) {
			return i - 1
		}
	}
	return bkmax - 1
}
