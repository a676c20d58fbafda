package itm

// solver01: row solver specialized for rows whose coefficients are all 1
// after merging. No sign-flip bookkeeping is needed; the selection rules
// apply directly to the sorted reduced costs.

import (
	"math/rand"
)

type solver01[F Float] struct {
	*solverCore[F]
}

func newSolver01[F Float](
	merged []MergedConstraint,
	ap *Incidence,
	c costModel[F],
	sense ObjectiveSense,
	rng *rand.Rand,
) *solver01[F] {
	s := &solver01[F]{
		solverCore: newSolverCore[F](merged, ap, c, sense, rng),
	}
	for k := range merged {
		expects(s.b[k].neg == 0, "negative coefficient in a 01 row")
	}
	return s
}

func (s *solver01[F]) base() *solverCore[F] {
	return s.solverCore
}

func (s *solver01[F]) updateRow(k int, kappa, delta, theta F) bool {
	return s.run(k, kappa, delta, theta, 0)
}

func (s *solver01[F]) pushUpdateRow(k int, kappa, delta, theta, objAmp F) bool {
	return s.run(k, kappa, delta, theta, objAmp)
}

func (s *solver01[F]) run(k int, kappa, delta, theta, objAmp F) bool {
	row := s.ap.Row(k)

	s.decreasePreference(row, theta)
	rSize, _ := s.computeReducedCosts(row)
	s.amplifyObjective(row, rSize, objAmp)
	s.calculatorSort(rSize)

	var selected int
	if s.b[k].min == s.b[k].max {
		selected = s.selectEquality(rSize, s.b[k].min)
	} else {
		selected = s.selectInequality(rSize, s.b[k].min, s.b[k].max)
	}

	return s.affect(row, k, selected, rSize, kappa, delta)
}

// selectEquality turns on the first bk entries of the sorted row.
func (s *solver01[F]) selectEquality(rSize, bk int) int {
	if bk > rSize {
		bk = rSize
	}
	return bk - 1
}

// selectInequality scans from bkmin upward and stops as soon as a reduced
// cost crosses the stop threshold, capped at bkmax.
func (s *solver01[F]) selectInequality(rSize, bkmin, bkmax int) int {
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
