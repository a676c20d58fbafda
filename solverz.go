package itm

// solverz: row solver for general integer coefficients. Rows whose
// coefficients all stay within {-1, 1} follow the 101 rules; rows with a
// larger magnitude first try a greedy cumulative scan of the sorted
// reduced costs and fall back to an embedded subsolver: the exhaustive
// enumerator for small rows, the knapsack dynamic program when the
// flipped coefficients are small, the branch-and-bound otherwise.

import (
	"math/rand"
)

// exhaustiveRowLimit is the largest row size handed to the exhaustive
// enumerator.
const exhaustiveRowLimit = 32

// knapsackFactorLimit and knapsackCapacityLimit gate the dynamic program.
const (
	knapsackFactorLimit   = 10
	knapsackCapacityLimit = 4096
)

type solverZ[F Float] struct {
	*solverCore[F]

	// zRow flags rows holding a coefficient with magnitude above 1.
	zRow []bool

	bb *branchAndBound[F]
	dp *knapsackDP[F]
	ex *exhaustive[F]
}

func newSolverZ[F Float](
	merged []MergedConstraint,
	ap *Incidence,
	c costModel[F],
	sense ObjectiveSense,
	rng *rand.Rand,
) *solverZ[F] {
	s := &solverZ[F]{
		solverCore: newSolverCore[F](merged, ap, c, sense, rng),
		zRow:       make([]bool, len(merged)),
	}

	maxRow := 0
	for k := range merged {
		if len(merged[k].Elements) > maxRow {
			maxRow = len(merged[k].Elements)
		}
		for _, e := range merged[k].Elements {
			expects(e.Factor != 0, "zero coefficient in a Z row")
			if e.Factor < -1 || e.Factor > 1 {
				s.zRow[k] = true
			}
		}
	}

	s.bb = newBranchAndBound[F](maxRow)
	s.dp = newKnapsackDP[F](maxRow, knapsackCapacityLimit)
	s.ex = newExhaustive[F](maxRow)

	return s
}

func (s *solverZ[F]) base() *solverCore[F] {
	return s.solverCore
}

func (s *solverZ[F]) updateRow(k int, kappa, delta, theta F) bool {
	return s.run(k, kappa, delta, theta, 0)
}

func (s *solverZ[F]) pushUpdateRow(k int, kappa, delta, theta, objAmp F) bool {
	return s.run(k, kappa, delta, theta, objAmp)
}

func (s *solverZ[F]) run(k int, kappa, delta, theta, objAmp F) bool {
	row := s.ap.Row(k)

	s.decreasePreference(row, theta)
	rSize, cSize := s.computeReducedCosts(row)

	if !s.zRow[k] {
		// Coefficients within {-1,1}: the 101 rules apply.
		if cSize == 0 {
			s.amplifyObjective(row, rSize, objAmp)
			s.calculatorSort(rSize)

			var selected int
			if s.b[k].min == s.b[k].max {
				selected = selectEquality01(rSize, s.b[k].min)
			} else {
				selected = s.selectInequality01(rSize, s.b[k].min, s.b[k].max)
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
			selected = s.selectInequality01(rSize, s.b[k].min+cSize, s.b[k].max+cSize)
		}

		changed := s.affect(row, k, selected, rSize, kappa, delta)
		s.unflipNegative(row, rSize)
		return changed
	}

	// General integer row. The sign flip shifts the window by the sum of
	// the negated coefficient magnitudes, reducing the row to
	// non-negative coefficients |A|.
	s.flipNegative(row, rSize)
	s.amplifyObjective(row, rSize, objAmp)
	s.calculatorSort(rSize)

	shift := s.b[k].neg
	bkmin := s.b[k].min + shift
	bkmax := s.b[k].max + shift

	weights := s.rowWeights(row, rSize)

	selected, settled := greedyZ(weights, rSize, bkmin, bkmax)

	var changed bool
	switch {
	case settled:
		changed = s.affect(row, k, selected, rSize, kappa, delta)

	case rSize <= exhaustiveRowLimit:
		selected = s.ex.solve(s.solverCore, weights, rSize, bkmin, bkmax)
		changed = s.localAffect(row, k, selected, rSize, kappa, delta)

	case maxWeight(weights, rSize) <= knapsackFactorLimit &&
		bkmax <= knapsackCapacityLimit && rSize <= 64:
		selected = s.dp.solve(s.solverCore, weights, rSize, bkmin, bkmax)
		changed = s.affect(row, k, selected, rSize, kappa, delta)

	default:
		selected = s.bb.solve(s.solverCore, weights, rSize, bkmin, bkmax)
		changed = s.affect(row, k, selected, rSize, kappa, delta)
	}

	s.unflipNegative(row, rSize)
	return changed
}

// rowWeights fills the per-entry coefficient magnitudes of the sorted R,
// the effective weights of the flipped subproblem.
func (s *solverZ[F]) rowWeights(row []RowEntry, rSize int) []int {
	w := s.bb.weights[:rSize]
	for i := 0; i < rSize; i++ {
		a := s.A[row[s.R[i].id].Value]
		if a < 0 {
			a = -a
		}
		w[i] = a
	}
	return w
}

// greedyZ accumulates weights in sorted order and reports the first index
// whose cumulative sum lands inside the window. settled is false when the
// scan overshoots without hitting it.
func greedyZ(weights []int, rSize, bkmin, bkmax int) (selected int, settled bool) {
	if bkmin <= 0 && 0 <= bkmax {
		// The empty prefix already satisfies the row.
		return -1, true
	}

	sum := 0
	for i := 0; i < rSize; i++ {
		sum += weights[i]
		if bkmin <= sum && sum <= bkmax {
			return i, true
		}
		if sum > bkmax {
			return -1, false
		}
	}
	return -1, false
}

func maxWeight(weights []int, rSize int) int {
	max := 0
	for i := 0; i < rSize; i++ {
		if weights[i] > max {
			max = weights[i]
		}
	}
	return max
}

func (s *solverZ[F]) selectInequality01(rSize, bkmin, bkmax int) int {
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
