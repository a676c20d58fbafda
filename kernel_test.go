package itm

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// buildKernel constructs a solver over an inline model for kernel-level
// tests.
func buildKernel(t *testing.T, src string, seed int64) (rowSolver[float64], *Problem) {
	t.Helper()

	pb, err := ReadProblem(strings.NewReader(src))
	require.NoError(t, err)

	merged, family, err := MergeConstraints(pb)
	require.NoError(t, err)

	ap := NewIncidence(merged, pb.NumVariables())
	rng := newTestRand(seed)
	cost := newCostModel[float64](pb, pb.NumVariables(), rng)

	slv, err := newFamilySolver[float64](family, merged, ap, cost, pb.Sense, rng)
	require.NoError(t, err)
	return slv, pb
}

func TestAffectSelectsPrefix(t *testing.T) {
	slv, _ := buildKernel(t, `
minimize
  obj: x1 + 2 x2 + 3 x3
subject to
  c1: x1 + x2 + x3 = 2
binary
  x1
  x2
  x3
end
`, 7)

	core := slv.base()
	slv.updateRow(0, 0.1, 0.01, 0.5)

	// An equality row with a reachable target is satisfied right after
	// its update.
	assert.Equal(t, 2, core.rowValue(0))
	assert.True(t, core.rowSatisfied(0))
}

func TestSignFlipRestoresConsistency(t *testing.T) {
	slv, _ := buildKernel(t, `
minimize
  obj: x1 + x2 + x3
subject to
  c1: - x1 + x2 + x3 = 1
binary
  x1
  x2
  x3
end
`, 11)

	core := slv.base()
	require.IsType(t, &solver101[float64]{}, slv)

	for i := 0; i < 50; i++ {
		slv.updateRow(0, 0.1, 0.01, 0.5)

		// After the flip is undone the row must hold under the original
		// coefficients.
		assert.Equal(t, 1, core.rowValue(0), "iteration %d", i)
		assert.True(t, core.rowSatisfied(0))
	}
}

func TestAffectAllOffDecreasesPreferences(t *testing.T) {
	slv, _ := buildKernel(t, `
minimize
  obj: x1 + x2
subject to
  c1: x1 + x2 <= 1
binary
  x1
  x2
end
`, 3)

	core := slv.base()
	row := core.ap.Row(0)

	rSize, cSize := core.computeReducedCosts(row)
	require.Equal(t, 2, rSize)
	require.Equal(t, 0, cSize)

	changed := core.affect(row, 0, -1, rSize, 0.1, 0.5)
	assert.False(t, changed, "pi must stay untouched when nothing is selected")

	for _, e := range row {
		assert.False(t, core.x.Get(e.Column))
		assert.InDelta(t, -0.5, float64(core.P[e.Value]), 1e-12)
	}
	assert.Zero(t, float64(core.pi[0]))
}

func TestAffectMiddleUpdatesPiWithMidpoint(t *testing.T) {
	slv, _ := buildKernel(t, `
minimize
  obj: x1 + x2 + x3
subject to
  c1: x1 + x2 + x3 <= 2
binary
  x1
  x2
  x3
end
`, 3)

	core := slv.base()
	row := core.ap.Row(0)

	rSize, _ := core.computeReducedCosts(row)
	require.Equal(t, 3, rSize)

	// Fix the reduced costs to known values and pick the middle cut.
	core.R[0] = rcData[float64]{value: -2, id: 0, f: 1}
	core.R[1] = rcData[float64]{value: -1, id: 1, f: 1}
	core.R[2] = rcData[float64]{value: 3, id: 2, f: 1}

	core.affect(row, 0, 1, rSize, 0.5, 0.01)

	assert.InDelta(t, 1.0, float64(core.pi[0]), 1e-12,
		"pi moves by the midpoint of the cut")
	assert.True(t, core.x.Get(row[0].Column))
	assert.True(t, core.x.Get(row[1].Column))
	assert.False(t, core.x.Get(row[2].Column))

	// d = delta + kappa/(1-kappa) * (R[2]-R[1]) = 0.01 + 1*4.
	assert.InDelta(t, 4.01, float64(core.P[row[0].Value]), 1e-12)
	assert.InDelta(t, -4.01, float64(core.P[row[2].Value]), 1e-12)
}

func TestCalculatorSortOrdersAndShufflesTies(t *testing.T) {
	slv, _ := buildKernel(t, `
minimize
  obj: x1 + x2 + x3 + x4
subject to
  c1: x1 + x2 + x3 + x4 <= 2
binary
  x1
  x2
  x3
  x4
end
`, 99)

	core := slv.base()

	seen := map[[2]int]bool{}
	for i := 0; i < 64; i++ {
		r := []rcData[float64]{
			{value: 5, id: 0, f: 1},
			{value: 1, id: 1, f: 1},
			{value: 1, id: 2, f: 1},
			{value: -3, id: 3, f: 1},
		}
		copy(core.R, r)
		core.calculatorSort(4)

		require.Equal(t, -3.0, core.R[0].value)
		require.Equal(t, 5.0, core.R[3].value)
		seen[[2]int{core.R[1].id, core.R[2].id}] = true
	}

	// The tied pair must appear in both orders across repetitions.
	assert.True(t, seen[[2]int{1, 2}])
	assert.True(t, seen[[2]int{2, 1}])
}

func TestStopIteratingFollowsDirection(t *testing.T) {
	slv, _ := buildKernel(t, `
minimize
  obj: x1 + x2
subject to
  c1: x1 + x2 <= 1
binary
  x1
  x2
end
`, 5)
	core := slv.base()

	assert.True(t, core.stopIterating(1.0))
	assert.False(t, core.stopIterating(-1.0))

	core.sense = Maximize
	assert.True(t, core.stopIterating(-1.0))
	assert.False(t, core.stopIterating(1.0))
}

func TestBitVecOperations(t *testing.T) {
	v := NewBitVec(130)

	v.Set(0)
	v.Set(64)
	v.Set(129)
	assert.True(t, v.Get(0))
	assert.True(t, v.Get(64))
	assert.True(t, v.Get(129))
	assert.False(t, v.Get(1))
	assert.Equal(t, 1, v.GetInt(64))

	v.Invert(0)
	assert.False(t, v.Get(0))

	v.Unset(64)
	assert.False(t, v.Get(64))

	other := v.Clone()
	assert.True(t, v.Equal(other))
	other.Invert(7)
	assert.False(t, v.Equal(other))

	v.Fill(true)
	for i := 0; i < 130; i++ {
		require.True(t, v.Get(i))
	}
	v.Fill(false)
	for i := 0; i < 130; i++ {
		require.False(t, v.Get(i))
	}
}
