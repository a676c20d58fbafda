package itm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderFixture(t *testing.T) *solverCore[float64] {
	t.Helper()

	slv, _ := buildKernel(t, `
minimize
  obj: x1 + x2 + x3 + x4
subject to
  c1: x1 + x2 >= 1
  c2: x2 + x3 >= 1
  c3: x3 + x4 >= 1
  c4: x1 + x4 >= 1
binary
  x1
  x2
  x3
  x4
end
`, 77)
	return slv.base()
}

func isPermutation(order []int, m int) bool {
	if len(order) != m {
		return false
	}
	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i {
			return false
		}
	}
	return true
}

func TestOrderPoliciesProducePermutations(t *testing.T) {
	core := orderFixture(t)

	policies := []OrderType{
		OrderNone, OrderReversing, OrderRandomSorting,
		OrderInfeasibilityDecr, OrderInfeasibilityIncr,
		OrderLagrangianDecr, OrderLagrangianIncr, OrderPiSignChange,
	}

	for _, policy := range policies {
		co := newComputeOrder[float64](policy, core.m)
		for sweep := 0; sweep < 3; sweep++ {
			order := co.next(core)
			assert.True(t, isPermutation(order, core.m),
				"policy %s sweep %d", policy, sweep)
		}
	}
}

func TestOrderReversingAlternates(t *testing.T) {
	core := orderFixture(t)
	co := newComputeOrder[float64](OrderReversing, core.m)

	first := append([]int(nil), co.next(core)...)
	second := append([]int(nil), co.next(core)...)
	third := append([]int(nil), co.next(core)...)

	assert.Equal(t, []int{0, 1, 2, 3}, first)
	assert.Equal(t, []int{3, 2, 1, 0}, second)
	assert.Equal(t, first, third)
}

func TestOrderLagrangianSortsByMagnitude(t *testing.T) {
	core := orderFixture(t)
	core.pi[0] = -5
	core.pi[1] = 1
	core.pi[2] = 3
	core.pi[3] = 0

	co := newComputeOrder[float64](OrderLagrangianDecr, core.m)
	assert.Equal(t, []int{0, 2, 1, 3}, co.next(core))

	co = newComputeOrder[float64](OrderLagrangianIncr, core.m)
	assert.Equal(t, []int{3, 1, 2, 0}, co.next(core))
}

func TestOrderPiSignChangePromotesFlippedRows(t *testing.T) {
	core := orderFixture(t)
	co := newComputeOrder[float64](OrderPiSignChange, core.m)

	co.observe(2, true)
	co.observe(0, false)

	order := co.next(core)
	assert.Equal(t, 2, order[0], "the flipped row moves first")
	require.True(t, isPermutation(order, core.m))

	// Flags reset after one sweep.
	order = co.next(core)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestOrderInfeasibilityRanksByViolation(t *testing.T) {
	core := orderFixture(t)

	// All variables off: every row of the cycle cover is violated by
	// exactly 1. Satisfy c1 by hand to create a gap.
	core.x.Set(0)

	co := newComputeOrder[float64](OrderInfeasibilityDecr, core.m)
	order := co.next(core)

	// c1 (x1+x2>=1) and c4 (x1+x4>=1) hold; they must come last.
	pos := map[int]int{}
	for i, k := range order {
		pos[k] = i
	}
	assert.Greater(t, pos[0], pos[1])
	assert.Greater(t, pos[3], pos[2])
}
