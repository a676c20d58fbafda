package itm

// order: per-sweep constraint ordering policies.
//
// The policy owns a permutation buffer reused across sweeps; apart from
// the alternating flag of the reversing policy and the pi-sign-change
// flags observed during the previous sweep it is stateless.

import (
	"sort"
)

type computeOrder[F Float] struct {
	policy OrderType

	order   []int
	forward bool
	changed []bool
}

func newComputeOrder[F Float](policy OrderType, m int) *computeOrder[F] {
	co := &computeOrder[F]{
		policy:  policy,
		order:   make([]int, m),
		forward: true,
		changed: make([]bool, m),
	}
	for i := range co.order {
		co.order[i] = i
	}
	return co
}

// next returns the row visit order of the coming sweep.
func (co *computeOrder[F]) next(s *solverCore[F]) []int {
	switch co.policy {
	case OrderNone:
		co.identity()

	case OrderReversing:
		co.identity()
		if !co.forward {
			reverseInts(co.order)
		}
		co.forward = !co.forward

	case OrderRandomSorting:
		co.identity()
		s.rng.Shuffle(len(co.order), func(i, j int) {
			co.order[i], co.order[j] = co.order[j], co.order[i]
		})

	case OrderInfeasibilityDecr:
		co.identity()
		sort.SliceStable(co.order, func(i, j int) bool {
			return s.violationDegree(co.order[i]) > s.violationDegree(co.order[j])
		})

	case OrderInfeasibilityIncr:
		co.identity()
		sort.SliceStable(co.order, func(i, j int) bool {
			return s.violationDegree(co.order[i]) < s.violationDegree(co.order[j])
		})

	case OrderLagrangianDecr:
		co.identity()
		sort.SliceStable(co.order, func(i, j int) bool {
			return absF(s.pi[co.order[i]]) > absF(s.pi[co.order[j]])
		})

	case OrderLagrangianIncr:
		co.identity()
		sort.SliceStable(co.order, func(i, j int) bool {
			return absF(s.pi[co.order[i]]) < absF(s.pi[co.order[j]])
		})

	case OrderPiSignChange:
		co.identity()
		sort.SliceStable(co.order, func(i, j int) bool {
			return co.changed[co.order[i]] && !co.changed[co.order[j]]
		})
		for i := range co.changed {
			co.changed[i] = false
		}
	}

	return co.order
}

// observe records the pi-sign-change outcome of one row update for the
// next sweep's pi-sign-change ordering.
func (co *computeOrder[F]) observe(k int, piChanged bool) {
	if piChanged {
		co.changed[k] = true
	}
}

func (co *computeOrder[F]) identity() {
	for i := range co.order {
		co.order[i] = i
	}
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func absF[F Float](v F) F {
	if v < 0 {
		return -v
	}
	return v
}
