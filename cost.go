package itm

// cost: the objective evaluated by the row solver.
//
// The solver works on a normalized copy of the cost vector; the original
// coefficients are kept for reporting objective values. When the model
// carries quadratic terms, the cost of a variable depends on the current
// assignment of its neighbors; such costs are recomputed on every use and
// never cached across rows within a sweep.

import (
	"math"
	"math/rand"
	"sort"
)

// Float is the floating-point width of the solver hot path.
type Float interface {
	~float32 | ~float64
}

// costModel evaluates the normalized cost term of one variable under the
// current assignment, and the true objective of a complete assignment.
type costModel[F Float] interface {
	// cost returns the normalized cost contribution of variable j.
	cost(j int, x *BitVec) F

	// results evaluates the original objective of the assignment,
	// including the constant term.
	results(x *BitVec) float64

	// normalized exposes the normalized linear coefficients, used by the
	// automatic delta computation and the bastert initialization.
	normalized() []F
}

// linearCost is the cost model of a purely linear objective.
type linearCost[F Float] struct {
	norm     []F
	original []float64
	constant float64
}

// quadNeighbor is one quadratic term seen from one of its two variables.
type quadNeighbor[F Float] struct {
	other  int
	factor F
}

// quadraticCost adds pairwise terms to the linear model. The quadratic
// contribution of variable j is the sum of factors of its active
// neighbors.
type quadraticCost[F Float] struct {
	linearCost[F]
	neighbors [][]quadNeighbor[F]
	qorig     []QuadElement
}

// newCostModel builds the cost model of a problem over n variables,
// normalizing the linear coefficients with the worker's random engine.
func newCostModel[F Float](p *Problem, n int, rng *rand.Rand) costModel[F] {
	original := make([]float64, n)
	for _, e := range p.Objective.Elements {
		original[e.Variable] += e.Factor
	}

	// One divisor scales the linear and the quadratic parts so both stay
	// commensurable.
	div := normDivisor(original, p.Objective.QElements)
	norm := normalizeCosts[F](original, div, rng)

	lin := linearCost[F]{
		norm:     norm,
		original: original,
		constant: p.Objective.Constant,
	}

	if len(p.Objective.QElements) == 0 {
		return &lin
	}

	q := &quadraticCost[F]{
		linearCost: lin,
		neighbors:  make([][]quadNeighbor[F], n),
		qorig:      p.Objective.QElements,
	}

	for _, e := range p.Objective.QElements {
		f := F(e.Factor / div)
		q.neighbors[e.VariableI] = append(q.neighbors[e.VariableI],
			quadNeighbor[F]{other: e.VariableJ, factor: f})
		if e.VariableI != e.VariableJ {
			q.neighbors[e.VariableJ] = append(q.neighbors[e.VariableJ],
				quadNeighbor[F]{other: e.VariableI, factor: f})
		}
	}
	return q
}

func (c *linearCost[F]) cost(j int, _ *BitVec) F {
	return c.norm[j]
}

func (c *linearCost[F]) results(x *BitVec) float64 {
	value := c.constant
	for i := 0; i < len(c.original); i++ {
		if x.Get(i) {
			value += c.original[i]
		}
	}
	return value
}

func (c *linearCost[F]) normalized() []F {
	return c.norm
}

func (c *quadraticCost[F]) cost(j int, x *BitVec) F {
	v := c.norm[j]
	for _, nb := range c.neighbors[j] {
		if x.Get(nb.other) {
			v += nb.factor
		}
	}
	return v
}

func (c *quadraticCost[F]) results(x *BitVec) float64 {
	value := c.linearCost.results(x)
	for _, e := range c.qorig {
		if x.Get(e.VariableI) && x.Get(e.VariableJ) {
			value += e.Factor
		}
	}
	return value
}

// normDivisor returns the infinity norm of the objective coefficients,
// quadratic part included, guarding against an all-zero objective.
func normDivisor(original []float64, q []QuadElement) float64 {
	div := 0.0
	for _, v := range original {
		if a := math.Abs(v); a > div {
			div = a
		}
	}
	for _, e := range q {
		if a := math.Abs(e.Factor); a > div {
			div = a
		}
	}
	if div == 0 {
		return 1
	}
	return div
}

// normalizeCosts divides the cost vector by the given divisor (the
// objective's infinity norm) and applies a tiny random jitter so that
// exactly tied costs separate differently in every worker. The jitter is
// drawn from the worker engine, keeping runs reproducible under a fixed
// seed.
func normalizeCosts[F Float](original []float64, div float64, rng *rand.Rand) []F {
	if div == 0 {
		div = 1
	}

	out := make([]F, len(original))
	for i, v := range original {
		jitter := 1.0 + (rng.Float64()-0.5)*1e-7
		out[i] = F(v / div * jitter)
	}
	return out
}

// computeDelta derives the automatic preference step from the normalized
// costs: half the smallest gap between distinct cost magnitudes, scaled by
// one minus the preference memory theta. The result is always positive and finite.
func computeDelta[F Float](norm []F, theta F) F {
	mags := make([]float64, 0, len(norm))
	for _, v := range norm {
		mags = append(mags, math.Abs(float64(v)))
	}
	sort.Float64s(mags)

	gap := math.Inf(1)
	for i := 1; i < len(mags); i++ {
		d := mags[i] - mags[i-1]
		if d > 1e-12 && d < gap {
			gap = d
		}
	}
	if math.IsInf(gap, 1) {
		gap = 0.01
	}

	delta := (1 - float64(theta)) * gap / 2
	if delta <= 0 || math.IsInf(delta, 0) || math.IsNaN(delta) {
		delta = 1e-4
	}
	return F(delta)
}

// initBastert assigns every variable from the sign of its cost: under
// minimization a variable is turned on when its cost favors the objective
// (negative cost), under maximization when its cost is positive.
func initBastert[F Float](x *BitVec, norm []F, sense ObjectiveSense) {
	for i := 0; i < x.Len(); i++ {
		on := false
		if sense == Minimize {
			on = norm[i] < 0
		} else {
			on = norm[i] > 0
		}
		x.Assign(i, on)
	}
}
