package itm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustRead parses an LP model from a string literal.
func mustRead(t *testing.T, src string) *Problem {
	t.Helper()
	pb, err := ReadProblem(strings.NewReader(src))
	require.NoError(t, err)
	return pb
}

func testParams() Params {
	p := DefaultParams()
	p.Seed = 123456789
	p.Limit = 5000
	return p
}

func TestSolveTrivialEquality(t *testing.T) {
	pb := mustRead(t, `
minimize
  obj: x1 + x2
subject to
  c1: x1 + x2 = 1
binary
  x1
  x2
end
`)

	r, err := Solve(context.Background(), pb, testParams())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, r.Status)
	assert.Equal(t, 0, r.RemainingConstraints)
	require.True(t, r.HasSolution())

	best := r.Best()
	assert.InDelta(t, 1.0, best.Value, 1e-9)
	assert.NotEqual(t, best.Variables[0], best.Variables[1],
		"exactly one of x1, x2 must be set")
	assert.True(t, IsValidSolution(pb, r))
}

func TestSolveUnrealisableAfterTightening(t *testing.T) {
	pb := mustRead(t, `
minimize
  obj: x1 + x2
subject to
  c1: x1 + x2 = 3
binary
  x1
  x2
end
`)

	r, err := Solve(context.Background(), pb, testParams())
	require.Error(t, err)
	assert.Nil(t, r, "hard failures must not return a partial result")
	assert.True(t, IsUnrealisable(err))
}

func TestSolveMaximization101(t *testing.T) {
	pb := mustRead(t, `
maximize
  obj: x1 - x2 + x3
subject to
  c1: x1 - x2 + x3 <= 1
  c2: - x1 + x2 <= 0
binary
  x1
  x2
  x3
end
`)

	p := testParams()
	r, err := Solve(context.Background(), pb, p)
	require.NoError(t, err)

	require.Equal(t, 0, r.RemainingConstraints)
	assert.True(t, IsValidSolution(pb, r))
	assert.InDelta(t, 1.0, r.Best().Value, 1e-9)
}

func TestSolveZeroLimitReturnsInitialAssignment(t *testing.T) {
	pb := mustRead(t, `
minimize
  obj: x1 + x2
subject to
  c1: x1 + x2 = 1
binary
  x1
  x2
end
`)

	p := testParams()
	p.Limit = 0
	p.InitRandom = 0

	r, err := Solve(context.Background(), pb, p)
	require.NoError(t, err)

	assert.Equal(t, StatusLimitReached, r.Status)
	require.True(t, r.HasSolution())

	// Bastert initialization with positive costs leaves every variable
	// off, so the single equality stays violated and untouched.
	assert.Equal(t, 1, r.RemainingConstraints)
	assert.Equal(t, []bool{false, false}, r.Best().Variables)
}

func TestSolveFrozenKappaTerminatesByLimit(t *testing.T) {
	pb := mustRead(t, `
minimize
  obj: x1 + x2 + x3
subject to
  c1: x1 + x2 + x3 = 2
binary
  x1
  x2
  x3
end
`)

	p := testParams()
	p.KappaMin = 0.2
	p.KappaMax = 0.2
	p.KappaStep = 0
	p.Limit = 50
	p.PushesLimit = 0

	r, err := Solve(context.Background(), pb, p)
	require.NoError(t, err)
	assert.NotEqual(t, StatusKappaMaxReached, r.Status,
		"a frozen kappa must never cross kappa_max")
}

func TestSolveThetaZeroIsMemoryless(t *testing.T) {
	pb := mustRead(t, `
minimize
  obj: x1 + 2 x2 + 3 x3
subject to
  c1: x1 + x2 + x3 >= 1
binary
  x1
  x2
  x3
end
`)

	p := testParams()
	p.Theta = 0

	r, err := Solve(context.Background(), pb, p)
	require.NoError(t, err)
	assert.Equal(t, 0, r.RemainingConstraints)
	assert.True(t, IsValidSolution(pb, r))
}

func TestSolveKeepsCoefficientsAndBoundsImmutable(t *testing.T) {
	pb := mustRead(t, `
minimize
  obj: x1 + x2 + x3
subject to
  c1: x1 - x2 + x3 = 1
  c2: x1 + x2 >= 1
binary
  x1
  x2
  x3
end
`)

	merged, family, err := MergeConstraints(pb)
	require.NoError(t, err)
	require.Equal(t, Inequalities101, family)

	ap := NewIncidence(merged, pb.NumVariables())
	rng := newTestRand(42)
	cost := newCostModel[float64](pb, pb.NumVariables(), rng)
	slv, err := newFamilySolver[float64](family, merged, ap, cost, pb.Sense, rng)
	require.NoError(t, err)

	core := slv.base()
	aBefore := append([]int(nil), core.A...)
	bBefore := append([]boundFactor(nil), core.b...)

	for sweep := 0; sweep < 20; sweep++ {
		for k := 0; k < core.m; k++ {
			slv.updateRow(k, 0.1, 0.01, 0.5)
		}
	}

	assert.Equal(t, aBefore, core.A)
	assert.Equal(t, bBefore, core.b)
}

func TestSolveNQueens8(t *testing.T) {
	pb := nQueensProblem(8)

	p := DefaultParams()
	p.Seed = 20240603
	p.Limit = 5000
	p.TimeLimit = 10
	p.Theta = 0.5
	p.Delta = 1.0
	p.KappaMin = 0.30
	p.KappaStep = 1e-2
	p.KappaMax = 100
	p.Alpha = 1.0
	p.W = 60
	p.Order = OrderRandomSorting
	p.PushesLimit = 10
	p.PushingIterationLimit = 10

	r, err := Optimize(context.Background(), pb, p)
	require.NoError(t, err)
	require.Equal(t, 0, r.RemainingConstraints, "8-queens must be solved")
	require.True(t, r.HasSolution())
	assert.True(t, IsValidSolution(pb, r))

	// Decode the placement: exactly one queen per row, no two sharing a
	// column.
	best := r.Best()
	n := 8
	colUsed := make([]bool, n)
	for row := 0; row < n; row++ {
		count := 0
		for col := 0; col < n; col++ {
			if best.Variables[row*n+col] {
				count++
				assert.False(t, colUsed[col], "two queens share column %d", col)
				colUsed[col] = true
			}
		}
		assert.Equal(t, 1, count, "row %d must hold one queen", row)
	}
}

func TestPushImprovesObjective(t *testing.T) {
	// Several feasible points with distinct objective values: any single
	// vertex covers, richer sets cost more under maximization of the
	// weighted sum, so the push phase has room to climb.
	src := `
maximize
  obj: x1 + 2 x2 + 3 x3 + 4 x4
subject to
  c1: x1 + x2 + x3 + x4 >= 1
  c2: x1 + x2 + x3 + x4 <= 3
binary
  x1
  x2
  x3
  x4
end
`

	runWith := func(pushes int) float64 {
		pb := mustRead(t, src)
		p := testParams()
		p.PushesLimit = pushes
		p.PushingObjectiveAmplifier = 10
		p.PushingIterationLimit = 20

		r, err := Solve(context.Background(), pb, p)
		require.NoError(t, err)
		require.Equal(t, 0, r.RemainingConstraints)
		require.True(t, IsValidSolution(pb, r))
		return r.Best().Value
	}

	without := runWith(0)
	with := runWith(50)

	// Under maximization the pushed run must not end below the plain
	// run, and with the amplifier at 10 it must reach the optimum of
	// selecting the three largest weights.
	assert.GreaterOrEqual(t, with, without)
	assert.InDelta(t, 9.0, with, 1e-9)
}

// nQueensProblem builds the 0/1 formulation of the n-queens puzzle: one
// queen per row, at most one per column and per diagonal.
func nQueensProblem(n int) *Problem {
	pb := &Problem{Sense: Minimize}

	name := func(r, c int) string {
		return "q" + string(rune('a'+r)) + string(rune('a'+c))
	}

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			pb.Vars.Names = append(pb.Vars.Names, name(r, c))
			pb.Vars.Values = append(pb.Vars.Values,
				VariableValue{Min: 0, Max: 1, Type: VarBinary})
			pb.Objective.Elements = append(pb.Objective.Elements,
				ObjectiveElement{Factor: 1, Variable: r*n + c})
		}
	}

	id := 0
	addRow := func(kind ppKind, elements []Element, value int) {
		c := Constraint{
			Label:    "c" + string(rune('0'+id%10)),
			ID:       id,
			Elements: elements,
			Value:    value,
		}
		id++
		switch kind {
		case ppEqual:
			pb.EqualConstraints = append(pb.EqualConstraints, c)
		case ppLess:
			pb.LessConstraints = append(pb.LessConstraints, c)
		}
	}

	// One queen per row.
	for r := 0; r < n; r++ {
		var elems []Element
		for c := 0; c < n; c++ {
			elems = append(elems, Element{Factor: 1, Variable: r*n + c})
		}
		addRow(ppEqual, elems, 1)
	}

	// At most one per column.
	for c := 0; c < n; c++ {
		var elems []Element
		for r := 0; r < n; r++ {
			elems = append(elems, Element{Factor: 1, Variable: r*n + c})
		}
		addRow(ppLess, elems, 1)
	}

	// Diagonals, both directions.
	for d := -(n - 1); d <= n-1; d++ {
		var down, up []Element
		for r := 0; r < n; r++ {
			if c := r + d; c >= 0 && c < n {
				down = append(down, Element{Factor: 1, Variable: r*n + c})
			}
			if c := d + (n - 1) - r; c >= 0 && c < n {
				up = append(up, Element{Factor: 1, Variable: r*n + c})
			}
		}
		if len(down) > 1 {
			addRow(ppLess, down, 1)
		}
		if len(up) > 1 {
			addRow(ppLess, up, 1)
		}
	}

	return pb
}
