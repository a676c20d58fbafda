package itm

import (
	"context"
	"testing"
)

func BenchmarkUpdateRowSweep(b *testing.B) {
	pb := nQueensProblem(8)

	merged, family, err := MergeConstraints(pb)
	if err != nil {
		b.Fatal(err)
	}

	ap := NewIncidence(merged, pb.NumVariables())
	rng := newTestRand(1)
	cost := newCostModel[float64](pb, pb.NumVariables(), rng)
	slv, err := newFamilySolver[float64](family, merged, ap, cost, pb.Sense, rng)
	if err != nil {
		b.Fatal(err)
	}
	core := slv.base()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for k := 0; k < core.m; k++ {
			slv.updateRow(k, 0.2, 0.01, 0.5)
		}
	}
}

func BenchmarkSolveNQueens(b *testing.B) {
	pb := nQueensProblem(6)

	p := DefaultParams()
	p.Seed = 1
	p.Limit = 200
	p.Order = OrderRandomSorting
	p.PushesLimit = 0

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Solve(context.Background(), pb, p); err != nil {
			b.Fatal(err)
		}
	}
}
