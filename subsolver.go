package itm

// subsolver: embedded solvers for Z rows the greedy scan cannot settle.
//
// Each subsolver receives the sorted reduced costs R[0:rSize] together
// with the flipped coefficient magnitudes, picks the best subset whose
// weight lands inside [bkmin, bkmax], then reorders R so the chosen
// entries occupy the prefix. The returned index follows the assignment
// rules of the row solver: positions 0..s turn on, the rest turn off.

import (
	"math"
)

// badness converts a reduced cost into a minimization score under the
// solver's optimization direction.
func badness[F Float](sense ObjectiveSense, v F) float64 {
	if sense == Minimize {
		return float64(v)
	}
	return -float64(v)
}

// partitionChosen stably moves the chosen entries of R[0:rSize] to the
// front and returns the chosen count minus one.
func partitionChosen[F Float](core *solverCore[F], scratch []rcData[F], rSize int, chosen []bool) int {
	head := 0
	rest := scratch[:0]

	for i := 0; i < rSize; i++ {
		if chosen[i] {
			core.R[head] = core.R[i]
			head++
		} else {
			rest = append(rest, core.R[i])
		}
	}
	copy(core.R[head:rSize], rest)

	return head - 1
}

// exhaustive enumerates every subset of a small row and keeps the best
// feasible one. Infeasible rows (a parity gap inside the window) fall back
// to the subset closest to the window.
type exhaustive[F Float] struct {
	scratch []rcData[F]
	chosen  []bool
}

func newExhaustive[F Float](maxRow int) *exhaustive[F] {
	return &exhaustive[F]{
		scratch: make([]rcData[F], maxRow),
		chosen:  make([]bool, maxRow),
	}
}

func (e *exhaustive[F]) solve(core *solverCore[F], weights []int, rSize, bkmin, bkmax int) int {
	expects(rSize <= exhaustiveRowLimit, "row too large for exhaustive enumeration")

	bestMask := uint64(0)
	bestDist := math.MaxInt32
	bestScore := math.Inf(1)

	for mask := uint64(0); mask < uint64(1)<<uint(rSize); mask++ {
		weight := 0
		score := 0.0
		for i := 0; i < rSize; i++ {
			if mask&(1<<uint(i)) != 0 {
				weight += weights[i]
				score += badness(core.sense, core.R[i].value)
			}
		}

		dist := 0
		if weight < bkmin {
			dist = bkmin - weight
		} else if weight > bkmax {
			dist = weight - bkmax
		}

		if dist < bestDist || (dist == bestDist && score < bestScore) {
			bestDist = dist
			bestScore = score
			bestMask = mask
		}
	}

	for i := 0; i < rSize; i++ {
		e.chosen[i] = bestMask&(1<<uint(i)) != 0
	}
	return partitionChosen(core, e.scratch, rSize, e.chosen)
}

// branchAndBound searches subsets depth first over the sorted reduced
// costs, pruning branches whose weight already exceeds bkmax, can no
// longer reach bkmin, or cannot beat the incumbent score.
type branchAndBound[F Float] struct {
	scratch    []rcData[F]
	chosen     []bool
	bestChosen []bool
	weights    []int

	suffixWeight []int
	suffixGain   []float64
}

func newBranchAndBound[F Float](maxRow int) *branchAndBound[F] {
	return &branchAndBound[F]{
		scratch:      make([]rcData[F], maxRow),
		chosen:       make([]bool, maxRow),
		bestChosen:   make([]bool, maxRow),
		weights:      make([]int, maxRow),
		suffixWeight: make([]int, maxRow+1),
		suffixGain:   make([]float64, maxRow+1),
	}
}

func (bb *branchAndBound[F]) solve(core *solverCore[F], weights []int, rSize, bkmin, bkmax int) int {
	// suffixWeight bounds reachability; suffixGain is the most a branch
	// can still improve its score (only negative-badness items help).
	bb.suffixWeight[rSize] = 0
	bb.suffixGain[rSize] = 0
	for i := rSize - 1; i >= 0; i-- {
		bb.suffixWeight[i] = bb.suffixWeight[i+1] + weights[i]
		gain := badness(core.sense, core.R[i].value)
		if gain > 0 {
			gain = 0
		}
		bb.suffixGain[i] = bb.suffixGain[i+1] + gain
	}

	bestScore := math.Inf(1)
	found := false

	var dfs func(i, weight int, score float64)
	dfs = func(i, weight int, score float64) {
		if weight > bkmax {
			return
		}
		if weight+bb.suffixWeight[i] < bkmin {
			return
		}
		if found && score+bb.suffixGain[i] >= bestScore {
			return
		}
		if weight >= bkmin {
			if !found || score < bestScore {
				found = true
				bestScore = score
				copy(bb.bestChosen[:rSize], bb.chosen[:rSize])
			}
		}
		if i == rSize {
			return
		}

		bb.chosen[i] = true
		dfs(i+1, weight+weights[i], score+badness(core.sense, core.R[i].value))
		bb.chosen[i] = false
		dfs(i+1, weight, score)
	}

	for i := 0; i < rSize; i++ {
		bb.chosen[i] = false
		bb.bestChosen[i] = false
	}
	dfs(0, 0, 0)

	if !found {
		return -1
	}
	return partitionChosen(core, bb.scratch, rSize, bb.bestChosen[:rSize])
}

// knapsackDP is the classical bounded 0/1 dynamic program over the weight
// axis, applicable when the flipped coefficients are small and positive.
type knapsackDP[F Float] struct {
	scratch []rcData[F]
	chosen  []bool

	score    []float64
	mask     []uint64
	feasible []bool
}

func newKnapsackDP[F Float](maxRow, maxCapacity int) *knapsackDP[F] {
	return &knapsackDP[F]{
		scratch:  make([]rcData[F], maxRow),
		chosen:   make([]bool, maxRow),
		score:    make([]float64, maxCapacity+1),
		mask:     make([]uint64, maxCapacity+1),
		feasible: make([]bool, maxCapacity+1),
	}
}

func (dp *knapsackDP[F]) solve(core *solverCore[F], weights []int, rSize, bkmin, bkmax int) int {
	expects(rSize <= 64, "row too large for the knapsack mask")
	expects(bkmax < len(dp.score), "capacity above the knapsack table")

	if bkmin < 0 {
		bkmin = 0
	}

	for w := 0; w <= bkmax; w++ {
		dp.feasible[w] = false
	}
	dp.feasible[0] = true
	dp.score[0] = 0
	dp.mask[0] = 0

	for i := 0; i < rSize; i++ {
		wi := weights[i]
		si := badness(core.sense, core.R[i].value)
		for w := bkmax; w >= wi; w-- {
			if !dp.feasible[w-wi] {
				continue
			}
			cand := dp.score[w-wi] + si
			if !dp.feasible[w] || cand < dp.score[w] {
				dp.feasible[w] = true
				dp.score[w] = cand
				dp.mask[w] = dp.mask[w-wi] | 1<<uint(i)
			}
		}
	}

	bestW := -1
	for w := bkmin; w <= bkmax; w++ {
		if dp.feasible[w] && (bestW < 0 || dp.score[w] < dp.score[bestW]) {
			bestW = w
		}
	}
	if bestW < 0 {
		return -1
	}

	for i := 0; i < rSize; i++ {
		dp.chosen[i] = dp.mask[bestW]&(1<<uint(i)) != 0
	}
	return partitionChosen(core, dp.scratch, rSize, dp.chosen)
}
