package itm

// optimize: restart/crossover driver over parallel workers.
//
// Each worker owns a full solver instance (assignment, preferences,
// duals, random engine) and repeatedly runs the solve loop. The merged
// rows and the incidence are shared read-only; the coefficient array is
// not shared, each worker's solver allocates its own copy. Workers meet only at the incumbent pool, a mutex-protected list of the
// best feasible assignments used to seed restarts.

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// incumbentPoolSize bounds the shared pool of feasible assignments.
const incumbentPoolSize = 10

type incumbent struct {
	x     *BitVec
	value float64
}

// incumbentPool keeps the best-k feasible assignments, best first.
// Critical sections are O(n) copies.
type incumbentPool struct {
	mu      sync.Mutex
	sense   ObjectiveSense
	entries []incumbent
	cycle   int
}

func newIncumbentPool(sense ObjectiveSense) *incumbentPool {
	return &incumbentPool{sense: sense}
}

// submit offers a feasible assignment; the pool copies it when it ranks
// among the best k and is not already present.
func (p *incumbentPool) submit(x *BitVec, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := 0
	for pos < len(p.entries) {
		if isBetterValue(p.sense, value, p.entries[pos].value) {
			break
		}
		if p.entries[pos].value == value && p.entries[pos].x.Equal(x) {
			return
		}
		pos++
	}
	if pos == len(p.entries) && len(p.entries) >= incumbentPoolSize {
		return
	}

	p.entries = append(p.entries, incumbent{})
	copy(p.entries[pos+1:], p.entries[pos:])
	p.entries[pos] = incumbent{x: x.Clone(), value: value}

	if len(p.entries) > incumbentPoolSize {
		p.entries = p.entries[:incumbentPoolSize]
	}
}

// pick copies a pool member into dst round-robin. It reports false when
// the pool is still empty.
func (p *incumbentPool) pick(dst *BitVec) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return false
	}
	dst.CopyFrom(p.entries[p.cycle%len(p.entries)].x)
	p.cycle++
	return true
}

// crossover fills dst with a uniform crossover of two pool members. It
// reports false when the pool holds fewer than two entries.
func (p *incumbentPool) crossover(rng *rand.Rand, dst *BitVec) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) < 2 {
		return false
	}
	a := p.entries[rng.Intn(len(p.entries))]
	b := p.entries[rng.Intn(len(p.entries))]

	for i := 0; i < dst.Len(); i++ {
		if rng.Intn(2) == 0 {
			dst.Assign(i, a.x.Get(i))
		} else {
			dst.Assign(i, b.x.Get(i))
		}
	}
	return true
}

// workerOutcome is the final state of one worker.
type workerOutcome struct {
	best   bestRecord
	status ResultStatus
	value  float64
}

func optimizeTyped[F Float](
	pb *Problem,
	merged []MergedConstraint,
	family ProblemFamily,
	params *Params,
	seed int64,
	stop *atomic.Bool,
) (*Result, error) {
	if params.Mode != ModeDefault {
		log.Warnf("mode %s has no dedicated engine; using the default optimizer",
			params.Mode)
	}

	workers := params.Thread
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ap := NewIncidence(merged, pb.NumVariables())
	pool := newIncumbentPool(pb.Sense)
	outcomes := make([]workerOutcome, workers)

	begin := time.Now()
	var deadline time.Time
	if params.TimeLimit > 0 {
		deadline = begin.Add(time.Duration(params.TimeLimit * float64(time.Second)))
	}

	log.Infof("optimizer: %d workers, seed %d", workers, seed)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			return optimizeWorker[F](pb, merged, family, ap, params,
				seed+int64(w), w, begin, deadline, stop, pool, &outcomes[w])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Keep the best outcome over all workers: fewest remaining
	// violations, then best objective under the direction.
	bestW := 0
	for w := 1; w < workers; w++ {
		a, b := &outcomes[w], &outcomes[bestW]
		if a.best.remaining < b.best.remaining ||
			(a.best.remaining == 0 && b.best.remaining == 0 &&
				isBetterValue(pb.Sense, a.best.value, b.best.value)) {
			bestW = w
		}
	}

	out := &outcomes[bestW]
	rng := rand.New(rand.NewSource(seed))
	cost := newCostModel[F](pb, pb.NumVariables(), rng)
	return buildResult(pb, merged, out.status, &out.best, cost), nil
}

// optimizeWorker runs restarts of the solve loop until the deadline or
// the shared stop flag ends the search. Without a time limit a single
// pass runs.
func optimizeWorker[F Float](
	pb *Problem,
	merged []MergedConstraint,
	family ProblemFamily,
	ap *Incidence,
	params *Params,
	seed int64,
	worker int,
	begin time.Time,
	deadline time.Time,
	stop *atomic.Bool,
	pool *incumbentPool,
	out *workerOutcome,
) error {
	rng := rand.New(rand.NewSource(seed))
	cost := newCostModel[F](pb, pb.NumVariables(), rng)

	slv, err := newFamilySolver[F](family, merged, ap, cost, pb.Sense, rng)
	if err != nil {
		return err
	}

	obs, err := newObserver(slv.base(), params, worker)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := obs.close(); cerr != nil {
			log.WithError(cerr).Warn("closing observer")
		}
	}()

	r := newRunner[F](slv, params, pb.Sense, obs, stop, worker)
	r.begin = begin
	r.deadline = deadline

	out.status = StatusUninitialized

	for round := 0; ; round++ {
		r.core.reset()
		initWorkerAssignment(r, pool, round)

		status := r.run()

		if out.status == StatusUninitialized || status == StatusSuccess {
			out.status = status
		}
		if r.best.remaining == 0 {
			pool.submit(r.best.x, r.best.value)
		}

		if stop.Load() || status == StatusTimeLimitReached {
			break
		}
		if deadline.IsZero() {
			// No wall-clock budget: one pass per worker.
			break
		}
		if time.Now().After(deadline) {
			break
		}
	}

	out.best = r.best
	out.value = r.best.value
	return nil
}

// initWorkerAssignment seeds the worker assignment for one restart. The
// pool-based policies fall back to the deterministic bastert start while
// the pool is empty.
func initWorkerAssignment[F Float](r *runner[F], pool *incumbentPool, round int) {
	seeded := false

	switch r.params.InitPolicy {
	case InitCycle:
		if round > 0 {
			seeded = pool.pick(r.core.x)
		}
	case InitCrossoverCycle:
		if round > 0 {
			seeded = pool.crossover(r.core.rng, r.core.x)
		}
	case InitPessimisticSolve, InitOptimisticSolve:
		r.initAssignment(r.params.InitPolicy)
		return
	}

	if seeded {
		for i := 0; i < r.core.n; i++ {
			if r.core.rng.Float64() < r.params.InitRandom {
				r.core.x.Invert(i)
			}
		}
		return
	}

	r.initAssignment(InitBastert)
}
