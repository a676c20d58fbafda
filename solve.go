package itm

// solve: the outer solve loop driving the row solver.
//
// Each iteration sweeps every row in the order chosen by the ordering
// policy, counts the remaining violated rows, and escalates kappa in
// proportion to the remaining violation mass. Finding a feasible point
// hands control to the push phase, which re-enters the row solver with an
// amplified objective to reach better feasible points.

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// stopCheckInterval is the number of row updates between stop-flag polls
// inside a sweep.
const stopCheckInterval = 1024

// bestRecord tracks the best assignment seen by one worker: first by
// remaining violations, then, once feasible, by objective value.
type bestRecord struct {
	x         *BitVec
	remaining int
	value     float64
	hasValue  bool
	loop      int
	duration  float64
}

// isBetterValue compares two objective values under the optimization
// direction.
func isBetterValue(sense ObjectiveSense, candidate, incumbent float64) bool {
	if sense == Minimize {
		return candidate < incumbent
	}
	return candidate > incumbent
}

// runner drives one worker's outer loop over a solver instance.
type runner[F Float] struct {
	slv   rowSolver[F]
	core  *solverCore[F]
	order *computeOrder[F]
	obs   observer[F]

	params *Params
	sense  ObjectiveSense

	kappa F
	delta F
	theta F

	stop     *atomic.Bool
	begin    time.Time
	deadline time.Time

	best    bestRecord
	rowTick int
	worker  int
}

func newRunner[F Float](
	slv rowSolver[F],
	params *Params,
	sense ObjectiveSense,
	obs observer[F],
	stop *atomic.Bool,
	worker int,
) *runner[F] {
	core := slv.base()
	r := &runner[F]{
		slv:    slv,
		core:   core,
		order:  newComputeOrder[F](params.Order, core.m),
		obs:    obs,
		params: params,
		sense:  sense,
		theta:  F(params.Theta),
		stop:   stop,
		worker: worker,
		best: bestRecord{
			x:         NewBitVec(core.n),
			remaining: math.MaxInt32,
		},
	}

	if params.Delta < 0 {
		r.delta = computeDelta(core.c.normalized(), r.theta)
	} else {
		r.delta = F(params.Delta)
	}

	return r
}

// initAssignment applies the worker init policy, then flips every
// position with the init-random Bernoulli probability.
func (r *runner[F]) initAssignment(policy InitPolicyType) {
	switch policy {
	case InitPessimisticSolve:
		r.preSolveInit(false)
	case InitOptimisticSolve:
		r.preSolveInit(true)
	default:
		initBastert(r.core.x, r.core.c.normalized(), r.sense)
	}

	for i := 0; i < r.core.n; i++ {
		if r.core.rng.Float64() < r.params.InitRandom {
			r.core.x.Invert(i)
		}
	}
}

// preSolveInit runs the row solver once over all rows against an empty or
// saturated starting point, then clears the multiplier state it left
// behind.
func (r *runner[F]) preSolveInit(saturated bool) {
	r.core.x.Fill(saturated)
	kappa := F(r.params.KappaMin)
	for k := 0; k < r.core.m; k++ {
		r.slv.updateRow(k, kappa, r.delta, r.theta)
	}
	r.core.reset()
}

// sweep runs one pass over all rows and returns the count of violated
// rows. stopped reports that the shared stop flag interrupted the pass.
func (r *runner[F]) sweep(kappa, objAmp F) (remaining int, stopped bool) {
	order := r.order.next(r.core)

	for _, k := range order {
		var changed bool
		if objAmp == 0 {
			changed = r.slv.updateRow(k, kappa, r.delta, r.theta)
		} else {
			changed = r.slv.pushUpdateRow(k, kappa, r.delta, r.theta, objAmp)
		}
		r.order.observe(k, changed)

		r.rowTick++
		if r.rowTick%stopCheckInterval == 0 && r.stop.Load() {
			return 0, true
		}
	}

	return r.core.countViolated(), false
}

func (r *runner[F]) duration() float64 {
	return time.Since(r.begin).Seconds()
}

func (r *runner[F]) timeExceeded() bool {
	if r.stop.Load() {
		return true
	}
	return !r.deadline.IsZero() && time.Now().After(r.deadline)
}

// storeRemaining records an infeasible assignment when it violates fewer
// rows than the incumbent.
func (r *runner[F]) storeRemaining(remaining, loop int) {
	if remaining >= r.best.remaining {
		return
	}
	r.best.x.CopyFrom(r.core.x)
	r.best.remaining = remaining
	r.best.loop = loop
	r.best.duration = r.duration()

	log.WithFields(logFields(r.worker, loop)).
		Debugf("best remaining constraints: %d", remaining)
}

// storeValue records a feasible assignment when its objective improves on
// the incumbent under the optimization direction.
func (r *runner[F]) storeValue(value float64, loop int) {
	if r.best.remaining == 0 && r.best.hasValue &&
		!isBetterValue(r.sense, value, r.best.value) {
		return
	}
	r.best.x.CopyFrom(r.core.x)
	r.best.remaining = 0
	r.best.value = value
	r.best.hasValue = true
	r.best.loop = loop
	r.best.duration = r.duration()

	log.WithFields(logFields(r.worker, loop)).
		Debugf("best solution value: %g", value)
}

// run executes the outer loop and, on feasibility, the push phase. The
// begin time and deadline must be set before the call.
func (r *runner[F]) run() ResultStatus {
	p := r.params
	r.kappa = F(p.KappaMin)

	// Record the starting point so a zero-iteration run still reports
	// its initial assignment.
	r.storeRemaining(r.core.countViolated(), 0)

	status := StatusLimitReached
	startPush := false

	for i := 0; i != p.Limit; i++ {
		if r.stop.Load() {
			status = StatusTimeLimitReached
			break
		}

		remaining, stopped := r.sweep(r.kappa, 0)
		r.obs.observe()
		if stopped {
			status = StatusTimeLimitReached
			break
		}

		if p.Debug {
			log.WithFields(logFields(r.worker, i)).
				Tracef("remaining=%d kappa=%g", remaining, float64(r.kappa))
		}

		if remaining == 0 {
			r.storeValue(r.core.c.results(r.core.x), i)
			startPush = true
			break
		}

		r.storeRemaining(remaining, i)

		if i > p.W {
			r.kappa += F(p.KappaStep *
				math.Pow(float64(remaining)/float64(r.core.m), p.Alpha))
		}
		if float64(r.kappa) > p.KappaMax {
			status = StatusKappaMaxReached
			break
		}
		if r.timeExceeded() {
			status = StatusTimeLimitReached
			break
		}
	}

	if startPush {
		r.pushPhase()
	}

	if r.best.remaining == 0 {
		status = StatusSuccess
	}
	return status
}

// pushPhase runs up to pushes-limit pushes: one amplified sweep followed
// by ordinary sweeps, keeping every feasible improvement.
func (r *runner[F]) pushPhase() {
	p := r.params

	for push := 0; push < p.PushesLimit; push++ {
		remaining, stopped := r.sweep(
			F(p.PushingKFactor)*r.kappa, F(p.PushingObjectiveAmplifier))
		r.obs.observe()
		if stopped {
			return
		}
		if remaining == 0 {
			r.storeValue(r.core.c.results(r.core.x),
				-push*p.PushingIterationLimit-1)
		}
		if r.timeExceeded() {
			return
		}

		for iter := 0; iter < p.PushingIterationLimit; iter++ {
			remaining, stopped = r.sweep(r.kappa, 0)
			r.obs.observe()
			if stopped {
				return
			}
			if remaining == 0 {
				r.storeValue(r.core.c.results(r.core.x),
					-push*p.PushingIterationLimit-iter-1)
				break
			}
			if iter > p.W {
				r.kappa += F(p.KappaStep *
					math.Pow(float64(remaining)/float64(r.core.m), p.Alpha))
			}
			if float64(r.kappa) > p.KappaMax {
				return
			}
			if r.timeExceeded() {
				return
			}
		}
	}
}

func logFields(worker, loop int) map[string]interface{} {
	return map[string]interface{}{"worker": worker, "loop": loop}
}

// newFamilySolver instantiates the specialized row solver of a problem
// family.
func newFamilySolver[F Float](
	family ProblemFamily,
	merged []MergedConstraint,
	ap *Incidence,
	c costModel[F],
	sense ObjectiveSense,
	rng *rand.Rand,
) (rowSolver[F], error) {
	switch family {
	case Equalities01, Inequalities01:
		return newSolver01[F](merged, ap, c, sense, rng), nil
	case Equalities101, Inequalities101:
		return newSolver101[F](merged, ap, c, sense, rng), nil
	case EqualitiesZ, InequalitiesZ:
		return newSolverZ[F](merged, ap, c, sense, rng), nil
	}
	return nil, &SolverError{Tag: NoSolverAvailable, Detail: family.String()}
}

// newObserver builds the observer requested by the parameters. Only
// worker 0 observes.
func newObserver[F Float](core *solverCore[F], p *Params, worker int) (observer[F], error) {
	if worker != 0 {
		return noneObserver[F]{}, nil
	}
	switch p.Observer {
	case ObserverPnm:
		return newPnmObserver(core, p.ObserverBase), nil
	case ObserverFile:
		return newFileObserver(core, p.ObserverBase)
	}
	return noneObserver[F]{}, nil
}

// Solve searches a feasible assignment of the problem and returns the
// best record found. Hard failures (invalid problem, unrealisable
// constraint) return an error with no partial result; limit terminations
// return a Result carrying the corresponding status.
func Solve(ctx context.Context, pb *Problem, params Params) (*Result, error) {
	return run(ctx, pb, params, false)
}

// Optimize searches feasible assignments over parallel workers and keeps
// improving the objective until a limit is reached.
func Optimize(ctx context.Context, pb *Problem, params Params) (*Result, error) {
	return run(ctx, pb, params, true)
}

func run(ctx context.Context, pb *Problem, params Params, optimize bool) (*Result, error) {
	if err := params.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid parameters")
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}

	working := pb
	if params.Preprocessor == PreprocessorAll {
		reduced, err := Preprocess(pb)
		if err != nil {
			return nil, err
		}
		working = reduced
	}

	merged, family, err := MergeConstraints(working)
	if err != nil {
		return nil, err
	}

	n := working.NumVariables()
	if n == 0 || len(merged) == 0 {
		return trivialResult(working, merged), nil
	}

	log.Infof("solver: %s over %d rows, %d columns", family, len(merged), n)

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if params.FloatType == Float32 {
		return runTyped[float32](ctx, working, merged, family, &params, seed, optimize)
	}
	return runTyped[float64](ctx, working, merged, family, &params, seed, optimize)
}

func runTyped[F Float](
	ctx context.Context,
	pb *Problem,
	merged []MergedConstraint,
	family ProblemFamily,
	params *Params,
	seed int64,
	optimize bool,
) (*Result, error) {
	stop := &atomic.Bool{}
	watch, cancel := context.WithCancel(ctx)
	go func() {
		<-watch.Done()
		stop.Store(true)
	}()
	defer cancel()

	if optimize {
		return optimizeTyped[F](pb, merged, family, params, seed, stop)
	}

	ap := NewIncidence(merged, pb.NumVariables())
	rng := rand.New(rand.NewSource(seed))
	cost := newCostModel[F](pb, pb.NumVariables(), rng)

	slv, err := newFamilySolver[F](family, merged, ap, cost, pb.Sense, rng)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(slv.base(), params, 0)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := obs.close(); cerr != nil {
			log.WithError(cerr).Warn("closing observer")
		}
	}()

	r := newRunner[F](slv, params, pb.Sense, obs, stop, 0)
	r.begin = time.Now()
	if params.TimeLimit > 0 {
		r.deadline = r.begin.Add(
			time.Duration(params.TimeLimit * float64(time.Second)))
	}
	r.initAssignment(params.InitPolicy)

	status := r.run()

	return buildResult(pb, merged, status, &r.best, r.core.c), nil
}

// buildResult converts a worker's best record into the public result.
func buildResult[F Float](
	pb *Problem,
	merged []MergedConstraint,
	status ResultStatus,
	best *bestRecord,
	cost costModel[F],
) *Result {
	res := &Result{
		Status:               status,
		RemainingConstraints: best.remaining,
		VariableNames:        pb.Vars.Names,
		AffectedVars:         pb.AffectedVars,
		Variables:            pb.NumVariables(),
		Constraints:          len(merged),
		Loop:                 best.loop,
		Duration:             best.duration,
	}

	if best.remaining == math.MaxInt32 {
		res.RemainingConstraints = len(merged)
		return res
	}

	value := best.value
	if !best.hasValue {
		value = cost.results(best.x)
	}
	res.Solutions = append(res.Solutions, Solution{
		Variables: best.x.Bools(),
		Value:     value,
	})
	return res
}

// trivialResult handles models whose merged constraint list is empty: the
// cost signs alone give the optimal assignment.
func trivialResult(pb *Problem, merged []MergedConstraint) *Result {
	n := pb.NumVariables()
	x := NewBitVec(n)

	costs := make([]float64, n)
	for _, e := range pb.Objective.Elements {
		costs[e.Variable] += e.Factor
	}
	initBastert(x, costs, pb.Sense)

	value := pb.Objective.Constant
	for i := 0; i < n; i++ {
		if x.Get(i) {
			value += costs[i]
		}
	}

	return &Result{
		Status:               StatusSuccess,
		RemainingConstraints: 0,
		Solutions: []Solution{{
			Variables: x.Bools(),
			Value:     value,
		}},
		VariableNames: pb.Vars.Names,
		AffectedVars:  pb.AffectedVars,
		Variables:     n,
		Constraints:   len(merged),
	}
}
