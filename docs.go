// 01   Mar. 14, 2024   Initial version
// 02   Jun.  3, 2024   Optimizer driver, preprocessor, and observers added

/*
Package itm ("iterative trial-and-error method") provides a heuristic solver
and optimizer for 0/1 and bounded-integer linear programs expressed in the
CPLEX-style LP text format. Given a linear (optionally quadratic) objective
and a set of linear constraints over binary variables, it searches for a
feasible assignment and, in optimization mode, progressively improves its
objective value.

The solver is a Lagrangian-style decomposition heuristic. Constraints are
merged, normalized, and stored in a sparse bipartite incidence structure.
Each sweep visits every constraint row in an order chosen by a pluggable
ordering policy, computes reduced costs for the row's variables, selects a
cut index by sorting the reduced costs, and updates the assignment, the
per-nonzero preference matrix P, and the per-row dual multiplier pi. An
outer loop escalates the kappa parameter in proportion to the remaining
infeasibility; once a feasible point is found a "push" phase re-enters the
row solver with an amplified objective to move toward better feasible
points.

Some of the main functions include:
  - reading and writing models in the CPLEX LP format
  - merging and classifying constraints into six solver families
  - solving a model for feasibility with Solve
  - optimizing a model over parallel workers with Optimize
  - pre-affecting forced variables before solving

Model Families

The coefficient class of the merged constraints drives the choice of the
specialized row solver:

	{0,1}     all constraint coefficients equal to 1 after merging
	{-1,0,1}  coefficients limited to -1 and 1
	Z         at least one coefficient with magnitude greater than 1

Combined with the presence of non-equality rows this yields the six
families: equalities or inequalities, each over 01, 101, or Z
coefficients. The Z family embeds exhaustive, branch-and-bound, and
knapsack dynamic-programming subsolvers for rows the greedy selection
cannot settle.

Parameters

All tuning knobs are carried by the Params control structure and documented
there. The zero value is not useful; start from DefaultParams. The most
important parameters are kappa_min/kappa_step/kappa_max (escalation of the
infeasibility pressure), delta (base preference update, computed
automatically when negative), theta (preference memory), and the push-phase
controls.

Results

Solve and Optimize return a Result holding the status, the best assignment
found, the number of constraints that remain violated, and the variables
fixed by the preprocessor. Reaching a time, iteration, or kappa limit is
reported as a status, not an error; the caller inspects
Result.RemainingConstraints to decide whether the assignment is feasible.
*/
package itm
