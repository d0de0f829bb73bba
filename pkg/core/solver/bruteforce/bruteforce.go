// Package bruteforce implements the solving port by exhaustive enumeration of
// the boolean variables. It exists so constraint-encoding code can be tested
// against an obviously correct backend on small fixtures; it is unusable
// beyond a couple dozen boolean variables.
//
// Integer variables are not enumerated. For each boolean assignment they are
// propagated: every constraint containing exactly one integer variable is
// turned into an interval for it, the intervals are intersected, and the
// variable takes the interval endpoint its objective coefficient favors. This
// matches how the engine uses integer variables (hour tracking, slack,
// overtime, max/min bounds), where each one occurs only in constraints whose
// other variables are booleans or already-determined integers.
package bruteforce

import (
	"context"
	"errors"
	"time"

	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
	"github.com/abelhealth/wardroster/pkg/core/solver"
)

// MaxBoolVars bounds the search space; models beyond it are rejected.
const MaxBoolVars = 24

// ErrTooLarge is returned for models with more boolean variables than the
// exhaustive search can enumerate.
var ErrTooLarge = errors.New("bruteforce: model too large for exhaustive search")

// Solver is the exhaustive backend. The zero value is ready to use.
type Solver struct{}

// New returns a brute-force backend.
func New() *Solver {
	return &Solver{}
}

// Solve enumerates every boolean assignment, propagates integer variables,
// and keeps the feasible solution with the lowest objective value. The result
// is always OPTIMAL or INFEASIBLE unless the budget expires first.
func (s *Solver) Solve(ctx context.Context, m *cpmodel.Model, opts solver.Options) (*solver.Result, error) {
	start := time.Now()

	var deadline time.Time
	if opts.TimeBudget > 0 {
		deadline = start.Add(opts.TimeBudget)
	}

	var bools, ints []cpmodel.VarID
	for _, v := range m.Vars() {
		if v.Bool() {
			bools = append(bools, v.ID)
		} else {
			ints = append(ints, v.ID)
		}
	}
	if len(bools) > MaxBoolVars {
		return nil, ErrTooLarge
	}

	objective := m.Objective()
	var best cpmodel.Solution
	bestObj := 0

	values := make(cpmodel.Solution, m.NumVars())
	limit := uint64(1) << len(bools)
	for mask := uint64(0); mask < limit; mask++ {
		if mask%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				if best == nil {
					return &solver.Result{Status: solver.StatusUnknown, WallTime: time.Since(start)}, nil
				}
				return &solver.Result{
					Status:    solver.StatusFeasible,
					Values:    best,
					Objective: bestObj,
					WallTime:  time.Since(start),
				}, nil
			}
		}

		for i, id := range bools {
			values[id] = int(mask >> i & 1)
		}
		if !propagate(m, ints, objective, values) {
			continue
		}
		if values.Check(m) != nil {
			continue
		}

		obj := values.Eval(objective)
		if best == nil || obj < bestObj {
			best = append(cpmodel.Solution(nil), values...)
			bestObj = obj
		}
	}

	if best == nil {
		return &solver.Result{Status: solver.StatusInfeasible, WallTime: time.Since(start)}, nil
	}
	return &solver.Result{
		Status:    solver.StatusOptimal,
		Values:    best,
		Objective: bestObj,
		WallTime:  time.Since(start),
	}, nil
}

// propagate fixes integer variables given the boolean assignment. Variables
// are resolved in ID order, which matches the engine's construction order:
// later integer variables (fairness max/min) may depend on earlier ones
// (hour totals) but never the reverse.
func propagate(m *cpmodel.Model, ints []cpmodel.VarID, objective cpmodel.LinearExpr, values cpmodel.Solution) bool {
	resolved := make(map[cpmodel.VarID]bool, len(ints))

	objCoef := make(map[cpmodel.VarID]int)
	for _, t := range objective {
		objCoef[t.Var] += t.Coef
	}

	for _, id := range ints {
		v := m.Vars()[id]
		lo, hi := v.Lo, v.Hi

		for _, c := range m.Constraints() {
			coef, rest, ok := splitConstraint(m, c, id, resolved, values)
			if !ok {
				continue
			}
			// coef*x + rest within [c.Min, c.Max]
			if c.Min != -cpmodel.NoBound {
				b := c.Min - rest
				if coef > 0 {
					lo = max(lo, ceilDiv(b, coef))
				} else {
					hi = min(hi, floorDiv(b, coef))
				}
			}
			if c.Max != cpmodel.NoBound {
				b := c.Max - rest
				if coef > 0 {
					hi = min(hi, floorDiv(b, coef))
				} else {
					lo = max(lo, ceilDiv(b, coef))
				}
			}
			if lo > hi {
				return false
			}
		}

		if objCoef[id] < 0 {
			values[id] = hi
		} else {
			values[id] = lo
		}
		resolved[id] = true
	}
	return true
}

// splitConstraint isolates an undetermined integer variable in a constraint.
// It returns the variable's coefficient and the evaluated remainder, or
// ok=false when the constraint does not mention the variable or still
// contains another undetermined one.
func splitConstraint(m *cpmodel.Model, c cpmodel.Constraint, target cpmodel.VarID, resolved map[cpmodel.VarID]bool, values cpmodel.Solution) (coef, rest int, ok bool) {
	found := false
	for _, t := range c.Expr {
		if t.Var == target {
			coef += t.Coef
			found = true
			continue
		}
		v := m.Vars()[t.Var]
		if !v.Bool() && !resolved[t.Var] {
			return 0, 0, false
		}
		rest += t.Coef * values[t.Var]
	}
	if !found || coef == 0 {
		return 0, 0, false
	}
	return coef, rest, true
}

// ceilDiv returns ceil(a/b) for b != 0, correct for negative operands.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

// floorDiv returns floor(a/b) for b != 0, correct for negative operands.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
