// Package pbsolver implements the solving port on top of the gophersat
// pseudo-boolean engine. Integer variables are binary-encoded into boolean
// literals and the objective is optimized by a descending linear search on
// its value: solve, bound the objective below the incumbent, solve again,
// until unsatisfiability proves optimality or the budget expires.
package pbsolver

import (
	"context"
	"fmt"
	"time"

	gophersat "github.com/crillab/gophersat/solver"

	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
	"github.com/abelhealth/wardroster/pkg/core/solver"
)

// Solver is a stateless gophersat-backed backend. The zero value is ready to
// use and safe for concurrent solves of independent models.
type Solver struct{}

// New returns a pseudo-boolean backend.
func New() *Solver {
	return &Solver{}
}

// Solve runs the linear-search optimization. The worker-count hint is
// accepted but ignored: the underlying search is sequential. The time budget
// is checked between satisfiability calls, so a single call may overrun it.
func (s *Solver) Solve(ctx context.Context, m *cpmodel.Model, opts solver.Options) (*solver.Result, error) {
	start := time.Now()

	var deadline time.Time
	if opts.TimeBudget > 0 {
		deadline = start.Add(opts.TimeBudget)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	enc, err := encode(m)
	if err != nil {
		return nil, err
	}
	if enc.infeasible {
		return &solver.Result{Status: solver.StatusInfeasible, WallTime: time.Since(start)}, nil
	}

	values, ok := enc.solveOnce(nil)
	if !ok {
		return &solver.Result{Status: solver.StatusInfeasible, WallTime: time.Since(start)}, nil
	}

	best := values
	objective := m.Objective()
	bestObj := best.Eval(objective)
	status := solver.StatusOptimal

	// Tighten the objective until the bound becomes unsatisfiable.
	for len(objective) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			status = solver.StatusFeasible
			break
		}

		bound, feasible := enc.objectiveBound(bestObj - 1)
		if !feasible {
			// No assignment can score below the incumbent.
			break
		}

		values, ok := enc.solveOnce(bound)
		if !ok {
			break
		}
		best = values
		bestObj = best.Eval(objective)
	}

	if err := best.Check(m); err != nil {
		return nil, fmt.Errorf("backend produced an invalid solution: %w", err)
	}

	return &solver.Result{
		Status:    status,
		Values:    best,
		Objective: bestObj,
		WallTime:  time.Since(start),
	}, nil
}

// encoding maps a cpmodel to pseudo-boolean form.
type encoding struct {
	m          *cpmodel.Model
	varLits    [][]int // per model var: literal per binary digit (empty for constants)
	numLits    int
	base       []gophersat.PBConstr
	objLits    []int // raw literal objective, parallel slices
	objWeights []int
	infeasible bool
}

func encode(m *cpmodel.Model) (*encoding, error) {
	enc := &encoding{m: m, varLits: make([][]int, m.NumVars())}

	for _, v := range m.Vars() {
		span := v.Hi - v.Lo
		var lits []int
		for bit := 1; bit <= span; bit *= 2 {
			enc.numLits++
			lits = append(lits, enc.numLits)
		}
		enc.varLits[v.ID] = lits

		// The binary encoding can exceed the span; cap it.
		if span > 0 && (1<<len(lits))-1 > span {
			weights := bitWeights(len(lits))
			enc.addUpperBound(lits, weights, span)
		}
	}

	for _, c := range m.Constraints() {
		lits, weights, offset := enc.expand(c.Expr)
		if c.Min != -cpmodel.NoBound {
			enc.addLowerBound(lits, weights, c.Min-offset)
		}
		if c.Max != cpmodel.NoBound {
			enc.addUpperBound(lits, weights, c.Max-offset)
		}
	}

	objLits, objWeights, _ := enc.expand(m.Objective())
	enc.objLits = objLits
	enc.objWeights = objWeights

	return enc, nil
}

// expand rewrites a linear expression over model variables into literal terms
// plus a constant offset contributed by variable lower bounds.
func (enc *encoding) expand(expr cpmodel.LinearExpr) (lits, weights []int, offset int) {
	for _, t := range expr {
		v := enc.m.Vars()[t.Var]
		offset += t.Coef * v.Lo
		for i, lit := range enc.varLits[t.Var] {
			lits = append(lits, lit)
			weights = append(weights, t.Coef*(1<<i))
		}
	}
	return lits, weights, offset
}

// addLowerBound appends sum(weights×lits) >= n, normalizing negative weights
// into negated literals so gophersat sees only positive coefficients.
func (enc *encoding) addLowerBound(lits, weights []int, n int) {
	nl, nw, bound := normalize(lits, weights, n)
	if bound <= 0 {
		return // trivially satisfied
	}
	if len(nl) == 0 || sum(nw) < bound {
		enc.infeasible = true
		return
	}
	enc.base = append(enc.base, gophersat.GtEq(nl, nw, bound))
}

// addUpperBound appends sum(weights×lits) <= n as the negated lower bound.
func (enc *encoding) addUpperBound(lits, weights []int, n int) {
	negWeights := make([]int, len(weights))
	for i, w := range weights {
		negWeights[i] = -w
	}
	enc.addLowerBound(lits, negWeights, -n)
}

// objectiveBound builds the incumbent-tightening constraint objective <= n.
// The second return is false when the bound is unsatisfiable outright,
// which proves the incumbent optimal.
func (enc *encoding) objectiveBound(n int) ([]gophersat.PBConstr, bool) {
	negWeights := make([]int, len(enc.objWeights))
	for i, w := range enc.objWeights {
		negWeights[i] = -w
	}
	nl, nw, bound := normalize(enc.objLits, negWeights, -n)
	if bound <= 0 {
		return nil, true
	}
	if len(nl) == 0 || sum(nw) < bound {
		return nil, false
	}
	return []gophersat.PBConstr{gophersat.GtEq(nl, nw, bound)}, true
}

// solveOnce solves the base constraints plus an optional objective bound and
// decodes the model into per-variable values.
func (enc *encoding) solveOnce(extra []gophersat.PBConstr) (cpmodel.Solution, bool) {
	constrs := make([]gophersat.PBConstr, 0, len(enc.base)+len(extra))
	constrs = append(constrs, enc.base...)
	constrs = append(constrs, extra...)

	if len(constrs) == 0 {
		return enc.decode(nil), true
	}

	problem := gophersat.ParsePBConstrs(constrs)
	s := gophersat.New(problem)
	if s.Solve() != gophersat.Sat {
		return nil, false
	}
	return enc.decode(s.Model()), true
}

// decode converts a gophersat model into model-variable values. Literals the
// problem never mentioned default to false, which maps to the variable's
// lower bound.
func (enc *encoding) decode(litValues []bool) cpmodel.Solution {
	sol := make(cpmodel.Solution, enc.m.NumVars())
	for _, v := range enc.m.Vars() {
		value := v.Lo
		for i, lit := range enc.varLits[v.ID] {
			if lit-1 < len(litValues) && litValues[lit-1] {
				value += 1 << i
			}
		}
		// The cap constraint keeps encodable overshoot out of real models;
		// clamp regardless so decoding never exceeds the declared domain.
		if value > v.Hi {
			value = v.Hi
		}
		sol[v.ID] = value
	}
	return sol
}

// normalize rewrites terms so every weight is positive: a negative-weight
// term w·x becomes (-w)·(¬x) with the bound shifted by -w.
func normalize(lits, weights []int, n int) (outLits, outWeights []int, bound int) {
	bound = n
	for i, lit := range lits {
		w := weights[i]
		if w == 0 {
			continue
		}
		if w < 0 {
			lit = -lit
			bound -= w
			w = -w
		}
		outLits = append(outLits, lit)
		outWeights = append(outWeights, w)
	}
	return outLits, outWeights, bound
}

func bitWeights(bits int) []int {
	weights := make([]int, bits)
	for i := range weights {
		weights[i] = 1 << i
	}
	return weights
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
