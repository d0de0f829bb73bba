// Package cpmodel holds the decision-variable model handed to a solving
// backend: boolean and bounded-integer variables, linear constraints over
// them, and a single linear objective to minimize.
package cpmodel

import "fmt"

// VarID indexes a variable within one Model. IDs are dense, starting at 0.
type VarID int

// Var is one decision variable. Boolean variables have bounds [0, 1].
type Var struct {
	ID   VarID
	Name string
	Lo   int
	Hi   int
}

// Bool reports whether the variable's domain is {0, 1}.
func (v Var) Bool() bool {
	return v.Lo == 0 && v.Hi == 1
}

// Term is one coefficient × variable product of a linear expression.
type Term struct {
	Var  VarID
	Coef int
}

// LinearExpr is a sum of terms. The zero value is the empty expression.
type LinearExpr []Term

// Add appends a term and returns the extended expression.
func (e LinearExpr) Add(v VarID, coef int) LinearExpr {
	return append(e, Term{Var: v, Coef: coef})
}

// Constraint bounds a linear expression: Min <= sum(terms) <= Max.
// Use NoBound on either side for a one-sided constraint.
type Constraint struct {
	Expr LinearExpr
	Min  int
	Max  int
}

// NoBound marks an absent Max bound; -NoBound marks an absent Min bound.
const NoBound = int(^uint(0) >> 1)

// Model is the assembled variable space, constraint set, and objective.
// It is built single-threaded per request and never shared across requests.
type Model struct {
	vars        []Var
	constraints []Constraint
	objective   LinearExpr
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// NewBoolVar allocates a boolean decision variable.
func (m *Model) NewBoolVar(name string) VarID {
	return m.NewIntVar(0, 1, name)
}

// NewIntVar allocates a bounded integer variable with inclusive bounds [lo, hi].
func (m *Model) NewIntVar(lo, hi int, name string) VarID {
	if hi < lo {
		panic(fmt.Sprintf("cpmodel: invalid bounds [%d, %d] for %q", lo, hi, name))
	}
	id := VarID(len(m.vars))
	m.vars = append(m.vars, Var{ID: id, Name: name, Lo: lo, Hi: hi})
	return id
}

// AddLinear constrains min <= expr <= max. Pass -NoBound / NoBound to leave a
// side open. The expression is copied; callers may reuse their slice.
func (m *Model) AddLinear(expr LinearExpr, min, max int) {
	cp := make(LinearExpr, len(expr))
	copy(cp, expr)
	m.constraints = append(m.constraints, Constraint{Expr: cp, Min: min, Max: max})
}

// AddAtMost constrains the sum of the given variables to be <= n.
func (m *Model) AddAtMost(vars []VarID, n int) {
	m.AddLinear(unitExpr(vars), -NoBound, n)
}

// AddAtLeast constrains the sum of the given variables to be >= n.
func (m *Model) AddAtLeast(vars []VarID, n int) {
	m.AddLinear(unitExpr(vars), n, NoBound)
}

// AddEquality constrains target == expr, i.e. expr - target == 0.
func (m *Model) AddEquality(target VarID, expr LinearExpr) {
	full := make(LinearExpr, 0, len(expr)+1)
	full = append(full, expr...)
	full = append(full, Term{Var: target, Coef: -1})
	m.constraints = append(m.constraints, Constraint{Expr: full, Min: 0, Max: 0})
}

// AddMaxGE constrains target >= v for every v, so that a target minimized by
// the objective settles on max(vars). The target must carry a non-negative
// objective coefficient for the bound to be tight.
func (m *Model) AddMaxGE(target VarID, vars []VarID) {
	for _, v := range vars {
		m.AddLinear(LinearExpr{{Var: target, Coef: 1}, {Var: v, Coef: -1}}, 0, NoBound)
	}
}

// AddMinLE constrains target <= v for every v, the mirror of AddMaxGE for a
// target maximized (negative objective coefficient) toward min(vars).
func (m *Model) AddMinLE(target VarID, vars []VarID) {
	for _, v := range vars {
		m.AddLinear(LinearExpr{{Var: v, Coef: 1}, {Var: target, Coef: -1}}, 0, NoBound)
	}
}

// FixZero forces a variable to 0.
func (m *Model) FixZero(v VarID) {
	m.AddLinear(LinearExpr{{Var: v, Coef: 1}}, 0, 0)
}

// Minimize sets the objective expression. Later calls replace earlier ones.
func (m *Model) Minimize(expr LinearExpr) {
	cp := make(LinearExpr, len(expr))
	copy(cp, expr)
	m.objective = cp
}

// Vars returns the allocated variables in ID order.
func (m *Model) Vars() []Var {
	return m.vars
}

// NumVars returns the number of allocated variables.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// Constraints returns the constraint set.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// Objective returns the objective expression, or nil when none was set.
func (m *Model) Objective() LinearExpr {
	return m.objective
}

// Solution assigns a value to every variable, indexed by VarID.
type Solution []int

// Value returns the solved value of a variable.
func (s Solution) Value(v VarID) int {
	return s[v]
}

// BoolValue returns true when the variable solved to 1.
func (s Solution) BoolValue(v VarID) bool {
	return s[v] == 1
}

// Eval computes the value of an expression under the solution.
func (s Solution) Eval(expr LinearExpr) int {
	total := 0
	for _, t := range expr {
		total += t.Coef * s[t.Var]
	}
	return total
}

// Check verifies that the solution respects every variable bound and
// constraint of the model. Used by backends and tests as a final guard.
func (s Solution) Check(m *Model) error {
	if len(s) != m.NumVars() {
		return fmt.Errorf("solution has %d values, model has %d variables", len(s), m.NumVars())
	}
	for _, v := range m.vars {
		val := s[v.ID]
		if val < v.Lo || val > v.Hi {
			return fmt.Errorf("variable %s = %d outside bounds [%d, %d]", v.Name, val, v.Lo, v.Hi)
		}
	}
	for i, c := range m.constraints {
		val := s.Eval(c.Expr)
		if c.Min != -NoBound && val < c.Min {
			return fmt.Errorf("constraint %d: value %d < min %d", i, val, c.Min)
		}
		if c.Max != NoBound && val > c.Max {
			return fmt.Errorf("constraint %d: value %d > max %d", i, val, c.Max)
		}
	}
	return nil
}

func unitExpr(vars []VarID) LinearExpr {
	expr := make(LinearExpr, len(vars))
	for i, v := range vars {
		expr[i] = Term{Var: v, Coef: 1}
	}
	return expr
}
