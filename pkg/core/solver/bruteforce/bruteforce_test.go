package bruteforce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
	"github.com/abelhealth/wardroster/pkg/core/solver"
)

func solve(t *testing.T, m *cpmodel.Model) *solver.Result {
	t.Helper()
	res, err := New().Solve(context.Background(), m, solver.Options{TimeBudget: 5 * time.Second})
	require.NoError(t, err)
	return res
}

func TestSolve_FindsOptimum(t *testing.T) {
	m := cpmodel.New()
	x := m.NewBoolVar("x")
	y := m.NewBoolVar("y")
	m.AddAtLeast([]cpmodel.VarID{x, y}, 1)
	m.Minimize(cpmodel.LinearExpr{}.Add(x, 1).Add(y, 2))

	res := solve(t, m)
	assert.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, 1, res.Objective)
	assert.Equal(t, 1, res.Values.Value(x))
	assert.Equal(t, 0, res.Values.Value(y))
}

func TestSolve_RewardTermsDriveVariablesUp(t *testing.T) {
	m := cpmodel.New()
	x := m.NewBoolVar("x")
	m.Minimize(cpmodel.LinearExpr{}.Add(x, -3))

	res := solve(t, m)
	assert.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, -3, res.Objective)
	assert.Equal(t, 1, res.Values.Value(x))
}

func TestSolve_ReportsInfeasible(t *testing.T) {
	m := cpmodel.New()
	x := m.NewBoolVar("x")
	y := m.NewBoolVar("y")
	m.AddAtLeast([]cpmodel.VarID{x, y}, 3)

	res := solve(t, m)
	assert.Equal(t, solver.StatusInfeasible, res.Status)
	assert.Nil(t, res.Values)
}

func TestSolve_PropagatesEqualityIntVars(t *testing.T) {
	m := cpmodel.New()
	x := m.NewBoolVar("x")
	y := m.NewBoolVar("y")
	v := m.NewIntVar(0, 20, "v")
	m.AddEquality(v, cpmodel.LinearExpr{}.Add(x, 8).Add(y, 12))
	m.AddAtLeast([]cpmodel.VarID{x, y}, 2)
	m.Minimize(cpmodel.LinearExpr{}.Add(v, 1))

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, 20, res.Values.Value(v))
}

func TestSolve_SlackStaysAtMinimum(t *testing.T) {
	// Coverage-style constraint: x + slack >= 2 with x forced to 1.
	m := cpmodel.New()
	x := m.NewBoolVar("x")
	slack := m.NewIntVar(0, 2, "slack")
	m.AddLinear(cpmodel.LinearExpr{}.Add(x, 1).Add(slack, 1), 2, cpmodel.NoBound)
	m.Minimize(cpmodel.LinearExpr{}.Add(slack, 100))

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, 1, res.Values.Value(x))
	assert.Equal(t, 1, res.Values.Value(slack))
	assert.Equal(t, 100, res.Objective)
}

func TestSolve_NegativeObjectiveIntTakesUpperEndpoint(t *testing.T) {
	// min_hours-style aux: target <= each var, rewarded upward.
	m := cpmodel.New()
	a := m.NewIntVar(3, 3, "a")
	b := m.NewIntVar(7, 7, "b")
	target := m.NewIntVar(0, 10, "min")
	m.AddMinLE(target, []cpmodel.VarID{a, b})
	m.Minimize(cpmodel.LinearExpr{}.Add(target, -1))

	res := solve(t, m)
	require.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, 3, res.Values.Value(target))
}

func TestSolve_RejectsOversizedModels(t *testing.T) {
	m := cpmodel.New()
	for i := 0; i <= MaxBoolVars; i++ {
		m.NewBoolVar("x")
	}

	_, err := New().Solve(context.Background(), m, solver.Options{})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSolve_HonorsContextCancellation(t *testing.T) {
	m := cpmodel.New()
	for i := 0; i < 20; i++ {
		m.NewBoolVar("x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Solve(ctx, m, solver.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolve_EmptyModel(t *testing.T) {
	res := solve(t, cpmodel.New())
	assert.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, 0, res.Objective)
}
