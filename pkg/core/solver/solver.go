// Package solver defines the solving-capability port: given an assembled
// model and a time budget, a backend returns a status and a value for every
// variable. The core treats backends as black boxes and never inspects their
// internals.
package solver

import (
	"context"
	"time"

	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
)

// Status is the outcome of one solving call.
type Status int

const (
	// StatusUnknown means the time budget expired before any decision.
	StatusUnknown Status = iota

	// StatusOptimal means the returned solution is proven optimal.
	StatusOptimal

	// StatusFeasible means a solution was found but optimality was not proven
	// within the budget. Callers extract it exactly like an optimal one but
	// should surface that the roster may be improvable.
	StatusFeasible

	// StatusInfeasible means no assignment satisfies the hard constraints.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// Solved reports whether the status carries a usable solution.
func (s Status) Solved() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Options configure one solving call.
type Options struct {
	// TimeBudget is the wall-clock limit. Zero means no limit.
	TimeBudget time.Duration

	// Workers is a parallel-search hint. Backends may ignore it.
	Workers int
}

// Result is the outcome of a solving call. Values is nil unless the status is
// OPTIMAL or FEASIBLE.
type Result struct {
	Status    Status
	Values    cpmodel.Solution
	Objective int
	WallTime  time.Duration
}

// Solver is the abstract solving capability. Implementations must be safe for
// concurrent use across independent models; cancellation is by deadline only.
type Solver interface {
	Solve(ctx context.Context, m *cpmodel.Model, opts Options) (*Result, error)
}
