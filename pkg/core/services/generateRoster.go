package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/breaks"
	"github.com/abelhealth/wardroster/pkg/core/compliance"
	"github.com/abelhealth/wardroster/pkg/core/engine"
	"github.com/abelhealth/wardroster/pkg/core/model"
	"github.com/abelhealth/wardroster/pkg/core/roster"
	"github.com/abelhealth/wardroster/pkg/core/solver"
)

// ErrInfeasible is returned when the hard constraints admit no roster at all.
var ErrInfeasible = errors.New("no roster satisfies the hard constraints")

// ErrTimeExpired is returned when the budget ran out before any feasible
// roster was found.
var ErrTimeExpired = errors.New("time budget expired before a roster was found")

// GenerateRosterResult contains the full pipeline output for one request.
type GenerateRosterResult struct {
	Roster     *roster.Roster
	Breaks     *breaks.Schedule
	Compliance *compliance.Report
	Status     solver.Status
	WallTime   time.Duration
}

// GenerateRoster runs the full pipeline: build the constraint model from the
// scenario, solve it, extract the roster, schedule breaks, and validate
// compliance. A compliant result is not guaranteed; callers inspect
// Compliance on the returned result.
func GenerateRoster(
	ctx context.Context,
	sc *model.Scenario,
	cfg *config.Config,
	backend solver.Solver,
	logger *zap.Logger,
) (*GenerateRosterResult, error) {
	logger.Debug("Starting generateRoster",
		zap.Int("nurses", len(sc.Nurses)),
		zap.Int("days", sc.Horizon.Days),
		zap.Int("shift_types", len(sc.ShiftTypes)))

	builder, err := engine.NewBuilder(sc, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare model builder: %w", err)
	}

	m, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build constraint model: %w", err)
	}
	logger.Debug("Built constraint model",
		zap.Int("variables", m.NumVars()),
		zap.Int("constraints", len(m.Constraints())),
		zap.Int("objective_terms", len(m.Objective())))

	opts := solver.Options{
		TimeBudget: cfg.Solver.TimeBudget,
		Workers:    cfg.Solver.Workers,
	}
	logger.Info("Running solver", zap.Duration("time_budget", opts.TimeBudget))
	res, err := backend.Solve(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("solver failed: %w", err)
	}
	logger.Info("Solver finished",
		zap.Stringer("status", res.Status),
		zap.Int("objective", res.Objective),
		zap.Duration("wall_time", res.WallTime))

	switch res.Status {
	case solver.StatusInfeasible:
		return nil, ErrInfeasible
	case solver.StatusUnknown:
		return nil, ErrTimeExpired
	}

	r, err := roster.Extract(builder, res)
	if err != nil {
		return nil, fmt.Errorf("failed to extract roster: %w", err)
	}
	logger.Debug("Extracted roster",
		zap.String("roster_id", r.ID),
		zap.Int("assignments", len(r.Assignments)),
		zap.Int("shortfalls", len(r.Shortfalls)))

	schedule := breaks.Assign(r, sc)
	logger.Debug("Assigned break coverage",
		zap.Int("break_slots", len(schedule.Slots)),
		zap.Float64("coverage_rate", schedule.CoverageRate()))

	report := compliance.Validate(r, schedule, sc, cfg)
	logger.Info("Compliance validated",
		zap.Bool("compliant", report.OverallCompliant),
		zap.Int("score", report.Score),
		zap.Int("violations", len(report.Violations)),
		zap.Int("warnings", len(report.Warnings)))
	for _, v := range report.Violations {
		logger.Warn("Compliance violation",
			zap.String("check", v.Check),
			zap.String("nurse", v.Nurse),
			zap.String("description", v.Message))
	}

	return &GenerateRosterResult{
		Roster:     r,
		Breaks:     schedule,
		Compliance: report,
		Status:     res.Status,
		WallTime:   res.WallTime,
	}, nil
}
