package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/engine"
	"github.com/abelhealth/wardroster/pkg/core/model"
)

// ValidateScenarioResult summarizes a scenario dry-check without solving.
type ValidateScenarioResult struct {
	Valid    bool
	Problems []string

	Nurses     int
	Days       int
	ShiftTypes int
	Wards      int
	Variables  int
}

// ValidateScenario checks a scenario for modeling problems before any solver
// time is spent: broken references, empty sections, and a config that cannot
// produce a sound objective. The model is built but not solved.
func ValidateScenario(sc *model.Scenario, cfg *config.Config, logger *zap.Logger) (*ValidateScenarioResult, error) {
	logger.Debug("Starting validateScenario")

	result := &ValidateScenarioResult{
		Nurses:     len(sc.Nurses),
		Days:       sc.Horizon.Days,
		ShiftTypes: len(sc.ShiftTypes),
		Wards:      len(sc.Wards),
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}

	builder, err := engine.NewBuilder(sc, cfg)
	if err != nil {
		var buildErr *engine.ModelBuildError
		if errors.As(err, &buildErr) {
			result.Problems = append(result.Problems, buildErr.Reason)
			logger.Warn("Scenario failed validation", zap.String("problem", buildErr.Reason))
			return result, nil
		}
		return nil, err
	}

	m, err := builder.Build()
	if err != nil {
		var buildErr *engine.ModelBuildError
		if errors.As(err, &buildErr) {
			result.Problems = append(result.Problems, buildErr.Reason)
			logger.Warn("Scenario failed validation", zap.String("problem", buildErr.Reason))
			return result, nil
		}
		return nil, err
	}

	result.Valid = true
	result.Variables = m.NumVars()
	logger.Info("Scenario validated",
		zap.Int("nurses", result.Nurses),
		zap.Int("days", result.Days),
		zap.Int("variables", result.Variables))

	return result, nil
}
