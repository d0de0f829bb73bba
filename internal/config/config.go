package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Limits holds the legal and operational constants applied as hard constraints.
// Statutory defaults follow the 45-hour week; deployments override per profile.
type Limits struct {
	// WeeklyHourCap is the statutory maximum of worked hours per 7-day window.
	// A nurse's contract may carry a lower personal cap.
	WeeklyHourCap int `yaml:"weeklyHourCap" validate:"required,min=1"`

	// ConsecutiveNightLimit is the maximum run of night shifts on consecutive days.
	ConsecutiveNightLimit int `yaml:"consecutiveNightLimit" validate:"required,min=1"`

	// MinRestHours is the minimum gap between the end of one shift and the
	// start of the next day's shift.
	MinRestHours int `yaml:"minRestHours" validate:"required,min=1"`

	// RegularWeeklyHours is the threshold beyond which hours count as overtime
	// in the objective, even when still under the legal cap.
	RegularWeeklyHours int `yaml:"regularWeeklyHours" validate:"required,min=1"`

	// DemandFraction scales each coverage requirement before it becomes a
	// constraint threshold (1.0 = exact demand). Lower values trade coverage
	// for feasibility with small pools; this is a declared tunable, not a rule.
	DemandFraction float64 `yaml:"demandFraction" validate:"required,gt=0,lte=1"`
}

// Weights are the named objective coefficients. All terms are minimized;
// rewards become negative contributions inside the composer, not negative
// weights here.
type Weights struct {
	// Preference is the per-rank penalty for assigning a nurse a shift type
	// low on their preference list.
	Preference int `yaml:"preference" validate:"min=0"`

	// LongShiftReward rewards long shifts for nurses flagged as preferring them.
	LongShiftReward int `yaml:"longShiftReward" validate:"min=0"`

	// ShortShiftPenalty penalizes short shifts for those same nurses.
	ShortShiftPenalty int `yaml:"shortShiftPenalty" validate:"min=0"`

	// Fairness penalizes each hour of spread between the highest and lowest
	// per-nurse hour totals.
	Fairness int `yaml:"fairness" validate:"min=0"`

	// Burnout scales each shift type's burnout-risk coefficient.
	Burnout int `yaml:"burnout" validate:"min=0"`

	// Overtime penalizes each hour beyond RegularWeeklyHours.
	Overtime int `yaml:"overtime" validate:"min=0"`

	// Weekend penalizes Saturday and Sunday assignments.
	Weekend int `yaml:"weekend" validate:"min=0"`

	// SoftShiftOff penalizes assignments that override a soft shift-off request.
	SoftShiftOff int `yaml:"softShiftOff" validate:"min=0"`

	// DemandSlack penalizes each unit of unmet coverage. It must dominate the
	// other weights so slack is only used when hard constraints force it.
	DemandSlack int `yaml:"demandSlack" validate:"min=0"`
}

// SolverOptions configure the solving capability.
type SolverOptions struct {
	// TimeBudget is the wall-clock limit for one solving call.
	TimeBudget time.Duration `yaml:"timeBudget" validate:"required"`

	// Workers is a parallel-search hint; backends may ignore it.
	Workers int `yaml:"workers" validate:"min=0"`
}

// Cost configures the report-only cost analysis.
type Cost struct {
	HourlyRate         float64 `yaml:"hourlyRate" validate:"min=0"`
	OvertimeMultiplier float64 `yaml:"overtimeMultiplier" validate:"min=1"`
}

// Config is the caller-supplied solve configuration. Nothing in the core
// hard-codes these values; profiles load different files per deployment.
type Config struct {
	Limits  Limits        `yaml:"limits"`
	Weights Weights       `yaml:"weights"`
	Solver  SolverOptions `yaml:"solver"`
	Cost    Cost          `yaml:"cost"`

	// WeekendWarningShare and NightWarningShare are the soft thresholds the
	// compliance validator warns on (fractions of total assignments).
	WeekendWarningShare float64 `yaml:"weekendWarningShare" validate:"gt=0,lte=1"`
	NightWarningShare   float64 `yaml:"nightWarningShare" validate:"gt=0,lte=1"`
}

const configFileName = "wardroster_config.yaml"

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the statutory-default configuration profile.
func Default() *Config {
	return &Config{
		Limits: Limits{
			WeeklyHourCap:         45,
			ConsecutiveNightLimit: 2,
			MinRestHours:          11,
			RegularWeeklyHours:    40,
			DemandFraction:        0.8,
		},
		Weights: Weights{
			Preference:        2,
			LongShiftReward:   3,
			ShortShiftPenalty: 2,
			Fairness:          5,
			Burnout:           1,
			Overtime:          3,
			Weekend:           2,
			SoftShiftOff:      50,
			DemandSlack:       200,
		},
		Solver: SolverOptions{
			TimeBudget: 30 * time.Second,
			Workers:    1,
		},
		Cost: Cost{
			HourlyRate:         25,
			OvertimeMultiplier: 1.5,
		},
		WeekendWarningShare: 0.3,
		NightWarningShare:   0.4,
	}
}

// Load loads and validates the configuration from wardroster_config.yaml,
// looking in the current directory first, then in the user's home directory.
// A missing file yields the default profile.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		cfg := Default()
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Fields absent from the file keep their default values; unknown keys are
// rejected rather than silently ignored.
func LoadFromPath(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// The slack penalty must dominate every per-assignment term, otherwise the
	// solver may prefer leaving demand uncovered over an unpopular assignment.
	w := cfg.Weights
	perAssignment := w.Preference + w.ShortShiftPenalty + w.Burnout + w.Weekend + w.SoftShiftOff
	if w.DemandSlack <= perAssignment {
		return fmt.Errorf("config validation failed: demandSlack weight %d must exceed the sum of per-assignment weights %d", w.DemandSlack, perAssignment)
	}

	return nil
}

// findConfigFile searches for wardroster_config.yaml in the current directory
// and the home directory.
func findConfigFile() (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
