// Package engine translates a scenario into the decision-variable model the
// solving capability consumes: one boolean variable per candidate assignment,
// the hard legal/operational constraints, and the weighted scalar objective.
package engine

import (
	"fmt"
	"time"

	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
	"github.com/abelhealth/wardroster/pkg/core/model"
)

// ModelBuildError rejects a malformed or empty scenario before any solving
// call is made.
type ModelBuildError struct {
	Reason string
}

func (e *ModelBuildError) Error() string {
	return "model build rejected: " + e.Reason
}

// VarKey identifies one candidate assignment. Ward is empty for scenarios
// without wards.
type VarKey struct {
	Nurse string
	Day   int
	Shift string
	Ward  string
}

// SlackRef records a coverage slack variable and the threshold it relaxes,
// for post-solve shortfall diagnostics.
type SlackRef struct {
	Day       int
	Shift     string
	Ward      string
	Skill     model.Skill
	Nominal   int
	Threshold int
	Var       cpmodel.VarID
}

// Builder assembles the model for one scenario. Each roster-generation request
// builds a fresh Builder; no state is shared across requests.
type Builder struct {
	scenario *model.Scenario
	cfg      *config.Config

	m    *cpmodel.Model
	keys []VarKey
	vars map[VarKey]cpmodel.VarID

	hourVars map[string]cpmodel.VarID
	slacks   []SlackRef
	softOff  []model.ShiftOffRequest
	weekends map[int]bool
	built    bool
}

// NewBuilder validates the scenario shape and prepares an empty model.
func NewBuilder(sc *model.Scenario, cfg *config.Config) (*Builder, error) {
	if sc == nil {
		return nil, &ModelBuildError{Reason: "nil scenario"}
	}
	if len(sc.ShiftTypes) == 0 {
		return nil, &ModelBuildError{Reason: "scenario has no shift types"}
	}
	if len(sc.Nurses) == 0 {
		return nil, &ModelBuildError{Reason: "scenario has no nurses"}
	}
	if sc.Horizon.Days <= 0 {
		return nil, &ModelBuildError{Reason: fmt.Sprintf("scenario horizon has %d days", sc.Horizon.Days)}
	}
	if err := checkReferences(sc); err != nil {
		return nil, err
	}

	return &Builder{
		scenario: sc,
		cfg:      cfg,
		m:        cpmodel.New(),
		vars:     make(map[VarKey]cpmodel.VarID),
		hourVars: make(map[string]cpmodel.VarID),
		weekends: weekendDays(sc.Horizon),
	}, nil
}

// Build enumerates the variable space, encodes the hard constraints, and
// composes the objective. It may be called once per Builder.
func (b *Builder) Build() (*cpmodel.Model, error) {
	if b.built {
		return nil, &ModelBuildError{Reason: "builder already used; build a fresh one per request"}
	}
	b.built = true

	b.buildVariables()
	b.addHardConstraints()
	b.composeObjective()

	return b.m, nil
}

// Var returns the variable for a (nurse, day, shift, ward) combination.
func (b *Builder) Var(nurse string, day int, shift, ward string) (cpmodel.VarID, bool) {
	id, ok := b.vars[VarKey{Nurse: nurse, Day: day, Shift: shift, Ward: ward}]
	return id, ok
}

// Keys returns the variable keys in enumeration order. The i-th key
// corresponds to the i-th assignment variable allocated in the model.
func (b *Builder) Keys() []VarKey {
	return b.keys
}

// HourVar returns the auxiliary variable tracking a nurse's realized hours
// over the whole horizon.
func (b *Builder) HourVar(nurse string) (cpmodel.VarID, bool) {
	id, ok := b.hourVars[nurse]
	return id, ok
}

// DemandSlacks returns the coverage slack variables added during encoding.
func (b *Builder) DemandSlacks() []SlackRef {
	return b.slacks
}

// Scenario returns the scenario the builder was created for.
func (b *Builder) Scenario() *model.Scenario {
	return b.scenario
}

// checkReferences rejects demand entries and shift-off requests that name
// unknown shift types, wards, or nurses rather than defaulting them silently.
func checkReferences(sc *model.Scenario) error {
	for _, d := range sc.Demand {
		if _, ok := sc.ShiftType(d.ShiftType); !ok {
			return &ModelBuildError{Reason: fmt.Sprintf("demand references unknown shift type %q", d.ShiftType)}
		}
		if d.Ward != "" {
			if _, ok := sc.Ward(d.Ward); !ok {
				return &ModelBuildError{Reason: fmt.Sprintf("demand references unknown ward %q", d.Ward)}
			}
		}
		if d.Day < 0 || d.Day >= sc.Horizon.Days {
			return &ModelBuildError{Reason: fmt.Sprintf("demand day %d outside horizon of %d days", d.Day, sc.Horizon.Days)}
		}
	}
	for _, r := range sc.ShiftOff {
		if _, ok := sc.Nurse(r.Nurse); !ok {
			return &ModelBuildError{Reason: fmt.Sprintf("shift-off request references unknown nurse %q", r.Nurse)}
		}
		if r.ShiftType != model.AnyShift {
			if _, ok := sc.ShiftType(r.ShiftType); !ok {
				return &ModelBuildError{Reason: fmt.Sprintf("shift-off request references unknown shift type %q", r.ShiftType)}
			}
		}
		if r.Day < 0 || r.Day >= sc.Horizon.Days {
			return &ModelBuildError{Reason: fmt.Sprintf("shift-off day %d outside horizon of %d days", r.Day, sc.Horizon.Days)}
		}
	}
	return nil
}

// weekendDays marks the horizon's Saturday/Sunday day indices. Without a
// parseable start date, days 5 and 6 of each week are treated as the weekend.
func weekendDays(h model.Horizon) map[int]bool {
	weekend := make(map[int]bool)
	start, err := time.Parse("2006-01-02", h.Start)
	for d := 0; d < h.Days; d++ {
		if err == nil {
			wd := start.AddDate(0, 0, d).Weekday()
			weekend[d] = wd == time.Saturday || wd == time.Sunday
		} else {
			weekend[d] = d%7 == 5 || d%7 == 6
		}
	}
	return weekend
}
