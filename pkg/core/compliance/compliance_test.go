package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/breaks"
	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
	"github.com/abelhealth/wardroster/pkg/core/engine"
	"github.com/abelhealth/wardroster/pkg/core/model"
	"github.com/abelhealth/wardroster/pkg/core/roster"
	"github.com/abelhealth/wardroster/pkg/core/solver"
)

// rosterWith builds a roster carrying exactly the given assignments, bypassing
// the solver so tests can construct non-compliant rosters the constraint
// encoding would never emit.
func rosterWith(t *testing.T, sc *model.Scenario, cfg *config.Config, keys []engine.VarKey) *roster.Roster {
	t.Helper()
	b, err := engine.NewBuilder(sc, cfg)
	require.NoError(t, err)
	m, err := b.Build()
	require.NoError(t, err)

	values := make(cpmodel.Solution, m.NumVars())
	for _, key := range keys {
		id, ok := b.Var(key.Nurse, key.Day, key.Shift, key.Ward)
		require.True(t, ok, "no variable for %+v", key)
		values[id] = 1
	}

	r, err := roster.Extract(b, &solver.Result{Status: solver.StatusFeasible, Values: values})
	require.NoError(t, err)
	return r
}

func nightScenario(days int) *model.Scenario {
	return &model.Scenario{
		Horizon: model.Horizon{Days: days},
		ShiftTypes: []model.ShiftType{
			{ID: "Day", StartHour: 8, DurationHours: 8, BreaksOwed: 1},
			{ID: "Night", StartHour: 20, DurationHours: 12, Night: true, BreaksOwed: 2},
		},
		Nurses: []model.Nurse{{ID: "n1"}, {ID: "n2"}},
	}
}

func on(nurse string, day int, shift string) engine.VarKey {
	return engine.VarKey{Nurse: nurse, Day: day, Shift: shift}
}

func TestValidate_CompliantRoster(t *testing.T) {
	sc := nightScenario(7)
	cfg := config.Default()
	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 0, "Day"),
		on("n1", 1, "Day"),
		on("n2", 0, "Night"),
		on("n2", 2, "Night"),
	})
	schedule := breaks.Assign(r, sc)

	rep := Validate(r, schedule, sc, cfg)

	assert.True(t, rep.OverallCompliant)
	assert.Equal(t, 100, rep.Score)
	assert.Empty(t, rep.Violations)
	assert.NotEmpty(t, rep.Strengths)
}

func TestValidate_WeeklyHoursViolation(t *testing.T) {
	sc := nightScenario(7)
	cfg := config.Default()

	// Six 8-hour days in one week: 48h against the 45h cap.
	var keys []engine.VarKey
	for day := 0; day < 6; day++ {
		keys = append(keys, on("n1", day, "Day"))
	}
	r := rosterWith(t, sc, cfg, keys)

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	require.False(t, rep.OverallCompliant)
	found := false
	for _, v := range rep.Violations {
		if v.Check == "weekly_hours" {
			found = true
			assert.Equal(t, "n1", v.Nurse)
			assert.Equal(t, 3, v.Magnitude)
		}
	}
	assert.True(t, found)
	assert.Equal(t, 100-ViolationPenalty*len(rep.Violations), rep.Score)
}

func TestValidate_ConsecutiveNightsViolation(t *testing.T) {
	sc := nightScenario(7)
	cfg := config.Default()

	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 0, "Night"),
		on("n1", 1, "Night"),
		on("n1", 2, "Night"),
		on("n1", 3, "Night"),
	})

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	require.False(t, rep.OverallCompliant)
	found := false
	for _, v := range rep.Violations {
		if v.Check == "consecutive_nights" {
			found = true
			assert.Equal(t, 2, v.Magnitude, "run of 4 against a limit of 2")
		}
	}
	assert.True(t, found)
}

func TestValidate_MinimumRestViolation(t *testing.T) {
	sc := &model.Scenario{
		Horizon: model.Horizon{Days: 2},
		ShiftTypes: []model.ShiftType{
			{ID: "Early", StartHour: 7, DurationHours: 8},
			{ID: "Late", StartHour: 14, DurationHours: 8},
		},
		Nurses: []model.Nurse{{ID: "n1"}},
	}
	cfg := config.Default()

	// Late ends 22:00, Early starts 07:00: a 9-hour turnaround.
	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 0, "Late"),
		on("n1", 1, "Early"),
	})

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	require.False(t, rep.OverallCompliant)
	found := false
	for _, v := range rep.Violations {
		if v.Check == "minimum_rest" {
			found = true
			assert.Equal(t, 2, v.Magnitude, "11 required minus 9 actual")
		}
	}
	assert.True(t, found)
}

func TestValidate_OneShiftPerDayViolation(t *testing.T) {
	sc := nightScenario(2)
	cfg := config.Default()

	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 0, "Day"),
		on("n1", 0, "Night"),
	})

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	require.False(t, rep.OverallCompliant)
	found := false
	for _, v := range rep.Violations {
		if v.Check == "one_shift_per_day" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_MissingBreaksViolation(t *testing.T) {
	sc := nightScenario(2)
	cfg := config.Default()

	r := rosterWith(t, sc, cfg, []engine.VarKey{on("n1", 0, "Night")})

	// An empty break schedule against two owed breaks.
	rep := Validate(r, &breaks.Schedule{}, sc, cfg)

	require.False(t, rep.OverallCompliant)
	found := false
	for _, v := range rep.Violations {
		if v.Check == "breaks" {
			found = true
			assert.Equal(t, 2, v.Magnitude)
		}
	}
	assert.True(t, found)
}

func TestValidate_ScoreFloorsAtZero(t *testing.T) {
	sc := nightScenario(7)
	cfg := config.Default()

	// Both shifts every day: seven one-shift-per-day breaches alone push the
	// deduction past 100.
	var keys []engine.VarKey
	for day := 0; day < 7; day++ {
		keys = append(keys, on("n1", day, "Day"), on("n1", day, "Night"))
	}
	r := rosterWith(t, sc, cfg, keys)

	rep := Validate(r, &breaks.Schedule{}, sc, cfg)

	require.False(t, rep.OverallCompliant)
	assert.GreaterOrEqual(t, len(rep.Violations), 7)
	assert.Equal(t, 0, rep.Score)
}

func TestValidate_NightShareWarning(t *testing.T) {
	sc := nightScenario(4)
	cfg := config.Default()

	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 0, "Night"),
		on("n2", 1, "Night"),
	})

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	found := false
	for _, w := range rep.Warnings {
		if w.Check == "night_share" {
			found = true
		}
	}
	assert.True(t, found, "100%% night work exceeds the 40%% threshold")
}

func TestValidate_WeekendShareWarning(t *testing.T) {
	sc := nightScenario(7)
	sc.Horizon.Start = "2026-09-07" // Monday
	cfg := config.Default()

	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 5, "Day"),
		on("n2", 6, "Day"),
	})

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	found := false
	for _, w := range rep.Warnings {
		if w.Check == "weekend_share" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_CoverageRecountedFromRoster(t *testing.T) {
	sc := nightScenario(2)
	sc.Demand = []model.DemandRequirement{
		{Day: 0, ShiftType: "Night", MinNurses: 2},
	}
	cfg := config.Default()

	// Only day work: the night demand is entirely unmet, yet the roster
	// carries no shortfall records of its own.
	r := rosterWith(t, sc, cfg, []engine.VarKey{on("n1", 0, "Day")})
	require.Empty(t, r.Shortfalls)

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	found := false
	for _, w := range rep.Warnings {
		if w.Check == "coverage_shortfall" {
			found = true
			assert.Equal(t, 2, w.Magnitude)
		}
	}
	assert.True(t, found, "the validator must recount coverage, not replay recorded shortfalls")
}

func TestValidate_CoverageCountsOnlyQualifiedNurses(t *testing.T) {
	sc := nightScenario(1)
	sc.Nurses[0].Skills = model.NewSkillSet("ICU")
	sc.Demand = []model.DemandRequirement{
		{Day: 0, ShiftType: "Day", Skill: "ICU", MinNurses: 2},
	}
	cfg := config.Default()

	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 0, "Day"),
		on("n2", 0, "Day"),
	})

	rep := Validate(r, breaks.Assign(r, sc), sc, cfg)

	found := false
	for _, w := range rep.Warnings {
		if w.Check == "coverage_shortfall" {
			found = true
			assert.Equal(t, 1, w.Magnitude, "only the ICU-qualified nurse counts")
		}
	}
	assert.True(t, found)
}

func TestValidate_IsIdempotent(t *testing.T) {
	sc := nightScenario(7)
	cfg := config.Default()
	r := rosterWith(t, sc, cfg, []engine.VarKey{
		on("n1", 0, "Day"),
		on("n2", 0, "Night"),
	})
	schedule := breaks.Assign(r, sc)

	first := Validate(r, schedule, sc, cfg)
	second := Validate(r, schedule, sc, cfg)

	assert.Equal(t, first, second)
}
