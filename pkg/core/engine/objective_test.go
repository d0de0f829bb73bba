package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelhealth/wardroster/pkg/core/model"
	"github.com/abelhealth/wardroster/pkg/core/solver/bruteforce"
)

func TestObjective_PreferenceRankSteersAssignment(t *testing.T) {
	// The contract forces one shift; the nurse's ranking decides which.
	sc := &model.Scenario{
		Horizon: model.Horizon{Days: 1},
		ShiftTypes: []model.ShiftType{
			{ID: "Early", StartHour: 7, DurationHours: 8},
			{ID: "Late", StartHour: 14, DurationHours: 8},
		},
		Nurses: []model.Nurse{
			{
				ID:               "n1",
				ShiftPreferences: []string{"Late", "Early"},
				Contract:         model.ContractBounds{MinAssignments: 1, MaxAssignments: 1},
			},
		},
	}

	b, m := buildModel(t, sc, testConfig())
	res := solveWith(t, bruteforce.New(), m)

	assert.True(t, assigned(t, b, res, "n1", 0, "Late"))
	assert.False(t, assigned(t, b, res, "n1", 0, "Early"))
	assert.Equal(t, 0, res.Objective, "rank 0 carries no penalty")
}

func TestObjective_UnrankedShiftCostsFullPenalty(t *testing.T) {
	sc := &model.Scenario{
		Horizon: model.Horizon{Days: 1},
		ShiftTypes: []model.ShiftType{
			{ID: "Early", StartHour: 7, DurationHours: 8},
		},
		Nurses: []model.Nurse{
			{
				ID:               "n1",
				ShiftPreferences: []string{"Late", "Night"},
				Contract:         model.ContractBounds{MinAssignments: 1},
			},
		},
	}

	cfg := testConfig()
	_, m := buildModel(t, sc, cfg)
	res := solveWith(t, bruteforce.New(), m)

	assert.Equal(t, cfg.Weights.Preference*2, res.Objective,
		"unranked shifts rank after every listed one")
}

func TestObjective_LongShiftPreference(t *testing.T) {
	sc := &model.Scenario{
		Horizon: model.Horizon{Days: 1},
		ShiftTypes: []model.ShiftType{
			{ID: "Short", StartHour: 8, DurationHours: 8},
			{ID: "Long", StartHour: 8, DurationHours: 12},
		},
		Nurses: []model.Nurse{
			{
				ID:                "n1",
				PrefersLongShifts: true,
				Contract:          model.ContractBounds{MinAssignments: 1, MaxAssignments: 1},
			},
		},
	}

	cfg := testConfig()
	b, m := buildModel(t, sc, cfg)
	res := solveWith(t, bruteforce.New(), m)

	assert.True(t, assigned(t, b, res, "n1", 0, "Long"))
	assert.Equal(t, -cfg.Weights.LongShiftReward, res.Objective)
}

func TestObjective_WeekendAvoidedWhenPossible(t *testing.T) {
	// Monday-start week: days 5 and 6 are the weekend.
	sc := &model.Scenario{
		Horizon:    model.Horizon{Start: "2026-09-07", Days: 7},
		ShiftTypes: []model.ShiftType{{ID: "Day", StartHour: 8, DurationHours: 8}},
		Nurses: []model.Nurse{
			{ID: "n1", Contract: model.ContractBounds{MinAssignments: 1, MaxAssignments: 1}},
		},
	}

	b, m := buildModel(t, sc, testConfig())
	res := solveWith(t, bruteforce.New(), m)

	for day := 5; day < 7; day++ {
		assert.False(t, assigned(t, b, res, "n1", day, "Day"))
	}
	assert.Equal(t, 0, res.Objective)
}

func TestObjective_FairnessSplitsWork(t *testing.T) {
	sc := &model.Scenario{
		Horizon:    model.Horizon{Days: 2},
		ShiftTypes: []model.ShiftType{{ID: "Day", StartHour: 8, DurationHours: 8}},
		Nurses:     []model.Nurse{{ID: "n1"}, {ID: "n2"}},
		Demand: []model.DemandRequirement{
			{Day: 0, ShiftType: "Day", MinNurses: 1},
			{Day: 1, ShiftType: "Day", MinNurses: 1},
		},
	}

	b, m := buildModel(t, sc, testConfig())
	res := solveWith(t, bruteforce.New(), m)

	for _, nurse := range []string{"n1", "n2"} {
		count := 0
		for day := 0; day < 2; day++ {
			if assigned(t, b, res, nurse, day, "Day") {
				count++
			}
		}
		assert.Equal(t, 1, count, "fairness splits the two shifts between the two nurses")
	}
	assert.Equal(t, 0, res.Objective)
}

func TestObjective_OvertimeBeyondRegularHours(t *testing.T) {
	// Six 7-hour shifts total 42 hours: under the 45-hour cap but 2 hours
	// over the 40-hour regular threshold.
	sc := &model.Scenario{
		Horizon:    model.Horizon{Days: 6},
		ShiftTypes: []model.ShiftType{{ID: "Day", StartHour: 8, DurationHours: 7}},
		Nurses: []model.Nurse{
			{ID: "n1", Contract: model.ContractBounds{MinAssignments: 6}},
		},
	}

	cfg := testConfig()
	b, m := buildModel(t, sc, cfg)
	res := solveWith(t, bruteforce.New(), m)

	hv, ok := b.HourVar("n1")
	require.True(t, ok)
	assert.Equal(t, 42, res.Values.Value(hv))
	assert.Equal(t, 2*cfg.Weights.Overtime, res.Objective)
}

func TestObjective_OvertimeWillingHalvesPenalty(t *testing.T) {
	// Same 42-hour week as above, worked by a nurse who volunteered for
	// overtime: the 2 excess hours cost half the usual rate.
	sc := &model.Scenario{
		Horizon:    model.Horizon{Days: 6},
		ShiftTypes: []model.ShiftType{{ID: "Day", StartHour: 8, DurationHours: 7}},
		Nurses: []model.Nurse{
			{ID: "n1", OvertimeWilling: true, Contract: model.ContractBounds{MinAssignments: 6}},
		},
	}

	cfg := testConfig()
	b, m := buildModel(t, sc, cfg)
	res := solveWith(t, bruteforce.New(), m)

	hv, ok := b.HourVar("n1")
	require.True(t, ok)
	assert.Equal(t, 42, res.Values.Value(hv))
	assert.Equal(t, 2*((cfg.Weights.Overtime+1)/2), res.Objective)
}

func TestObjective_AcuityPrioritizesWardCoverage(t *testing.T) {
	// One nurse, two wards each demanding one nurse: slack on the high-acuity
	// ward costs double, so that ward is the one that gets covered.
	sc := &model.Scenario{
		Horizon:    model.Horizon{Days: 1},
		ShiftTypes: []model.ShiftType{dayShift()},
		Nurses:     []model.Nurse{{ID: "n1"}},
		Wards: []model.Ward{
			{ID: "general", AcuityMultiplier: 1.0},
			{ID: "icu", AcuityMultiplier: 2.0},
		},
		Demand: []model.DemandRequirement{
			{Day: 0, ShiftType: "Day", Ward: "general", MinNurses: 1},
			{Day: 0, ShiftType: "Day", Ward: "icu", MinNurses: 1},
		},
	}

	cfg := testConfig()
	b, m := buildModel(t, sc, cfg)
	res := solveWith(t, bruteforce.New(), m)

	icu, ok := b.Var("n1", 0, "Day", "icu")
	require.True(t, ok)
	general, ok := b.Var("n1", 0, "Day", "general")
	require.True(t, ok)
	assert.True(t, res.Values.BoolValue(icu))
	assert.False(t, res.Values.BoolValue(general))
	assert.Equal(t, cfg.Weights.DemandSlack+cfg.Weights.Burnout, res.Objective,
		"baseline slack on the general ward plus one assignment")
}

func TestObjective_BurnoutScalesWithRisk(t *testing.T) {
	sc := &model.Scenario{
		Horizon: model.Horizon{Days: 1},
		ShiftTypes: []model.ShiftType{
			{ID: "Calm", StartHour: 8, DurationHours: 8, BurnoutRisk: 1.0},
			{ID: "Acute", StartHour: 8, DurationHours: 8, BurnoutRisk: 3.0},
		},
		Nurses: []model.Nurse{
			{ID: "n1", Contract: model.ContractBounds{MinAssignments: 1, MaxAssignments: 1}},
		},
	}

	cfg := testConfig()
	b, m := buildModel(t, sc, cfg)
	res := solveWith(t, bruteforce.New(), m)

	assert.True(t, assigned(t, b, res, "n1", 0, "Calm"))
	assert.Equal(t, cfg.Weights.Burnout, res.Objective)
}

func TestObjective_IsDeterministic(t *testing.T) {
	sc := &model.Scenario{
		Horizon:    model.Horizon{Days: 2},
		ShiftTypes: []model.ShiftType{dayShift()},
		Nurses:     []model.Nurse{{ID: "n1"}, {ID: "n2"}},
		Demand: []model.DemandRequirement{
			{Day: 0, ShiftType: "Day", MinNurses: 2},
		},
	}

	_, m1 := buildModel(t, sc, testConfig())
	_, m2 := buildModel(t, sc, testConfig())
	assert.Equal(t, m1.Objective(), m2.Objective())
}
