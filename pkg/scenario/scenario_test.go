package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelhealth/wardroster/pkg/core/model"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validScenario = `
id: ward-a-week
horizon:
  start: "2026-09-07"
  days: 7
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
    breaksOwed: 1
  - id: Night
    startHour: 20
    durationHours: 12
    breaksOwed: 2
    night: true
    burnoutRisk: 2.0
nurses:
  - id: n1
    skills: [GENERAL]
    shiftPreferences: [Day]
  - id: n2
    skills: [GENERAL, ICU]
    maxWeeklyHours: 40
    prefersLongShifts: true
demand:
  - day: 0
    shiftType: Day
    minNurses: 1
shiftOff:
  - nurse: n1
    day: 3
    hard: true
`

func TestLoad_ValidFile(t *testing.T) {
	sc, err := Load(writeScenarioFile(t, validScenario))
	require.NoError(t, err)

	assert.Equal(t, "ward-a-week", sc.ID)
	assert.Equal(t, "2026-09-07", sc.Horizon.Start)
	assert.Equal(t, 7, sc.Horizon.Days)

	require.Len(t, sc.ShiftTypes, 2)
	night, ok := sc.ShiftType("Night")
	require.True(t, ok)
	assert.True(t, night.Night)
	assert.Equal(t, 2, night.BreaksOwed)

	require.Len(t, sc.Nurses, 2)
	n2, ok := sc.Nurse("n2")
	require.True(t, ok)
	assert.True(t, n2.Skills.Has("ICU"))
	assert.Equal(t, 40, n2.MaxWeeklyHours)
	assert.True(t, n2.PrefersLongShifts)

	require.Len(t, sc.Demand, 1)
	require.Len(t, sc.ShiftOff, 1)
	assert.Equal(t, model.AnyShift, sc.ShiftOff[0].ShiftType,
		"an omitted shift type means the whole day off")
	assert.True(t, sc.ShiftOff[0].Hard)
}

func TestLoad_GeneratesIDWhenOmitted(t *testing.T) {
	content := `
horizon:
  days: 2
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
nurses:
  - id: n1
`
	sc, err := Load(writeScenarioFile(t, content))
	require.NoError(t, err)
	assert.NotEmpty(t, sc.ID)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	content := `
horizon:
  days: 7
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
    lengthHours: 8
nurses:
  - id: n1
`
	_, err := Load(writeScenarioFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse scenario file")
}

func TestLoad_RejectsMissingSections(t *testing.T) {
	content := `
horizon:
  days: 7
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
`
	_, err := Load(writeScenarioFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario validation failed")
}

func TestLoad_RejectsOutOfRangeFields(t *testing.T) {
	content := `
horizon:
  days: 7
shiftTypes:
  - id: Day
    startHour: 25
    durationHours: 8
nurses:
  - id: n1
`
	_, err := Load(writeScenarioFile(t, content))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDemandRules_DailyExpansion(t *testing.T) {
	content := `
horizon:
  start: "2026-09-07"
  days: 5
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
nurses:
  - id: n1
demandRules:
  - rrule: "FREQ=DAILY;COUNT=3"
    shiftType: Day
    minNurses: 2
`
	sc, err := Load(writeScenarioFile(t, content))
	require.NoError(t, err)

	require.Len(t, sc.Demand, 3)
	for i, d := range sc.Demand {
		assert.Equal(t, i, d.Day)
		assert.Equal(t, "Day", d.ShiftType)
		assert.Equal(t, 2, d.MinNurses)
	}
}

func TestDemandRules_WeekendRule(t *testing.T) {
	// Monday 2026-09-07 start: the weekend falls on days 5 and 6.
	content := `
horizon:
  start: "2026-09-07"
  days: 7
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
nurses:
  - id: n1
demandRules:
  - rrule: "FREQ=WEEKLY;BYDAY=SA,SU"
    shiftType: Day
    minNurses: 3
`
	sc, err := Load(writeScenarioFile(t, content))
	require.NoError(t, err)

	days := make([]int, 0, len(sc.Demand))
	for _, d := range sc.Demand {
		days = append(days, d.Day)
	}
	assert.ElementsMatch(t, []int{5, 6}, days)
}

func TestDemandRules_RequireStartDate(t *testing.T) {
	content := `
horizon:
  days: 7
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
nurses:
  - id: n1
demandRules:
  - rrule: "FREQ=DAILY"
    shiftType: Day
    minNurses: 1
`
	_, err := Load(writeScenarioFile(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon start date")
}

func TestDemandRules_BadRule(t *testing.T) {
	content := `
horizon:
  start: "2026-09-07"
  days: 7
shiftTypes:
  - id: Day
    startHour: 8
    durationHours: 8
nurses:
  - id: n1
demandRules:
  - rrule: "EVERY=OTHER_TUESDAY"
    shiftType: Day
    minNurses: 1
`
	_, err := Load(writeScenarioFile(t, content))
	assert.Error(t, err)
}
