// Package roster converts raw solver output into the structured roster the
// rest of the pipeline consumes. The roster is built once by Extract and read
// only from then on.
package roster

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/abelhealth/wardroster/pkg/core/engine"
	"github.com/abelhealth/wardroster/pkg/core/model"
	"github.com/abelhealth/wardroster/pkg/core/solver"
)

// Assignment is one realized (nurse, day, shift[, ward]) placement. Hours
// always equals the duration of the shift type it references.
type Assignment struct {
	Nurse string
	Day   int
	Shift string
	Ward  string
	Hours int
}

// Shortfall records a demand slot whose coverage constraint used slack.
type Shortfall struct {
	Day     int
	Shift   string
	Ward    string
	Skill   model.Skill
	Nominal int
	Missing int
}

// Roster is the extracted solution for one solve request.
type Roster struct {
	ID     string
	Status solver.Status

	// Assignments are ordered by the variable enumeration order (nurse, day,
	// shift, ward); the order carries no scheduling meaning.
	Assignments []Assignment

	// NurseHours maps nurse ID to realized hours over the horizon, derived
	// from the assignments rather than read back from solver internals.
	NurseHours map[string]int

	// Shortfalls lists demand slots left partially uncovered by slack.
	Shortfalls []Shortfall

	Objective int

	byDayShift map[dayShiftKey][]string
	byNurse    map[string][]Assignment
}

type dayShiftKey struct {
	day   int
	shift string
	ward  string
}

// Extract builds a Roster from a solved result. It fails when the result
// carries no solution or when a variable's value strays outside {0, 1}: the
// extracted assignments are exactly the variables with value 1, a bijection
// the compliance layer depends on.
func Extract(b *engine.Builder, res *solver.Result) (*Roster, error) {
	if res == nil || !res.Status.Solved() {
		return nil, fmt.Errorf("cannot extract roster from %v result", statusOf(res))
	}

	sc := b.Scenario()
	r := &Roster{
		ID:         uuid.NewString(),
		Status:     res.Status,
		NurseHours: make(map[string]int),
		Objective:  res.Objective,
		byDayShift: make(map[dayShiftKey][]string),
		byNurse:    make(map[string][]Assignment),
	}

	for _, nurse := range sc.Nurses {
		r.NurseHours[nurse.ID] = 0
	}

	for _, key := range b.Keys() {
		id, _ := b.Var(key.Nurse, key.Day, key.Shift, key.Ward)
		switch res.Values.Value(id) {
		case 0:
			continue
		case 1:
		default:
			return nil, fmt.Errorf("assignment variable for nurse %s day %d shift %s has non-boolean value %d",
				key.Nurse, key.Day, key.Shift, res.Values.Value(id))
		}

		st, _ := sc.ShiftType(key.Shift)
		a := Assignment{
			Nurse: key.Nurse,
			Day:   key.Day,
			Shift: key.Shift,
			Ward:  key.Ward,
			Hours: st.DurationHours,
		}
		r.Assignments = append(r.Assignments, a)
		r.NurseHours[key.Nurse] += a.Hours

		k := dayShiftKey{day: key.Day, shift: key.Shift, ward: key.Ward}
		r.byDayShift[k] = append(r.byDayShift[k], key.Nurse)
		r.byNurse[key.Nurse] = append(r.byNurse[key.Nurse], a)
	}

	for _, slack := range b.DemandSlacks() {
		used := res.Values.Value(slack.Var)
		if used > 0 {
			r.Shortfalls = append(r.Shortfalls, Shortfall{
				Day:     slack.Day,
				Shift:   slack.Shift,
				Ward:    slack.Ward,
				Skill:   slack.Skill,
				Nominal: slack.Nominal,
				Missing: used,
			})
		}
	}

	return r, nil
}

// NursesOn returns the nurses assigned to a (day, shift, ward) slot in
// enumeration order.
func (r *Roster) NursesOn(day int, shift, ward string) []string {
	return r.byDayShift[dayShiftKey{day: day, shift: shift, ward: ward}]
}

// ByNurse returns one nurse's assignments in day order.
func (r *Roster) ByNurse(nurse string) []Assignment {
	return r.byNurse[nurse]
}

// Days returns the sorted distinct days that carry at least one assignment.
func (r *Roster) Days() []int {
	seen := make(map[int]bool)
	for _, a := range r.Assignments {
		seen[a.Day] = true
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// DayShiftTable returns the day → shift → nurse-list mapping, merging wards.
// List order is not semantically significant.
func (r *Roster) DayShiftTable() map[int]map[string][]string {
	table := make(map[int]map[string][]string)
	for _, a := range r.Assignments {
		if table[a.Day] == nil {
			table[a.Day] = make(map[string][]string)
		}
		table[a.Day][a.Shift] = append(table[a.Day][a.Shift], a.Nurse)
	}
	return table
}

func statusOf(res *solver.Result) solver.Status {
	if res == nil {
		return solver.StatusUnknown
	}
	return res.Status
}
