// Package breaks post-processes a roster into a mandatory-break schedule:
// every assignment owes the breaks configured on its shift type, and each
// break needs a covering nurse from the same (day, shift[, ward]) group.
package breaks

import (
	"github.com/abelhealth/wardroster/pkg/core/model"
	"github.com/abelhealth/wardroster/pkg/core/roster"
)

// Uncovered marks a break with no available covering nurse. It is reported
// explicitly rather than dropped so the compliance layer can see it.
const Uncovered = "UNCOVERED"

// Slot is one mandatory break owed to a nurse during a shift.
type Slot struct {
	Nurse string
	Day   int
	Shift string
	Ward  string

	// Index numbers the breaks within one shift, starting at 1.
	Index int

	// CoveredBy is the covering nurse's ID, or Uncovered.
	CoveredBy string
}

// Covered reports whether the slot has a covering nurse.
func (s Slot) Covered() bool {
	return s.CoveredBy != Uncovered
}

// Schedule is the full break schedule for one roster.
type Schedule struct {
	Slots []Slot
}

// CoverageRate returns covered breaks ÷ total breaks, or 1 when no breaks are
// owed.
func (s *Schedule) CoverageRate() float64 {
	if len(s.Slots) == 0 {
		return 1
	}
	covered := 0
	for _, slot := range s.Slots {
		if slot.Covered() {
			covered++
		}
	}
	return float64(covered) / float64(len(s.Slots))
}

// BreaksFor returns the number of break slots scheduled for a nurse.
func (s *Schedule) BreaksFor(nurse string) int {
	count := 0
	for _, slot := range s.Slots {
		if slot.Nurse == nurse {
			count++
		}
	}
	return count
}

// Assign schedules every owed break and picks a covering nurse for each.
//
// Cover selection is first-available in roster enumeration order among the
// other nurses on the same (day, shift, ward) group. This is a deliberate
// simplification: it makes no fairness claim about who covers, and a group
// of one always yields Uncovered slots.
func Assign(r *roster.Roster, sc *model.Scenario) *Schedule {
	schedule := &Schedule{}

	for _, a := range r.Assignments {
		st, ok := sc.ShiftType(a.Shift)
		if !ok || st.BreaksOwed <= 0 {
			continue
		}

		group := r.NursesOn(a.Day, a.Shift, a.Ward)
		for i := 1; i <= st.BreaksOwed; i++ {
			slot := Slot{
				Nurse:     a.Nurse,
				Day:       a.Day,
				Shift:     a.Shift,
				Ward:      a.Ward,
				Index:     i,
				CoveredBy: Uncovered,
			}
			for _, candidate := range group {
				if candidate != a.Nurse {
					slot.CoveredBy = candidate
					break
				}
			}
			schedule.Slots = append(schedule.Slots, slot)
		}
	}

	return schedule
}
