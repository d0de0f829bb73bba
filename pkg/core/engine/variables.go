package engine

import "fmt"

// buildVariables allocates one boolean variable per (nurse, day, shift[, ward])
// combination. The enumeration is total over the declared domain: no
// combination is skipped, even when skill rules will later force it to zero,
// so the key-to-variable mapping stays a pure collision-free lookup.
func (b *Builder) buildVariables() {
	sc := b.scenario
	wards := sc.WardIDs()

	for _, nurse := range sc.Nurses {
		for day := 0; day < sc.Horizon.Days; day++ {
			for _, st := range sc.ShiftTypes {
				for _, ward := range wards {
					key := VarKey{Nurse: nurse.ID, Day: day, Shift: st.ID, Ward: ward}
					name := fmt.Sprintf("x_%s_d%d_%s", nurse.ID, day, st.ID)
					if ward != "" {
						name += "_" + ward
					}
					id := b.m.NewBoolVar(name)
					b.vars[key] = id
					b.keys = append(b.keys, key)
				}
			}
		}
	}
}

// nurseDayVars returns all of a nurse's assignment variables on one day.
func (b *Builder) nurseDayVars(nurse string, day int) []VarKey {
	sc := b.scenario
	keys := make([]VarKey, 0, len(sc.ShiftTypes)*len(sc.WardIDs()))
	for _, st := range sc.ShiftTypes {
		for _, ward := range sc.WardIDs() {
			keys = append(keys, VarKey{Nurse: nurse, Day: day, Shift: st.ID, Ward: ward})
		}
	}
	return keys
}

// nurseDayShiftVars returns a nurse's variables for one shift type on one day,
// across all wards.
func (b *Builder) nurseDayShiftVars(nurse string, day int, shift string) []VarKey {
	wards := b.scenario.WardIDs()
	keys := make([]VarKey, 0, len(wards))
	for _, ward := range wards {
		keys = append(keys, VarKey{Nurse: nurse, Day: day, Shift: shift, Ward: ward})
	}
	return keys
}
