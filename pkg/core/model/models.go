package model

import "sort"

// Skill identifies a nursing capability required by a shift or ward (e.g. "ICU", "WARD").
type Skill string

// SkillSet is a fixed set of skill tags held by a nurse.
type SkillSet map[Skill]struct{}

// NewSkillSet builds a SkillSet from a list of skill tags.
func NewSkillSet(skills ...Skill) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the given skill.
func (ss SkillSet) Has(skill Skill) bool {
	_, ok := ss[skill]
	return ok
}

// HasAny reports whether the set contains at least one of the given skills.
// An empty requirement is trivially satisfied.
func (ss SkillSet) HasAny(skills []Skill) bool {
	if len(skills) == 0 {
		return true
	}
	for _, s := range skills {
		if ss.Has(s) {
			return true
		}
	}
	return false
}

// List returns the skills in sorted order (useful for logging and reports).
func (ss SkillSet) List() []Skill {
	skills := make([]Skill, 0, len(ss))
	for s := range ss {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i] < skills[j] })
	return skills
}

// ContractBounds limits the total number of assignments a nurse may receive
// over the planning horizon.
type ContractBounds struct {
	MinAssignments int
	MaxAssignments int
}

// Nurse is one schedulable nurse. Immutable for the duration of a solve.
type Nurse struct {
	ID     string
	Skills SkillSet

	// MaxWeeklyHours overrides the statutory weekly cap when > 0.
	MaxWeeklyHours int

	Contract ContractBounds

	// ShiftPreferences ranks shift type IDs from most to least preferred.
	// Shift types not listed rank after all listed ones.
	ShiftPreferences []string

	// OvertimeWilling halves the objective penalty for this nurse's overtime
	// hours, steering excess demand toward volunteers.
	OvertimeWilling bool

	PrefersLongShifts bool
}

// PreferenceRank returns the 0-based rank of a shift type in the nurse's
// preference order, or len(ShiftPreferences) if the shift type is unranked.
func (n *Nurse) PreferenceRank(shiftTypeID string) int {
	for i, id := range n.ShiftPreferences {
		if id == shiftTypeID {
			return i
		}
	}
	return len(n.ShiftPreferences)
}

// ShiftType describes one entry of the fixed per-scenario shift catalog.
type ShiftType struct {
	ID            string
	StartHour     int
	DurationHours int

	// BreaksOwed is the number of mandatory rest breaks a nurse working this
	// shift must receive.
	BreaksOwed int

	// Night marks shifts counted against the consecutive-night limit.
	Night bool

	// BurnoutRisk scales the objective penalty for assigning this shift
	// (1.0 = baseline, night shifts typically higher).
	BurnoutRisk float64

	// RequiredSkill restricts the shift to qualified nurses when non-empty.
	RequiredSkill Skill
}

// EndHour returns the clock hour (0-23) at which the shift ends.
func (st *ShiftType) EndHour() int {
	return (st.StartHour + st.DurationHours) % 24
}

// Long reports whether the shift counts as a long shift for preference scoring.
func (st *ShiftType) Long() bool {
	return st.DurationHours >= 10
}

// Ward is an optional grouping of demand. A scenario without wards schedules
// against a single implicit ward with an empty ID.
type Ward struct {
	ID             string
	MinPerShift    int
	RequiredSkills []Skill

	// AcuityMultiplier scales the penalty for leaving this ward's demand
	// uncovered. Values at or below 1 (including the zero value) keep the
	// configured baseline.
	AcuityMultiplier float64
}

// DemandRequirement is the minimum headcount for a (day, shift[, ward]) slot.
type DemandRequirement struct {
	Day       int
	ShiftType string
	Ward      string // empty when the scenario has no wards

	// Skill narrows the count to qualified nurses when non-empty.
	Skill Skill

	MinNurses int
}

// AnyShift marks a shift-off request that applies to every shift type on the day.
const AnyShift = "Any"

// ShiftOffRequest excludes a nurse from a day or a specific shift on a day.
// Hard requests force the exclusion; soft requests are penalized in the
// objective but may be overridden when demand leaves no alternative.
type ShiftOffRequest struct {
	Nurse     string
	Day       int
	ShiftType string // a shift type ID, or AnyShift
	Hard      bool
}

// Horizon is the planning window: a start date and a number of consecutive days.
type Horizon struct {
	Start string // date in 2006-01-02 format; optional, day indices suffice
	Days  int
}

// Weeks returns the number of (possibly partial) 7-day windows in the horizon.
func (h Horizon) Weeks() int {
	return (h.Days + 6) / 7
}

// Scenario is the immutable in-memory input to one roster solve.
// Core components never mutate it; all derived artifacts are separate objects.
type Scenario struct {
	ID         string
	Horizon    Horizon
	Nurses     []Nurse
	ShiftTypes []ShiftType
	Wards      []Ward
	Demand     []DemandRequirement
	ShiftOff   []ShiftOffRequest
}

// ShiftType looks up a catalog entry by ID.
func (s *Scenario) ShiftType(id string) (*ShiftType, bool) {
	for i := range s.ShiftTypes {
		if s.ShiftTypes[i].ID == id {
			return &s.ShiftTypes[i], true
		}
	}
	return nil, false
}

// Nurse looks up a nurse by ID.
func (s *Scenario) Nurse(id string) (*Nurse, bool) {
	for i := range s.Nurses {
		if s.Nurses[i].ID == id {
			return &s.Nurses[i], true
		}
	}
	return nil, false
}

// Ward looks up a ward by ID.
func (s *Scenario) Ward(id string) (*Ward, bool) {
	for i := range s.Wards {
		if s.Wards[i].ID == id {
			return &s.Wards[i], true
		}
	}
	return nil, false
}

// WardIDs returns the ward IDs to schedule against. Scenarios without wards
// use a single implicit ward with an empty ID.
func (s *Scenario) WardIDs() []string {
	if len(s.Wards) == 0 {
		return []string{""}
	}
	ids := make([]string, len(s.Wards))
	for i, w := range s.Wards {
		ids[i] = w.ID
	}
	return ids
}
