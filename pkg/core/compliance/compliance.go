// Package compliance independently re-checks every hard constraint against
// the extracted roster. Solver output is never trusted blindly: a modeling
// bug that lets slack absorb a hard failure must surface here, so the
// validator works purely from the roster and break schedule, never from
// solver internals. Validation is a pure function of its inputs.
package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/breaks"
	"github.com/abelhealth/wardroster/pkg/core/model"
	"github.com/abelhealth/wardroster/pkg/core/roster"
)

// ViolationPenalty is the fixed score deduction per detected violation.
const ViolationPenalty = 15

// Finding is one validation outcome: a violation, warning, or strength.
type Finding struct {
	Check     string
	Nurse     string
	Message   string
	Magnitude int
}

// Report is the compliance verdict for one roster.
type Report struct {
	OverallCompliant bool
	Score            int
	Violations       []Finding
	Warnings         []Finding
	Strengths        []Finding
}

// Validate recomputes every hard-constraint check from the roster and break
// schedule. A roster the solver called feasible can still come back
// non-compliant; that is a normal result, not an error.
func Validate(r *roster.Roster, schedule *breaks.Schedule, sc *model.Scenario, cfg *config.Config) *Report {
	rep := &Report{Score: 100}

	rep.checkWeeklyHours(r, sc, cfg)
	rep.checkOneShiftPerDay(r, sc)
	rep.checkConsecutiveNights(r, sc, cfg)
	rep.checkMinimumRest(r, sc, cfg)
	rep.checkSkillEligibility(r, sc)
	rep.checkBreaks(r, schedule, sc)
	rep.warnWorkloadShares(r, sc, cfg)
	rep.warnCoverageShortfalls(r, sc)

	rep.Score -= ViolationPenalty * len(rep.Violations)
	if rep.Score < 0 {
		rep.Score = 0
	}
	rep.OverallCompliant = len(rep.Violations) == 0

	return rep
}

func (rep *Report) violation(check, nurse string, magnitude int, format string, args ...any) {
	rep.Violations = append(rep.Violations, Finding{
		Check:     check,
		Nurse:     nurse,
		Magnitude: magnitude,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (rep *Report) warning(check, nurse string, magnitude int, format string, args ...any) {
	rep.Warnings = append(rep.Warnings, Finding{
		Check:     check,
		Nurse:     nurse,
		Magnitude: magnitude,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (rep *Report) strength(check, nurse string, format string, args ...any) {
	rep.Strengths = append(rep.Strengths, Finding{
		Check:   check,
		Nurse:   nurse,
		Message: fmt.Sprintf(format, args...),
	})
}

// checkWeeklyHours verifies every nurse's hours in each 7-day window against
// their cap.
func (rep *Report) checkWeeklyHours(r *roster.Roster, sc *model.Scenario, cfg *config.Config) {
	for _, nurse := range sc.Nurses {
		cap := cfg.Limits.WeeklyHourCap
		if nurse.MaxWeeklyHours > 0 {
			cap = nurse.MaxWeeklyHours
		}

		worst := 0
		for start := 0; start < sc.Horizon.Days; start += 7 {
			hours := 0
			for _, a := range r.ByNurse(nurse.ID) {
				if a.Day >= start && a.Day < start+7 {
					hours += a.Hours
				}
			}
			if hours > cap {
				rep.violation("weekly_hours", nurse.ID, hours-cap,
					"%s worked %dh in week starting day %d, cap is %dh", nurse.ID, hours, start, cap)
			}
			if hours > worst {
				worst = hours
			}
		}
		if worst <= cap {
			rep.strength("weekly_hours", nurse.ID, "%s within weekly cap (%dh ≤ %dh)", nurse.ID, worst, cap)
		}
	}
}

// checkOneShiftPerDay flags any nurse with more than one shift on a day.
func (rep *Report) checkOneShiftPerDay(r *roster.Roster, sc *model.Scenario) {
	for _, nurse := range sc.Nurses {
		perDay := make(map[int]int)
		for _, a := range r.ByNurse(nurse.ID) {
			perDay[a.Day]++
		}
		days := make([]int, 0, len(perDay))
		for d := range perDay {
			days = append(days, d)
		}
		sort.Ints(days)
		for _, d := range days {
			if perDay[d] > 1 {
				rep.violation("one_shift_per_day", nurse.ID, perDay[d]-1,
					"%s has %d shifts on day %d", nurse.ID, perDay[d], d)
			}
		}
	}
}

// checkConsecutiveNights measures each nurse's longest run of night-shift
// days against the configured limit.
func (rep *Report) checkConsecutiveNights(r *roster.Roster, sc *model.Scenario, cfg *config.Config) {
	limit := cfg.Limits.ConsecutiveNightLimit

	for _, nurse := range sc.Nurses {
		nightDays := make(map[int]bool)
		for _, a := range r.ByNurse(nurse.ID) {
			if st, ok := sc.ShiftType(a.Shift); ok && st.Night {
				nightDays[a.Day] = true
			}
		}

		longest, run := 0, 0
		for day := 0; day < sc.Horizon.Days; day++ {
			if nightDays[day] {
				run++
				if run > longest {
					longest = run
				}
			} else {
				run = 0
			}
		}

		if longest > limit {
			rep.violation("consecutive_nights", nurse.ID, longest-limit,
				"%s works %d consecutive nights, limit is %d", nurse.ID, longest, limit)
		} else if len(nightDays) > 0 {
			rep.strength("consecutive_nights", nurse.ID, "%s night runs within limit", nurse.ID)
		}
	}
}

// checkMinimumRest recomputes the rest gap between every pair of shifts on
// consecutive days.
func (rep *Report) checkMinimumRest(r *roster.Roster, sc *model.Scenario, cfg *config.Config) {
	minRest := cfg.Limits.MinRestHours

	for _, nurse := range sc.Nurses {
		byDay := make(map[int]roster.Assignment)
		for _, a := range r.ByNurse(nurse.ID) {
			byDay[a.Day] = a
		}

		for day := 0; day+1 < sc.Horizon.Days; day++ {
			first, ok1 := byDay[day]
			second, ok2 := byDay[day+1]
			if !ok1 || !ok2 {
				continue
			}
			stA, _ := sc.ShiftType(first.Shift)
			stB, _ := sc.ShiftType(second.Shift)
			gap := 24 - stA.EndHour() + stB.StartHour
			if gap < minRest {
				rep.violation("minimum_rest", nurse.ID, minRest-gap,
					"%s has %dh rest between day %d %s and day %d %s, minimum is %dh",
					nurse.ID, gap, day, first.Shift, day+1, second.Shift, minRest)
			}
		}
	}
}

// checkSkillEligibility confirms every assignment meets the shift's and
// ward's skill requirements.
func (rep *Report) checkSkillEligibility(r *roster.Roster, sc *model.Scenario) {
	for _, a := range r.Assignments {
		nurse, ok := sc.Nurse(a.Nurse)
		if !ok {
			rep.violation("skill_eligibility", a.Nurse, 1, "assignment references unknown nurse %s", a.Nurse)
			continue
		}
		st, _ := sc.ShiftType(a.Shift)
		if st.RequiredSkill != "" && !nurse.Skills.Has(st.RequiredSkill) {
			rep.violation("skill_eligibility", a.Nurse, 1,
				"%s lacks skill %s required by shift %s on day %d", a.Nurse, st.RequiredSkill, a.Shift, a.Day)
		}
		if a.Ward != "" {
			if ward, ok := sc.Ward(a.Ward); ok && !nurse.Skills.HasAny(ward.RequiredSkills) {
				rep.violation("skill_eligibility", a.Nurse, 1,
					"%s lacks the skills required by ward %s", a.Nurse, a.Ward)
			}
		}
	}
}

// checkBreaks compares scheduled breaks per nurse against the breaks owed by
// their assignments.
func (rep *Report) checkBreaks(r *roster.Roster, schedule *breaks.Schedule, sc *model.Scenario) {
	for _, nurse := range sc.Nurses {
		owed := 0
		for _, a := range r.ByNurse(nurse.ID) {
			if st, ok := sc.ShiftType(a.Shift); ok {
				owed += st.BreaksOwed
			}
		}
		scheduled := schedule.BreaksFor(nurse.ID)

		if scheduled < owed {
			rep.violation("breaks", nurse.ID, owed-scheduled,
				"%s has %d scheduled breaks, %d owed", nurse.ID, scheduled, owed)
		} else if owed > 0 {
			rep.strength("breaks", nurse.ID, "%s has all %d owed breaks scheduled", nurse.ID, owed)
		}
	}
}

// warnWorkloadShares raises soft warnings when weekend or night work exceeds
// its configured share of total assignments.
func (rep *Report) warnWorkloadShares(r *roster.Roster, sc *model.Scenario, cfg *config.Config) {
	total := len(r.Assignments)
	if total == 0 {
		return
	}

	weekend, night := 0, 0
	for _, a := range r.Assignments {
		if isWeekend(sc.Horizon, a.Day) {
			weekend++
		}
		if st, ok := sc.ShiftType(a.Shift); ok && st.Night {
			night++
		}
	}

	if share := float64(weekend) / float64(total); share > cfg.WeekendWarningShare {
		rep.warning("weekend_share", "", weekend,
			"weekend work is %.0f%% of assignments (threshold %.0f%%)", share*100, cfg.WeekendWarningShare*100)
	}
	if share := float64(night) / float64(total); share > cfg.NightWarningShare {
		rep.warning("night_share", "", night,
			"night work is %.0f%% of assignments (threshold %.0f%%)", share*100, cfg.NightWarningShare*100)
	}
}

// warnCoverageShortfalls recounts every demand slot from the roster itself,
// never from the roster's own shortfall records: a mis-encoded coverage
// constraint must surface here. Qualified assignments are compared against the
// nominal requirement; uncovered demand is a warning rather than a violation
// because leaving a slot short is the modeled escape valve when hard
// constraints leave no nurse available.
func (rep *Report) warnCoverageShortfalls(r *roster.Roster, sc *model.Scenario) {
	for _, d := range demandSlots(sc) {
		assigned := 0
		for _, a := range r.Assignments {
			if a.Day != d.Day || a.Shift != d.ShiftType {
				continue
			}
			if d.Ward != "" && a.Ward != d.Ward {
				continue
			}
			if d.Skill != "" {
				nurse, ok := sc.Nurse(a.Nurse)
				if !ok || !nurse.Skills.Has(d.Skill) {
					continue
				}
			}
			assigned++
		}
		if assigned >= d.MinNurses {
			continue
		}
		slot := d.ShiftType
		if d.Ward != "" {
			slot += "/" + d.Ward
		}
		rep.warning("coverage_shortfall", "", d.MinNurses-assigned,
			"day %d %s has %d of %d required nurses", d.Day, slot, assigned, d.MinNurses)
	}
}

// demandSlots merges explicit demand entries with ward minimums. A ward's
// MinPerShift applies to every (day, shift) slot without an explicit entry for
// that ward.
func demandSlots(sc *model.Scenario) []model.DemandRequirement {
	slots := make([]model.DemandRequirement, 0, len(sc.Demand))
	explicit := make(map[[3]string]bool)

	for _, d := range sc.Demand {
		slots = append(slots, d)
		explicit[[3]string{fmt.Sprint(d.Day), d.ShiftType, d.Ward}] = true
	}

	for _, ward := range sc.Wards {
		if ward.MinPerShift <= 0 {
			continue
		}
		for day := 0; day < sc.Horizon.Days; day++ {
			for _, st := range sc.ShiftTypes {
				if explicit[[3]string{fmt.Sprint(day), st.ID, ward.ID}] {
					continue
				}
				slots = append(slots, model.DemandRequirement{
					Day:       day,
					ShiftType: st.ID,
					Ward:      ward.ID,
					MinNurses: ward.MinPerShift,
				})
			}
		}
	}

	return slots
}

// isWeekend mirrors the engine's weekend derivation: calendar weekends when
// the horizon start parses, else days 5 and 6 of each week.
func isWeekend(h model.Horizon, day int) bool {
	if start, err := time.Parse("2006-01-02", h.Start); err == nil {
		wd := start.AddDate(0, 0, day).Weekday()
		return wd == time.Saturday || wd == time.Sunday
	}
	return day%7 == 5 || day%7 == 6
}
