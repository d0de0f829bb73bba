package engine

import (
	"fmt"
	"math"

	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
	"github.com/abelhealth/wardroster/pkg/core/model"
)

// addHardConstraints encodes every legally mandated rule. Rules that could
// make the model trivially infeasible (unmeetable demand, empty skill pools)
// are expressed through bounded penalized slack instead of hard equalities,
// so a solve attempt only fails when hours, rest, and one-per-day are truly
// incompatible.
func (b *Builder) addHardConstraints() {
	b.addOneShiftPerDay()
	b.addWeeklyHourCaps()
	b.addHourTracking()
	b.addConsecutiveNightLimits()
	b.addMinimumRest()
	b.addSkillEligibility()
	b.addCoverage()
	b.addShiftOffRequests()
	b.addContractBounds()
}

// addOneShiftPerDay limits each nurse to at most one shift per day.
func (b *Builder) addOneShiftPerDay() {
	for _, nurse := range b.scenario.Nurses {
		for day := 0; day < b.scenario.Horizon.Days; day++ {
			b.m.AddAtMost(b.ids(b.nurseDayVars(nurse.ID, day)), 1)
		}
	}
}

// addWeeklyHourCaps bounds the hours worked in every 7-day window by the
// nurse's cap (contract override, else the statutory cap).
func (b *Builder) addWeeklyHourCaps() {
	sc := b.scenario
	for _, nurse := range sc.Nurses {
		cap := b.weeklyCap(&nurse)
		for _, window := range b.weekWindows() {
			var expr cpmodel.LinearExpr
			for day := window.start; day < window.end; day++ {
				for _, st := range sc.ShiftTypes {
					for _, key := range b.nurseDayShiftVars(nurse.ID, day, st.ID) {
						expr = expr.Add(b.vars[key], st.DurationHours)
					}
				}
			}
			b.m.AddLinear(expr, -cpmodel.NoBound, cap)
		}
	}
}

// addHourTracking defines one integer variable per nurse equal to their total
// realized hours over the horizon, feeding the fairness and reporting terms.
func (b *Builder) addHourTracking() {
	sc := b.scenario
	for _, nurse := range sc.Nurses {
		upper := b.weeklyCap(&nurse) * sc.Horizon.Weeks()
		hv := b.m.NewIntVar(0, upper, fmt.Sprintf("hours_%s", nurse.ID))

		var expr cpmodel.LinearExpr
		for day := 0; day < sc.Horizon.Days; day++ {
			for _, st := range sc.ShiftTypes {
				for _, key := range b.nurseDayShiftVars(nurse.ID, day, st.ID) {
					expr = expr.Add(b.vars[key], st.DurationHours)
				}
			}
		}
		b.m.AddEquality(hv, expr)
		b.hourVars[nurse.ID] = hv
	}
}

// addConsecutiveNightLimits caps night assignments in every sliding window of
// (limit+1) consecutive days at the configured limit.
func (b *Builder) addConsecutiveNightLimits() {
	sc := b.scenario
	limit := b.cfg.Limits.ConsecutiveNightLimit
	window := limit + 1

	nightShifts := make([]string, 0, len(sc.ShiftTypes))
	for _, st := range sc.ShiftTypes {
		if st.Night {
			nightShifts = append(nightShifts, st.ID)
		}
	}
	if len(nightShifts) == 0 {
		return
	}

	for _, nurse := range sc.Nurses {
		for start := 0; start+window <= sc.Horizon.Days; start++ {
			var vars []cpmodel.VarID
			for day := start; day < start+window; day++ {
				for _, shift := range nightShifts {
					vars = append(vars, b.ids(b.nurseDayShiftVars(nurse.ID, day, shift))...)
				}
			}
			b.m.AddAtMost(vars, limit)
		}
	}
}

// addMinimumRest forbids back-to-back shift pairs across consecutive days
// whose gap falls under the configured minimum rest. Encoded as a <=1 sum so
// an infeasibility implicates a diagnosable constraint rather than a silently
// pruned variable pair.
func (b *Builder) addMinimumRest() {
	sc := b.scenario
	minRest := b.cfg.Limits.MinRestHours

	for _, first := range sc.ShiftTypes {
		for _, second := range sc.ShiftTypes {
			gap := 24 - first.EndHour() + second.StartHour
			if gap >= minRest {
				continue
			}
			for _, nurse := range sc.Nurses {
				for day := 0; day+1 < sc.Horizon.Days; day++ {
					vars := b.ids(b.nurseDayShiftVars(nurse.ID, day, first.ID))
					vars = append(vars, b.ids(b.nurseDayShiftVars(nurse.ID, day+1, second.ID))...)
					b.m.AddAtMost(vars, 1)
				}
			}
		}
	}
}

// addSkillEligibility forces to zero every variable pairing a nurse with a
// shift or ward whose required skills they lack.
func (b *Builder) addSkillEligibility() {
	for _, key := range b.keys {
		nurse, _ := b.scenario.Nurse(key.Nurse)
		if !b.eligible(nurse, key.Shift, key.Ward) {
			b.m.FixZero(b.vars[key])
		}
	}
}

// addCoverage requires each demand slot to reach its threshold, counting only
// qualified nurses and allowing a bounded, heavily penalized slack. Demand
// with an empty qualified pool is absorbed entirely by slack so the solver can
// report feasibility honestly. A demand naming no ward spans every declared
// ward: a qualified nurse counts wherever they are placed for the slot.
func (b *Builder) addCoverage() {
	for _, d := range b.effectiveDemand() {
		threshold := b.coverageThreshold(d.MinNurses)
		if threshold == 0 {
			continue
		}

		var expr cpmodel.LinearExpr
		for _, nurse := range b.scenario.Nurses {
			if !b.qualifiedForDemand(&nurse, d) {
				continue
			}
			if d.Ward != "" {
				key := VarKey{Nurse: nurse.ID, Day: d.Day, Shift: d.ShiftType, Ward: d.Ward}
				expr = expr.Add(b.vars[key], 1)
				continue
			}
			// Ward variables the nurse is ineligible for are already fixed to
			// zero, so summing across all wards stays an exact headcount.
			for _, key := range b.nurseDayShiftVars(nurse.ID, d.Day, d.ShiftType) {
				expr = expr.Add(b.vars[key], 1)
			}
		}

		name := fmt.Sprintf("slack_d%d_%s", d.Day, d.ShiftType)
		if d.Ward != "" {
			name += "_" + d.Ward
		}
		if d.Skill != "" {
			name += "_" + string(d.Skill)
		}
		slack := b.m.NewIntVar(0, threshold, name)
		expr = expr.Add(slack, 1)
		b.m.AddLinear(expr, threshold, cpmodel.NoBound)

		b.slacks = append(b.slacks, SlackRef{
			Day:       d.Day,
			Shift:     d.ShiftType,
			Ward:      d.Ward,
			Skill:     d.Skill,
			Nominal:   d.MinNurses,
			Threshold: threshold,
			Var:       slack,
		})
	}
}

// addShiftOffRequests forces hard requests to zero and queues soft ones for
// the objective composer.
func (b *Builder) addShiftOffRequests() {
	for _, req := range b.scenario.ShiftOff {
		if !req.Hard {
			b.softOff = append(b.softOff, req)
			continue
		}
		for _, key := range b.shiftOffVars(req) {
			b.m.FixZero(b.vars[key])
		}
	}
}

// addContractBounds keeps each nurse's total assignment count within their
// contract's minimum and maximum.
func (b *Builder) addContractBounds() {
	sc := b.scenario
	for _, nurse := range sc.Nurses {
		min := nurse.Contract.MinAssignments
		max := nurse.Contract.MaxAssignments
		if min <= 0 && max <= 0 {
			continue
		}
		if max <= 0 {
			max = cpmodel.NoBound
		}

		var vars []cpmodel.VarID
		for day := 0; day < sc.Horizon.Days; day++ {
			vars = append(vars, b.ids(b.nurseDayVars(nurse.ID, day))...)
		}
		b.m.AddLinear(unitIDExpr(vars), min, max)
	}
}

// shiftOffVars resolves a request to the variables it excludes.
func (b *Builder) shiftOffVars(req model.ShiftOffRequest) []VarKey {
	if req.ShiftType == model.AnyShift {
		return b.nurseDayVars(req.Nurse, req.Day)
	}
	return b.nurseDayShiftVars(req.Nurse, req.Day, req.ShiftType)
}

// weeklyCap returns the nurse's weekly hour cap, preferring the contract
// value over the statutory default.
func (b *Builder) weeklyCap(nurse *model.Nurse) int {
	if nurse.MaxWeeklyHours > 0 {
		return nurse.MaxWeeklyHours
	}
	return b.cfg.Limits.WeeklyHourCap
}

// coverageThreshold applies the configured demand fraction, never dropping a
// non-zero requirement below one nurse.
func (b *Builder) coverageThreshold(minNurses int) int {
	if minNurses <= 0 {
		return 0
	}
	scaled := int(math.Floor(float64(minNurses) * b.cfg.Limits.DemandFraction))
	if scaled < 1 {
		return 1
	}
	return scaled
}

// eligible reports whether a nurse may work a shift on a ward at all.
func (b *Builder) eligible(nurse *model.Nurse, shiftID, wardID string) bool {
	st, _ := b.scenario.ShiftType(shiftID)
	if st.RequiredSkill != "" && !nurse.Skills.Has(st.RequiredSkill) {
		return false
	}
	if wardID != "" {
		ward, _ := b.scenario.Ward(wardID)
		if !nurse.Skills.HasAny(ward.RequiredSkills) {
			return false
		}
	}
	return true
}

// qualifiedForDemand reports whether a nurse counts toward a demand slot:
// eligible for the slot and holding the demand's skill, if it names one.
func (b *Builder) qualifiedForDemand(nurse *model.Nurse, d model.DemandRequirement) bool {
	if !b.eligible(nurse, d.ShiftType, d.Ward) {
		return false
	}
	if d.Skill != "" && !nurse.Skills.Has(d.Skill) {
		return false
	}
	return true
}

// effectiveDemand merges explicit demand entries with ward minimums. A ward's
// MinPerShift applies to every (day, shift) slot that has no explicit entry
// for that ward.
func (b *Builder) effectiveDemand() []model.DemandRequirement {
	sc := b.scenario
	demand := make([]model.DemandRequirement, 0, len(sc.Demand))
	explicit := make(map[[3]string]bool)

	for _, d := range sc.Demand {
		demand = append(demand, d)
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
				demand = append(demand, model.DemandRequirement{
					Day:       day,
					ShiftType: st.ID,
					Ward:      ward.ID,
					MinNurses: ward.MinPerShift,
				})
			}
		}
	}

	return demand
}

type window struct {
	start, end int
}

// weekWindows splits the horizon into consecutive 7-day chunks, the last one
// possibly partial.
func (b *Builder) weekWindows() []window {
	days := b.scenario.Horizon.Days
	windows := make([]window, 0, (days+6)/7)
	for start := 0; start < days; start += 7 {
		end := start + 7
		if end > days {
			end = days
		}
		windows = append(windows, window{start: start, end: end})
	}
	return windows
}

func (b *Builder) ids(keys []VarKey) []cpmodel.VarID {
	ids := make([]cpmodel.VarID, len(keys))
	for i, key := range keys {
		ids[i] = b.vars[key]
	}
	return ids
}

func unitIDExpr(vars []cpmodel.VarID) cpmodel.LinearExpr {
	expr := make(cpmodel.LinearExpr, len(vars))
	for i, v := range vars {
		expr[i] = cpmodel.Term{Var: v, Coef: 1}
	}
	return expr
}
