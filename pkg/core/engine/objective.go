package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/abelhealth/wardroster/pkg/core/cpmodel"
)

// composeObjective builds the single scalar expression the solver minimizes.
// Every weight is a named configuration value; ties between equally scored
// rosters are left to the backend's deterministic search order.
func (b *Builder) composeObjective() {
	coefs := make(map[cpmodel.VarID]int)
	w := b.cfg.Weights

	// Per-assignment terms: preference rank, shift-length preference, burnout
	// risk, and weekend work.
	for _, key := range b.keys {
		nurse, _ := b.scenario.Nurse(key.Nurse)
		st, _ := b.scenario.ShiftType(key.Shift)
		id := b.vars[key]

		coefs[id] += w.Preference * nurse.PreferenceRank(st.ID)

		if nurse.PrefersLongShifts {
			if st.Long() {
				coefs[id] -= w.LongShiftReward
			} else {
				coefs[id] += w.ShortShiftPenalty
			}
		}

		coefs[id] += int(math.Round(st.BurnoutRisk * float64(w.Burnout)))

		if b.weekends[key.Day] {
			coefs[id] += w.Weekend
		}
	}

	// Soft shift-off requests: assigning over one costs a flat penalty.
	for _, req := range b.softOff {
		for _, key := range b.shiftOffVars(req) {
			coefs[b.vars[key]] += w.SoftShiftOff
		}
	}

	b.addFairnessTerm(coefs)
	b.addOvertimeTerms(coefs)

	// Demand slack: heavy penalty per uncovered unit, scaled up on
	// high-acuity wards.
	for _, slack := range b.slacks {
		coefs[slack.Var] += b.slackWeight(slack)
	}

	b.m.Minimize(sortedExpr(coefs))
}

// addFairnessTerm penalizes the spread between the highest and lowest
// per-nurse hour totals. The aux variables are only bounded toward the true
// max/min; their objective coefficients make the bounds tight.
func (b *Builder) addFairnessTerm(coefs map[cpmodel.VarID]int) {
	if b.cfg.Weights.Fairness == 0 || len(b.hourVars) < 2 {
		return
	}

	upper := 0
	hourIDs := make([]cpmodel.VarID, 0, len(b.hourVars))
	for _, nurse := range b.scenario.Nurses {
		hv := b.hourVars[nurse.ID]
		hourIDs = append(hourIDs, hv)
		if hi := b.weeklyCap(&nurse) * b.scenario.Horizon.Weeks(); hi > upper {
			upper = hi
		}
	}

	maxHours := b.m.NewIntVar(0, upper, "max_hours")
	minHours := b.m.NewIntVar(0, upper, "min_hours")
	b.m.AddMaxGE(maxHours, hourIDs)
	b.m.AddMinLE(minHours, hourIDs)

	coefs[maxHours] += b.cfg.Weights.Fairness
	coefs[minHours] -= b.cfg.Weights.Fairness
}

// addOvertimeTerms penalizes hours beyond the regular weekly threshold via a
// bounded non-negative overtime variable per nurse and week. Nurses flagged
// overtime-willing are charged half the penalty, so excess hours land on them
// before anyone else.
func (b *Builder) addOvertimeTerms(coefs map[cpmodel.VarID]int) {
	if b.cfg.Weights.Overtime == 0 {
		return
	}
	regular := b.cfg.Limits.RegularWeeklyHours

	for _, nurse := range b.scenario.Nurses {
		cap := b.weeklyCap(&nurse)
		if cap <= regular {
			continue
		}
		weight := b.cfg.Weights.Overtime
		if nurse.OvertimeWilling {
			// Rounded up so overtime never becomes free.
			weight = (weight + 1) / 2
		}
		for i, window := range b.weekWindows() {
			var hours cpmodel.LinearExpr
			for day := window.start; day < window.end; day++ {
				for _, st := range b.scenario.ShiftTypes {
					for _, key := range b.nurseDayShiftVars(nurse.ID, day, st.ID) {
						hours = hours.Add(b.vars[key], st.DurationHours)
					}
				}
			}

			ot := b.m.NewIntVar(0, cap-regular, fmt.Sprintf("overtime_%s_w%d", nurse.ID, i))
			// ot >= weekly hours - regular; minimization keeps it at the excess.
			expr := make(cpmodel.LinearExpr, 0, len(hours)+1)
			expr = append(expr, cpmodel.Term{Var: ot, Coef: 1})
			for _, t := range hours {
				expr = append(expr, cpmodel.Term{Var: t.Var, Coef: -t.Coef})
			}
			b.m.AddLinear(expr, -regular, cpmodel.NoBound)

			coefs[ot] += weight
		}
	}
}

// slackWeight scales the demand-slack penalty by the slot's ward acuity.
// Multipliers at or below 1 (including the zero value) leave the penalty at
// its configured baseline, which must keep dominating the per-assignment
// weights.
func (b *Builder) slackWeight(slack SlackRef) int {
	w := b.cfg.Weights.DemandSlack
	if slack.Ward == "" {
		return w
	}
	ward, ok := b.scenario.Ward(slack.Ward)
	if !ok || ward.AcuityMultiplier <= 1 {
		return w
	}
	return int(math.Round(float64(w) * ward.AcuityMultiplier))
}

// sortedExpr flattens a coefficient map into a deterministic expression.
func sortedExpr(coefs map[cpmodel.VarID]int) cpmodel.LinearExpr {
	ids := make([]cpmodel.VarID, 0, len(coefs))
	for id, coef := range coefs {
		if coef != 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	expr := make(cpmodel.LinearExpr, len(ids))
	for i, id := range ids {
		expr[i] = cpmodel.Term{Var: id, Coef: coefs[id]}
	}
	return expr
}
