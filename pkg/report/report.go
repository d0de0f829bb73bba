// Package report renders a generated roster, its break schedule, and its
// compliance verdict as a Markdown document suitable for the console or for
// sharing with ward managers.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/breaks"
	"github.com/abelhealth/wardroster/pkg/core/compliance"
	"github.com/abelhealth/wardroster/pkg/core/model"
	"github.com/abelhealth/wardroster/pkg/core/roster"
)

// CostBreakdown is the wage estimate for one nurse over the horizon.
type CostBreakdown struct {
	Nurse         string
	RegularHours  int
	OvertimeHours int
	Cost          float64
}

// Render produces the full Markdown report.
func Render(
	r *roster.Roster,
	schedule *breaks.Schedule,
	rep *compliance.Report,
	sc *model.Scenario,
	cfg *config.Config,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Roster %s\n\n", r.ID)
	fmt.Fprintf(&b, "Status: %s | Objective: %d | Compliance score: %d/100\n\n", r.Status, r.Objective, rep.Score)

	writeScheduleTable(&b, r, sc)
	writeHoursTable(&b, r, sc)
	writeBreaksSection(&b, schedule)
	writeComplianceSection(&b, rep)
	writeCostSection(&b, r, sc, cfg)

	return b.String()
}

// writeScheduleTable renders the day × shift assignment grid.
func writeScheduleTable(b *strings.Builder, r *roster.Roster, sc *model.Scenario) {
	b.WriteString("## Schedule\n\n")
	b.WriteString("| Day | Shift | Nurses |\n")
	b.WriteString("| --- | --- | --- |\n")

	table := r.DayShiftTable()
	for day := 0; day < sc.Horizon.Days; day++ {
		shifts := table[day]
		for _, st := range sc.ShiftTypes {
			nurses := shifts[st.ID]
			if len(nurses) == 0 {
				continue
			}
			sorted := append([]string(nil), nurses...)
			sort.Strings(sorted)
			fmt.Fprintf(b, "| %d | %s | %s |\n", day, st.ID, strings.Join(sorted, ", "))
		}
	}
	b.WriteString("\n")
}

// writeHoursTable renders realized hours per nurse.
func writeHoursTable(b *strings.Builder, r *roster.Roster, sc *model.Scenario) {
	b.WriteString("## Hours\n\n")
	b.WriteString("| Nurse | Shifts | Hours |\n")
	b.WriteString("| --- | --- | --- |\n")

	for _, nurse := range sc.Nurses {
		fmt.Fprintf(b, "| %s | %d | %d |\n", nurse.ID, len(r.ByNurse(nurse.ID)), r.NurseHours[nurse.ID])
	}
	b.WriteString("\n")
}

// writeBreaksSection summarizes break coverage and lists uncovered slots.
func writeBreaksSection(b *strings.Builder, schedule *breaks.Schedule) {
	b.WriteString("## Breaks\n\n")
	fmt.Fprintf(b, "%d break slots, %.0f%% covered.\n\n", len(schedule.Slots), schedule.CoverageRate()*100)

	uncovered := 0
	for _, slot := range schedule.Slots {
		if !slot.Covered() {
			uncovered++
			fmt.Fprintf(b, "- Day %d %s: break %d for %s has no cover\n", slot.Day, slot.Shift, slot.Index, slot.Nurse)
		}
	}
	if uncovered > 0 {
		b.WriteString("\n")
	}
}

// writeComplianceSection lists violations, warnings, and strengths.
func writeComplianceSection(b *strings.Builder, rep *compliance.Report) {
	b.WriteString("## Compliance\n\n")
	if rep.OverallCompliant {
		b.WriteString("All hard-constraint checks passed.\n\n")
	}

	writeFindings(b, "Violations", rep.Violations)
	writeFindings(b, "Warnings", rep.Warnings)
	writeFindings(b, "Strengths", rep.Strengths)
}

func writeFindings(b *strings.Builder, heading string, findings []compliance.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, f := range findings {
		fmt.Fprintf(b, "- [%s] %s\n", f.Check, f.Message)
	}
	b.WriteString("\n")
}

// writeCostSection renders the wage estimate. Hours beyond the regular weekly
// threshold are paid at the overtime multiplier; this is an estimate for
// budgeting, not a payroll calculation.
func writeCostSection(b *strings.Builder, r *roster.Roster, sc *model.Scenario, cfg *config.Config) {
	b.WriteString("## Cost estimate\n\n")
	b.WriteString("| Nurse | Regular h | Overtime h | Cost |\n")
	b.WriteString("| --- | --- | --- | --- |\n")

	total := 0.0
	for _, nurse := range sc.Nurses {
		breakdown := CostFor(r, sc, cfg, nurse.ID)
		total += breakdown.Cost
		fmt.Fprintf(b, "| %s | %d | %d | %.2f |\n",
			breakdown.Nurse, breakdown.RegularHours, breakdown.OvertimeHours, breakdown.Cost)
	}
	fmt.Fprintf(b, "\nTotal estimated cost: %.2f\n", total)
}

// CostFor computes one nurse's wage estimate. Overtime is counted per 7-day
// window against the regular weekly threshold.
func CostFor(r *roster.Roster, sc *model.Scenario, cfg *config.Config, nurse string) CostBreakdown {
	breakdown := CostBreakdown{Nurse: nurse}

	for start := 0; start < sc.Horizon.Days; start += 7 {
		hours := 0
		for _, a := range r.ByNurse(nurse) {
			if a.Day >= start && a.Day < start+7 {
				hours += a.Hours
			}
		}
		regular := hours
		if regular > cfg.Limits.RegularWeeklyHours {
			regular = cfg.Limits.RegularWeeklyHours
		}
		breakdown.RegularHours += regular
		breakdown.OvertimeHours += hours - regular
	}

	breakdown.Cost = float64(breakdown.RegularHours)*cfg.Cost.HourlyRate +
		float64(breakdown.OvertimeHours)*cfg.Cost.HourlyRate*cfg.Cost.OvertimeMultiplier
	return breakdown
}
