// Package scenario loads roster scenarios from YAML files and expands
// recurring demand rules into the concrete day-indexed requirements the
// engine consumes.
package scenario

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/abelhealth/wardroster/pkg/core/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// File mirrors the on-disk YAML scenario layout. It is decoded strictly:
// unknown keys are rejected rather than silently ignored.
type File struct {
	ID      string `yaml:"id"`
	Horizon struct {
		Start string `yaml:"start" validate:"omitempty,datetime=2006-01-02"`
		Days  int    `yaml:"days" validate:"required,min=1"`
	} `yaml:"horizon"`

	ShiftTypes []ShiftTypeEntry `yaml:"shiftTypes" validate:"required,min=1,dive"`
	Nurses     []NurseEntry     `yaml:"nurses" validate:"required,min=1,dive"`
	Wards      []WardEntry      `yaml:"wards" validate:"dive"`
	Demand     []DemandEntry    `yaml:"demand" validate:"dive"`

	// DemandRules declare recurring demand with an RFC 5545 recurrence rule
	// instead of explicit day indices.
	DemandRules []DemandRuleEntry `yaml:"demandRules" validate:"dive"`

	ShiftOff []ShiftOffEntry `yaml:"shiftOff" validate:"dive"`
}

// ShiftTypeEntry is one catalog shift type as written in YAML.
type ShiftTypeEntry struct {
	ID            string  `yaml:"id" validate:"required"`
	StartHour     int     `yaml:"startHour" validate:"min=0,max=23"`
	DurationHours int     `yaml:"durationHours" validate:"required,min=1,max=24"`
	BreaksOwed    int     `yaml:"breaksOwed" validate:"min=0"`
	Night         bool    `yaml:"night"`
	BurnoutRisk   float64 `yaml:"burnoutRisk" validate:"min=0"`
	RequiredSkill string  `yaml:"requiredSkill"`
}

// NurseEntry is one nurse as written in YAML.
type NurseEntry struct {
	ID               string   `yaml:"id" validate:"required"`
	Skills           []string `yaml:"skills"`
	MaxWeeklyHours   int      `yaml:"maxWeeklyHours" validate:"min=0"`
	MinAssignments   int      `yaml:"minAssignments" validate:"min=0"`
	MaxAssignments   int      `yaml:"maxAssignments" validate:"min=0"`
	ShiftPreferences []string `yaml:"shiftPreferences"`
	OvertimeWilling  bool     `yaml:"overtimeWilling"`
	PrefersLong      bool     `yaml:"prefersLongShifts"`
}

// WardEntry is one ward as written in YAML.
type WardEntry struct {
	ID               string   `yaml:"id" validate:"required"`
	MinPerShift      int      `yaml:"minPerShift" validate:"min=0"`
	RequiredSkills   []string `yaml:"requiredSkills"`
	AcuityMultiplier float64  `yaml:"acuityMultiplier" validate:"min=0"`
}

// DemandEntry is one explicit day-indexed demand requirement.
type DemandEntry struct {
	Day       int    `yaml:"day" validate:"min=0"`
	ShiftType string `yaml:"shiftType" validate:"required"`
	Ward      string `yaml:"ward"`
	Skill     string `yaml:"skill"`
	MinNurses int    `yaml:"minNurses" validate:"required,min=1"`
}

// DemandRuleEntry is a recurring demand requirement. The rule is evaluated
// over the horizon's calendar dates; each occurrence becomes one demand
// requirement on the matching day index. Rules require a horizon start date.
type DemandRuleEntry struct {
	RRule     string `yaml:"rrule" validate:"required"`
	ShiftType string `yaml:"shiftType" validate:"required"`
	Ward      string `yaml:"ward"`
	Skill     string `yaml:"skill"`
	MinNurses int    `yaml:"minNurses" validate:"required,min=1"`
}

// ShiftOffEntry is one shift-off request as written in YAML.
type ShiftOffEntry struct {
	Nurse     string `yaml:"nurse" validate:"required"`
	Day       int    `yaml:"day" validate:"min=0"`
	ShiftType string `yaml:"shiftType"`
	Hard      bool   `yaml:"hard"`
}

// Load reads, validates, and expands a scenario file.
func Load(path string) (*model.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	defer f.Close()

	var file File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	return Build(&file)
}

// Build validates a decoded scenario file and converts it into the in-memory
// scenario, expanding demand rules into explicit requirements.
func Build(file *File) (*model.Scenario, error) {
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}

	sc := &model.Scenario{
		ID: file.ID,
		Horizon: model.Horizon{
			Start: file.Horizon.Start,
			Days:  file.Horizon.Days,
		},
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}

	for _, st := range file.ShiftTypes {
		sc.ShiftTypes = append(sc.ShiftTypes, model.ShiftType{
			ID:            st.ID,
			StartHour:     st.StartHour,
			DurationHours: st.DurationHours,
			BreaksOwed:    st.BreaksOwed,
			Night:         st.Night,
			BurnoutRisk:   st.BurnoutRisk,
			RequiredSkill: model.Skill(st.RequiredSkill),
		})
	}

	for _, n := range file.Nurses {
		sc.Nurses = append(sc.Nurses, model.Nurse{
			ID:             n.ID,
			Skills:         model.NewSkillSet(toSkills(n.Skills)...),
			MaxWeeklyHours: n.MaxWeeklyHours,
			Contract: model.ContractBounds{
				MinAssignments: n.MinAssignments,
				MaxAssignments: n.MaxAssignments,
			},
			ShiftPreferences:  n.ShiftPreferences,
			OvertimeWilling:   n.OvertimeWilling,
			PrefersLongShifts: n.PrefersLong,
		})
	}

	for _, w := range file.Wards {
		sc.Wards = append(sc.Wards, model.Ward{
			ID:               w.ID,
			MinPerShift:      w.MinPerShift,
			RequiredSkills:   toSkills(w.RequiredSkills),
			AcuityMultiplier: w.AcuityMultiplier,
		})
	}

	for _, d := range file.Demand {
		sc.Demand = append(sc.Demand, model.DemandRequirement{
			Day:       d.Day,
			ShiftType: d.ShiftType,
			Ward:      d.Ward,
			Skill:     model.Skill(d.Skill),
			MinNurses: d.MinNurses,
		})
	}

	expanded, err := expandDemandRules(file.DemandRules, sc.Horizon)
	if err != nil {
		return nil, err
	}
	sc.Demand = append(sc.Demand, expanded...)

	for _, r := range file.ShiftOff {
		shiftType := r.ShiftType
		if shiftType == "" {
			shiftType = model.AnyShift
		}
		sc.ShiftOff = append(sc.ShiftOff, model.ShiftOffRequest{
			Nurse:     r.Nurse,
			Day:       r.Day,
			ShiftType: shiftType,
			Hard:      r.Hard,
		})
	}

	return sc, nil
}

// expandDemandRules evaluates each recurrence rule over the horizon's calendar
// dates and emits one demand requirement per occurrence inside the horizon.
func expandDemandRules(rules []DemandRuleEntry, h model.Horizon) ([]model.DemandRequirement, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	start, err := time.Parse("2006-01-02", h.Start)
	if err != nil {
		return nil, fmt.Errorf("demand rules require a horizon start date: %w", err)
	}
	end := start.AddDate(0, 0, h.Days-1)

	var demand []model.DemandRequirement
	for i, entry := range rules {
		rule, err := rrule.StrToRRule(entry.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for demand rule %d: %w", i, err)
		}
		rule.DTStart(start)

		for _, occurrence := range rule.Between(start, end, true) {
			day := int(occurrence.Sub(start).Hours() / 24)
			if day < 0 || day >= h.Days {
				continue
			}
			demand = append(demand, model.DemandRequirement{
				Day:       day,
				ShiftType: entry.ShiftType,
				Ward:      entry.Ward,
				Skill:     model.Skill(entry.Skill),
				MinNurses: entry.MinNurses,
			})
		}
	}

	return demand, nil
}

func toSkills(tags []string) []model.Skill {
	skills := make([]model.Skill, len(tags))
	for i, t := range tags {
		skills[i] = model.Skill(t)
	}
	return skills
}
