package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ShowConfigCmd creates the showConfig command
func ShowConfigCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "showConfig",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Cfg

			fmt.Printf("\nLimits:\n")
			fmt.Printf("  Weekly hour cap:         %d\n", cfg.Limits.WeeklyHourCap)
			fmt.Printf("  Consecutive night limit: %d\n", cfg.Limits.ConsecutiveNightLimit)
			fmt.Printf("  Minimum rest hours:      %d\n", cfg.Limits.MinRestHours)
			fmt.Printf("  Regular weekly hours:    %d\n", cfg.Limits.RegularWeeklyHours)
			fmt.Printf("  Demand fraction:         %.2f\n", cfg.Limits.DemandFraction)

			fmt.Printf("\nWeights:\n")
			fmt.Printf("  Preference:          %d\n", cfg.Weights.Preference)
			fmt.Printf("  Long shift reward:   %d\n", cfg.Weights.LongShiftReward)
			fmt.Printf("  Short shift penalty: %d\n", cfg.Weights.ShortShiftPenalty)
			fmt.Printf("  Fairness:            %d\n", cfg.Weights.Fairness)
			fmt.Printf("  Burnout:             %d\n", cfg.Weights.Burnout)
			fmt.Printf("  Overtime:            %d\n", cfg.Weights.Overtime)
			fmt.Printf("  Weekend:             %d\n", cfg.Weights.Weekend)
			fmt.Printf("  Soft shift-off:      %d\n", cfg.Weights.SoftShiftOff)
			fmt.Printf("  Demand slack:        %d\n", cfg.Weights.DemandSlack)

			fmt.Printf("\nSolver:\n")
			fmt.Printf("  Time budget: %s\n", cfg.Solver.TimeBudget)
			fmt.Printf("  Workers:     %d\n", cfg.Solver.Workers)

			fmt.Printf("\nCost:\n")
			fmt.Printf("  Hourly rate:         %.2f\n", cfg.Cost.HourlyRate)
			fmt.Printf("  Overtime multiplier: %.2f\n\n", cfg.Cost.OvertimeMultiplier)

			return nil
		},
	}
}
