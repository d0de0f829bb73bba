package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelhealth/wardroster/pkg/core/services"
	"github.com/abelhealth/wardroster/pkg/scenario"
)

// ValidateScenarioCmd creates the validateScenario command
func ValidateScenarioCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validateScenario <scenario_file>",
		Short: "Check a scenario file for modeling problems without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			result, err := services.ValidateScenario(sc, app.Cfg, app.Logger)
			if err != nil {
				return err
			}

			if !result.Valid {
				fmt.Printf("\n✗ Scenario has problems:\n\n")
				for _, p := range result.Problems {
					fmt.Printf("  - %s\n", p)
				}
				fmt.Println()
				return fmt.Errorf("scenario validation failed")
			}

			fmt.Printf("\n✓ Scenario is valid!\n\n")
			fmt.Printf("Nurses:      %d\n", result.Nurses)
			fmt.Printf("Days:        %d\n", result.Days)
			fmt.Printf("Shift types: %d\n", result.ShiftTypes)
			fmt.Printf("Wards:       %d\n", result.Wards)
			fmt.Printf("Variables:   %d\n\n", result.Variables)

			return nil
		},
	}
}
