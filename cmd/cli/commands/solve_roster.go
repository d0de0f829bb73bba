package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelhealth/wardroster/pkg/core/services"
	"github.com/abelhealth/wardroster/pkg/report"
	"github.com/abelhealth/wardroster/pkg/scenario"
)

// SolveRosterCmd creates the solveRoster command
func SolveRosterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solveRoster <scenario_file>",
		Short: "Generate a roster for a scenario file",
		Long:  "Build the constraint model for a scenario, solve it, schedule breaks, and render the compliance-checked roster report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("out")

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			result, err := services.GenerateRoster(app.Ctx, sc, app.Cfg, app.Backend, app.Logger)
			if err != nil {
				return err
			}

			rendered := report.Render(result.Roster, result.Breaks, result.Compliance, sc, app.Cfg)

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(rendered), 0644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Printf("\n✓ Roster generated, report written to %s\n", outPath)
			} else {
				fmt.Println()
				fmt.Print(rendered)
			}

			fmt.Printf("\nStatus: %s | Objective: %d | Compliance: %d/100 | Wall time: %s\n",
				result.Status, result.Roster.Objective, result.Compliance.Score,
				result.WallTime.Round(time.Millisecond))

			return nil
		},
	}

	cmd.Flags().String("out", "", "Write the Markdown report to a file instead of stdout")

	return cmd
}
