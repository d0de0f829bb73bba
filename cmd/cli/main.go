package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelhealth/wardroster/cmd/cli/commands"
	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/solver"
	"github.com/abelhealth/wardroster/pkg/core/solver/bruteforce"
	"github.com/abelhealth/wardroster/pkg/core/solver/pbsolver"
	"github.com/abelhealth/wardroster/pkg/utils/logging"
)

var (
	configPath string
	backend    string
	verbose    bool

	// app is shared with every command; initApp fills it in before any
	// command runs.
	app = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wardroster",
		Short: "Ward Roster CLI - Generate constraint-based nurse rosters",
		Long:  `A CLI tool for generating nurse shift rosters from scenario files, with break scheduling and compliance validation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default: wardroster_config.yaml lookup)")
	rootCmd.PersistentFlags().StringVarP(&backend, "solver", "s", "pb", "Solver backend: pb or bruteforce")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logging on the console")

	// Add all commands
	rootCmd.AddCommand(commands.SolveRosterCmd(app))
	rootCmd.AddCommand(commands.ValidateScenarioCmd(app))
	rootCmd.AddCommand(commands.ShowConfigCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and the solver backend
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger("wardroster", verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Loading configuration")
	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Backend, err = newBackend()
	if err != nil {
		return err
	}

	return nil
}

// newBackend resolves the --solver flag to a solving backend.
func newBackend() (solver.Solver, error) {
	switch backend {
	case "pb":
		return pbsolver.New(), nil
	case "bruteforce":
		return bruteforce.New(), nil
	default:
		return nil, fmt.Errorf("unknown solver backend %q (expected pb or bruteforce)", backend)
	}
}
