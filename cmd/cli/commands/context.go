package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/abelhealth/wardroster/internal/config"
	"github.com/abelhealth/wardroster/pkg/core/solver"
)

// AppContext holds the application dependencies for commands
type AppContext struct {
	Cfg     *config.Config
	Backend solver.Solver
	Logger  *zap.Logger
	Ctx     context.Context
}
