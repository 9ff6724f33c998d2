// Package regionpressfx provides an fx module for a configured compactor.
package regionpressfx

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/craftops/regionpress"
	"github.com/craftops/regionpress/internal/classify"
	"github.com/craftops/regionpress/internal/stats"
	"github.com/craftops/regionpress/internal/stats/logger"
)

// Config holds configuration for the compactor.
type Config struct {
	// MinInhabited keeps chunks whose inhabited time exceeds it.
	MinInhabited time.Duration

	// OptimiseChunks also strips cache-only data from kept chunks.
	OptimiseChunks bool

	// DiscardCorrupt drops unreadable chunks instead of carrying them.
	DiscardCorrupt bool
}

// Module provides a *regionpress.Compactor.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("regionpress",
	fx.Provide(
		newStatsCollector,
		newCompactor,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("regionpress.stats"))
}

// Params holds dependencies for creating the compactor.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided compactor.
type Result struct {
	fx.Out

	Compactor *regionpress.Compactor
}

func newCompactor(p Params) (Result, error) {
	policy := classify.Default()
	policy.MinInhabited = p.Config.MinInhabited
	policy.DiscardCorrupt = p.Config.DiscardCorrupt

	press, err := regionpress.New(
		regionpress.WithPolicy(policy),
		regionpress.WithOptimizer(p.Config.OptimiseChunks),
		regionpress.WithLogger(p.Logger.Named("regionpress")),
		regionpress.WithStats(p.Collector),
	)
	if err != nil {
		return Result{}, err
	}

	return Result{Compactor: press}, nil
}
