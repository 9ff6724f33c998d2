package regionpress

import (
	"go.uber.org/zap"

	"github.com/craftops/regionpress/internal/classify"
	"github.com/craftops/regionpress/internal/stats"
)

// Option configures a Compactor.
type Option interface {
	apply(*options)
}

// options holds the compactor configuration.
type options struct {
	policy   classify.Policy
	optimize bool
	logger   *zap.Logger
	stats    stats.Collector
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		policy: classify.Default(),
		logger: zap.NewNop(),
		stats:  stats.NewNoop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithPolicy sets the classification policy.
// If not set, classify.Default() is used.
func WithPolicy(p classify.Policy) Option {
	return optionFunc(func(o *options) {
		o.policy = p
	})
}

// WithOptimizer enables stripping cache-only data from kept chunks.
// Off by default: the extra savings cost a one-time recomputation the
// next time each chunk loads.
func WithOptimizer(enabled bool) Option {
	return optionFunc(func(o *options) {
		o.optimize = enabled
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}
