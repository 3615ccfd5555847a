package stoppable

import (
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/stoppable/metrics"
	"github.com/ygrebnov/stoppable/pool"
)

type poolType int

const (
	poolUnspecified poolType = iota
	poolFixed
	poolDynamic
	poolExternal
)

// config holds Pool configuration.
type config struct {
	// MaxWorkers is the number of worker goroutines of the fixed pool.
	// Default: runtime.NumCPU()
	MaxWorkers uint

	// poolSelected records which pool option was applied; options conflict otherwise.
	poolSelected poolType

	// Executor is a caller-supplied underlying pool (WithExecutor).
	Executor pool.Pool

	// PanicHandler translates recovered task panics into errors.
	// Default: a *PanicError wrapping ErrTaskPanicked.
	PanicHandler PanicHandler

	// ErrorTagging wraps task failures with the task spawn index and ID.
	// Default: false
	ErrorTagging bool

	// Logger receives pool lifecycle events.
	// Default: logrus.StandardLogger()
	Logger logrus.FieldLogger

	// Metrics provides the pool instruments.
	// Default: metrics.NoopProvider
	Metrics metrics.Provider
}

func defaultConfig() config {
	return config{
		MaxWorkers:   uint(runtime.NumCPU()),
		poolSelected: poolUnspecified,
		PanicHandler: defaultPanicHandler,
		ErrorTagging: false,
		Logger:       logrus.StandardLogger(),
		Metrics:      metrics.NewNoopProvider(),
	}
}

// validateConfig checks invariants options cannot enforce one at a time.
func validateConfig(cfg *config) error {
	switch cfg.poolSelected {
	case poolUnspecified, poolFixed:
		if cfg.MaxWorkers == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "fixed pool requires at least one worker"))
		}
	case poolExternal:
		if cfg.Executor == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithExecutor requires a non-nil pool"))
		}
	}
	return nil
}

// newExecutor builds the underlying pool selected by cfg.
func newExecutor(cfg *config) (pool.Pool, error) {
	switch cfg.poolSelected {
	case poolExternal:
		return cfg.Executor, nil
	case poolDynamic:
		return pool.NewDynamic(), nil
	default:
		return pool.NewFixed(cfg.MaxWorkers)
	}
}

// Option configures a Pool. Use New(ctx, opts...) to construct one.
type Option func(*config) error

func selectPool(cfg *config, t poolType) error {
	if cfg.poolSelected != poolUnspecified && cfg.poolSelected != t {
		return errorc.With(ErrInvalidConfig, errorc.String("", "conflicting pool options"))
	}
	cfg.poolSelected = t
	return nil
}

// WithFixedPool runs tasks on exactly n worker goroutines (n must be > 0).
func WithFixedPool(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithFixedPool requires n > 0"))
		}
		if err := selectPool(cfg, poolFixed); err != nil {
			return err
		}
		cfg.MaxWorkers = n
		return nil
	}
}

// WithDynamicPool runs every task on its own goroutine.
func WithDynamicPool() Option {
	return func(cfg *config) error { return selectPool(cfg, poolDynamic) }
}

// WithExecutor runs tasks on a caller-supplied pool.
// The Pool takes ownership: Close closes p.
func WithExecutor(p pool.Pool) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithExecutor requires a non-nil pool"))
		}
		if err := selectPool(cfg, poolExternal); err != nil {
			return err
		}
		cfg.Executor = p
		return nil
	}
}

// WithPanicHandler replaces the default panic translation.
func WithPanicHandler(h PanicHandler) Option {
	return func(cfg *config) error {
		if h == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithPanicHandler requires a non-nil handler"))
		}
		cfg.PanicHandler = h
		return nil
	}
}

// WithErrorTagging wraps task failures with the spawn index and task ID.
// See ExtractTaskIndex and ExtractTaskID.
func WithErrorTagging() Option {
	return func(cfg *config) error { cfg.ErrorTagging = true; return nil }
}

// WithLogger sets the logger receiving pool events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics records pool instruments into p.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
