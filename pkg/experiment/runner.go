package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeklund/prisonlight/pkg/core"
	"github.com/jeklund/prisonlight/pkg/messaging"
)

// Runner drives one world to termination in a single-threaded loop,
// periodically publishing progress observations.
type Runner struct {
	world     core.Environment
	trial     uint32
	logPeriod uint32
	maxDays   uint32
	broker    messaging.Broker
	logger    *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTrial tags the runner's observations and result with a trial number.
func WithTrial(n uint32) RunnerOption {
	return func(r *Runner) {
		r.trial = n
	}
}

// WithLogPeriod sets the progress cadence in days; 0 disables.
func WithLogPeriod(period uint32) RunnerOption {
	return func(r *Runner) {
		r.logPeriod = period
	}
}

// WithMaxDays aborts the trial if it runs past the bound; 0 disables.
func WithMaxDays(limit uint32) RunnerOption {
	return func(r *Runner) {
		r.maxDays = limit
	}
}

// WithBroker sets the destination for progress observations.
func WithBroker(b messaging.Broker) RunnerOption {
	return func(r *Runner) {
		r.broker = b
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner for the given world.
func NewRunner(world core.Environment, opts ...RunnerOption) *Runner {
	r := &Runner{
		world:  world,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run advances the world day by day until it terminates, then returns
// the trial result.
func (r *Runner) Run(ctx context.Context) (core.TrialResult, error) {
	for !r.world.Done() {
		select {
		case <-ctx.Done():
			return core.TrialResult{}, ctx.Err()
		default:
		}

		if r.maxDays > 0 && r.world.Day() >= r.maxDays {
			return core.TrialResult{}, fmt.Errorf("trial %d: %w (bound %d)",
				r.trial, core.ErrMaxDaysExceeded, r.maxDays)
		}

		if err := r.world.Advance(); err != nil {
			return core.TrialResult{}, fmt.Errorf("trial %d: %w", r.trial, err)
		}

		if !r.world.Done() && r.logPeriod > 0 && r.world.Day()%r.logPeriod == 0 {
			r.observe(messaging.KindProgress)
		}
	}

	result, err := r.world.Result()
	if err != nil {
		return core.TrialResult{}, fmt.Errorf("trial %d: %w", r.trial, err)
	}
	result.Trial = r.trial

	r.observe(messaging.KindTrialDone)
	return result, nil
}

// observe publishes a progress sample. Observers are best-effort: a
// dropped observation never fails the trial.
func (r *Runner) observe(kind messaging.Kind) {
	if r.broker == nil {
		return
	}
	obs := messaging.Observation{
		Kind:      kind,
		Trial:     r.trial,
		Day:       r.world.Day(),
		BestKnown: r.world.BestKnown(),
		Timestamp: time.Now(),
	}
	if err := r.broker.Publish(obs); err != nil {
		r.logger.Debug("dropped progress observation",
			zap.Uint32("trial", r.trial),
			zap.Error(err))
	}
}
