package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeklund/prisonlight/pkg/config"
	"github.com/jeklund/prisonlight/pkg/core"
	"github.com/jeklund/prisonlight/pkg/environment"
	"github.com/jeklund/prisonlight/pkg/messaging"
)

// Experiment runs a configured number of independent trials, possibly
// concurrently, and reduces their results into a summary. Trials share
// no mutable state; each owns its world and random generator.
type Experiment struct {
	id     string
	cfg    *config.Config
	seed   int64
	broker messaging.Broker
	logger *zap.Logger
}

// ExperimentOption configures an Experiment.
type ExperimentOption func(*Experiment)

// WithExperimentLogger sets the experiment's logger.
func WithExperimentLogger(logger *zap.Logger) ExperimentOption {
	return func(e *Experiment) {
		e.logger = logger
	}
}

// WithExperimentBroker sets the bus trial runners publish progress to.
func WithExperimentBroker(b messaging.Broker) ExperimentOption {
	return func(e *Experiment) {
		e.broker = b
	}
}

// New validates cfg and creates an experiment.
func New(cfg *config.Config, opts ...ExperimentOption) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Experiment{
		id:     uuid.New().String(),
		cfg:    cfg,
		seed:   seed,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("experiment_id", e.id))
	return e, nil
}

// ID returns the experiment's run id.
func (e *Experiment) ID() string {
	return e.id
}

// Seed returns the resolved base seed.
func (e *Experiment) Seed() int64 {
	return e.seed
}

// Run executes all trials and returns the reduced summary. The first
// trial error aborts the run; an invariant violation in any trial
// therefore fails the whole experiment.
func (e *Experiment) Run(ctx context.Context) (core.Summary, error) {
	e.logger.Info("starting experiment",
		zap.Int("prisoners", e.cfg.Prisoners),
		zap.Uint32("repetitions", e.cfg.Repetitions),
		zap.Int("workers", e.cfg.Workers),
		zap.Int64("seed", e.seed),
		zap.String("strategy", e.cfg.Strategy))

	results := make([]core.TrialResult, e.cfg.Repetitions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := uint32(0); i < e.cfg.Repetitions; i++ {
		trial := i
		g.Go(func() error {
			result, err := e.runTrial(ctx, trial)
			if err != nil {
				return err
			}
			// Each trial writes only its own slot.
			results[trial] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	if e.cfg.StatsFile != "" {
		if err := writeStats(e.cfg.StatsFile, results); err != nil {
			// Stats are a convenience; a write failure should not
			// discard a completed run.
			e.logger.Warn("failed to write stats file", zap.Error(err))
		}
	}

	summary := Summarize(results)
	e.logger.Info("experiment finished",
		zap.Uint32("trials", summary.TrialCount),
		zap.Float64("avg_freed_day", summary.AverageFreedDay),
		zap.Float64("avg_all_interrogated_day", summary.AverageAllInterrogatedDay))
	return summary, nil
}

func (e *Experiment) runTrial(ctx context.Context, trial uint32) (core.TrialResult, error) {
	rng := rand.New(rand.NewSource(trialSeed(e.seed, trial)))

	world, err := environment.New(e.cfg.Prisoners,
		environment.WithRand(rng),
		environment.WithStrategy(e.cfg.Strategy),
	)
	if err != nil {
		return core.TrialResult{}, err
	}

	runner := NewRunner(world,
		WithTrial(trial),
		WithLogPeriod(e.cfg.LogPeriod),
		WithMaxDays(e.cfg.MaxDays),
		WithBroker(e.broker),
		WithLogger(e.logger),
	)

	result, err := runner.Run(ctx)
	if err != nil {
		return core.TrialResult{}, err
	}

	e.logger.Debug("trial finished",
		zap.Uint32("trial", trial),
		zap.Uint32("freed_on_day", result.FreedOnDay),
		zap.Uint32("all_interrogated_on_day", result.AllInterrogatedOnDay))
	return result, nil
}

// Summarize reduces trial results into averages. The reduction is a
// commutative sum, so result order does not matter.
func Summarize(results []core.TrialResult) core.Summary {
	var freedSum, allSum float64
	for _, r := range results {
		freedSum += float64(r.FreedOnDay)
		allSum += float64(r.AllInterrogatedOnDay)
	}

	n := len(results)
	return core.Summary{
		TrialCount:                uint32(n),
		AverageFreedDay:           freedSum / float64(n),
		AverageAllInterrogatedDay: allSum / float64(n),
	}
}

// trialSeed derives an independent per-trial seed from the base seed
// using a splitmix64 step, so a trial's random stream depends only on
// the base seed and the trial index, not on worker scheduling.
func trialSeed(base int64, trial uint32) int64 {
	z := uint64(base) + (uint64(trial)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// writeStats appends per-trial results to a CSV file, one row per
// trial plus a header.
func writeStats(path string, results []core.TrialResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("Trial,FreedOnDay,AllInterrogatedOnDay\n"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(f, "%d,%d,%d\n", r.Trial, r.FreedOnDay, r.AllInterrogatedOnDay); err != nil {
			return err
		}
	}
	return nil
}
