package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeklund/prisonlight/pkg/config"
	"github.com/jeklund/prisonlight/pkg/experiment"
	"github.com/jeklund/prisonlight/pkg/messaging"
)

var (
	flagConfig      string
	flagPrisoners   int
	flagRepetitions uint32
	flagLogPeriod   uint32
	flagMaxDays     uint32
	flagWorkers     int
	flagSeed        int64
	flagStrategy    string
	flagStatsFile   string
	flagLogLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prisonlight",
		Short: "Prisonlight simulates the 100-prisoners-and-a-light-switch puzzle and aggregates escape statistics over repeated trials.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		RunE:  runExperiment,
	}

	runCmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	runCmd.Flags().IntVar(&flagPrisoners, "prisoner-count", 100, "population size")
	runCmd.Flags().Uint32Var(&flagRepetitions, "repetitions", 1, "number of independent trials")
	runCmd.Flags().Uint32Var(&flagLogPeriod, "log-period", 1000, "progress log cadence in days (0 disables)")
	runCmd.Flags().Uint32Var(&flagMaxDays, "max-days", 0, "abort a trial after this many days (0 means no bound)")
	runCmd.Flags().IntVar(&flagWorkers, "workers", 0, "trials run concurrently (0 means all CPUs)")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "base random seed (0 derives one from the clock)")
	runCmd.Flags().StringVar(&flagStrategy, "strategy", "", "agent strategy name")
	runCmd.Flags().StringVar(&flagStatsFile, "stats-file", "", "write per-trial results to this CSV file")
	runCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		cancel()
	}()

	broker := messaging.NewBroker()
	defer broker.Reset()

	obsCh := make(chan messaging.Observation, 256)
	if err := broker.Subscribe("console", obsCh); err != nil {
		return err
	}
	reporterDone := make(chan struct{})
	go reportProgress(logger, obsCh, reporterDone)

	exp, err := experiment.New(cfg,
		experiment.WithExperimentLogger(logger),
		experiment.WithExperimentBroker(broker),
	)
	if err != nil {
		return err
	}

	summary, runErr := exp.Run(ctx)

	// Runners are finished; stop the reporter before touching stdout.
	if err := broker.Unsubscribe("console"); err != nil {
		logger.Warn("failed to unsubscribe console reporter", zap.Error(err))
	}
	close(obsCh)
	<-reporterDone

	if runErr != nil {
		logger.Error("simulation failed", zap.Error(runErr))
		return runErr
	}

	logger.Info("done",
		zap.Uint32("trials", summary.TrialCount),
		zap.Float64("avg_freed_day", summary.AverageFreedDay),
		zap.Float64("avg_all_interrogated_day", summary.AverageAllInterrogatedDay))
	return nil
}

// reportProgress logs observations published by trial runners until
// the channel is closed.
func reportProgress(logger *zap.Logger, obsCh <-chan messaging.Observation, done chan<- struct{}) {
	defer close(done)
	for obs := range obsCh {
		switch obs.Kind {
		case messaging.KindTrialDone:
			logger.Info("trial complete",
				zap.Uint32("trial", obs.Trial),
				zap.Uint32("day", obs.Day))
		default:
			logger.Info("progress",
				zap.Uint32("trial", obs.Trial),
				zap.Uint32("day", obs.Day),
				zap.Uint32("max_known", obs.BestKnown))
		}
	}
}

// buildConfig layers defaults, the optional config file, environment
// overrides, and finally any explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("prisoner-count") {
		cfg.Prisoners = flagPrisoners
	}
	if flags.Changed("repetitions") {
		cfg.Repetitions = flagRepetitions
	}
	if flags.Changed("log-period") {
		cfg.LogPeriod = flagLogPeriod
	}
	if flags.Changed("max-days") {
		cfg.MaxDays = flagMaxDays
	}
	if flags.Changed("workers") {
		cfg.Workers = flagWorkers
		if cfg.Workers == 0 {
			cfg.Workers = runtime.GOMAXPROCS(0)
		}
	}
	if flags.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if flagStrategy != "" {
		cfg.Strategy = flagStrategy
	}
	if flagStatsFile != "" {
		cfg.StatsFile = flagStatsFile
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds a console logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core), nil
}
