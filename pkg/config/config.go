package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/jeklund/prisonlight/pkg/strategy"
)

// Config holds everything needed to run an experiment.
type Config struct {
	// Prisoners is the population size P.
	Prisoners int `yaml:"prisoners"`
	// Repetitions is the number of independent trials.
	Repetitions uint32 `yaml:"repetitions"`
	// LogPeriod is the progress log cadence in days; 0 disables.
	LogPeriod uint32 `yaml:"log_period"`
	// MaxDays aborts a trial that runs past this bound; 0 disables.
	// The protocol terminates only probabilistically, so long-running
	// batch use may want a ceiling.
	MaxDays uint32 `yaml:"max_days"`
	// Workers is the number of trials run concurrently.
	Workers int `yaml:"workers"`
	// Seed is the base random seed; 0 derives one from the clock.
	Seed int64 `yaml:"seed"`
	// Strategy names the agent protocol to simulate.
	Strategy string `yaml:"strategy"`
	// StatsFile, when set, receives per-trial results as CSV.
	StatsFile string `yaml:"stats_file"`

	Logging LogConfig `yaml:"logging"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the stock configuration: 100 prisoners, one trial,
// progress every 1000 days.
func Default() *Config {
	return &Config{
		Prisoners:   100,
		Repetitions: 1,
		LogPeriod:   1000,
		Workers:     runtime.GOMAXPROCS(0),
		Strategy:    strategy.DayCounter,
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays PRISONLIGHT_* environment variables onto the
// config. Unset variables leave the existing values untouched.
func (c *Config) ApplyEnv() error {
	if err := envInt("PRISONLIGHT_PRISONERS", &c.Prisoners); err != nil {
		return err
	}
	if err := envUint32("PRISONLIGHT_REPETITIONS", &c.Repetitions); err != nil {
		return err
	}
	if err := envUint32("PRISONLIGHT_LOG_PERIOD", &c.LogPeriod); err != nil {
		return err
	}
	if err := envUint32("PRISONLIGHT_MAX_DAYS", &c.MaxDays); err != nil {
		return err
	}
	if err := envInt("PRISONLIGHT_WORKERS", &c.Workers); err != nil {
		return err
	}
	if err := envInt64("PRISONLIGHT_SEED", &c.Seed); err != nil {
		return err
	}
	if v := os.Getenv("PRISONLIGHT_STRATEGY"); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv("PRISONLIGHT_STATS_FILE"); v != "" {
		c.StatsFile = v
	}
	if v := os.Getenv("PRISONLIGHT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate rejects configurations that must not reach the simulation.
func (c *Config) Validate() error {
	if c.Prisoners < 1 {
		return fmt.Errorf("prisoner count must be at least 1, got %d", c.Prisoners)
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1, got %d", c.Repetitions)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := strategy.New(c.Strategy); err != nil {
		return err
	}
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", name, v, err)
	}
	*dst = n
	return nil
}

func envUint32(name string, dst *uint32) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", name, v, err)
	}
	*dst = uint32(n)
	return nil
}

func envInt64(name string, dst *int64) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", name, v, err)
	}
	*dst = n
	return nil
}
