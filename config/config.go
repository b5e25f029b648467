// Package config holds the configuration surface of the environment.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"trictrac/meta"
	"trictrac/opponent"
)

// Config configures an environment. Environment variables take precedence over a
// yaml file.
type Config struct {
	OpponentStrategy      string `env:"TRICTRAC_OPPONENT_STRATEGY"       envDefault:"random" yaml:"opponent_strategy"`
	MaxSteps              int    `env:"TRICTRAC_MAX_STEPS"               envDefault:"1000"   yaml:"max_steps"`
	OpponentMaxIterations int    `env:"TRICTRAC_OPPONENT_MAX_ITERATIONS" envDefault:"1000"   yaml:"opponent_max_iterations"`
	Seed                  uint64 `env:"TRICTRAC_SEED"                                        yaml:"seed"`
	LogLevel              string `env:"TRICTRAC_LOG_LEVEL"               envDefault:"info"   yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		OpponentStrategy:      opponent.RandomName,
		MaxSteps:              meta.DefaultMaxSteps,
		OpponentMaxIterations: meta.MaxOpponentIterations,
		LogLevel:              zerolog.LevelInfoValue,
	}
}

// FromEnv loads the configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	return cfg, cfg.Validate()
}

// Load reads a yaml file and applies environment overrides on top of it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	// read defaults from a tag no field carries so envDefault does not clobber the file
	if err := env.ParseWithOptions(&cfg, env.Options{DefaultValueTagName: "fileDefault"}); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs error
	if _, err := opponent.ByName(c.OpponentStrategy, c.Seed); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.MaxSteps <= 0 {
		errs = multierror.Append(errs, errors.Errorf("max steps must be positive, got %d", c.MaxSteps))
	}
	if c.OpponentMaxIterations <= 0 {
		errs = multierror.Append(errs, errors.Errorf("opponent max iterations must be positive, got %d", c.OpponentMaxIterations))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "log level"))
	}
	return errs
}

// Strategy builds the configured opponent strategy.
func (c Config) Strategy() (opponent.Strategy, error) {
	return opponent.ByName(c.OpponentStrategy, c.Seed)
}

// Level returns the configured log level, info when it cannot be parsed.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Logger derives a logger from the global one at the configured level.
func (c Config) Logger(component string) zerolog.Logger {
	return log.Level(c.Level()).With().Str("component", component).Logger()
}
