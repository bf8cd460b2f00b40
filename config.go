package ruleflow

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultNamespace = "ruleflow"
	DefaultLogLevel  = "info"
)

// Config holds the configuration for a flow instance. Configuration can be
// set via environment variables with the specified defaults.
type Config struct {
	// Namespace distinguishes this flow's persisted keys from other flows
	// sharing the same storage.
	Namespace string `env:"RULEFLOW_NAMESPACE" envDefault:"ruleflow"`

	// LogLevel must be one of (debug, info, warn, error, fatal, panic,
	// disabled, trace).
	LogLevel string `env:"RULEFLOW_LOG_LEVEL" envDefault:"info"`

	// LogPretty enables the human readable console writer.
	LogPretty bool `env:"RULEFLOW_LOG_PRETTY" envDefault:"false"`

	// StepInterval is the wall-clock interval between evolution steps when
	// the flow runs on its own loop.
	StepInterval time.Duration `env:"RULEFLOW_STEP_INTERVAL" envDefault:"1s"`

	// MaxSteps bounds EvolveUntilInert.
	MaxSteps int `env:"RULEFLOW_MAX_STEPS" envDefault:"1000"`

	// RedisAddress enables snapshot persistence when set.
	RedisAddress  string `env:"REDIS_ADDRESS"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

func loadConfig() (Config, error) {
	cfg := Config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse flow config")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate config")
	}

	return cfg, nil
}

// Validate performs validation on the configuration.
func (cfg *Config) Validate() error {
	if cfg.Namespace == "" {
		return eris.New("namespace cannot be empty")
	}
	if strings.ContainsAny(cfg.Namespace, " :") {
		return eris.Errorf("namespace %q cannot contain spaces or colons", cfg.Namespace)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	if cfg.StepInterval <= 0 {
		return eris.New("step interval must be positive")
	}
	if cfg.MaxSteps <= 0 {
		return eris.New("max steps must be positive")
	}
	return nil
}

func (cfg *Config) setLogger() {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.NewConsoleWriter())
	}
}
