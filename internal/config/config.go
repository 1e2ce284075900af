package config

import (
	"errors"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config validation errors
var (
	ErrInvalidMaxWorkers   = errors.New("max_workers cannot be negative")
	ErrInvalidMaxLoadBytes = errors.New("max_load_bytes must be positive")
	ErrInvalidLogFormat    = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel     = errors.New("log_level must be debug, info, warn, or error")
)

// Config holds library-wide tuning knobs, populated from ALIGNEDVEC_*
// environment variables.
type Config struct {
	// MaxWorkers bounds the number of goroutines a single bulk operation may
	// fan out to. 0 means runtime.NumCPU().
	MaxWorkers int `envconfig:"MAX_WORKERS" default:"0"`
	// MaxLoadBytes caps the payload size Load accepts before reserving
	// memory for a declared element count.
	MaxLoadBytes int64  `envconfig:"MAX_LOAD_BYTES" default:"1073741824"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`
}

// Validate checks the configuration and returns an error if invalid
func Validate(cfg *Config) error {
	if cfg.MaxWorkers < 0 {
		return ErrInvalidMaxWorkers
	}
	if cfg.MaxLoadBytes <= 0 {
		return ErrInvalidMaxLoadBytes
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return ErrInvalidLogFormat
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" && cfg.LogLevel != "error" {
		return ErrInvalidLogLevel
	}
	return nil
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ALIGNEDVEC", &cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var (
	defaultOnce sync.Once
	defaultCfg  Config
)

// Default returns the process-wide configuration, loaded once. Invalid
// environment values fall back to the documented defaults.
func Default() Config {
	defaultOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Config{
				MaxWorkers:   0,
				MaxLoadBytes: 1 << 30,
				LogLevel:     "info",
				LogFormat:    "json",
			}
		}
		defaultCfg = cfg
	})
	return defaultCfg
}

// Workers resolves MaxWorkers to a concrete goroutine budget.
func (c Config) Workers() int {
	if c.MaxWorkers > 0 {
		return c.MaxWorkers
	}
	return runtime.NumCPU()
}
