// Package config loads mmbcheck settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/mmbverify/errors"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config holds settings read from MMBCHECK_* variables. Command-line
// flags override them.
type Config struct {
	LogLevel   string `env:"MMBCHECK_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"MMBCHECK_LOG_FORMAT" envDefault:"console"`
	AllowSorry bool   `env:"MMBCHECK_ALLOW_SORRY" envDefault:"false"`
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse env")
	}
	return nil
}

// Logger builds a zap logger for the configured level and format.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}

	var zc zap.Config
	switch c.LogFormat {
	case FormatJSON:
		zc = zap.NewProductionConfig()
	case FormatConsole, "":
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	default:
		return nil, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("log format %q: want %s or %s", c.LogFormat, FormatConsole, FormatJSON))
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
