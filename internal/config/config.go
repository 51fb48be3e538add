// Package config resolves CLI settings from an optional .env file and
// FORMTEMPLATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formtemplate/pkg/export"
)

// Namespace prefixes every environment key read by Load.
const Namespace = "FORMTEMPLATE"

// Environment keys, without the namespace prefix.
const (
	KeyOutput   = "OUTPUT"
	KeyFormat   = "FORMAT"
	KeyLogLevel = "LOG_LEVEL"
	KeyLogJSON  = "LOG_JSON"
)

// ErrInvalidConfig wraps every value that fails to parse.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config holds the settings shared by all commands.
type Config struct {
	Output   string
	Format   export.Format
	LogLevel zapcore.Level
	LogJSON  bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Output:   export.DefaultFilename,
		Format:   export.FormatJSON,
		LogLevel: zapcore.WarnLevel,
	}
}

// Load reads envFile (when set) or ./.env (when present) into the process
// environment and resolves the configuration from it. A missing default
// .env file is not an error; a missing explicit one is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the configuration through lookup, falling back to
// Default for unset keys.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		value, ok := lookup(EnvKey(key))
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}

	if value, ok := get(KeyOutput); ok {
		cfg.Output = value
		cfg.Format = export.FormatFromPath(value)
	}
	if value, ok := get(KeyFormat); ok {
		format, err := export.ParseFormat(value)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvKey(KeyFormat), err)
		}
		cfg.Format = format
	}
	if value, ok := get(KeyLogLevel); ok {
		level, err := zapcore.ParseLevel(value)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvKey(KeyLogLevel), err)
		}
		cfg.LogLevel = level
	}
	if value, ok := get(KeyLogJSON); ok {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			cfg.LogJSON = true
		case "0", "false", "no", "off":
			cfg.LogJSON = false
		default:
			return Config{}, fmt.Errorf("%w: %s: %q", ErrInvalidConfig, EnvKey(KeyLogJSON), value)
		}
	}
	return cfg, nil
}

// EnvKey returns the namespaced environment variable for key.
func EnvKey(key string) string {
	return fmt.Sprintf("%s_%s", Namespace, key)
}

// Logger builds the CLI logger. Console encoding writes to stderr so that
// commands printing documents to stdout stay pipeable.
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if c.LogJSON {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}
