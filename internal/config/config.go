package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath     = "config.toml"
	DefaultCacheDir       = "data/media-cache"
	DefaultMaxConcurrency = 4
	DefaultIndexSize      = 1024
	DefaultMaxBytes       = 20 * 1024 * 1024
	DefaultTimeoutSeconds = 30
	DefaultRetryMax       = 3
	DefaultRetryBackoffMs = 500
)

type Config struct {
	Log   LogConfig   `toml:"log" yaml:"log"`
	Media MediaConfig `toml:"media" yaml:"media"`
	HTTP  HTTPConfig  `toml:"http" yaml:"http"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" yaml:"format" validate:"oneof=text json"`
}

type MediaConfig struct {
	CacheDir       string `toml:"cache_dir" yaml:"cache_dir" validate:"required"`
	MaxConcurrency int    `toml:"max_concurrency" yaml:"max_concurrency" validate:"min=1,max=64"`
	IndexSize      int    `toml:"index_size" yaml:"index_size" validate:"min=1"`
	MaxBytes       int64  `toml:"max_bytes" yaml:"max_bytes" validate:"min=1"`
}

type HTTPConfig struct {
	TimeoutSeconds int               `toml:"timeout_seconds" yaml:"timeout_seconds" validate:"min=1"`
	RetryMax       int               `toml:"retry_max" yaml:"retry_max" validate:"min=1,max=10"`
	RetryBackoffMs int               `toml:"retry_backoff_ms" yaml:"retry_backoff_ms" validate:"min=0"`
	UserAgent      string            `toml:"user_agent" yaml:"user_agent"`
	Headers        map[string]string `toml:"headers" yaml:"headers"`
}

func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c HTTPConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Media: MediaConfig{
			CacheDir:       DefaultCacheDir,
			MaxConcurrency: DefaultMaxConcurrency,
			IndexSize:      DefaultIndexSize,
			MaxBytes:       DefaultMaxBytes,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
			RetryMax:       DefaultRetryMax,
			RetryBackoffMs: DefaultRetryBackoffMs,
		},
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error. Files ending in .yaml or .yml are decoded as YAML, anything
// else as TOML.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode toml: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
