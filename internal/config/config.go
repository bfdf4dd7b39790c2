// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package config loads TaskHive configuration from a YAML file with
// command-line flag overrides.
package config

import (
	"strconv"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/taskhive/taskhive/internal/workspace"
)

// RetainForever is the retention value that exempts a kind from the reaper.
const RetainForever = "never"

// Config is the full TaskHive configuration.
type Config struct {
	DatabaseURL string       `koanf:"database_url"`
	LogFormat   string       `koanf:"log_format"`
	LogLevel    string       `koanf:"log_level"`
	MetricsAddr string       `koanf:"metrics_addr"`
	Reaper      ReaperConfig `koanf:"reaper"`

	// NotificationTTL is the default lifetime of a notification from
	// creation to hard expiry.
	NotificationTTL time.Duration `koanf:"notification_ttl"`

	// Retention maps an entity kind to its reap window: either a number
	// of seconds as a string, or "never".
	Retention map[string]string `koanf:"retention"`
}

// ReaperConfig controls the retention reaper daemon.
type ReaperConfig struct {
	Interval  time.Duration `koanf:"interval"`
	BatchSize int           `koanf:"batch_size"`
}

// Default returns the configuration defaults applied before any file or
// flag values.
func Default() Config {
	return Config{
		LogFormat:       "json",
		LogLevel:        "info",
		MetricsAddr:     ":9090",
		NotificationTTL: 30 * 24 * time.Hour,
		Reaper: ReaperConfig{
			Interval:  time.Hour,
			BatchSize: 500,
		},
		Retention: map[string]string{
			// Organizations are never physically removed.
			string(workspace.KindOrganization): RetainForever,
		},
	}
}

// Load reads configuration from path (optional) and applies flag overrides.
// Precedence: defaults < file < flags.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}
	// Unset flags surface as empty strings; fall back to the defaults.
	def := Default()
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = def.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks configuration consistency. Retention keys must name real
// entity kinds and values must be "never" or a non-negative second count.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	if c.Reaper.Interval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("reaper.interval must be positive")
	}
	if c.Reaper.BatchSize <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("reaper.batch_size must be positive")
	}
	if c.NotificationTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("notification_ttl must be positive")
	}
	for key, val := range c.Retention {
		kind := workspace.Kind(key)
		if !kind.Valid() {
			return oops.Code("CONFIG_INVALID").Errorf("retention: unknown entity kind %q", key)
		}
		if _, err := retentionWindow(val); err != nil {
			return oops.Code("CONFIG_INVALID").With("kind", key).Wrap(err)
		}
	}
	return nil
}

// RetentionWindow returns the reap window for kind. ok is false when the
// kind is retained forever or has no configured window.
func (c *Config) RetentionWindow(kind workspace.Kind) (window time.Duration, ok bool) {
	val, found := c.Retention[string(kind)]
	if !found || val == RetainForever {
		return 0, false
	}
	window, err := retentionWindow(val)
	if err != nil {
		// Validate rejects malformed values at load time.
		return 0, false
	}
	return window, true
}

func retentionWindow(val string) (time.Duration, error) {
	if val == RetainForever {
		return 0, nil
	}
	secs, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, oops.Errorf("retention value %q: want seconds or %q", val, RetainForever)
	}
	if secs < 0 {
		return 0, oops.Errorf("retention value %q: must be non-negative", val)
	}
	return time.Duration(secs) * time.Second, nil
}
