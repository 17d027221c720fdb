package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file and env
// vars. Precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if MATCHD_CONFIG is set
//  3. env (prefix MATCHD_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MATCHD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// MATCHD_SCORE_THRESHOLD -> score_threshold, matching the koanf tags.
	envProvider := env.Provider("MATCHD_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "matchd_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ScoreThreshold < 0 || c.ScoreThreshold >= 1:
		return fmt.Errorf("%w: score_threshold must be in [0,1)", ErrInvalidConfig)
	case c.SweepIntervalSeconds <= 0:
		return fmt.Errorf("%w: sweep_interval_seconds must be positive", ErrInvalidConfig)
	case c.SessionTTLSeconds != 0 && c.SessionTTLSeconds <= c.SweepIntervalSeconds:
		return fmt.Errorf("%w: session_ttl_seconds must exceed the sweep interval", ErrInvalidConfig)
	case c.JobQueueSize <= 0 || c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count and job_queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
