// Package config defines service configuration and loading.
//
// Conventions:
// - Defaults come from New; file and env layers override them.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HandshakeSecret signs/verifies session handshake tokens.
	HandshakeSecret string `koanf:"handshake_secret"`

	// ScoreThreshold is the minimum overall score for a match result.
	ScoreThreshold float64 `koanf:"score_threshold"`

	// WorkerCount sets the number of match-job workers.
	WorkerCount int `koanf:"worker_count"`

	// JobQueueSize bounds the in-memory match-job queue.
	JobQueueSize int `koanf:"job_queue_size"`

	// DedupeSize bounds the notification idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SweepIntervalSeconds is the liveness sweep cadence.
	SweepIntervalSeconds int `koanf:"sweep_interval_seconds"`

	// SessionTTLSeconds is the maximum heartbeat age before eviction.
	// Defaults to 3x the sweep interval when zero.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// DeliveryTimeoutMS bounds each per-channel delivery attempt.
	DeliveryTimeoutMS int `koanf:"delivery_timeout_ms"`

	// StreamBuffer sets the per-session stream channel buffer.
	StreamBuffer int `koanf:"stream_buffer"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		HandshakeSecret:      "",
		ScoreThreshold:       0.30,
		WorkerCount:          runtime.NumCPU() * 2,
		JobQueueSize:         10_000,
		DedupeSize:           50_000,
		SweepIntervalSeconds: 30,
		SessionTTLSeconds:    0,
		DeliveryTimeoutMS:    3000,
		StreamBuffer:         64,
	}
}
