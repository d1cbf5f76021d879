package config

import "time"

// MetricsConfig holds metrics collection configuration.
// Metrics are exposed on the daemon's admin HTTP server.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled"`

	// Path for the metrics endpoint (default: /metrics)
	Path string `mapstructure:"path"`

	// How often gauges are refreshed from the factory state
	PollInterval time.Duration `mapstructure:"poll_interval"`
}
