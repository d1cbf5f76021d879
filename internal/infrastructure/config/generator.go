package config

import "time"

// GeneratorConfig paces the random order generator
type GeneratorConfig struct {
	// Orders then only arrive through the CLI or the admin API
	Disabled bool `mapstructure:"disabled"`

	// Orders per batch
	BatchSize int `mapstructure:"batch_size" validate:"min=1"`

	// Pause between batches
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`

	// Random delay range between two orders of a batch
	JitterMin time.Duration `mapstructure:"jitter_min" validate:"gte=0"`
	JitterMax time.Duration `mapstructure:"jitter_max" validate:"gtefield=JitterMin"`

	MaxQuantity int `mapstructure:"max_quantity" validate:"min=1"`

	// Fixed seed for reproducible runs; 0 picks one at random
	Seed uint64 `mapstructure:"seed"`
}
