package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Factory   FactoryConfig   `mapstructure:"factory"`
	Generator GeneratorConfig `mapstructure:"generator"`
}

// LoadConfig resolves the configuration. Later sources win:
// defaults, then factory.yaml, then .env and FACTORY_* variables.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v, err := readSources(configPath)
	if err != nil {
		return nil, err
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	SetDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// readSources layers the config file and environment into one viper.
// A missing file is fine; an unreadable one is not.
func readSources(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("FACTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if configPath == "" {
		v.SetConfigName("factory")
		v.SetConfigType("yaml")
		for _, dir := range []string{".", "./configs", "/etc/factory"} {
			v.AddConfigPath(dir)
		}
	} else {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL, unprefixed, switches the store to postgres
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.driver", "postgres")
		v.Set("database.postgres.url", dbURL)
	}
	return v, nil
}

// AutomaticEnv only reaches keys viper already knows about, so the scalar
// settings people override most are bound explicitly
func bindEnv(v *viper.Viper) {
	keys := []string{
		"database.driver", "database.sqlite.path", "database.postgres.url",
		"daemon.socket_path", "daemon.pid_file", "daemon.http_address",
		"logging.level", "logging.format", "logging.output",
		"metrics.enabled",
		"factory.starting_budget", "factory.target_budget", "factory.time_scale",
		"generator.batch_size", "generator.interval",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// LoadConfigOrDefault falls back to pure defaults when loading fails
func LoadConfigOrDefault(configPath string) *Config {
	if cfg, err := LoadConfig(configPath); err == nil {
		return cfg
	}
	cfg := new(Config)
	SetDefaults(cfg)
	return cfg
}
