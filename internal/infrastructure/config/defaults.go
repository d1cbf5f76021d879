package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	db := &cfg.Database
	if db.Driver == "" {
		db.Driver = "sqlite"
	}
	if db.SQLite.Path == "" {
		db.SQLite.Path = "factory.db"
	}
	if db.SQLite.BusyTimeout == 0 {
		db.SQLite.BusyTimeout = 5 * time.Second
	}
	if db.Postgres.Host == "" {
		db.Postgres.Host = "localhost"
	}
	if db.Postgres.Port == 0 {
		db.Postgres.Port = 5432
	}
	if db.Postgres.SSLMode == "" {
		db.Postgres.SSLMode = "disable"
	}
	if db.Postgres.MaxOpenConns == 0 {
		db.Postgres.MaxOpenConns = 10
	}
	if db.Postgres.MaxIdleConns == 0 {
		db.Postgres.MaxIdleConns = 2
	}
	if db.Postgres.ConnMaxLifetime == 0 {
		db.Postgres.ConnMaxLifetime = 5 * time.Minute
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/furniture-factory.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/furniture-factory.pid"
	}
	if cfg.Daemon.ExportDir == "" {
		cfg.Daemon.ExportDir = "."
	}
	if len(cfg.Daemon.ExportFormats) == 0 {
		cfg.Daemon.ExportFormats = []string{"json", "xml"}
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.PollInterval == 0 {
		cfg.Metrics.PollInterval = 5 * time.Second
	}

	// Factory defaults
	if cfg.Factory.Backoff == 0 {
		cfg.Factory.Backoff = 5 * time.Second
	}
	if cfg.Factory.TimeScale == 0 {
		cfg.Factory.TimeScale = 1
	}
	if cfg.Factory.RestockQuantity == 0 {
		cfg.Factory.RestockQuantity = 100
	}
	for i := range cfg.Factory.Machines {
		if cfg.Factory.Machines[i].RepairTime == 0 {
			cfg.Factory.Machines[i].RepairTime = 3 * time.Second
		}
	}

	// Generator defaults
	if cfg.Generator.BatchSize == 0 {
		cfg.Generator.BatchSize = 5
	}
	if cfg.Generator.Interval == 0 {
		cfg.Generator.Interval = 5 * time.Second
	}
	if cfg.Generator.JitterMin == 0 && cfg.Generator.JitterMax == 0 {
		cfg.Generator.JitterMin = 1 * time.Second
		cfg.Generator.JitterMax = 2 * time.Second
	}
	if cfg.Generator.MaxQuantity == 0 {
		cfg.Generator.MaxQuantity = 9
	}
}
