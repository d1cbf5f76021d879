package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrescamacho/furniture-factory/internal/adapters/persistence"
	"github.com/andrescamacho/furniture-factory/internal/infrastructure/config"
)

var dialects = map[string]func(dsn string) gorm.Dialector{
	"postgres": postgres.Open,
	"sqlite":   sqlite.Open,
}

// NewConnection opens the configured store and brings the schema up to date
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	open, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}
	switch cfg.Driver {
	case "postgres":
		pool.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		pool.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		pool.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	case "sqlite":
		// each new connection to ":memory:" would see an empty database
		pool.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(persistence.AllModels()...); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// NewTestConnection opens a migrated in-memory SQLite database
func NewTestConnection() (*gorm.DB, error) {
	return NewConnection(&config.DatabaseConfig{Driver: "sqlite"})
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	pool, err := db.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}
