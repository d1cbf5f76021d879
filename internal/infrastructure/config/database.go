package config

import (
	"fmt"
	"net/url"
	"time"
)

// DatabaseConfig selects where snapshots, ledger entries and logs are kept
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	// File path, or ":memory:"
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" validate:"gte=0"`
}

type PostgresConfig struct {
	// Takes precedence over the discrete fields below
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN renders the connection string for the selected driver
func (c DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		p := c.Postgres
		if p.URL != "" {
			return p.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
	}

	path := c.SQLite.Path
	if path == "" || path == ":memory:" {
		return ":memory:"
	}
	if c.SQLite.BusyTimeout > 0 {
		q := url.Values{}
		q.Set("_busy_timeout", fmt.Sprint(c.SQLite.BusyTimeout.Milliseconds()))
		return path + "?" + q.Encode()
	}
	return path
}
