package config

import "time"

// DaemonConfig holds settings for the long-running factory process
type DaemonConfig struct {
	// Unix socket the gRPC service listens on
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	// Single-instance lock
	PIDFile string `mapstructure:"pid_file" validate:"required"`

	// Admin HTTP address (health, snapshot, metrics); empty disables it
	HTTPAddress string `mapstructure:"http_address"`

	// Where the roster export is written when the target budget is reached
	ExportDir string `mapstructure:"export_dir"`

	// Export formats written on shutdown: json, xml, yaml
	ExportFormats []string `mapstructure:"export_formats" validate:"dive,oneof=json xml yaml"`

	// Save a snapshot to the database on shutdown
	SnapshotOnExit bool `mapstructure:"snapshot_on_exit"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
