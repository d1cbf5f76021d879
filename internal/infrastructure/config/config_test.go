package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/infrastructure/config"
)

const sampleYAML = `
database:
  driver: sqlite
  sqlite:
    path: ":memory:"
factory:
  starting_budget: 2500
  target_budget: 10000
  backoff: 2s
  manager: Marta
  carpenters: [Ana, Luis]
  repairmen: [Bo]
  machines:
    - id: saw-1
      max_durability: 10
      repair_time: 1500ms
    - id: lathe-1
      max_durability: 6
  raw_materials:
    Oak: 40
    pine: 20
generator:
  batch_size: 3
  interval: 10s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_ReadsFileAndAppliesDefaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, sampleYAML)

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2500.0, cfg.Factory.StartingBudget)
	assert.Equal(t, 2*time.Second, cfg.Factory.Backoff)
	assert.Equal(t, []string{"Ana", "Luis"}, cfg.Factory.Carpenters)
	require.Len(t, cfg.Factory.Machines, 2)
	assert.Equal(t, 1500*time.Millisecond, cfg.Factory.Machines[0].RepairTime)
	assert.Equal(t, 3*time.Second, cfg.Factory.Machines[1].RepairTime, "default repair time")
	assert.Equal(t, 40, cfg.Factory.RawMaterials["oak"])
	assert.Equal(t, 3, cfg.Generator.BatchSize)
	assert.Equal(t, 9, cfg.Generator.MaxQuantity)
	assert.Equal(t, 100, cfg.Factory.RestockQuantity)
	assert.Equal(t, 1.0, cfg.Factory.TimeScale)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("FACTORY_FACTORY_STARTING_BUDGET", "7000")
	t.Setenv("FACTORY_LOGGING_LEVEL", "debug")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 7000.0, cfg.Factory.StartingBudget)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_RejectsUnknownMaterial(t *testing.T) {
	path := writeConfig(t, `
factory:
  raw_materials:
    teak: 10
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "material")
}

func TestLoadConfig_RejectsDuplicateMachineIDs(t *testing.T) {
	path := writeConfig(t, `
factory:
  machines:
    - id: saw-1
      max_durability: 3
    - id: saw-1
      max_durability: 4
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate machine id")
}

func TestLoadConfig_RejectsInvertedJitter(t *testing.T) {
	path := writeConfig(t, `
generator:
  jitter_min: 3s
  jitter_max: 1s
`)

	_, err := config.LoadConfig(path)

	assert.Error(t, err)
}

func TestSetDefaults_EmptyConfigIsValid(t *testing.T) {
	cfg := &config.Config{}

	config.SetDefaults(cfg)

	assert.NoError(t, config.ValidateConfig(cfg))
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Factory.Backoff)
}

func TestLoadConfig_RejectsTargetBelowStartingBudget(t *testing.T) {
	path := writeConfig(t, `
factory:
  starting_budget: 5000
  target_budget: 4000
`)

	_, err := config.LoadConfig(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_budget")
}

func TestLoadConfig_DatabaseURLSelectsPostgres(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("DATABASE_URL", "postgres://factory:secret@db:5432/factory")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://factory:secret@db:5432/factory", cfg.Database.DSN())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "sqlite in memory",
			cfg:  config.DatabaseConfig{Driver: "sqlite"},
			want: ":memory:",
		},
		{
			name: "sqlite file with busy timeout",
			cfg: config.DatabaseConfig{Driver: "sqlite", SQLite: config.SQLiteConfig{
				Path: "factory.db", BusyTimeout: 2 * time.Second,
			}},
			want: "factory.db?_busy_timeout=2000",
		},
		{
			name: "postgres discrete fields",
			cfg: config.DatabaseConfig{Driver: "postgres", Postgres: config.PostgresConfig{
				Host: "db", Port: 5432, User: "u", Password: "p", Name: "factory", SSLMode: "disable",
			}},
			want: "host=db port=5432 user=u password=p dbname=factory sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
