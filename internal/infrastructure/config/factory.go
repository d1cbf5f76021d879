package config

import "time"

// FactoryConfig holds simulation tuning and the initial roster
type FactoryConfig struct {
	StartingBudget float64 `mapstructure:"starting_budget" validate:"gte=0"`

	// The daemon stops once the budget reaches this value; 0 runs until signalled
	TargetBudget float64 `mapstructure:"target_budget" validate:"gte=0"`

	// How long a carpenter or the manager waits before retrying a missing resource
	Backoff time.Duration `mapstructure:"backoff"`

	// Multiplier on production and repair times (1 = real time)
	TimeScale float64 `mapstructure:"time_scale" validate:"gt=0"`

	// Units bought per material shortage
	RestockQuantity int `mapstructure:"restock_quantity" validate:"min=1"`

	Manager      string          `mapstructure:"manager"`
	Carpenters   []string        `mapstructure:"carpenters" validate:"dive,required"`
	Repairmen    []string        `mapstructure:"repairmen" validate:"dive,required"`
	Machines     []MachineConfig `mapstructure:"machines" validate:"dive"`
	RawMaterials map[string]int  `mapstructure:"raw_materials" validate:"dive,keys,material,endkeys,min=0"`
}

// MachineConfig describes one machine on the floor
type MachineConfig struct {
	ID            string        `mapstructure:"id" validate:"required"`
	MaxDurability int           `mapstructure:"max_durability" validate:"min=1"`
	RepairTime    time.Duration `mapstructure:"repair_time" validate:"gte=0"`
}
