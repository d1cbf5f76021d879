package persistence

import (
	"time"
)

// SnapshotModel represents the snapshots table.
// Amounts are stored as decimal strings so no precision is lost on either driver.
type SnapshotModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	TakenAt        time.Time `gorm:"column:taken_at;not null;index"`
	BudgetStarting string    `gorm:"column:budget_starting;not null"`
	BudgetIncome   string    `gorm:"column:budget_income;not null"`
	BudgetExpenses string    `gorm:"column:budget_expenses;not null"`

	Employees []SnapshotEmployeeModel `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE;"`
	Machines  []SnapshotMachineModel  `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE;"`
	Stock     []SnapshotStockModel    `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE;"`
	Orders    []SnapshotOrderModel    `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE;"`
}

func (SnapshotModel) TableName() string {
	return "snapshots"
}

// SnapshotEmployeeModel represents the snapshot_employees table
type SnapshotEmployeeModel struct {
	ID         int    `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotID string `gorm:"column:snapshot_id;not null;index"`
	Position   int    `gorm:"column:position;not null"`
	EmployeeID string `gorm:"column:employee_id;not null"`
	Name       string `gorm:"column:name;not null"`
	Role       string `gorm:"column:role;not null"`
	Produced   int    `gorm:"column:produced;not null;default:0"`
	Repaired   int    `gorm:"column:repaired;not null;default:0"`
}

func (SnapshotEmployeeModel) TableName() string {
	return "snapshot_employees"
}

// SnapshotMachineModel represents the snapshot_machines table
type SnapshotMachineModel struct {
	ID            int    `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotID    string `gorm:"column:snapshot_id;not null;index"`
	Position      int    `gorm:"column:position;not null"`
	MachineID     string `gorm:"column:machine_id;not null"`
	MaxDurability int    `gorm:"column:max_durability;not null"`
	Durability    int    `gorm:"column:durability;not null"`
	RepairTimeMs  int64  `gorm:"column:repair_time_ms;not null"`
}

func (SnapshotMachineModel) TableName() string {
	return "snapshot_machines"
}

// SnapshotStockModel represents the snapshot_stock table.
// Raw material rows leave Furniture empty.
type SnapshotStockModel struct {
	ID         int    `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotID string `gorm:"column:snapshot_id;not null;index"`
	Furniture  string `gorm:"column:furniture"`
	Material   string `gorm:"column:material;not null"`
	Quantity   int    `gorm:"column:quantity;not null"`
}

func (SnapshotStockModel) TableName() string {
	return "snapshot_stock"
}

// SnapshotOrderModel represents the snapshot_orders table
type SnapshotOrderModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotID string    `gorm:"column:snapshot_id;not null;index"`
	Position   int       `gorm:"column:position;not null"`
	OrderID    string    `gorm:"column:order_id;not null"`
	Furniture  string    `gorm:"column:furniture;not null"`
	Material   string    `gorm:"column:material;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	TotalPrice string    `gorm:"column:total_price;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (SnapshotOrderModel) TableName() string {
	return "snapshot_orders"
}

// LedgerEntryModel represents the ledger_entries table
type LedgerEntryModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Kind          string    `gorm:"column:kind;not null;index"`
	Amount        string    `gorm:"column:amount;not null"`
	BalanceBefore string    `gorm:"column:balance_before;not null"`
	BalanceAfter  string    `gorm:"column:balance_after;not null"`
	Description   string    `gorm:"column:description;type:text"`
	Timestamp     time.Time `gorm:"column:timestamp;not null;index"`
}

func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// LogEntryModel represents the log_entries table
type LogEntryModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Component string    `gorm:"column:component;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON stored as string
}

func (LogEntryModel) TableName() string {
	return "log_entries"
}

// AllModels lists every table for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&SnapshotModel{},
		&SnapshotEmployeeModel{},
		&SnapshotMachineModel{},
		&SnapshotStockModel{},
		&SnapshotOrderModel{},
		&LedgerEntryModel{},
		&LogEntryModel{},
	}
}
