package enterprise

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// Snapshot is a read-only, point-in-time view of the whole factory.
// Each part is copied under its own lock, so parts may be taken a few
// instants apart from each other.
type Snapshot struct {
	ID               string
	TakenAt          time.Time
	Budget           BudgetSnapshot
	Manager          *EmployeeSnapshot
	Carpenters       []EmployeeSnapshot
	Repairmen        []EmployeeSnapshot
	Machines         []factory.MachineState
	RawMaterials     map[factory.MaterialKind]int
	FinishedProducts []ProductCount
	PendingOrders    []OrderSnapshot
	Jobs             []factory.JobState
}

type BudgetSnapshot struct {
	Starting decimal.Decimal
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Current  decimal.Decimal
}

type EmployeeSnapshot struct {
	ID       string
	Name     string
	Role     factory.Role
	Busy     bool
	Produced int
	Repaired int
	Salary   decimal.Decimal
}

type ProductCount struct {
	Product  factory.Product
	Quantity int
}

type OrderSnapshot struct {
	ID         string
	Furniture  factory.FurnitureKind
	Material   factory.MaterialKind
	Quantity   int
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

// Snapshot copies the current factory state
func (e *Enterprise) Snapshot() Snapshot {
	b := e.budget
	snap := Snapshot{
		TakenAt: e.clock.Now(),
		Budget: BudgetSnapshot{
			Starting: b.Starting(),
			Income:   b.Income(),
			Expenses: b.Expenses(),
			Current:  b.Current(),
		},
		RawMaterials: e.warehouse.RawMaterials(),
		Jobs:         e.Jobs(),
	}

	if m, ok := e.Manager(); ok {
		ms := describeEmployee(m)
		snap.Manager = &ms
	}
	for _, emp := range e.Employees() {
		switch emp.Role() {
		case factory.RoleCarpenter:
			snap.Carpenters = append(snap.Carpenters, describeEmployee(emp))
		case factory.RoleRepairman:
			snap.Repairmen = append(snap.Repairmen, describeEmployee(emp))
		}
	}

	for _, m := range e.Machines() {
		snap.Machines = append(snap.Machines, m.State())
	}

	for product, qty := range e.warehouse.FinishedProducts() {
		snap.FinishedProducts = append(snap.FinishedProducts, ProductCount{Product: product, Quantity: qty})
	}
	sort.Slice(snap.FinishedProducts, func(i, j int) bool {
		return snap.FinishedProducts[i].Product.String() < snap.FinishedProducts[j].Product.String()
	})

	for _, o := range e.PendingOrders() {
		snap.PendingOrders = append(snap.PendingOrders, OrderSnapshot{
			ID:         o.ID(),
			Furniture:  o.Furniture(),
			Material:   o.Material(),
			Quantity:   o.Quantity(),
			TotalPrice: o.TotalPrice(),
			CreatedAt:  o.CreatedAt(),
		})
	}
	return snap
}

func describeEmployee(emp factory.Employee) EmployeeSnapshot {
	s := EmployeeSnapshot{
		ID:     emp.ID(),
		Name:   emp.Name(),
		Role:   emp.Role(),
		Busy:   emp.IsBusy(),
		Salary: emp.CalculateSalary(),
	}
	switch v := emp.(type) {
	case *factory.Carpenter:
		s.Produced = v.Produced()
	case *factory.Repairman:
		s.Repaired = v.Repaired()
	}
	return s
}

// Roster returns carpenters and repairmen sorted by salary, highest first
func (s Snapshot) Roster() []EmployeeSnapshot {
	roster := make([]EmployeeSnapshot, 0, len(s.Carpenters)+len(s.Repairmen))
	roster = append(roster, s.Carpenters...)
	roster = append(roster, s.Repairmen...)
	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].Salary.GreaterThan(roster[j].Salary)
	})
	return roster
}
