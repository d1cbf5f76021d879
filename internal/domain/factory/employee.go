package factory

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Role tags an employee kind
type Role string

const (
	RoleCarpenter Role = "CARPENTER"
	RoleRepairman Role = "REPAIRMAN"
	RoleManager   Role = "MANAGER"
)

// ParseRole accepts role names case-insensitively
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleCarpenter, RoleRepairman, RoleManager:
		return r, nil
	}
	return "", &ErrInvalidArgument{Field: "role", Reason: "unknown role " + s}
}

var (
	baseSalary        = decimal.NewFromInt(1000)
	carpenterPerUnit  = decimal.RequireFromString("125.5")
	repairmanPerFix   = decimal.RequireFromString("110.7")
	managerFlatSalary = decimal.NewFromInt(5000)
)

// Employee is anyone on the factory payroll.
//
// Busy is claimed with TryClaim (compare-and-swap) and given back with
// MarkIdle, which wakes everyone waiting for a free employee.
type Employee interface {
	ID() string
	Name() string
	Role() Role
	CalculateSalary() decimal.Decimal
	IsBusy() bool
	TryClaim() bool
	MarkIdle()
	Attach(sink EventSink, released *shared.Broadcast)
}

// staff carries the parts every role shares
type staff struct {
	id   string
	name string
	busy atomic.Bool

	mu       sync.Mutex
	sink     EventSink
	released *shared.Broadcast
}

func (s *staff) init(id, name string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &ErrInvalidArgument{Field: "employee id", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(name) == "" {
		name = id
	}
	s.id = id
	s.name = name
	s.sink = noOpSink{}
	s.released = &shared.Broadcast{}
	return nil
}

func (s *staff) ID() string   { return s.id }
func (s *staff) Name() string { return s.name }
func (s *staff) IsBusy() bool { return s.busy.Load() }

// TryClaim marks the employee busy if it was idle
func (s *staff) TryClaim() bool {
	return s.busy.CompareAndSwap(false, true)
}

// MarkIdle clears the busy flag and signals the registry
func (s *staff) MarkIdle() {
	s.busy.Store(false)
	s.mu.Lock()
	released := s.released
	s.mu.Unlock()
	released.Notify()
}

// Attach wires the employee to the event sink and the registry's release signal
func (s *staff) Attach(sink EventSink, released *shared.Broadcast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sink != nil {
		s.sink = sink
	}
	if released != nil {
		s.released = released
	}
}

func (s *staff) eventSink() EventSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink
}

// Carpenter builds furniture. Salary grows with produced units.
type Carpenter struct {
	staff
	produced atomic.Int64
}

func NewCarpenter(id, name string) (*Carpenter, error) {
	return ReconstructCarpenter(id, name, 0)
}

// ReconstructCarpenter restores a carpenter with a saved produced count
func ReconstructCarpenter(id, name string, produced int) (*Carpenter, error) {
	if produced < 0 {
		return nil, &ErrInvalidArgument{Field: "produced", Reason: "cannot be negative"}
	}
	c := &Carpenter{}
	if err := c.init(id, name); err != nil {
		return nil, err
	}
	c.produced.Store(int64(produced))
	return c, nil
}

func (c *Carpenter) Role() Role    { return RoleCarpenter }
func (c *Carpenter) Produced() int { return int(c.produced.Load()) }

// RecordProduced counts one finished unit
func (c *Carpenter) RecordProduced() {
	c.produced.Add(1)
}

// CalculateSalary is 1000 + produced × 125.5
func (c *Carpenter) CalculateSalary() decimal.Decimal {
	return CarpenterSalary(c.Produced())
}

// NotifyCompleted raises ProductionCompleted for a finished order
func (c *Carpenter) NotifyCompleted(order *Order) {
	c.eventSink().ProductionCompleted(ProductionCompleted{Order: order, CarpenterID: c.id})
}

// CarpenterSalary is the pure salary function for a produced count
func CarpenterSalary(produced int) decimal.Decimal {
	return baseSalary.Add(carpenterPerUnit.Mul(decimal.NewFromInt(int64(produced))))
}

// Repairman fixes broken machines. Salary grows with repairs.
type Repairman struct {
	staff
	repaired atomic.Int64
}

func NewRepairman(id, name string) (*Repairman, error) {
	return ReconstructRepairman(id, name, 0)
}

// ReconstructRepairman restores a repairman with a saved repair count
func ReconstructRepairman(id, name string, repaired int) (*Repairman, error) {
	if repaired < 0 {
		return nil, &ErrInvalidArgument{Field: "repaired", Reason: "cannot be negative"}
	}
	r := &Repairman{}
	if err := r.init(id, name); err != nil {
		return nil, err
	}
	r.repaired.Store(int64(repaired))
	return r, nil
}

func (r *Repairman) Role() Role    { return RoleRepairman }
func (r *Repairman) Repaired() int { return int(r.repaired.Load()) }

// RecordRepair counts one repaired machine
func (r *Repairman) RecordRepair() {
	r.repaired.Add(1)
}

// CalculateSalary is 1000 + repaired × 110.7
func (r *Repairman) CalculateSalary() decimal.Decimal {
	return baseSalary.Add(repairmanPerFix.Mul(decimal.NewFromInt(r.repaired.Load())))
}

// Manager supervises the floor. Flat salary.
type Manager struct {
	staff
}

func NewManager(id, name string) (*Manager, error) {
	m := &Manager{}
	if err := m.init(id, name); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) Role() Role                       { return RoleManager }
func (m *Manager) CalculateSalary() decimal.Decimal { return managerFlatSalary }
