package enterprise

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/furniture-factory/internal/adapters/metrics"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/application/events"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// maxFinishedJobs bounds how many finished jobs are kept for status queries
const maxFinishedJobs = 200

// Enterprise is the shared-state hub of one running factory.
//
// It owns the employee registry, the machines, the warehouse, the order
// queue and the budget, and raises the four notification classes on its
// bus. One instance is built by the composition root and injected into
// every component that needs it.
//
// Lock domains (never nested):
//   - registryMu: employees and manager
//   - machinesMu: machine list; held while scanning for a free machine so
//     find-and-acquire is atomic across workers
//   - queueMu: order queue and jobs
type Enterprise struct {
	registryMu sync.RWMutex
	manager    *factory.Manager
	employees  []factory.Employee
	byID       map[string]factory.Employee
	released   shared.Broadcast

	machinesMu   sync.Mutex
	machines     []*factory.Machine
	availability shared.Broadcast

	queueMu sync.Mutex
	queue   []*factory.Order
	jobs    []*factory.Job

	warehouse *factory.Warehouse
	budget    *factory.Budget
	bus       *events.Bus
	ledger    factory.LedgerRepository
	clock     shared.Clock
}

// Option configures an Enterprise
type Option func(*Enterprise)

// WithClock injects the clock used for orders, jobs and ledger entries
func WithClock(clock shared.Clock) Option {
	return func(e *Enterprise) { e.clock = clock }
}

// WithLedgerRepository persists every budget mutation
func WithLedgerRepository(repo factory.LedgerRepository) Option {
	return func(e *Enterprise) { e.ledger = repo }
}

// WithBus replaces the default event bus
func WithBus(bus *events.Bus) Option {
	return func(e *Enterprise) { e.bus = bus }
}

// New creates an enterprise with the given starting budget
func New(ctx context.Context, startingBudget decimal.Decimal, opts ...Option) *Enterprise {
	e := &Enterprise{
		byID:      make(map[string]factory.Employee),
		warehouse: factory.NewWarehouse(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = shared.NewRealClock()
	}
	if e.bus == nil {
		e.bus = events.NewBus(ctx)
	}
	e.budget = factory.NewBudget(startingBudget, e.clock)
	e.warehouse.Attach(e.bus)
	e.bus.OnDroppedDepletion(e.warehouse.RearmShortage)
	return e
}

// Events returns the bus carrying the factory's notifications
func (e *Enterprise) Events() *events.Bus { return e.bus }

// Clock returns the enterprise clock
func (e *Enterprise) Clock() shared.Clock { return e.clock }

// Warehouse returns the shared inventory
func (e *Enterprise) Warehouse() *factory.Warehouse { return e.warehouse }

// AddRawMaterial stocks the warehouse
func (e *Enterprise) AddRawMaterial(kind factory.MaterialKind, quantity int) error {
	return e.warehouse.AddRawMaterial(kind, quantity)
}

// Employee registry

// AddEmployee registers an employee and wires it to the bus and the
// registry's release signal. A manager goes through AddManager.
func (e *Enterprise) AddEmployee(employee factory.Employee) error {
	if employee == nil {
		return &factory.ErrInvalidArgument{Field: "employee", Reason: "cannot be nil"}
	}
	if m, ok := employee.(*factory.Manager); ok {
		return e.AddManager(m)
	}

	e.registryMu.Lock()
	defer e.registryMu.Unlock()

	if _, exists := e.byID[employee.ID()]; exists {
		return &factory.ErrInvalidArgument{Field: "employee id", Reason: fmt.Sprintf("%s is already registered", employee.ID())}
	}
	employee.Attach(e.bus, &e.released)
	e.employees = append(e.employees, employee)
	e.byID[employee.ID()] = employee
	return nil
}

// AddManager registers the single manager.
// Work that went unhandled while no manager was on duty is raised again:
// queued orders and broken machines are republished and every material
// shortage is rearmed.
func (e *Enterprise) AddManager(m *factory.Manager) error {
	if err := e.registerManager(m); err != nil {
		return err
	}
	e.ReplayPending()
	e.ReplayBreakdowns()
	for _, kind := range factory.AllMaterials() {
		e.warehouse.RearmShortage(kind)
	}
	return nil
}

func (e *Enterprise) registerManager(m *factory.Manager) error {
	if m == nil {
		return &factory.ErrInvalidArgument{Field: "manager", Reason: "cannot be nil"}
	}

	e.registryMu.Lock()
	defer e.registryMu.Unlock()

	if e.manager != nil {
		return &factory.ErrDuplicateSupervisor{ExistingID: e.manager.ID()}
	}
	if _, exists := e.byID[m.ID()]; exists {
		return &factory.ErrInvalidArgument{Field: "employee id", Reason: fmt.Sprintf("%s is already registered", m.ID())}
	}
	m.Attach(e.bus, &e.released)
	e.manager = m
	e.byID[m.ID()] = m
	return nil
}

// RemoveManager unregisters the manager and returns it, or nil if none was registered
func (e *Enterprise) RemoveManager() *factory.Manager {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()

	m := e.manager
	if m != nil {
		delete(e.byID, m.ID())
		e.manager = nil
	}
	return m
}

// Manager returns the registered manager
func (e *Enterprise) Manager() (*factory.Manager, bool) {
	e.registryMu.RLock()
	defer e.registryMu.RUnlock()
	return e.manager, e.manager != nil
}

// Employees returns the registered non-manager employees in registration order
func (e *Enterprise) Employees() []factory.Employee {
	e.registryMu.RLock()
	defer e.registryMu.RUnlock()

	result := make([]factory.Employee, len(e.employees))
	copy(result, e.employees)
	return result
}

// Carpenters returns the registered carpenters
func (e *Enterprise) Carpenters() []*factory.Carpenter {
	var result []*factory.Carpenter
	for _, emp := range e.Employees() {
		if c, ok := emp.(*factory.Carpenter); ok {
			result = append(result, c)
		}
	}
	return result
}

// Repairmen returns the registered repairmen
func (e *Enterprise) Repairmen() []*factory.Repairman {
	var result []*factory.Repairman
	for _, emp := range e.Employees() {
		if r, ok := emp.(*factory.Repairman); ok {
			result = append(result, r)
		}
	}
	return result
}

// ClaimAvailable marks the first idle employee of role busy and returns it
func (e *Enterprise) ClaimAvailable(role factory.Role) (factory.Employee, bool) {
	e.registryMu.RLock()
	defer e.registryMu.RUnlock()

	for _, emp := range e.employees {
		if emp.Role() == role && emp.TryClaim() {
			return emp, true
		}
	}
	return nil, false
}

// EmployeeReleased returns a channel closed the next time any employee goes idle
func (e *Enterprise) EmployeeReleased() <-chan struct{} {
	return e.released.Wait()
}

// Machines

// AddMachine registers a machine and wires its breakage notification
func (e *Enterprise) AddMachine(m *factory.Machine) error {
	if m == nil {
		return &factory.ErrInvalidArgument{Field: "machine", Reason: "cannot be nil"}
	}

	e.machinesMu.Lock()
	defer e.machinesMu.Unlock()

	for _, existing := range e.machines {
		if existing.ID() == m.ID() {
			return &factory.ErrInvalidArgument{Field: "machine id", Reason: fmt.Sprintf("%s is already registered", m.ID())}
		}
	}
	m.Attach(e.bus, &e.availability)
	e.machines = append(e.machines, m)
	return nil
}

// Machines returns the registered machines
func (e *Enterprise) Machines() []*factory.Machine {
	e.machinesMu.Lock()
	defer e.machinesMu.Unlock()

	result := make([]*factory.Machine, len(e.machines))
	copy(result, e.machines)
	return result
}

// Machine looks a machine up by id
func (e *Enterprise) Machine(id string) (*factory.Machine, bool) {
	e.machinesMu.Lock()
	defer e.machinesMu.Unlock()

	for _, m := range e.machines {
		if m.ID() == id {
			return m, true
		}
	}
	return nil, false
}

// AcquireFreeMachine finds an available machine and acquires it in one step
func (e *Enterprise) AcquireFreeMachine() (*factory.Machine, bool) {
	e.machinesMu.Lock()
	defer e.machinesMu.Unlock()

	for _, m := range e.machines {
		if m.Acquire() {
			return m, true
		}
	}
	return nil, false
}

// MachineAvailability returns a channel closed when any machine is released or repaired
func (e *Enterprise) MachineAvailability() <-chan struct{} {
	return e.availability.Wait()
}

// Orders

// EnqueueOrder appends order to the queue and raises OrderReceived
func (e *Enterprise) EnqueueOrder(order *factory.Order) error {
	if order == nil {
		return &factory.ErrInvalidArgument{Field: "order", Reason: "cannot be nil"}
	}
	if err := e.queueOrder(order); err != nil {
		return err
	}

	metrics.RecordOrderEnqueued(string(order.Furniture()), string(order.Material()))
	e.bus.OrderReceived(factory.OrderReceived{Order: order})
	return nil
}

func (e *Enterprise) queueOrder(order *factory.Order) error {
	job, err := factory.NewJob(order, e.clock)
	if err != nil {
		return err
	}

	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	e.queue = append(e.queue, order)
	e.jobs = append(e.jobs, job)
	e.pruneJobsUnsafe()
	return nil
}

// DequeueOrder removes and returns the oldest pending order
func (e *Enterprise) DequeueOrder() (*factory.Order, error) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	if len(e.queue) == 0 {
		return nil, &factory.ErrEmptyQueue{}
	}
	order := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	return order, nil
}

// ReturnOrder puts an order that was dequeued but never started back at the
// head of the queue without raising OrderReceived again
func (e *Enterprise) ReturnOrder(order *factory.Order) {
	if order == nil {
		return
	}
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	e.queue = append([]*factory.Order{order}, e.queue...)
}

// PendingOrders returns the queued orders, oldest first
func (e *Enterprise) PendingOrders() []*factory.Order {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	result := make([]*factory.Order, len(e.queue))
	copy(result, e.queue)
	return result
}

// ReplayPending raises OrderReceived once for every queued order.
// Used after restoring a snapshot, once a manager is listening.
func (e *Enterprise) ReplayPending() int {
	pending := e.PendingOrders()
	for _, order := range pending {
		e.bus.OrderReceived(factory.OrderReceived{Order: order})
	}
	return len(pending)
}

// ReplayBreakdowns raises MachineBroken once for every broken machine
func (e *Enterprise) ReplayBreakdowns() int {
	n := 0
	for _, m := range e.Machines() {
		if m.IsBroken() {
			e.bus.MachineBroken(factory.MachineBroken{Machine: m})
			n++
		}
	}
	return n
}

// Job returns the job tracking an order
func (e *Enterprise) Job(orderID string) (*factory.Job, bool) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	for _, j := range e.jobs {
		if j.Order().ID() == orderID {
			return j, true
		}
	}
	return nil, false
}

// Jobs returns the state of every tracked job, oldest first
func (e *Enterprise) Jobs() []factory.JobState {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	result := make([]factory.JobState, 0, len(e.jobs))
	for _, j := range e.jobs {
		result = append(result, j.State())
	}
	return result
}

func (e *Enterprise) pruneJobsUnsafe() {
	finished := 0
	for _, j := range e.jobs {
		if j.IsFinished() {
			finished++
		}
	}
	if finished <= maxFinishedJobs {
		return
	}

	drop := finished - maxFinishedJobs
	kept := e.jobs[:0]
	for _, j := range e.jobs {
		if drop > 0 && j.IsFinished() {
			drop--
			continue
		}
		kept = append(kept, j)
	}
	for i := len(kept); i < len(e.jobs); i++ {
		e.jobs[i] = nil
	}
	e.jobs = kept
}

// Budget

// CurrentBudget returns starting + income - expenses
func (e *Enterprise) CurrentBudget() decimal.Decimal {
	return e.budget.Current()
}

// Budget exposes the ledger totals
func (e *Enterprise) Budget() *factory.Budget {
	return e.budget
}

// AddIncome records income and persists the ledger entry
func (e *Enterprise) AddIncome(ctx context.Context, amount decimal.Decimal, description string) error {
	entry, err := e.budget.AddIncome(amount, description)
	if err != nil {
		return err
	}
	e.recordEntry(ctx, entry)
	return nil
}

// AddExpense records an expense and persists the ledger entry
func (e *Enterprise) AddExpense(ctx context.Context, amount decimal.Decimal, description string) error {
	entry, err := e.budget.AddExpense(amount, description)
	if err != nil {
		return err
	}
	e.recordEntry(ctx, entry)
	return nil
}

// TrySpend records the expense only if the budget covers it
func (e *Enterprise) TrySpend(ctx context.Context, amount decimal.Decimal, description string) (bool, error) {
	entry, ok, err := e.budget.TrySpend(amount, description)
	if err != nil || !ok {
		return ok, err
	}
	e.recordEntry(ctx, entry)
	return true, nil
}

func (e *Enterprise) recordEntry(ctx context.Context, entry *factory.LedgerEntry) {
	amount, _ := entry.Amount().Float64()
	metrics.RecordLedgerEntry(string(entry.Kind()), amount)

	if e.ledger == nil {
		return
	}
	if err := e.ledger.Save(ctx, entry); err != nil {
		logger := common.LoggerFromContext(ctx)
		logger.Log(common.LevelError, fmt.Sprintf("[Enterprise] Failed to persist ledger entry %s: %v", entry.ID(), err), map[string]interface{}{
			"entry_id": entry.ID(),
			"kind":     string(entry.Kind()),
		})
	}
}
