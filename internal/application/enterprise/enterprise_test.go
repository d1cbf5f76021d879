package enterprise_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newEnterprise(t *testing.T, opts ...enterprise.Option) *enterprise.Enterprise {
	t.Helper()
	opts = append([]enterprise.Option{enterprise.WithClock(shared.NewMockClock(start))}, opts...)
	return enterprise.New(context.Background(), decimal.NewFromInt(10000), opts...)
}

func newOrder(t *testing.T, furniture factory.FurnitureKind, material factory.MaterialKind, qty int) *factory.Order {
	t.Helper()
	order, err := factory.NewOrder(furniture, material, qty, start)
	require.NoError(t, err)
	return order
}

func TestEnterprise_OrderQueueIsFIFO(t *testing.T) {
	// Arrange
	e := newEnterprise(t)
	a := newOrder(t, factory.FurnitureTable, factory.MaterialOak, 1)
	b := newOrder(t, factory.FurnitureChair, factory.MaterialPine, 2)
	require.NoError(t, e.EnqueueOrder(a))
	require.NoError(t, e.EnqueueOrder(b))

	// Act
	first, errFirst := e.DequeueOrder()
	second, errSecond := e.DequeueOrder()
	_, errEmpty := e.DequeueOrder()

	// Assert
	require.NoError(t, errFirst)
	require.NoError(t, errSecond)
	assert.Same(t, a, first)
	assert.Same(t, b, second)
	var empty *factory.ErrEmptyQueue
	assert.ErrorAs(t, errEmpty, &empty)
}

func TestEnterprise_EnqueueRaisesOrderReceived(t *testing.T) {
	// Arrange
	e := newEnterprise(t)
	mb, unsubscribe := e.Events().Orders().Subscribe()
	defer unsubscribe()
	order := newOrder(t, factory.FurnitureTable, factory.MaterialOak, 1)

	// Act
	require.NoError(t, e.EnqueueOrder(order))

	// Assert
	event, ok, err := mb.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, order, event.Order)

	job, found := e.Job(order.ID())
	require.True(t, found)
	assert.Equal(t, shared.LifecycleStatusPending, job.State().Status)
}

func TestEnterprise_EnqueueNilOrder(t *testing.T) {
	e := newEnterprise(t)

	err := e.EnqueueOrder(nil)

	var invalid *factory.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)
}

func TestEnterprise_SingleManager(t *testing.T) {
	// Arrange
	e := newEnterprise(t)
	first, err := factory.NewManager("boss", "")
	require.NoError(t, err)
	second, err := factory.NewManager("other-boss", "")
	require.NoError(t, err)
	require.NoError(t, e.AddEmployee(first))

	// Act
	err = e.AddEmployee(second)

	// Assert
	var duplicate *factory.ErrDuplicateSupervisor
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, "boss", duplicate.ExistingID)

	removed := e.RemoveManager()
	assert.Same(t, first, removed)
	assert.NoError(t, e.AddManager(second))
}

func TestEnterprise_AddEmployeeValidation(t *testing.T) {
	e := newEnterprise(t)
	c, err := factory.NewCarpenter("c-1", "")
	require.NoError(t, err)
	require.NoError(t, e.AddEmployee(c))

	errNil := e.AddEmployee(nil)
	errDup := e.AddEmployee(c)

	var invalid *factory.ErrInvalidArgument
	assert.ErrorAs(t, errNil, &invalid)
	assert.ErrorAs(t, errDup, &invalid)
	assert.Len(t, e.Employees(), 1)
}

func TestEnterprise_ClaimAvailableHandsEachEmployeeOnce(t *testing.T) {
	// Arrange
	e := newEnterprise(t)
	for _, id := range []string{"c-1", "c-2", "c-3"} {
		c, err := factory.NewCarpenter(id, "")
		require.NoError(t, err)
		require.NoError(t, e.AddEmployee(c))
	}
	r, err := factory.NewRepairman("r-1", "")
	require.NoError(t, err)
	require.NoError(t, e.AddEmployee(r))

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := map[string]int{}

	// Act
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if emp, ok := e.ClaimAvailable(factory.RoleCarpenter); ok {
				mu.Lock()
				claimed[emp.ID()]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, map[string]int{"c-1": 1, "c-2": 1, "c-3": 1}, claimed)
	assert.False(t, r.IsBusy())
}

func TestEnterprise_EmployeeReleasedSignal(t *testing.T) {
	e := newEnterprise(t)
	c, err := factory.NewCarpenter("c-1", "")
	require.NoError(t, err)
	require.NoError(t, e.AddEmployee(c))
	emp, ok := e.ClaimAvailable(factory.RoleCarpenter)
	require.True(t, ok)
	wake := e.EmployeeReleased()

	emp.MarkIdle()

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("registry was not signalled")
	}
}

func TestEnterprise_AcquireFreeMachineSkipsBusyAndBroken(t *testing.T) {
	// Arrange
	e := newEnterprise(t)
	busy, err := factory.NewMachine("busy", 5, time.Second)
	require.NoError(t, err)
	broken, err := factory.ReconstructMachine("broken", 5, 0, time.Second)
	require.NoError(t, err)
	free, err := factory.NewMachine("free", 5, time.Second)
	require.NoError(t, err)
	for _, m := range []*factory.Machine{busy, broken, free} {
		require.NoError(t, e.AddMachine(m))
	}
	require.True(t, busy.Acquire())

	// Act
	got, ok := e.AcquireFreeMachine()
	_, none := e.AcquireFreeMachine()

	// Assert
	require.True(t, ok)
	assert.Same(t, free, got)
	assert.False(t, none)
}

func TestEnterprise_MachineBreakageReachesBus(t *testing.T) {
	e := newEnterprise(t)
	mb, unsubscribe := e.Events().Breakdowns().Subscribe()
	defer unsubscribe()
	m, err := factory.NewMachine("m-1", 1, time.Second)
	require.NoError(t, err)
	require.NoError(t, e.AddMachine(m))

	_, ok := e.AcquireFreeMachine()
	require.True(t, ok)

	event, received, err := mb.Next(context.Background())
	require.NoError(t, err)
	require.True(t, received)
	assert.Same(t, m, event.Machine)
}

func TestEnterprise_BudgetPersistsLedgerEntries(t *testing.T) {
	// Arrange
	repo := &memoryLedger{}
	e := newEnterprise(t, enterprise.WithLedgerRepository(repo))
	ctx := context.Background()

	// Act
	require.NoError(t, e.AddIncome(ctx, decimal.NewFromInt(500), "order"))
	require.NoError(t, e.AddExpense(ctx, decimal.NewFromInt(200), "restock"))
	spent, err := e.TrySpend(ctx, decimal.NewFromInt(100000), "too much")
	require.NoError(t, err)
	errNegative := e.AddIncome(ctx, decimal.NewFromInt(-5), "bad")

	// Assert
	assert.False(t, spent)
	var negative *factory.ErrNegativeAmount
	assert.ErrorAs(t, errNegative, &negative)
	assert.True(t, e.CurrentBudget().Equal(decimal.NewFromInt(10300)))
	require.Len(t, repo.entries, 2)
	assert.Equal(t, factory.EntryIncome, repo.entries[0].Kind())
	assert.Equal(t, factory.EntryExpense, repo.entries[1].Kind())
}

func TestEnterprise_LedgerFailureDoesNotFailMutation(t *testing.T) {
	e := newEnterprise(t, enterprise.WithLedgerRepository(&memoryLedger{err: errors.New("disk full")}))

	err := e.AddIncome(context.Background(), decimal.NewFromInt(1), "order")

	assert.NoError(t, err)
	assert.True(t, e.CurrentBudget().Equal(decimal.NewFromInt(10001)))
}

type memoryLedger struct {
	mu      sync.Mutex
	entries []*factory.LedgerEntry
	err     error
}

func (m *memoryLedger) Save(_ context.Context, entry *factory.LedgerEntry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryLedger) FindAll(_ context.Context, limit int) ([]*factory.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func TestEnterprise_AddManagerRaisesWorkLeftUnhandled(t *testing.T) {
	// Arrange
	e := newEnterprise(t)
	order := newOrder(t, factory.FurnitureTable, factory.MaterialOak, 1)
	require.NoError(t, e.EnqueueOrder(order))
	broken, err := factory.ReconstructMachine("press-1", 5, 0, time.Second)
	require.NoError(t, err)
	require.NoError(t, e.AddMachine(broken))
	orders, unsubscribeOrders := e.Events().Orders().Subscribe()
	defer unsubscribeOrders()
	breakdowns, unsubscribeBreakdowns := e.Events().Breakdowns().Subscribe()
	defer unsubscribeBreakdowns()
	boss, err := factory.NewManager("boss", "")
	require.NoError(t, err)

	// Act
	require.NoError(t, e.AddManager(boss))

	// Assert
	orderEvent, received, err := orders.Next(context.Background())
	require.NoError(t, err)
	require.True(t, received)
	assert.Same(t, order, orderEvent.Order)
	breakEvent, received, err := breakdowns.Next(context.Background())
	require.NoError(t, err)
	require.True(t, received)
	assert.Same(t, broken, breakEvent.Machine)
}

func TestEnterprise_DroppedDepletionIsReportedAgain(t *testing.T) {
	// Arrange
	e := newEnterprise(t)
	require.False(t, e.Warehouse().HasEnough(factory.MaterialOak, 1))
	depletions, unsubscribe := e.Events().Depletions().Subscribe()
	defer unsubscribe()

	// Act
	require.False(t, e.Warehouse().HasEnough(factory.MaterialOak, 1))

	// Assert
	require.Equal(t, 1, depletions.Len())
	event, _, err := depletions.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, factory.MaterialOak, event.Material)
}
