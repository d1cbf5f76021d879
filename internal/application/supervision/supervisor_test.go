package supervision_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/application/production"
	"github.com/andrescamacho/furniture-factory/internal/application/supervision"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

const backoff = 20 * time.Millisecond

func newFactory(t *testing.T, budget int64, roster enterprise.Roster, opts supervision.Options) (*enterprise.Enterprise, *supervision.Supervisor) {
	t.Helper()
	e := enterprise.New(context.Background(), decimal.NewFromInt(budget))
	require.NoError(t, e.Seed(roster))
	workshop := production.NewWorkshop(e, production.Options{Backoff: backoff, TimeScale: 0.001})
	repairs := supervision.NewRepairShop(0.001, nil)
	opts.Backoff = backoff
	return e, supervision.NewSupervisor(e, workshop, repairs, opts)
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) Log(level, message string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+message)
}

func (l *recordingLogger) contains(level, fragment string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.entries {
		if strings.HasPrefix(entry, level+" ") && strings.Contains(entry, fragment) {
			return true
		}
	}
	return false
}

func defaultRoster() enterprise.Roster {
	return enterprise.Roster{
		Manager:    "Marta",
		Carpenters: []string{"Ana", "Luis"},
		Repairmen:  []string{"Bo"},
		Machines: []enterprise.MachineSpec{
			{ID: "saw-1", MaxDurability: 50, RepairTime: time.Second},
		},
	}
}

func TestHandleOrderReceived_DispatchesOldestOrder(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	require.NoError(t, e.AddRawMaterial(factory.MaterialOak, 100))
	first, err := factory.NewOrder(factory.FurnitureTable, factory.MaterialOak, 2, time.Now())
	require.NoError(t, err)
	second, err := factory.NewOrder(factory.FurnitureChair, factory.MaterialOak, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.EnqueueOrder(first))
	require.NoError(t, e.EnqueueOrder(second))

	// Act
	s.HandleOrderReceived(context.Background(), factory.OrderReceived{Order: second})

	// Assert
	assert.Equal(t, 2, e.Warehouse().FinishedCount(first.Product()))
	assert.Len(t, e.PendingOrders(), 1)
	job, ok := e.Job(first.ID())
	require.True(t, ok)
	state := job.State()
	assert.Equal(t, shared.LifecycleStatusCompleted, state.Status)
	assert.NotEmpty(t, state.Assignee)
	for _, c := range e.Carpenters() {
		assert.False(t, c.IsBusy())
	}
}

func TestHandleOrderReceived_IgnoredWithoutManager(t *testing.T) {
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	e.RemoveManager()
	order, err := factory.NewOrder(factory.FurnitureTable, factory.MaterialOak, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.EnqueueOrder(order))

	s.HandleOrderReceived(context.Background(), factory.OrderReceived{Order: order})

	assert.Len(t, e.PendingOrders(), 1)
}

func TestHandleOrderReceived_CancelledClaimReturnsOrder(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	for _, c := range e.Carpenters() {
		require.True(t, c.TryClaim())
	}
	order, err := factory.NewOrder(factory.FurnitureTable, factory.MaterialOak, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.EnqueueOrder(order))
	ctx, cancel := context.WithTimeout(context.Background(), 3*backoff)
	defer cancel()

	// Act
	s.HandleOrderReceived(ctx, factory.OrderReceived{Order: order})

	// Assert
	pending := e.PendingOrders()
	require.Len(t, pending, 1)
	assert.Same(t, order, pending[0])
}

func TestHandleMaterialDepleted_RestocksWithinBudget(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{RestockQuantity: 50})

	// Act
	s.HandleMaterialDepleted(context.Background(), factory.MaterialDepleted{Material: factory.MaterialPine})

	// Assert
	assert.Equal(t, 50, e.Warehouse().Quantity(factory.MaterialPine))
	assert.True(t, e.CurrentBudget().Equal(decimal.NewFromInt(600)))
}

func TestHandleMaterialDepleted_SkipsWhenBudgetTooLow(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 100, defaultRoster(), supervision.Options{})
	depletions, unsubscribe := e.Events().Depletions().Subscribe()
	defer unsubscribe()
	require.False(t, e.Warehouse().HasEnough(factory.MaterialOak, 1))
	_, _, err := depletions.Next(context.Background())
	require.NoError(t, err)

	// Act
	s.HandleMaterialDepleted(context.Background(), factory.MaterialDepleted{Material: factory.MaterialOak})

	// Assert
	assert.Equal(t, 0, e.Warehouse().Quantity(factory.MaterialOak))
	assert.True(t, e.CurrentBudget().Equal(decimal.NewFromInt(100)))
	require.False(t, e.Warehouse().HasEnough(factory.MaterialOak, 1))
	assert.Equal(t, 1, depletions.Len(), "a declined restock lets the shortage be reported again")
}

func TestHandleProductionCompleted_ShipsAndBooksIncome(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	order, err := factory.NewOrder(factory.FurnitureWardrobe, factory.MaterialMaple, 2, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.Warehouse().AddFinishedProduct(order.Product(), 3))

	// Act
	s.HandleProductionCompleted(context.Background(), factory.ProductionCompleted{Order: order, CarpenterID: "Ana"})

	// Assert
	assert.Equal(t, 1, e.Warehouse().FinishedCount(order.Product()))
	assert.True(t, e.CurrentBudget().Equal(decimal.NewFromInt(1166)))
}

func TestHandleProductionCompleted_MissingGoodsBooksNothing(t *testing.T) {
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	order, err := factory.NewOrder(factory.FurnitureTable, factory.MaterialOak, 2, time.Now())
	require.NoError(t, err)

	s.HandleProductionCompleted(context.Background(), factory.ProductionCompleted{Order: order})

	assert.True(t, e.CurrentBudget().Equal(decimal.NewFromInt(1000)))
}

func TestHandleMachineBroken_RepairsMachine(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	machine, err := factory.ReconstructMachine("press-1", 3, 0, time.Second)
	require.NoError(t, err)
	require.NoError(t, e.AddMachine(machine))

	// Act
	s.HandleMachineBroken(context.Background(), factory.MachineBroken{Machine: machine})

	// Assert
	assert.False(t, machine.IsBroken())
	assert.Equal(t, 3, machine.Durability())
	bo := e.Repairmen()[0]
	assert.Equal(t, 1, bo.Repaired())
	assert.False(t, bo.IsBusy())
}

func TestRepairShop_RejectsWorkingMachine(t *testing.T) {
	r, err := factory.NewRepairman("Bo", "")
	require.NoError(t, err)
	m, err := factory.NewMachine("saw-1", 3, time.Second)
	require.NoError(t, err)

	err = supervision.NewRepairShop(0.001, nil).Repair(context.Background(), r, m)

	var notBroken *factory.ErrMachineNotBroken
	assert.ErrorAs(t, err, &notBroken)
	assert.False(t, r.IsBusy())
}

func TestSupervisor_RunDrivesOrdersToTarget(t *testing.T) {
	// Arrange
	roster := defaultRoster()
	roster.Machines = []enterprise.MachineSpec{{ID: "saw-1", MaxDurability: 3, RepairTime: time.Second}}
	// one restock of 40 oak (400) covers four orders of two tables (4 x 140)
	e, s := newFactory(t, 2000, roster, supervision.Options{
		RestockQuantity: 40,
		TargetBudget:    decimal.NewFromInt(2160),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	require.Eventually(t, func() bool { return e.Events().Orders().SubscriberCount() == 1 }, time.Second, time.Millisecond)

	// Act
	for i := 0; i < 4; i++ {
		order, err := factory.NewOrder(factory.FurnitureTable, factory.MaterialOak, 2, time.Now())
		require.NoError(t, err)
		require.NoError(t, e.EnqueueOrder(order))
	}

	// Assert
	select {
	case <-s.TargetReached():
	case <-time.After(5 * time.Second):
		t.Fatalf("target not reached, budget %s", e.CurrentBudget())
	}
	cancel()
	require.NoError(t, <-done)

	produced := 0
	for _, c := range e.Carpenters() {
		produced += c.Produced()
	}
	assert.Equal(t, 8, produced)
	assert.GreaterOrEqual(t, e.Repairmen()[0].Repaired(), 1)
	assert.True(t, e.CurrentBudget().Equal(decimal.NewFromInt(2160)))
	assert.Equal(t, 8, e.Warehouse().Quantity(factory.MaterialOak))
}

func TestHandleOrderReceived_LogsRefusedJobTransition(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	require.NoError(t, e.AddRawMaterial(factory.MaterialOak, 100))
	order, err := factory.NewOrder(factory.FurnitureChair, factory.MaterialOak, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.EnqueueOrder(order))
	job, ok := e.Job(order.ID())
	require.True(t, ok)
	require.NoError(t, job.Cancel())
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)

	// Act
	s.HandleOrderReceived(ctx, factory.OrderReceived{Order: order})

	// Assert
	assert.True(t, logger.contains(common.LevelDebug, "cannot assign"))
	assert.True(t, logger.contains(common.LevelDebug, "cannot complete"))
	assert.Equal(t, shared.LifecycleStatusCancelled, job.State().Status)
}

func TestHandleMaterialDepleted_RearmsWithoutManager(t *testing.T) {
	// Arrange
	e, s := newFactory(t, 1000, defaultRoster(), supervision.Options{})
	e.RemoveManager()
	depletions, unsubscribe := e.Events().Depletions().Subscribe()
	defer unsubscribe()
	require.False(t, e.Warehouse().HasEnough(factory.MaterialOak, 1))
	_, _, err := depletions.Next(context.Background())
	require.NoError(t, err)

	// Act
	s.HandleMaterialDepleted(context.Background(), factory.MaterialDepleted{Material: factory.MaterialOak})

	// Assert
	assert.Equal(t, 0, e.Warehouse().Quantity(factory.MaterialOak))
	require.False(t, e.Warehouse().HasEnough(factory.MaterialOak, 1))
	assert.Equal(t, 1, depletions.Len())
}

func TestSupervisor_LateManagerPicksUpStalledWork(t *testing.T) {
	// Arrange
	roster := defaultRoster()
	roster.Manager = ""
	e, s := newFactory(t, 5000, roster, supervision.Options{RestockQuantity: 20})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	require.Eventually(t, func() bool { return e.Events().Orders().SubscriberCount() == 1 }, time.Second, time.Millisecond)
	order, err := factory.NewOrder(factory.FurnitureTable, factory.MaterialOak, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.EnqueueOrder(order))
	require.False(t, e.Warehouse().HasEnough(factory.MaterialOak, 1))
	boss, err := factory.NewManager("Marta", "Marta")
	require.NoError(t, err)

	// Act
	require.NoError(t, e.AddManager(boss))

	// Assert
	require.Eventually(t, func() bool {
		produced := 0
		for _, c := range e.Carpenters() {
			produced += c.Produced()
		}
		return produced == 1
	}, 5*time.Second, 5*time.Millisecond)
	assert.Empty(t, e.PendingOrders())
	assert.Greater(t, e.Warehouse().Quantity(factory.MaterialOak), 0)
	cancel()
	require.NoError(t, <-done)
}
