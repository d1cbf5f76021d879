package production_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/application/production"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// fast keeps production steps around a millisecond
var fast = production.Options{Backoff: 20 * time.Millisecond, TimeScale: 0.001}

func newFloor(t *testing.T, machines int, durability int) *enterprise.Enterprise {
	t.Helper()
	e := enterprise.New(context.Background(), decimal.NewFromInt(10000))
	for i := 0; i < machines; i++ {
		m, err := factory.NewMachine(machineID(i), durability, time.Millisecond)
		require.NoError(t, err)
		require.NoError(t, e.AddMachine(m))
	}
	return e
}

func machineID(i int) string {
	return "machine-" + string(rune('a'+i))
}

func newCarpenter(t *testing.T, e *enterprise.Enterprise, id string) *factory.Carpenter {
	t.Helper()
	c, err := factory.NewCarpenter(id, "")
	require.NoError(t, err)
	require.NoError(t, e.AddEmployee(c))
	return c
}

func newOrder(t *testing.T, furniture factory.FurnitureKind, material factory.MaterialKind, qty int) *factory.Order {
	t.Helper()
	order, err := factory.NewOrder(furniture, material, qty, time.Now())
	require.NoError(t, err)
	return order
}

func TestProduce_WithoutContentionBuildsEveryUnit(t *testing.T) {
	// Arrange
	e := newFloor(t, 1, 100)
	require.NoError(t, e.AddRawMaterial(factory.MaterialOak, 100))
	carpenter := newCarpenter(t, e, "c-1")
	order := newOrder(t, factory.FurnitureTable, factory.MaterialOak, 5)
	completions, unsubscribe := e.Events().Completions().Subscribe()
	defer unsubscribe()
	w := production.NewWorkshop(e, fast)

	// Act
	err := w.Produce(context.Background(), carpenter, order)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, e.Warehouse().FinishedCount(order.Product()))
	assert.Equal(t, 5, carpenter.Produced())
	assert.Equal(t, 80, e.Warehouse().Quantity(factory.MaterialOak))
	assert.False(t, carpenter.IsBusy())

	event, ok, err := completions.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, order, event.Order)
	assert.Equal(t, "c-1", event.CarpenterID)
}

func TestProduce_RejectsInvalidArguments(t *testing.T) {
	e := newFloor(t, 1, 10)
	carpenter := newCarpenter(t, e, "c-1")
	order := newOrder(t, factory.FurnitureChair, factory.MaterialPine, 1)

	errNilOrder := production.NewWorkshop(e, fast).Produce(context.Background(), carpenter, nil)
	errNilFloor := production.NewWorkshop(nil, fast).Produce(context.Background(), carpenter, order)
	var nilWorkshop *production.Workshop
	errNilWorkshop := nilWorkshop.Produce(context.Background(), carpenter, order)

	var invalid *factory.ErrInvalidArgument
	assert.ErrorAs(t, errNilOrder, &invalid)
	assert.ErrorAs(t, errNilFloor, &invalid)
	assert.ErrorAs(t, errNilWorkshop, &invalid)
}

func TestProduce_UnknownMaterialIsFatal(t *testing.T) {
	// Arrange
	e := newFloor(t, 1, 10)
	carpenter := newCarpenter(t, e, "c-1")
	order, err := factory.ReconstructOrder("o-1", factory.FurnitureTable, factory.MaterialKind("TEAK"), 1, decimal.NewFromInt(1), time.Now())
	require.NoError(t, err)

	// Act
	err = production.NewWorkshop(e, fast).Produce(context.Background(), carpenter, order)

	// Assert
	var unknown *factory.ErrUnknownMaterial
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, factory.MaterialKind("TEAK"), unknown.Kind)
	assert.False(t, carpenter.IsBusy())
}

func TestProduce_WaitsForMaterial(t *testing.T) {
	// Arrange
	e := newFloor(t, 1, 10)
	carpenter := newCarpenter(t, e, "c-1")
	order := newOrder(t, factory.FurnitureTable, factory.MaterialOak, 1)
	depletions, unsubscribe := e.Events().Depletions().Subscribe()
	defer unsubscribe()
	done := make(chan error, 1)

	// Act
	go func() { done <- production.NewWorkshop(e, fast).Produce(context.Background(), carpenter, order) }()

	// Assert
	event, ok, err := depletions.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, factory.MaterialOak, event.Material)

	select {
	case <-done:
		t.Fatal("order completed without material")
	case <-time.After(3 * fast.Backoff):
	}

	require.NoError(t, e.AddRawMaterial(factory.MaterialOak, 100))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("order did not complete after restock")
	}
	assert.Equal(t, 1, e.Warehouse().FinishedCount(order.Product()))
}

func TestProduce_WaitsForMachine(t *testing.T) {
	// Arrange
	e := newFloor(t, 1, 10)
	require.NoError(t, e.AddRawMaterial(factory.MaterialBirch, 100))
	carpenter := newCarpenter(t, e, "c-1")
	order := newOrder(t, factory.FurnitureWardrobe, factory.MaterialBirch, 2)
	machine := e.Machines()[0]
	require.True(t, machine.Acquire())
	done := make(chan error, 1)

	// Act
	go func() { done <- production.NewWorkshop(e, fast).Produce(context.Background(), carpenter, order) }()

	// Assert
	select {
	case <-done:
		t.Fatal("order completed while the only machine was occupied")
	case <-time.After(3 * fast.Backoff):
	}
	assert.Eventually(t, func() bool {
		return e.Warehouse().Available(factory.MaterialBirch) == 100
	}, time.Second, time.Millisecond, "reservation must be given back while waiting")

	machine.Release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("order did not complete after release")
	}
	assert.Equal(t, 2, e.Warehouse().FinishedCount(order.Product()))
}

func TestProduce_CancelledWhileWaitingReleasesEverything(t *testing.T) {
	// Arrange
	e := newFloor(t, 1, 10)
	require.NoError(t, e.AddRawMaterial(factory.MaterialMaple, 6))
	carpenter := newCarpenter(t, e, "c-1")
	require.True(t, e.Machines()[0].Acquire())
	order := newOrder(t, factory.FurnitureWardrobe, factory.MaterialMaple, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Act
	err := production.NewWorkshop(e, fast).Produce(ctx, carpenter, order)

	// Assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 6, e.Warehouse().Available(factory.MaterialMaple))
	assert.False(t, carpenter.IsBusy())
}

func TestProduce_ContendingCarpentersNeverOverdraw(t *testing.T) {
	// Arrange
	const carpenters = 6
	e := newFloor(t, 1, 1000)
	require.NoError(t, e.AddRawMaterial(factory.MaterialPine, 60))
	w := production.NewWorkshop(e, fast)

	var wg sync.WaitGroup
	errs := make(chan error, carpenters)
	crew := make([]*factory.Carpenter, carpenters)
	orders := make([]*factory.Order, carpenters)
	for i := range crew {
		crew[i] = newCarpenter(t, e, "c-"+string(rune('a'+i)))
		orders[i] = newOrder(t, factory.FurnitureChair, factory.MaterialPine, 5)
	}

	// Act
	for i := range crew {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- w.Produce(context.Background(), crew[i], orders[i])
		}(i)
	}
	wg.Wait()
	close(errs)

	// Assert
	for err := range errs {
		require.NoError(t, err)
	}
	chairs := factory.Product{Furniture: factory.FurnitureChair, Material: factory.MaterialPine}
	assert.Equal(t, 30, e.Warehouse().FinishedCount(chairs))
	assert.Equal(t, 0, e.Warehouse().Quantity(factory.MaterialPine))
	assert.Equal(t, 1000-30, e.Machines()[0].Durability())
	total := 0
	for _, c := range crew {
		total += c.Produced()
	}
	assert.Equal(t, 30, total)
}
