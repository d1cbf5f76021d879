package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/application/orders"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

type recordingSink struct {
	mu     sync.Mutex
	orders []*factory.Order
	failOn int
	calls  int
}

func (s *recordingSink) EnqueueOrder(order *factory.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls == s.failOn {
		return errors.New("queue unavailable")
	}
	s.orders = append(s.orders, order)
	return nil
}

func quickOptions() orders.Options {
	return orders.Options{
		BatchSize:   4,
		Interval:    time.Millisecond,
		JitterMin:   0,
		JitterMax:   time.Millisecond,
		MaxQuantity: 9,
		Seed:        42,
	}
}

func TestGenerator_RunPlacesBatches(t *testing.T) {
	// Arrange
	sink := &recordingSink{}
	g := orders.NewGenerator(sink, quickOptions())

	// Act
	err := g.Run(context.Background(), 3)

	// Assert
	require.NoError(t, err)
	assert.Len(t, sink.orders, 12)
	for _, o := range sink.orders {
		assert.GreaterOrEqual(t, o.Quantity(), 1)
		assert.LessOrEqual(t, o.Quantity(), 9)
		assert.True(t, o.Material().IsValid())
	}
}

func TestGenerator_FailedOrderDoesNotStopTheBatch(t *testing.T) {
	sink := &recordingSink{failOn: 2}
	g := orders.NewGenerator(sink, quickOptions())

	require.NoError(t, g.Run(context.Background(), 1))

	assert.Equal(t, 4, sink.calls)
	assert.Len(t, sink.orders, 3)
}

func TestGenerator_StopsOnCancel(t *testing.T) {
	opts := quickOptions()
	opts.Interval = time.Hour
	g := orders.NewGenerator(&recordingSink{}, opts)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, 0) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("generator ignored cancellation")
	}
}

func TestGenerator_SameSeedSameOrders(t *testing.T) {
	a := orders.NewGenerator(&recordingSink{}, quickOptions())
	b := orders.NewGenerator(&recordingSink{}, quickOptions())

	for i := 0; i < 10; i++ {
		oa, err := a.NextOrder()
		require.NoError(t, err)
		ob, err := b.NextOrder()
		require.NoError(t, err)
		assert.Equal(t, oa.Product(), ob.Product())
		assert.Equal(t, oa.Quantity(), ob.Quantity())
	}
}
