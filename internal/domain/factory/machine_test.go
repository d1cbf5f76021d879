package factory_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

func TestNewMachine_RejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name          string
		id            string
		maxDurability int
		repairTime    time.Duration
	}{
		{"empty id", "", 3, time.Second},
		{"zero durability", "m-1", 0, time.Second},
		{"negative repair time", "m-1", 3, -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.NewMachine(tt.id, tt.maxDurability, tt.repairTime)

			var invalid *factory.ErrInvalidArgument
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestMachine_AcquireWearsDurability(t *testing.T) {
	// Arrange
	m, err := factory.NewMachine("m-1", 3, time.Second)
	require.NoError(t, err)

	// Act
	acquired := m.Acquire()

	// Assert
	assert.True(t, acquired)
	assert.True(t, m.IsOccupied())
	assert.False(t, m.Available())
	assert.Equal(t, 2, m.Durability())
}

func TestMachine_AcquireOnOccupiedIsNoOp(t *testing.T) {
	// Arrange
	m, err := factory.NewMachine("m-1", 3, time.Second)
	require.NoError(t, err)
	require.True(t, m.Acquire())

	// Act
	acquired := m.Acquire()

	// Assert
	assert.False(t, acquired)
	assert.Equal(t, 2, m.Durability())
}

func TestMachine_BreaksOnceAtZeroDurability(t *testing.T) {
	// Arrange
	sink := &recordingSink{}
	m, err := factory.NewMachine("m-1", 2, time.Second)
	require.NoError(t, err)
	m.Attach(sink, nil)

	// Act
	require.True(t, m.Acquire())
	m.Release()
	require.True(t, m.Acquire())
	m.Release()
	acquiredBroken := m.Acquire()

	// Assert
	assert.False(t, acquiredBroken)
	assert.True(t, m.IsBroken())
	assert.False(t, m.Available())
	assert.Equal(t, 0, m.Durability())
	require.Equal(t, 1, sink.brokenCount())
	assert.Same(t, m, sink.broken[0].Machine)
}

func TestMachine_RepairRestoresDurability(t *testing.T) {
	// Arrange
	m, err := factory.NewMachine("m-1", 1, time.Second)
	require.NoError(t, err)
	require.True(t, m.Acquire())
	m.Release()
	require.True(t, m.IsBroken())

	// Act
	m.Repair()
	m.Repair()

	// Assert
	assert.False(t, m.IsBroken())
	assert.True(t, m.Available())
	assert.Equal(t, 1, m.Durability())
}

func TestMachine_ReleaseWakesWaiters(t *testing.T) {
	// Arrange
	availability := &shared.Broadcast{}
	m, err := factory.NewMachine("m-1", 5, time.Second)
	require.NoError(t, err)
	m.Attach(nil, availability)
	require.True(t, m.Acquire())
	wake := availability.Wait()

	// Act
	m.Release()

	// Assert
	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("release did not signal availability")
	}
	assert.True(t, m.Available())
}

func TestMachine_ConcurrentAcquireGrantsOnlyOne(t *testing.T) {
	// Arrange
	m, err := factory.NewMachine("m-1", 100, time.Second)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	// Act
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Acquire() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 1, granted)
	assert.Equal(t, 99, m.Durability())
}

func TestReconstructMachine_AtZeroIsBroken(t *testing.T) {
	m, err := factory.ReconstructMachine("m-1", 4, 0, time.Second)

	require.NoError(t, err)
	assert.True(t, m.IsBroken())
	assert.False(t, m.Acquire())
}
