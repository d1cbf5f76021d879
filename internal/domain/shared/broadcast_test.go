package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

func TestBroadcast_NotifyWakesAllWaiters(t *testing.T) {
	// Arrange
	var b shared.Broadcast
	first := b.Wait()
	second := b.Wait()

	// Act
	b.Notify()

	// Assert
	for _, ch := range []<-chan struct{}{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("waiter was not woken")
		}
	}
}

func TestBroadcast_RearmsAfterNotify(t *testing.T) {
	var b shared.Broadcast
	b.Notify() // no waiters yet: nothing to close
	old := b.Wait()
	b.Notify()

	next := b.Wait()

	select {
	case <-next:
		t.Fatal("fresh channel should still be open")
	default:
	}
	_, open := <-old
	assert.False(t, open)
}
