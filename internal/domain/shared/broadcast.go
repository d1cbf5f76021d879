package shared

import "sync"

// Broadcast is a reusable wake-up signal for any number of waiters.
//
// Waiters take the current channel with Wait() before checking their
// condition, then select on it. Notify closes the channel, waking every
// waiter at once, and arms a fresh one for the next round.
// The zero value is ready to use.
type Broadcast struct {
	mu sync.Mutex
	ch chan struct{}
}

// Wait returns a channel that is closed by the next Notify
func (b *Broadcast) Wait() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch == nil {
		b.ch = make(chan struct{})
	}
	return b.ch
}

// Notify wakes everyone currently waiting
func (b *Broadcast) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch != nil {
		close(b.ch)
		b.ch = nil
	}
}
