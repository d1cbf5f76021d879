package events

import (
	"context"
	"sync"
)

// Mailbox is an unbounded FIFO queue owned by one subscriber.
// Publishers never block on it; the subscriber drains it with Next.
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	ready  chan struct{}
	closed bool
}

func newMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ready: make(chan struct{}, 1)}
}

func (m *Mailbox[T]) push(item T) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.items = append(m.items, item)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Next blocks until an item is available, the mailbox is closed, or ctx is done.
// ok is false once the mailbox is closed and drained.
func (m *Mailbox[T]) Next(ctx context.Context) (item T, ok bool, err error) {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			item = m.items[0]
			var zero T
			m.items[0] = zero
			m.items = m.items[1:]
			m.mu.Unlock()
			return item, true, nil
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return item, false, nil
		}

		select {
		case <-m.ready:
		case <-ctx.Done():
			return item, false, ctx.Err()
		}
	}
}

// Len returns the number of undelivered items
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops accepting items; queued items can still be drained
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}
