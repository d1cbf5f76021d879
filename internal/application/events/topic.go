package events

import "sync"

// Topic fans a typed event out to every current subscriber
type Topic[T any] struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]*Mailbox[T]
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{subscribers: make(map[int]*Mailbox[T])}
}

// Subscribe returns a fresh mailbox and a function that unsubscribes and closes it
func (t *Topic[T]) Subscribe() (*Mailbox[T], func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	mb := newMailbox[T]()
	t.subscribers[id] = mb

	var once sync.Once
	return mb, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subscribers, id)
			t.mu.Unlock()
			mb.Close()
		})
	}
}

// Publish delivers event to all subscribers without blocking.
// Returns the number of subscribers reached.
func (t *Topic[T]) Publish(event T) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, mb := range t.subscribers {
		mb.push(event)
	}
	return len(t.subscribers)
}

// SubscriberCount returns the number of live subscriptions
func (t *Topic[T]) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subscribers)
}
