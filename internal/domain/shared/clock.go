package shared

import (
	"sync"
	"time"
)

// Clock is an abstraction for time operations, allowing time to be mocked in tests
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// After waits for the duration to elapse and then sends the current time
func (r *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// MockClock implements Clock with a controllable time for testing.
// Timers created with After fire when Advance moves the clock past their deadline.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []mockTimer
}

type mockTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// NewMockClock creates a MockClock starting at the given time
// If zero time is provided, starts at current time
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now()
	}
	return &MockClock{current: startTime}
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// After returns a channel that fires once the mock clock reaches now+d.
// A non-positive duration fires immediately.
func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- m.current
		return ch
	}
	m.timers = append(m.timers, mockTimer{deadline: m.current.Add(d), ch: ch})
	return ch
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = m.current.Add(d)
	pending := m.timers[:0]
	for _, t := range m.timers {
		if !t.deadline.After(m.current) {
			t.ch <- m.current
			continue
		}
		pending = append(pending, t)
	}
	m.timers = pending
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// PendingTimers reports how many After channels have not fired yet
func (m *MockClock) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
