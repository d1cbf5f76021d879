package shared

import (
	"fmt"
	"time"
)

// LifecycleStatus represents the state of a unit of work
type LifecycleStatus string

const (
	LifecycleStatusPending   LifecycleStatus = "PENDING"
	LifecycleStatusRunning   LifecycleStatus = "RUNNING"
	LifecycleStatusCompleted LifecycleStatus = "COMPLETED"
	LifecycleStatusFailed    LifecycleStatus = "FAILED"
	LifecycleStatusCancelled LifecycleStatus = "CANCELLED"
)

// Lifecycle tracks PENDING → RUNNING → COMPLETED/FAILED/CANCELLED.
// Not safe for concurrent use; owners guard it with their own lock.
type Lifecycle struct {
	status     LifecycleStatus
	createdAt  time.Time
	startedAt  *time.Time
	finishedAt *time.Time
	lastError  string
	clock      Clock
}

// NewLifecycle creates a lifecycle in PENDING state
func NewLifecycle(clock Clock) Lifecycle {
	if clock == nil {
		clock = NewRealClock()
	}
	return Lifecycle{
		status:    LifecycleStatusPending,
		createdAt: clock.Now(),
		clock:     clock,
	}
}

func (l *Lifecycle) Status() LifecycleStatus { return l.status }
func (l *Lifecycle) CreatedAt() time.Time    { return l.createdAt }
func (l *Lifecycle) StartedAt() *time.Time   { return l.startedAt }
func (l *Lifecycle) FinishedAt() *time.Time  { return l.finishedAt }
func (l *Lifecycle) LastError() string       { return l.lastError }

// Start transitions from PENDING to RUNNING
func (l *Lifecycle) Start() error {
	if l.status != LifecycleStatusPending {
		return fmt.Errorf("cannot start from %s state", l.status)
	}
	now := l.clock.Now()
	l.status = LifecycleStatusRunning
	l.startedAt = &now
	return nil
}

// Complete transitions from RUNNING to COMPLETED
func (l *Lifecycle) Complete() error {
	if l.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot complete from %s state", l.status)
	}
	l.finish(LifecycleStatusCompleted)
	return nil
}

// Fail records err and moves any unfinished lifecycle to FAILED
func (l *Lifecycle) Fail(err error) error {
	if l.IsFinished() {
		return fmt.Errorf("cannot fail from %s state", l.status)
	}
	if err != nil {
		l.lastError = err.Error()
	}
	l.finish(LifecycleStatusFailed)
	return nil
}

// Cancel moves any unfinished lifecycle to CANCELLED
func (l *Lifecycle) Cancel() error {
	if l.IsFinished() {
		return fmt.Errorf("cannot cancel from %s state", l.status)
	}
	l.finish(LifecycleStatusCancelled)
	return nil
}

func (l *Lifecycle) finish(status LifecycleStatus) {
	now := l.clock.Now()
	l.status = status
	l.finishedAt = &now
}

// IsFinished returns true once the lifecycle reached a terminal state
func (l *Lifecycle) IsFinished() bool {
	return l.status == LifecycleStatusCompleted ||
		l.status == LifecycleStatusFailed ||
		l.status == LifecycleStatusCancelled
}

// RuntimeDuration is how long the work has been (or was) running
func (l *Lifecycle) RuntimeDuration() time.Duration {
	if l.startedAt == nil {
		return 0
	}
	end := l.clock.Now()
	if l.finishedAt != nil {
		end = *l.finishedAt
	}
	return end.Sub(*l.startedAt)
}
