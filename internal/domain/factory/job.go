package factory

import (
	"sync"
	"time"

	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// Job follows one order from the queue to completion
type Job struct {
	mu        sync.Mutex
	order     *Order
	assignee  string
	lifecycle shared.Lifecycle
}

// NewJob creates a pending job for order
func NewJob(order *Order, clock shared.Clock) (*Job, error) {
	if order == nil {
		return nil, &ErrInvalidArgument{Field: "order", Reason: "cannot be nil"}
	}
	return &Job{order: order, lifecycle: shared.NewLifecycle(clock)}, nil
}

func (j *Job) Order() *Order { return j.order }

// Assign hands the job to a carpenter and starts it
func (j *Job) Assign(carpenterID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.lifecycle.Start(); err != nil {
		return err
	}
	j.assignee = carpenterID
	return nil
}

func (j *Job) Complete() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lifecycle.Complete()
}

func (j *Job) Fail(cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lifecycle.Fail(cause)
}

func (j *Job) Cancel() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lifecycle.Cancel()
}

// JobState is a point-in-time copy of a job
type JobState struct {
	OrderID    string
	Product    Product
	Quantity   int
	Assignee   string
	Status     shared.LifecycleStatus
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	Runtime    time.Duration
	Error      string
}

func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobState{
		OrderID:    j.order.ID(),
		Product:    j.order.Product(),
		Quantity:   j.order.Quantity(),
		Assignee:   j.assignee,
		Status:     j.lifecycle.Status(),
		CreatedAt:  j.lifecycle.CreatedAt(),
		StartedAt:  j.lifecycle.StartedAt(),
		FinishedAt: j.lifecycle.FinishedAt(),
		Runtime:    j.lifecycle.RuntimeDuration(),
		Error:      j.lifecycle.LastError(),
	}
}

func (j *Job) IsFinished() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lifecycle.IsFinished()
}
