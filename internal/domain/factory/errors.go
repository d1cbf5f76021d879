package factory

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates a missing or malformed required input.
// Fatal to the call, never retried.
type ErrInvalidArgument struct {
	Field  string
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrUnknownMaterial indicates a material kind that is not in the catalog
type ErrUnknownMaterial struct {
	Kind MaterialKind
}

func (e *ErrUnknownMaterial) Error() string {
	return fmt.Sprintf("unknown material: %q", string(e.Kind))
}

// ErrInsufficientStock indicates a removal or consumption larger than what is held
type ErrInsufficientStock struct {
	Item      string
	Requested int
	Available int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock of %s: requested %d, available %d", e.Item, e.Requested, e.Available)
}

// ErrNegativeAmount indicates a negative budget delta
type ErrNegativeAmount struct {
	Operation string
	Amount    string
}

func (e *ErrNegativeAmount) Error() string {
	return fmt.Sprintf("%s amount cannot be negative: %s", e.Operation, e.Amount)
}

// ErrEmptyQueue indicates a dequeue with no pending orders
type ErrEmptyQueue struct{}

func (e *ErrEmptyQueue) Error() string {
	return "order queue is empty"
}

// ErrDuplicateSupervisor indicates a second manager registration
type ErrDuplicateSupervisor struct {
	ExistingID string
}

func (e *ErrDuplicateSupervisor) Error() string {
	return fmt.Sprintf("a manager is already registered: %s", e.ExistingID)
}

// ErrMachineNotBroken indicates a repair request for a working machine
type ErrMachineNotBroken struct {
	MachineID string
}

func (e *ErrMachineNotBroken) Error() string {
	return fmt.Sprintf("machine %s is not broken", e.MachineID)
}

// IsInvalidArgument reports whether err is an invalid-argument kind,
// which includes unknown materials
func IsInvalidArgument(err error) bool {
	var invalid *ErrInvalidArgument
	var unknown *ErrUnknownMaterial
	return errors.As(err, &invalid) || errors.As(err, &unknown)
}
