package factory

import (
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// Machine is a production resource that wears out with use.
//
// Thread-Safety:
// Acquire, Release and Repair are serialised by a per-machine mutex.
//
// Invariants:
// - 0 <= durability <= maxDurability
// - broken iff durability reached 0 and no repair happened since
// - MachineBroken is emitted exactly once per wear-out
type Machine struct {
	mu sync.Mutex

	id            string
	maxDurability int
	durability    int
	occupied      bool
	broken        bool
	repairTime    time.Duration

	sink         EventSink
	availability *shared.Broadcast
}

// NewMachine creates a machine at full durability
func NewMachine(id string, maxDurability int, repairTime time.Duration) (*Machine, error) {
	return ReconstructMachine(id, maxDurability, maxDurability, repairTime)
}

// ReconstructMachine restores a machine with a saved durability.
// A machine restored at zero durability is broken.
func ReconstructMachine(id string, maxDurability, durability int, repairTime time.Duration) (*Machine, error) {
	if id == "" {
		return nil, &ErrInvalidArgument{Field: "machine id", Reason: "cannot be empty"}
	}
	if maxDurability <= 0 {
		return nil, &ErrInvalidArgument{Field: "max durability", Reason: fmt.Sprintf("must be positive, got %d", maxDurability)}
	}
	if durability < 0 || durability > maxDurability {
		return nil, &ErrInvalidArgument{Field: "durability", Reason: fmt.Sprintf("must be within 0..%d, got %d", maxDurability, durability)}
	}
	if repairTime < 0 {
		return nil, &ErrInvalidArgument{Field: "repair time", Reason: "cannot be negative"}
	}
	return &Machine{
		id:            id,
		maxDurability: maxDurability,
		durability:    durability,
		broken:        durability == 0,
		repairTime:    repairTime,
		sink:          noOpSink{},
		availability:  &shared.Broadcast{},
	}, nil
}

// Attach wires the machine to the event sink and the availability signal
// shared by all machines of a floor. Either argument may be nil.
func (m *Machine) Attach(sink EventSink, availability *shared.Broadcast) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sink != nil {
		m.sink = sink
	}
	if availability != nil {
		m.availability = availability
	}
}

// Getters

func (m *Machine) ID() string                { return m.id }
func (m *Machine) MaxDurability() int        { return m.maxDurability }
func (m *Machine) RepairTime() time.Duration { return m.repairTime }

func (m *Machine) Durability() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durability
}

func (m *Machine) IsOccupied() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.occupied
}

func (m *Machine) IsBroken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.broken
}

// Available reports !occupied && !broken
func (m *Machine) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.occupied && !m.broken
}

// Acquire takes the machine for one production step and wears it by one.
// Returns false without side effects if the machine is occupied or broken.
func (m *Machine) Acquire() bool {
	m.mu.Lock()
	if m.occupied || m.broken || m.durability <= 0 {
		m.mu.Unlock()
		return false
	}

	m.occupied = true
	m.durability--
	wornOut := m.durability == 0
	if wornOut {
		m.broken = true
	}
	sink := m.sink
	m.mu.Unlock()

	if wornOut {
		sink.MachineBroken(MachineBroken{Machine: m})
	}
	return true
}

// Release frees the machine. Idempotent.
func (m *Machine) Release() {
	m.mu.Lock()
	m.occupied = false
	availability := m.availability
	m.mu.Unlock()

	availability.Notify()
}

// Repair restores full durability and clears the broken flag. Idempotent.
func (m *Machine) Repair() {
	m.mu.Lock()
	m.durability = m.maxDurability
	m.broken = false
	availability := m.availability
	m.mu.Unlock()

	availability.Notify()
}

// MachineState is a point-in-time copy of a machine
type MachineState struct {
	ID            string
	MaxDurability int
	Durability    int
	Occupied      bool
	Broken        bool
	RepairTime    time.Duration
}

// State returns a consistent copy of the machine
func (m *Machine) State() MachineState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MachineState{
		ID:            m.id,
		MaxDurability: m.maxDurability,
		Durability:    m.durability,
		Occupied:      m.occupied,
		Broken:        m.broken,
		RepairTime:    m.repairTime,
	}
}
