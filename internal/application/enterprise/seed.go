package enterprise

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// MachineSpec describes a machine to install
type MachineSpec struct {
	ID            string
	MaxDurability int
	RepairTime    time.Duration
}

// Roster is the initial staff, floor and stock of a fresh factory
type Roster struct {
	Manager      string
	Carpenters   []string
	Repairmen    []string
	Machines     []MachineSpec
	RawMaterials map[factory.MaterialKind]int
}

// Seed installs a roster into an empty enterprise
func (e *Enterprise) Seed(roster Roster) error {
	if roster.Manager != "" {
		m, err := factory.NewManager(roster.Manager, roster.Manager)
		if err != nil {
			return err
		}
		if err := e.AddManager(m); err != nil {
			return err
		}
	}
	for _, name := range roster.Carpenters {
		c, err := factory.NewCarpenter(name, name)
		if err != nil {
			return err
		}
		if err := e.AddEmployee(c); err != nil {
			return err
		}
	}
	for _, name := range roster.Repairmen {
		r, err := factory.NewRepairman(name, name)
		if err != nil {
			return err
		}
		if err := e.AddEmployee(r); err != nil {
			return err
		}
	}
	for _, spec := range roster.Machines {
		m, err := factory.NewMachine(spec.ID, spec.MaxDurability, spec.RepairTime)
		if err != nil {
			return err
		}
		if err := e.AddMachine(m); err != nil {
			return err
		}
	}
	for kind, qty := range roster.RawMaterials {
		if err := e.warehouse.AddRawMaterial(kind, qty); err != nil {
			return fmt.Errorf("stock %s: %w", kind, err)
		}
	}
	return nil
}

// Restore rebuilds an enterprise from a saved snapshot.
// Machines come back at full durability, so one saved mid-repair is
// usable again. Pending orders are queued without raising OrderReceived;
// call ReplayPending once the manager is listening.
func Restore(ctx context.Context, snap Snapshot, opts ...Option) (*Enterprise, error) {
	e := New(ctx, snap.Budget.Starting, opts...)
	e.budget = factory.ReconstructBudget(snap.Budget.Starting, snap.Budget.Income, snap.Budget.Expenses, e.clock)

	if snap.Manager != nil {
		m, err := factory.NewManager(snap.Manager.ID, snap.Manager.Name)
		if err != nil {
			return nil, err
		}
		if err := e.AddManager(m); err != nil {
			return nil, err
		}
	}
	for _, s := range snap.Carpenters {
		c, err := factory.ReconstructCarpenter(s.ID, s.Name, s.Produced)
		if err != nil {
			return nil, err
		}
		if err := e.AddEmployee(c); err != nil {
			return nil, err
		}
	}
	for _, s := range snap.Repairmen {
		r, err := factory.ReconstructRepairman(s.ID, s.Name, s.Repaired)
		if err != nil {
			return nil, err
		}
		if err := e.AddEmployee(r); err != nil {
			return nil, err
		}
	}
	for _, s := range snap.Machines {
		m, err := factory.NewMachine(s.ID, s.MaxDurability, s.RepairTime)
		if err != nil {
			return nil, err
		}
		if err := e.AddMachine(m); err != nil {
			return nil, err
		}
	}
	for kind, qty := range snap.RawMaterials {
		if err := e.warehouse.AddRawMaterial(kind, qty); err != nil {
			return nil, fmt.Errorf("restore %s: %w", kind, err)
		}
	}
	for _, pc := range snap.FinishedProducts {
		if err := e.warehouse.AddFinishedProduct(pc.Product, pc.Quantity); err != nil {
			return nil, err
		}
	}
	for _, o := range snap.PendingOrders {
		order, err := factory.ReconstructOrder(o.ID, o.Furniture, o.Material, o.Quantity, o.TotalPrice, o.CreatedAt)
		if err != nil {
			return nil, err
		}
		if err := e.queueOrder(order); err != nil {
			return nil, err
		}
	}
	return e, nil
}
