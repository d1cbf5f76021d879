package supervision

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/furniture-factory/internal/adapters/metrics"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// RepairShop runs machine repairs
type RepairShop struct {
	timeScale float64
	clock     shared.Clock
}

// NewRepairShop creates a repair shop. timeScale multiplies repair times; 0 means 1.
func NewRepairShop(timeScale float64, clock shared.Clock) *RepairShop {
	if timeScale <= 0 {
		timeScale = 1
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RepairShop{timeScale: timeScale, clock: clock}
}

// Repair has repairman fix machine, taking the machine's repair time.
// The repairman is busy for the duration and idle afterwards.
func (r *RepairShop) Repair(ctx context.Context, repairman *factory.Repairman, machine *factory.Machine) error {
	if repairman == nil {
		return &factory.ErrInvalidArgument{Field: "repairman", Reason: "cannot be nil"}
	}
	if machine == nil {
		return &factory.ErrInvalidArgument{Field: "machine", Reason: "cannot be nil"}
	}

	repairman.TryClaim()
	defer repairman.MarkIdle()

	if !machine.IsBroken() {
		return &factory.ErrMachineNotBroken{MachineID: machine.ID()}
	}

	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelInfo, fmt.Sprintf("[RepairShop] %s repairing %s", repairman.ID(), machine.ID()), nil)

	d := time.Duration(float64(machine.RepairTime()) * r.timeScale)
	if d > 0 {
		select {
		case <-r.clock.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	machine.Repair()
	repairman.RecordRepair()
	metrics.RecordRepair(machine.ID())

	logger.Log(common.LevelInfo, fmt.Sprintf("[RepairShop] %s repaired %s", repairman.ID(), machine.ID()), map[string]interface{}{
		"repairman": repairman.ID(),
		"machine":   machine.ID(),
		"repaired":  repairman.Repaired(),
	})
	return nil
}
