package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/furniture-factory/internal/adapters/metrics"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// DefaultBackoff is how long a carpenter waits before retrying a missing resource
const DefaultBackoff = 5 * time.Second

// Floor is what a carpenter needs from the factory to work an order
type Floor interface {
	Warehouse() *factory.Warehouse
	AcquireFreeMachine() (*factory.Machine, bool)
	MachineAvailability() <-chan struct{}
}

// Options tunes a Workshop
type Options struct {
	// Backoff between retries when material or a machine is missing
	Backoff time.Duration
	// TimeScale multiplies catalog production times; 0 means 1
	TimeScale float64
	Clock     shared.Clock
}

// Workshop runs the carpenter production loop against a floor
type Workshop struct {
	floor     Floor
	backoff   time.Duration
	timeScale float64
	clock     shared.Clock
}

// NewWorkshop creates a workshop; zero options take defaults
func NewWorkshop(floor Floor, opts Options) *Workshop {
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.TimeScale <= 0 {
		opts.TimeScale = 1
	}
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	return &Workshop{
		floor:     floor,
		backoff:   opts.Backoff,
		timeScale: opts.TimeScale,
		clock:     opts.Clock,
	}
}

// Produce has carpenter build every unit of order.
//
// Each unit reserves its material, then takes a free machine, then works
// for the catalog production time. A missing resource is not an error:
// the carpenter backs off and retries until it appears. Unknown materials,
// consumption failures and cancellation end the call with an error.
// On success ProductionCompleted is raised before the carpenter goes idle.
func (w *Workshop) Produce(ctx context.Context, carpenter *factory.Carpenter, order *factory.Order) error {
	if carpenter == nil {
		return &factory.ErrInvalidArgument{Field: "carpenter", Reason: "cannot be nil"}
	}
	carpenter.TryClaim()
	defer carpenter.MarkIdle()

	if order == nil {
		return &factory.ErrInvalidArgument{Field: "order", Reason: "cannot be nil"}
	}
	if w == nil || w.floor == nil {
		return &factory.ErrInvalidArgument{Field: "floor", Reason: "workshop is not attached to a factory"}
	}
	warehouse := w.floor.Warehouse()
	if warehouse == nil {
		return &factory.ErrInvalidArgument{Field: "warehouse", Reason: "factory has no warehouse"}
	}
	spec, ok := factory.LookupFurniture(order.Furniture())
	if !ok {
		return &factory.ErrInvalidArgument{Field: "furniture", Reason: "unknown furniture kind " + string(order.Furniture())}
	}

	logger := common.LoggerFromContext(ctx)

	logger.Log(common.LevelInfo, fmt.Sprintf("[Workshop] %s started %s", carpenter.ID(), order), map[string]interface{}{
		"carpenter": carpenter.ID(),
		"order_id":  order.ID(),
	})

	unitTime := time.Duration(float64(spec.ProductionTime) * w.timeScale)
	for remaining := order.Quantity(); remaining > 0; {
		if _, known := warehouse.LookupMaterial(order.Material()); !known {
			return &factory.ErrUnknownMaterial{Kind: order.Material()}
		}

		restocked := warehouse.Changed()
		reservation, err := warehouse.Reserve(order.Material(), spec.MaterialUnits)
		if err != nil {
			var short *factory.ErrInsufficientStock
			if !errors.As(err, &short) {
				return err
			}
			logger.Log(common.LevelDebug, fmt.Sprintf("[Workshop] %s waiting for %d %s (have %d)",
				carpenter.ID(), spec.MaterialUnits, order.Material(), short.Available), nil)
			metrics.RecordBackoff("material")
			if err := w.wait(ctx, restocked); err != nil {
				return err
			}
			continue
		}

		freed := w.floor.MachineAvailability()
		machine, acquired := w.floor.AcquireFreeMachine()
		if !acquired {
			warehouse.Release(reservation)
			logger.Log(common.LevelDebug, fmt.Sprintf("[Workshop] %s waiting for a free machine", carpenter.ID()), nil)
			metrics.RecordBackoff("machine")
			if err := w.wait(ctx, freed); err != nil {
				return err
			}
			continue
		}

		if err := w.work(ctx, unitTime); err != nil {
			warehouse.Release(reservation)
			machine.Release()
			return err
		}

		if err := warehouse.Consume(reservation); err != nil {
			machine.Release()
			return fmt.Errorf("consume %s for order %s: %w", order.Material(), order.ID(), err)
		}
		carpenter.RecordProduced()
		machine.Release()
		if err := warehouse.AddFinishedProduct(order.Product(), 1); err != nil {
			return err
		}
		metrics.RecordProduced(string(order.Furniture()), string(order.Material()))
		remaining--
	}

	logger.Log(common.LevelInfo, fmt.Sprintf("[Workshop] %s finished %s", carpenter.ID(), order), map[string]interface{}{
		"carpenter": carpenter.ID(),
		"order_id":  order.ID(),
		"produced":  carpenter.Produced(),
	})
	carpenter.NotifyCompleted(order)
	return nil
}

// wait blocks for one backoff interval, or less if wake fires first
func (w *Workshop) wait(ctx context.Context, wake <-chan struct{}) error {
	select {
	case <-w.clock.After(w.backoff):
		return nil
	case <-wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Workshop) work(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-w.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
