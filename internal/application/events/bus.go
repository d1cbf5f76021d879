package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/furniture-factory/internal/adapters/metrics"
	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// Bus carries the four factory notification classes.
// It implements factory.EventSink so domain objects can publish directly.
type Bus struct {
	orders      *Topic[factory.OrderReceived]
	breakdowns  *Topic[factory.MachineBroken]
	depletions  *Topic[factory.MaterialDepleted]
	completions *Topic[factory.ProductionCompleted]
	logger      common.ContainerLogger

	rearmMu sync.RWMutex
	rearm   func(factory.MaterialKind)
}

// NewBus creates a bus. Events published with no subscriber are logged and dropped.
func NewBus(ctx context.Context) *Bus {
	return &Bus{
		orders:      NewTopic[factory.OrderReceived](),
		breakdowns:  NewTopic[factory.MachineBroken](),
		depletions:  NewTopic[factory.MaterialDepleted](),
		completions: NewTopic[factory.ProductionCompleted](),
		logger:      common.LoggerFromContext(ctx),
	}
}

func (b *Bus) Orders() *Topic[factory.OrderReceived]            { return b.orders }
func (b *Bus) Breakdowns() *Topic[factory.MachineBroken]        { return b.breakdowns }
func (b *Bus) Depletions() *Topic[factory.MaterialDepleted]     { return b.depletions }
func (b *Bus) Completions() *Topic[factory.ProductionCompleted] { return b.completions }

func (b *Bus) OrderReceived(event factory.OrderReceived) {
	b.deliver("order_received", b.orders.Publish(event), event.Order.ID())
}

func (b *Bus) MachineBroken(event factory.MachineBroken) {
	b.deliver("machine_broken", b.breakdowns.Publish(event), event.Machine.ID())
}

// OnDroppedDepletion sets the callback run when a MaterialDepleted reaches
// no subscriber, so the shortage can be reported again later.
func (b *Bus) OnDroppedDepletion(fn func(factory.MaterialKind)) {
	b.rearmMu.Lock()
	b.rearm = fn
	b.rearmMu.Unlock()
}

func (b *Bus) MaterialDepleted(event factory.MaterialDepleted) {
	reached := b.depletions.Publish(event)
	b.deliver("material_depleted", reached, string(event.Material))
	if reached > 0 {
		return
	}
	b.rearmMu.RLock()
	rearm := b.rearm
	b.rearmMu.RUnlock()
	if rearm != nil {
		rearm(event.Material)
	}
}

func (b *Bus) ProductionCompleted(event factory.ProductionCompleted) {
	b.deliver("production_completed", b.completions.Publish(event), event.Order.ID())
}

func (b *Bus) deliver(kind string, reached int, subject string) {
	metrics.RecordEvent(kind, reached > 0)
	if reached == 0 {
		b.logger.Log("WARN", fmt.Sprintf("[EventBus] No manager listening, dropped %s for %s", kind, subject), map[string]interface{}{
			"event":   kind,
			"subject": subject,
		})
	}
}
