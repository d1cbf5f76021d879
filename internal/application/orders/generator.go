package orders

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/furniture-factory/internal/application/common"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
)

// Sink accepts generated orders
type Sink interface {
	EnqueueOrder(order *factory.Order) error
}

// Options tunes the generator
type Options struct {
	// BatchSize orders are generated per batch
	BatchSize int
	// Interval is the minimum spacing between batches
	Interval time.Duration
	// JitterMin and JitterMax bound the pause before each order
	JitterMin time.Duration
	JitterMax time.Duration
	// MaxQuantity bounds each order's quantity (1..MaxQuantity)
	MaxQuantity int
	// Seed makes the order stream reproducible; zero picks a random seed
	Seed  uint64
	Clock shared.Clock
}

// DefaultOptions mirrors the demo factory: 5 orders per batch, 1-2 s apart, up to 9 pieces each
func DefaultOptions() Options {
	return Options{
		BatchSize:   5,
		Interval:    10 * time.Second,
		JitterMin:   time.Second,
		JitterMax:   2 * time.Second,
		MaxQuantity: 9,
	}
}

// Generator feeds random orders into the factory
type Generator struct {
	sink    Sink
	opts    Options
	limiter *rate.Limiter

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator; zero options take the defaults
func NewGenerator(sink Sink, opts Options) *Generator {
	def := DefaultOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.JitterMin < 0 {
		opts.JitterMin = 0
	}
	if opts.JitterMax < opts.JitterMin {
		opts.JitterMax = opts.JitterMin
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = def.MaxQuantity
	}
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Generator{
		sink:    sink,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.Interval), 1),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Run generates batches until ctx is done or maxBatches batches were
// generated (zero means no limit). Failures of single orders are logged
// and do not stop the generator.
func (g *Generator) Run(ctx context.Context, maxBatches int) error {
	logger := common.LoggerFromContext(ctx)
	for batch := 0; maxBatches == 0 || batch < maxBatches; batch++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil
		}
		for i := 0; i < g.opts.BatchSize; i++ {
			select {
			case <-g.opts.Clock.After(g.jitter()):
			case <-ctx.Done():
				return nil
			}

			order, err := g.NextOrder()
			if err == nil {
				err = g.sink.EnqueueOrder(order)
			}
			if err != nil {
				logger.Log(common.LevelError, fmt.Sprintf("[OrderGenerator] Failed to place order: %v", err), nil)
				continue
			}
			logger.Log(common.LevelInfo, fmt.Sprintf("[OrderGenerator] Placed %s", order), map[string]interface{}{
				"order_id":  order.ID(),
				"furniture": string(order.Furniture()),
				"material":  string(order.Material()),
				"quantity":  order.Quantity(),
			})
		}
	}
	return nil
}

// NextOrder draws a random catalog order
func (g *Generator) NextOrder() (*factory.Order, error) {
	g.mu.Lock()
	furnitures := factory.AllFurniture()
	materials := factory.AllMaterials()
	furniture := furnitures[g.rng.IntN(len(furnitures))]
	material := materials[g.rng.IntN(len(materials))]
	quantity := 1 + g.rng.IntN(g.opts.MaxQuantity)
	g.mu.Unlock()

	return factory.NewOrder(furniture, material, quantity, g.opts.Clock.Now())
}

func (g *Generator) jitter() time.Duration {
	span := g.opts.JitterMax - g.opts.JitterMin
	if span <= 0 {
		return g.opts.JitterMin
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opts.JitterMin + time.Duration(g.rng.Int64N(int64(span)+1))
}
