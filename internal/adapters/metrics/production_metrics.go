package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FloorState is what the collector polls from the running factory
type FloorState struct {
	PendingOrders int
	RawMaterials  map[string]int
	Finished      map[string]int
	Machines      []MachineGauge
	BusyByRole    map[string]int
}

// MachineGauge is one machine's polled state
type MachineGauge struct {
	ID         string
	Durability int
	Broken     bool
	Occupied   bool
}

// ProductionMetricsCollector handles shop-floor metrics
type ProductionMetricsCollector struct {
	// Dependencies
	getState func() FloorState

	// Event counters
	ordersEnqueued  *prometheus.CounterVec
	ordersCompleted *prometheus.CounterVec
	unitsProduced   *prometheus.CounterVec
	backoffs        *prometheus.CounterVec
	repairs         *prometheus.CounterVec
	restocks        *prometheus.CounterVec
	events          *prometheus.CounterVec

	// Polled gauges
	pendingOrders     prometheus.Gauge
	rawMaterials      *prometheus.GaugeVec
	finishedGoods     *prometheus.GaugeVec
	machineDurability *prometheus.GaugeVec
	machineStatus     *prometheus.GaugeVec
	busyEmployees     *prometheus.GaugeVec

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewProductionMetricsCollector creates a collector polling getState
func NewProductionMetricsCollector(getState func() FloorState) *ProductionMetricsCollector {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}

	return &ProductionMetricsCollector{
		getState: getState,

		ordersEnqueued:  counter("orders_enqueued_total", "Orders placed in the queue", "furniture", "material"),
		ordersCompleted: counter("orders_completed_total", "Orders shipped and paid", "furniture", "material"),
		unitsProduced:   counter("units_produced_total", "Furniture units built", "furniture", "material"),
		backoffs:        counter("backoffs_total", "Retry waits for a missing resource", "resource"),
		repairs:         counter("repairs_total", "Machine repairs completed", "machine"),
		restocks:        counter("restocks_total", "Restock decisions by outcome", "material", "outcome"),
		events:          counter("events_total", "Published notifications by delivery", "kind", "delivered"),

		pendingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pending_orders",
			Help:      "Orders waiting for a carpenter",
		}),
		rawMaterials:      gauge("raw_material_units", "Raw material units in the warehouse", "material"),
		finishedGoods:     gauge("finished_goods_units", "Finished units waiting to ship", "product"),
		machineDurability: gauge("machine_durability", "Remaining machine durability", "machine"),
		machineStatus:     gauge("machine_status", "Machine state flags", "machine", "state"),
		busyEmployees:     gauge("busy_employees", "Employees currently working", "role"),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *ProductionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.ordersEnqueued,
		c.ordersCompleted,
		c.unitsProduced,
		c.backoffs,
		c.repairs,
		c.restocks,
		c.events,
		c.pendingOrders,
		c.rawMaterials,
		c.finishedGoods,
		c.machineDurability,
		c.machineStatus,
		c.busyEmployees,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Start begins polling the floor state every interval
func (c *ProductionMetricsCollector) Start(ctx context.Context, interval time.Duration) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.poll(interval)
}

// Stop gracefully stops the metrics collection
func (c *ProductionMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *ProductionMetricsCollector) poll(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.Update()
		}
	}
}

// Update refreshes the polled gauges from the current floor state
func (c *ProductionMetricsCollector) Update() {
	if c.getState == nil {
		return
	}
	state := c.getState()

	c.pendingOrders.Set(float64(state.PendingOrders))

	c.rawMaterials.Reset()
	for material, qty := range state.RawMaterials {
		c.rawMaterials.WithLabelValues(material).Set(float64(qty))
	}

	c.finishedGoods.Reset()
	for product, qty := range state.Finished {
		c.finishedGoods.WithLabelValues(product).Set(float64(qty))
	}

	c.machineDurability.Reset()
	c.machineStatus.Reset()
	for _, m := range state.Machines {
		c.machineDurability.WithLabelValues(m.ID).Set(float64(m.Durability))
		c.machineStatus.WithLabelValues(m.ID, "broken").Set(boolGauge(m.Broken))
		c.machineStatus.WithLabelValues(m.ID, "occupied").Set(boolGauge(m.Occupied))
	}

	c.busyEmployees.Reset()
	for role, n := range state.BusyByRole {
		c.busyEmployees.WithLabelValues(role).Set(float64(n))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (c *ProductionMetricsCollector) RecordOrderEnqueued(furniture, material string) {
	c.ordersEnqueued.WithLabelValues(furniture, material).Inc()
}

func (c *ProductionMetricsCollector) RecordOrderCompleted(furniture, material string) {
	c.ordersCompleted.WithLabelValues(furniture, material).Inc()
}

func (c *ProductionMetricsCollector) RecordProduced(furniture, material string) {
	c.unitsProduced.WithLabelValues(furniture, material).Inc()
}

func (c *ProductionMetricsCollector) RecordBackoff(resource string) {
	c.backoffs.WithLabelValues(resource).Inc()
}

func (c *ProductionMetricsCollector) RecordRepair(machineID string) {
	c.repairs.WithLabelValues(machineID).Inc()
}

func (c *ProductionMetricsCollector) RecordRestock(material string, bought bool) {
	outcome := "bought"
	if !bought {
		outcome = "declined"
	}
	c.restocks.WithLabelValues(material, outcome).Inc()
}

func (c *ProductionMetricsCollector) RecordEvent(kind string, delivered bool) {
	c.events.WithLabelValues(kind, strconv.FormatBool(delivered)).Inc()
}
