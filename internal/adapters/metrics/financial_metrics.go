package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BudgetState is the polled budget breakdown
type BudgetState struct {
	Starting float64
	Income   float64
	Expenses float64
	Current  float64
}

// FinancialMetricsCollector handles budget and ledger metrics
type FinancialMetricsCollector struct {
	// Dependencies
	getBudget func() BudgetState

	// Ledger metrics
	entriesTotal *prometheus.CounterVec
	entryAmount  *prometheus.HistogramVec

	// Balance metrics
	budgetCurrent  prometheus.Gauge
	budgetIncome   prometheus.Gauge
	budgetExpenses prometheus.Gauge

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewFinancialMetricsCollector creates a collector polling getBudget
func NewFinancialMetricsCollector(getBudget func() BudgetState) *FinancialMetricsCollector {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &FinancialMetricsCollector{
		getBudget: getBudget,

		entriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ledger_entries_total",
				Help:      "Budget ledger entries by kind",
			},
			[]string{"kind"},
		),

		entryAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ledger_entry_amount",
				Help:      "Distribution of ledger entry amounts",
				Buckets:   []float64{50, 100, 150, 250, 500, 1000, 2500},
			},
			[]string{"kind"},
		),

		budgetCurrent:  gauge("budget_current", "Current budget"),
		budgetIncome:   gauge("budget_income_total", "Income booked since start"),
		budgetExpenses: gauge("budget_expenses_total", "Expenses booked since start"),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *FinancialMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.entriesTotal,
		c.entryAmount,
		c.budgetCurrent,
		c.budgetIncome,
		c.budgetExpenses,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Start begins polling the budget every interval
func (c *FinancialMetricsCollector) Start(ctx context.Context, interval time.Duration) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
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
	}()
}

// Stop gracefully stops the metrics collection
func (c *FinancialMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

// Update refreshes the budget gauges
func (c *FinancialMetricsCollector) Update() {
	if c.getBudget == nil {
		return
	}
	b := c.getBudget()
	c.budgetCurrent.Set(b.Current)
	c.budgetIncome.Set(b.Income)
	c.budgetExpenses.Set(b.Expenses)
}

// RecordLedgerEntry records one income or expense
func (c *FinancialMetricsCollector) RecordLedgerEntry(kind string, amount float64) {
	c.entriesTotal.WithLabelValues(kind).Inc()
	c.entryAmount.WithLabelValues(kind).Observe(amount)
}
